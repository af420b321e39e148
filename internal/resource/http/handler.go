package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
	"github.com/nekogravitycat/resource-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/resource-booking-backend/internal/file/http"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
)

const maxImageBytes = 5 << 20

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Handler struct {
	service     resource.Service
	fileService file.Service
	fileHandler *fileHttp.Handler
}

func NewHandler(service resource.Service, fileService file.Service) *Handler {
	return &Handler{
		service:     service,
		fileService: fileService,
		fileHandler: fileHttp.NewHandler(fileService),
	}
}

func parseWorkHour(field string, v *string) (*resource.TimeOfDay, error) {
	if v == nil {
		return nil, nil
	}
	tod, err := resource.ParseTimeOfDay(*v)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "expected HH:MM").WithField(field)
	}
	return &tod, nil
}

func (h *Handler) List(c *gin.Context) {
	var req ListResourcesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidInput(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := resource.Filter{
		TypeID:          req.TypeID,
		TypeSlug:        req.TypeSlug,
		MinCapacity:     req.MinCapacity,
		Search:          strings.TrimSpace(req.Search),
		IncludeInactive: req.IncludeInactive && auth.IsSystemAdmin(c),
		Page:            req.Page,
		PageSize:        req.PageSize,
		SortBy:          req.SortBy,
		SortOrder:       strings.ToUpper(req.SortOrder),
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]ResourceResponse, len(items))
	for i, r := range items {
		resp[i] = NewResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(resp, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	var (
		res *resource.Resource
		err error
	)
	if auth.IsSystemAdmin(c) {
		res, err = h.service.GetByID(c.Request.Context(), req.ID)
	} else {
		res, err = h.service.GetBookable(c.Request.Context(), req.ID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(res))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.InvalidInput(c, "invalid request body", err)
		return
	}

	start, err := parseWorkHour("work_hours_start", body.WorkHoursStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseWorkHour("work_hours_end", body.WorkHoursEnd)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), resource.CreateRequest{
		TypeID:            body.ResourceTypeID,
		Name:              body.Name,
		Description:       body.Description,
		Location:          body.Location,
		Capacity:          body.Capacity,
		Amenities:         body.Amenities,
		IsActive:          body.IsActive,
		WorkStart:         start,
		WorkEnd:           end,
		MinBookingMinutes: body.MinBookingMinutes,
		MaxBookingMinutes: body.MaxBookingMinutes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(res))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.InvalidInput(c, "invalid request body", err)
		return
	}

	start, err := parseWorkHour("work_hours_start", body.WorkHoursStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseWorkHour("work_hours_end", body.WorkHoursEnd)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Update(c.Request.Context(), uri.ID, resource.UpdateRequest{
		TypeID:            body.ResourceTypeID,
		Name:              body.Name,
		Description:       body.Description,
		Location:          body.Location,
		Capacity:          body.Capacity,
		ClearCapacity:     body.ClearCapacity,
		Amenities:         body.Amenities,
		IsActive:          body.IsActive,
		WorkStart:         start,
		WorkEnd:           end,
		MinBookingMinutes: body.MinBookingMinutes,
		MaxBookingMinutes: body.MaxBookingMinutes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(res))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage replaces the resource's image. The previous file is removed once the new one is attached.
func (h *Handler) UploadImage(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "image",
		MaxSizeBytes:  maxImageBytes,
		AllowedTypes:  imageTypes,
		Thumbnail:     true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			if _, err := h.service.SetImage(ctx, existing.ID, fileID); err != nil {
				return err
			}
			if existing.ImageFileID != nil {
				if err := h.fileService.Delete(ctx, *existing.ImageFileID); err != nil {
					log.Warn().Err(err).Str("file_id", *existing.ImageFileID).Msg("failed to delete replaced resource image")
				}
			}
			return nil
		},
	})
}
