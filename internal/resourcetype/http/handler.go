package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/resource-booking-backend/internal/resourcetype"
)

type Handler struct {
	service resourcetype.Service
}

func NewHandler(service resourcetype.Service) *Handler {
	return &Handler{service: service}
}

// List returns active types ordered by (ordering, name). Admins may include inactive ones.
func (h *Handler) List(c *gin.Context) {
	var req ListResourceTypesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidInput(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := resourcetype.Filter{
		IncludeInactive: req.IncludeInactive && auth.IsSystemAdmin(c),
		Page:            req.Page,
		PageSize:        req.PageSize,
	}

	rts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ResourceTypeResponse, len(rts))
	for i, rt := range rts {
		items[i] = NewResponse(rt)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.InvalidInput(c, "invalid request body", err)
		return
	}

	rt, err := h.service.Create(c.Request.Context(), resourcetype.CreateRequest{
		Name:        body.Name,
		Slug:        body.Slug,
		Icon:        body.Icon,
		Description: body.Description,
		Ordering:    body.Ordering,
		IsActive:    body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(rt))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	rt, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !rt.IsActive && !auth.IsSystemAdmin(c) {
		response.Error(c, resourcetype.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, NewResponse(rt))
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

	rt, err := h.service.Update(c.Request.Context(), uri.ID, resourcetype.UpdateRequest{
		Name:        body.Name,
		Slug:        body.Slug,
		Icon:        body.Icon,
		Description: body.Description,
		Ordering:    body.Ordering,
		IsActive:    body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(rt))
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
