package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
	"github.com/nekogravitycat/resource-booking-backend/internal/booking"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/response"
)

var errForeignUserFilter = apperror.New(http.StatusForbidden, apperror.KindForbidden, "only admins may list another user's bookings").WithField("user_id")

type Handler struct {
	service booking.Service
	loc     *time.Location
	now     func() time.Time
}

// NewHandler builds the booking handler. Dates in query strings are local dates in loc.
func NewHandler(service booking.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		service: service,
		loc:     loc,
		now:     time.Now,
	}
}

// localDate parses a YYYY-MM-DD string as midnight in the handler's location.
func (h *Handler) localDate(field, v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, v, h.loc)
	if err != nil {
		return time.Time{}, apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "expected YYYY-MM-DD").WithField(field)
	}
	return t, nil
}

// List returns bookings matching the filters. Anyone may browse the schedule;
// filtering by another user's id is reserved for admins.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidInput(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	if req.UserID != "" && req.UserID != auth.GetUserID(c) && !auth.IsSystemAdmin(c) {
		response.Error(c, errForeignUserFilter)
		return
	}

	filter := booking.Filter{
		UserID:         req.UserID,
		ResourceID:     req.ResourceID,
		ResourceTypeID: req.ResourceTypeID,
		Page:           req.Page,
		PageSize:       req.PageSize,
		SortBy:         req.SortBy,
		SortOrder:      strings.ToUpper(req.SortOrder),
	}
	switch req.Status {
	case "":
		filter.Statuses = []booking.Status{booking.StatusConfirmed}
	case "all":
	default:
		filter.Statuses = []booking.Status{booking.Status(req.Status)}
	}

	if req.DateFrom != "" {
		from, err := h.localDate("date_from", req.DateFrom)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.StartsFrom = &from
	}
	if req.DateTo != "" {
		to, err := h.localDate("date_to", req.DateTo)
		if err != nil {
			response.Error(c, err)
			return
		}
		end := to.AddDate(0, 0, 1)
		filter.StartsBefore = &end
	}
	if req.Upcoming {
		now := h.now()
		filter.EndsAfter = &now
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), req.Page, req.PageSize, total))
}

// My lists the caller's upcoming confirmed bookings, or their full history with all=true.
func (h *Handler) My(c *gin.Context) {
	var req MyBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidInput(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := booking.Filter{
		UserID:    auth.GetUserID(c),
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    "starts_at",
		SortOrder: "DESC",
	}
	if !req.All {
		now := h.now()
		filter.Statuses = []booking.Status{booking.StatusConfirmed}
		filter.EndsAfter = &now
		filter.SortOrder = "ASC"
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Create books a resource for the caller, optionally as a recurring series.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.InvalidInput(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		ResourceID:     body.ResourceID,
		UserID:         auth.GetUserID(c),
		Title:          body.Title,
		Description:    body.Description,
		StartsAt:       body.StartsAt,
		EndsAt:         body.EndsAt,
		RecurrenceRule: body.RecurrenceRule,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Extend(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	var body ExtendBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.InvalidInput(c, "invalid request body", err)
		return
	}

	b, err := h.service.Extend(c.Request.Context(), uri.ID, auth.GetUserID(c), body.EndsAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Calendar returns confirmed bookings in a date range as JSON, or as an
// iCalendar feed with format=ics.
func (h *Handler) Calendar(c *gin.Context) {
	var req CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidInput(c, "invalid query parameters", err)
		return
	}

	from, err := h.localDate("start", req.Start)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := h.localDate("end", req.End)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, err := h.service.Calendar(c.Request.Context(), booking.CalendarQuery{
		From:           from,
		To:             to,
		ResourceID:     req.ResourceID,
		ResourceTypeID: req.ResourceTypeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.Format == "ics" {
		c.Header("Content-Disposition", `attachment; filename="bookings.ics"`)
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(booking.RenderICS(bookings, h.now())))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": newBookingResponses(bookings)})
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewStatsResponse(st))
}

// Availability returns the free/busy timeline of a resource on one date.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.InvalidInput(c, "invalid request", err)
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidInput(c, "invalid query parameters", err)
		return
	}

	date, err := h.localDate("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	av, err := h.service.GetAvailability(c.Request.Context(), uri.ID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, av)
}
