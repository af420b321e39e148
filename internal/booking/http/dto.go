package http

import (
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/booking"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	resHttp "github.com/nekogravitycat/resource-booking-backend/internal/resource/http"
	userHttp "github.com/nekogravitycat/resource-booking-backend/internal/user/http"
)

const dateLayout = time.DateOnly

// ListBookingsRequest defines query parameters for listing bookings.
// Status defaults to confirmed; "all" disables the status filter.
type ListBookingsRequest struct {
	request.ListParams
	ResourceID     string `form:"resource_id" binding:"omitempty,uuid"`
	ResourceTypeID string `form:"resource_type_id" binding:"omitempty,uuid"`
	UserID         string `form:"user_id" binding:"omitempty,uuid"`
	Status         string `form:"status" binding:"omitempty,oneof=confirmed cancelled completed all"`
	DateFrom       string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo         string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Upcoming       bool   `form:"upcoming"`
	SortBy         string `form:"sort_by" binding:"omitempty,oneof=starts_at ends_at created_at title"`
	SortOrder      string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// MyBookingsRequest lists the caller's bookings; upcoming only unless all=true.
type MyBookingsRequest struct {
	request.ListParams
	All bool `form:"all"`
}

type CalendarRequest struct {
	Start          string `form:"start" binding:"required,datetime=2006-01-02"`
	End            string `form:"end" binding:"required,datetime=2006-01-02"`
	ResourceID     string `form:"resource_id" binding:"omitempty,uuid"`
	ResourceTypeID string `form:"resource_type_id" binding:"omitempty,uuid"`
	Format         string `form:"format" binding:"omitempty,oneof=json ics"`
}

type AvailabilityRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

type CreateBookingRequest struct {
	ResourceID     string    `json:"resource_id" binding:"required,uuid"`
	Title          string    `json:"title" binding:"required,max=200"`
	Description    string    `json:"description" binding:"max=2000"`
	StartsAt       time.Time `json:"starts_at" binding:"required"`
	EndsAt         time.Time `json:"ends_at" binding:"required"`
	RecurrenceRule string    `json:"recurrence_rule" binding:"max=500"`
}

type ExtendBookingRequest struct {
	EndsAt time.Time `json:"ends_at" binding:"required"`
}

type BookingResponse struct {
	ID              string              `json:"id"`
	Resource        resHttp.ResourceTag `json:"resource"`
	User            userHttp.UserTag    `json:"user"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	StartsAt        time.Time           `json:"starts_at"`
	EndsAt          time.Time           `json:"ends_at"`
	DurationMinutes int                 `json:"duration_minutes"`
	Status          string              `json:"status"`
	RecurrenceRule  *string             `json:"recurrence_rule,omitempty"`
	ParentBookingID *string             `json:"parent_booking_id,omitempty"`
	Recurrences     []BookingResponse   `json:"recurrences,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID,
		Resource:        resHttp.ResourceTag{ID: b.ResourceID, Name: b.ResourceName},
		User:            userHttp.UserTag{ID: b.UserID, Name: b.UserName},
		Title:           b.Title,
		Description:     b.Description,
		StartsAt:        b.StartsAt,
		EndsAt:          b.EndsAt,
		DurationMinutes: int(b.EndsAt.Sub(b.StartsAt) / time.Minute),
		Status:          string(b.Status),
		RecurrenceRule:  b.RecurrenceRule,
		ParentBookingID: b.ParentBookingID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	for _, r := range b.Recurrences {
		resp.Recurrences = append(resp.Recurrences, NewBookingResponse(r))
	}
	return resp
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}

type TypeCountResponse struct {
	ResourceTypeID   string `json:"resource_type_id"`
	ResourceTypeName string `json:"resource_type_name"`
	Count            int    `json:"count"`
}

type StatsResponse struct {
	Total          int                 `json:"total"`
	Today          int                 `json:"today"`
	ThisWeek       int                 `json:"this_week"`
	ThisMonth      int                 `json:"this_month"`
	MyUpcoming     int                 `json:"my_upcoming"`
	MyTotal        int                 `json:"my_total"`
	ByResourceType []TypeCountResponse `json:"by_resource_type"`
}

func NewStatsResponse(st *booking.Stats) StatsResponse {
	resp := StatsResponse{
		Total:          st.Total,
		Today:          st.Today,
		ThisWeek:       st.ThisWeek,
		ThisMonth:      st.ThisMonth,
		MyUpcoming:     st.MyUpcoming,
		MyTotal:        st.MyTotal,
		ByResourceType: make([]TypeCountResponse, len(st.ByTypeMonth)),
	}
	for i, tc := range st.ByTypeMonth {
		resp.ByResourceType[i] = TypeCountResponse{
			ResourceTypeID:   tc.ResourceTypeID,
			ResourceTypeName: tc.ResourceTypeName,
			Count:            tc.Count,
		}
	}
	return resp
}
