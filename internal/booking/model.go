package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, apperror.KindNotFound, "booking not found")
	ErrResourceNotFound    = apperror.New(http.StatusNotFound, apperror.KindNotFound, "resource not found").WithField("resource_id")
	ErrInvalidInterval     = apperror.New(http.StatusBadRequest, apperror.KindInvalidInterval, "starts_at must be before ends_at").WithField("ends_at")
	ErrPastBooking         = apperror.New(http.StatusBadRequest, apperror.KindPastBooking, "cannot book a time in the past").WithField("starts_at")
	ErrBookingEnded        = apperror.New(http.StatusConflict, apperror.KindPastBooking, "booking has already ended")
	ErrOutsideWorkHours    = apperror.New(http.StatusBadRequest, apperror.KindOutsideWorkHours, "booking must fit inside the resource's work hours")
	ErrDurationOutOfBounds = apperror.New(http.StatusBadRequest, apperror.KindDurationOutOfBounds, "booking duration is outside the resource's limits").WithField("ends_at")
	ErrSlotTaken           = apperror.New(http.StatusConflict, apperror.KindSlotTaken, "time slot already booked")
	ErrForbidden           = apperror.New(http.StatusForbidden, apperror.KindForbidden, "only the requester or a booking manager may change this booking")
	ErrAlreadyCancelled    = apperror.New(http.StatusConflict, apperror.KindAlreadyCancelled, "booking is not active")
	ErrInvalidExtension    = apperror.New(http.StatusBadRequest, apperror.KindInvalidExtension, "new end must be after the current end").WithField("ends_at")
	ErrInvalidRecurrence   = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "invalid recurrence rule").WithField("recurrence_rule")
	ErrTitleRequired       = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "title is required").WithField("title")
	ErrInvalidRange        = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "end date must not be before start date").WithField("end")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID             string
	ResourceID     string
	ResourceName   string
	ResourceTypeID string
	UserID         string
	UserName       string
	Title          string
	Description    string
	StartsAt       time.Time
	EndsAt         time.Time
	Status         Status
	RecurrenceRule *string

	// ParentBookingID links generated occurrences to the first booking of their series.
	ParentBookingID *string

	// Recurrences is only populated on the parent returned from Create.
	Recurrences []*Booking

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartsAt, End: b.EndsAt}
}

// HasEnded reports whether the booking's end lies before now.
func (b *Booking) HasEnded(now time.Time) bool {
	return b.EndsAt.Before(now)
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps treats intervals that only touch as disjoint.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Filter defines parameters for listing bookings. Time bounds are optional.
type Filter struct {
	UserID         string
	ResourceID     string
	ResourceTypeID string
	Statuses       []Status
	StartsFrom     *time.Time
	StartsBefore   *time.Time
	EndsAfter      *time.Time
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// Stats summarises confirmed bookings for the dashboard.
type Stats struct {
	Total       int
	Today       int
	ThisWeek    int
	ThisMonth   int
	MyUpcoming  int
	MyTotal     int
	ByTypeMonth []TypeCount
}

type TypeCount struct {
	ResourceTypeID   string
	ResourceTypeName string
	Count            int
}
