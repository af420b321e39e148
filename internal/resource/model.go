package resource

import (
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, apperror.KindNotFound, "resource not found")
	ErrNameRequired        = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "name is required").WithField("name")
	ErrInvalidResourceType = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "invalid resource_type_id").WithField("resource_type_id")
	ErrInvalidCapacity     = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "capacity must be positive").WithField("capacity")
	ErrInvalidWorkHours    = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "work_hours_start must be before work_hours_end").WithField("work_hours_end")
	ErrInvalidDurations    = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "booking minutes must satisfy 0 < min <= max").WithField("max_booking_minutes")
	ErrResourceInUse       = apperror.New(http.StatusConflict, apperror.KindConflict, "resource has bookings; deactivate it instead")
)

const (
	DefaultMinBookingMinutes = 30
	DefaultMaxBookingMinutes = 480
)

var (
	DefaultWorkStart = MustTimeOfDay("09:00")
	DefaultWorkEnd   = MustTimeOfDay("21:00")
)

// Resource is a bookable unit such as a meeting room, projector or desk.
type Resource struct {
	ID          string
	TypeID      string
	TypeName    string
	TypeSlug    string
	Name        string
	Description string
	Location    string
	Capacity    *int
	Amenities   []string
	ImageFileID *string
	IsActive    bool

	// Bookings must start and end inside [WorkStart, WorkEnd] on one local day.
	WorkStart         TimeOfDay
	WorkEnd           TimeOfDay
	MinBookingMinutes int
	MaxBookingMinutes int

	CreatedAt time.Time
}

// Validate checks the static constraints every stored resource satisfies.
func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if r.WorkStart < 0 || r.WorkEnd > TimeOfDay(24*time.Hour) || r.WorkStart >= r.WorkEnd {
		return ErrInvalidWorkHours
	}
	if r.MinBookingMinutes <= 0 || r.MinBookingMinutes > r.MaxBookingMinutes {
		return ErrInvalidDurations
	}
	return nil
}

// WorkWindow returns the work-hours window on the calendar date of day, in loc.
func (r *Resource) WorkWindow(day time.Time, loc *time.Location) (time.Time, time.Time) {
	local := day.In(loc)
	return r.WorkStart.On(local), r.WorkEnd.On(local)
}

// DurationAllowed reports whether d is within [MinBookingMinutes, MaxBookingMinutes].
func (r *Resource) DurationAllowed(d time.Duration) bool {
	return d >= time.Duration(r.MinBookingMinutes)*time.Minute &&
		d <= time.Duration(r.MaxBookingMinutes)*time.Minute
}

// Filter defines parameters for listing resources.
type Filter struct {
	TypeID          string
	TypeSlug        string
	MinCapacity     *int
	Search          string
	IncludeInactive bool
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}
