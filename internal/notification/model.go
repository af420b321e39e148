package notification

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, apperror.KindNotFound, "notification not found")
)

type Kind string

const (
	KindBookingReminder Kind = "booking_reminder"
	KindDailySummary    Kind = "daily_summary"
)

// Notification is an in-app message. (Kind, DedupKey) is unique, so producers
// may retry without creating duplicates.
type Notification struct {
	ID        string
	UserID    string
	Kind      Kind
	DedupKey  string
	Title     string
	Message   string
	Link      string
	BookingID *string
	IsRead    bool
	CreatedAt time.Time
}

type Filter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
