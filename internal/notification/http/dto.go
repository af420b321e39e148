package http

import (
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/notification"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
)

type ListNotificationsRequest struct {
	request.ListParams
	UnreadOnly bool `form:"unread"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	BookingID *string   `json:"booking_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		BookingID: n.BookingID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
