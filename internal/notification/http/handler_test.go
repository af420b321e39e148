package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
	"github.com/nekogravitycat/resource-booking-backend/internal/notification"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/response"
)

const (
	callerID       = "6f1d2c3b-0000-4000-8000-00000000a11c"
	notificationID = "c0ffee00-0000-4000-8000-0000000000aa"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Notify(ctx context.Context, n *notification.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) List(ctx context.Context, filter notification.Filter) ([]*notification.Notification, int, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]*notification.Notification)
	return items, args.Int(1), args.Error(2)
}

func (m *MockService) MarkRead(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func newTestRouter(svc notification.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	identity := func(c *gin.Context) {
		auth.SetIdentity(c, callerID, "caller@example.com", false)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), identity)
	return r
}

func TestHandler_ListOwnNotifications(t *testing.T) {
	svc := new(MockService)
	bookingID := "c0ffee00-0000-4000-8000-000000000001"
	svc.On("List", mock.Anything, notification.Filter{UserID: callerID, UnreadOnly: true, Page: 1, PageSize: 20}).
		Return([]*notification.Notification{{
			ID:        notificationID,
			UserID:    callerID,
			Kind:      notification.KindBookingReminder,
			Title:     "Upcoming booking",
			BookingID: &bookingID,
		}}, 1, nil).Once()

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/notifications?unread=true", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page response.PageResponse[NotificationResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "booking_reminder", page.Items[0].Kind)
	require.NotNil(t, page.Items[0].BookingID)
	assert.Equal(t, bookingID, *page.Items[0].BookingID)
	svc.AssertExpectations(t)
}

func TestHandler_MarkRead(t *testing.T) {
	svc := new(MockService)
	svc.On("MarkRead", mock.Anything, notificationID, callerID).Return(nil).Once()
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/notifications/"+notificationID+"/read", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	missing := "00000000-0000-4000-8000-000000000000"
	svc.On("MarkRead", mock.Anything, missing, callerID).Return(notification.ErrNotFound).Once()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/notifications/"+missing+"/read", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/notifications/not-a-uuid/read", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
