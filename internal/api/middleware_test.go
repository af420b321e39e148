package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
)

func newAdminTestRouter(userID string, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/admin",
		func(c *gin.Context) {
			if userID != "" {
				auth.SetIdentity(c, userID, "", admin)
			}
			c.Next()
		},
		RequireSystemAdmin(),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return r
}

func TestRequireSystemAdmin(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		admin  bool
		want   int
	}{
		{"anonymous", "", false, http.StatusUnauthorized},
		{"regular user", "u1", false, http.StatusForbidden},
		{"admin", "u1", true, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newAdminTestRouter(tc.userID, tc.admin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := newAdminTestRouter("u1", true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36, "generated ids are uuids")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(requestIDHeader))
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitOrigins(""))
}
