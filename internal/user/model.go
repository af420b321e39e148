package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, apperror.KindNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, apperror.KindConflict, "email already used").WithField("email")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, apperror.KindUnauthorized, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "email is required").WithField("email")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "password is too short").WithField("password")
)

// User represents a user in the system.
type User struct {
	ID            string // UUID
	Email         string
	PasswordHash  string
	DisplayName   *string
	CreatedAt     time.Time
	LastLoginAt   *time.Time
	IsActive      bool
	IsSystemAdmin bool
}

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email       string
	DisplayName string
	IsActive    *bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
