package resourcetype

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, apperror.KindNotFound, "resource type not found")
	ErrNameRequired    = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "name is required").WithField("name")
	ErrInvalidSlug     = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "slug must contain lowercase letters, digits and single dashes").WithField("slug")
	ErrInvalidOrdering = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "ordering must not be negative").WithField("ordering")
	ErrSlugTaken       = apperror.New(http.StatusConflict, apperror.KindConflict, "slug already used").WithField("slug")
	ErrTypeInUse       = apperror.New(http.StatusConflict, apperror.KindConflict, "resource type is referenced by resources")
)

// ResourceType is a category of bookable resources (e.g. meeting room, projector).
type ResourceType struct {
	ID          string
	Name        string
	Slug        string
	Icon        string
	Description string
	IsActive    bool
	Ordering    int
	CreatedAt   time.Time
}

// Filter defines parameters for listing resource types.
type Filter struct {
	IncludeInactive bool
	Page            int
	PageSize        int
}
