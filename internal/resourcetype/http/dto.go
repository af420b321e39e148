package http

import (
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-booking-backend/internal/resourcetype"
)

// ListResourceTypesRequest defines query parameters for listing resource types.
type ListResourceTypesRequest struct {
	request.ListParams
	IncludeInactive bool `form:"include_inactive"`
}

type ResourceTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	Ordering    int       `json:"ordering"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewResponse(rt *resourcetype.ResourceType) ResourceTypeResponse {
	return ResourceTypeResponse{
		ID:          rt.ID,
		Name:        rt.Name,
		Slug:        rt.Slug,
		Icon:        rt.Icon,
		Description: rt.Description,
		IsActive:    rt.IsActive,
		Ordering:    rt.Ordering,
		CreatedAt:   rt.CreatedAt,
	}
}

type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"required,min=1,max=50"`
	Icon        string `json:"icon" binding:"max=50"`
	Description string `json:"description"`
	Ordering    int    `json:"ordering" binding:"min=0"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,min=1,max=50"`
	Icon        *string `json:"icon" binding:"omitempty,max=50"`
	Description *string `json:"description"`
	Ordering    *int    `json:"ordering" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}
