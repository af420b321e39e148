package http

import (
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/file"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
)

type ListResourcesRequest struct {
	request.ListParams
	TypeID          string `form:"type_id" binding:"omitempty,uuid"`
	TypeSlug        string `form:"type_slug"`
	MinCapacity     *int   `form:"min_capacity" binding:"omitempty,min=1"`
	Search          string `form:"search" binding:"max=100"`
	IncludeInactive bool   `form:"include_inactive"`
	SortBy          string `form:"sort_by" binding:"omitempty,oneof=name created_at capacity"`
	SortOrder       string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ResourceTypeTag is the embedded summary of a resource's type.
type ResourceTypeTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ResourceTag is a brief representation of a resource used by other modules.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ResourceResponse struct {
	ID                string          `json:"id"`
	Type              ResourceTypeTag `json:"resource_type"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Location          string          `json:"location"`
	Capacity          *int            `json:"capacity"`
	Amenities         []string        `json:"amenities"`
	ImageURL          *string         `json:"image_url"`
	ThumbnailURL      *string         `json:"thumbnail_url"`
	IsActive          bool            `json:"is_active"`
	WorkHoursStart    string          `json:"work_hours_start"`
	WorkHoursEnd      string          `json:"work_hours_end"`
	MinBookingMinutes int             `json:"min_booking_minutes"`
	MaxBookingMinutes int             `json:"max_booking_minutes"`
	CreatedAt         time.Time       `json:"created_at"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	resp := ResourceResponse{
		ID:                r.ID,
		Type:              ResourceTypeTag{ID: r.TypeID, Name: r.TypeName, Slug: r.TypeSlug},
		Name:              r.Name,
		Description:       r.Description,
		Location:          r.Location,
		Capacity:          r.Capacity,
		Amenities:         r.Amenities,
		IsActive:          r.IsActive,
		WorkHoursStart:    r.WorkStart.String(),
		WorkHoursEnd:      r.WorkEnd.String(),
		MinBookingMinutes: r.MinBookingMinutes,
		MaxBookingMinutes: r.MaxBookingMinutes,
		CreatedAt:         r.CreatedAt,
	}
	if resp.Amenities == nil {
		resp.Amenities = []string{}
	}
	if r.ImageFileID != nil {
		img, thumb := file.FileURL(*r.ImageFileID), file.ThumbnailURL(*r.ImageFileID)
		resp.ImageURL, resp.ThumbnailURL = &img, &thumb
	}
	return resp
}

type CreateRequest struct {
	ResourceTypeID    string   `json:"resource_type_id" binding:"required,uuid"`
	Name              string   `json:"name" binding:"required,max=100"`
	Description       string   `json:"description"`
	Location          string   `json:"location" binding:"max=200"`
	Capacity          *int     `json:"capacity" binding:"omitempty,min=1"`
	Amenities         []string `json:"amenities" binding:"omitempty,dive,max=50"`
	IsActive          *bool    `json:"is_active"`
	WorkHoursStart    *string  `json:"work_hours_start"`
	WorkHoursEnd      *string  `json:"work_hours_end"`
	MinBookingMinutes *int     `json:"min_booking_minutes" binding:"omitempty,min=1"`
	MaxBookingMinutes *int     `json:"max_booking_minutes" binding:"omitempty,min=1"`
}

type UpdateRequest struct {
	ResourceTypeID    *string  `json:"resource_type_id" binding:"omitempty,uuid"`
	Name              *string  `json:"name" binding:"omitempty,max=100"`
	Description       *string  `json:"description"`
	Location          *string  `json:"location" binding:"omitempty,max=200"`
	Capacity          *int     `json:"capacity" binding:"omitempty,min=1"`
	ClearCapacity     bool     `json:"clear_capacity"`
	Amenities         []string `json:"amenities" binding:"omitempty,dive,max=50"`
	IsActive          *bool    `json:"is_active"`
	WorkHoursStart    *string  `json:"work_hours_start"`
	WorkHoursEnd      *string  `json:"work_hours_end"`
	MinBookingMinutes *int     `json:"min_booking_minutes" binding:"omitempty,min=1"`
	MaxBookingMinutes *int     `json:"max_booking_minutes" binding:"omitempty,min=1"`
}
