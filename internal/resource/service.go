package resource

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/resource-booking-backend/internal/resourcetype"
)

type CreateRequest struct {
	TypeID            string
	Name              string
	Description       string
	Location          string
	Capacity          *int
	Amenities         []string
	IsActive          *bool
	WorkStart         *TimeOfDay
	WorkEnd           *TimeOfDay
	MinBookingMinutes *int
	MaxBookingMinutes *int
}

type UpdateRequest struct {
	TypeID            *string
	Name              *string
	Description       *string
	Location          *string
	Capacity          *int
	ClearCapacity     bool
	Amenities         []string
	IsActive          *bool
	WorkStart         *TimeOfDay
	WorkEnd           *TimeOfDay
	MinBookingMinutes *int
	MaxBookingMinutes *int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	// GetBookable hides inactive resources behind ErrNotFound.
	GetBookable(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error)
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id, fileID string) (*Resource, error)
}

type service struct {
	repo      Repository
	rtService resourcetype.Service
}

func NewService(repo Repository, rtService resourcetype.Service) Service {
	return &service{
		repo:      repo,
		rtService: rtService,
	}
}

func (s *service) checkType(ctx context.Context, typeID string) error {
	if typeID == "" {
		return ErrInvalidResourceType
	}
	if _, err := s.rtService.GetByID(ctx, typeID); err != nil {
		if errors.Is(err, resourcetype.ErrNotFound) {
			return ErrInvalidResourceType
		}
		return err
	}
	return nil
}

func cleanAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	res := &Resource{
		TypeID:            req.TypeID,
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Location:          req.Location,
		Capacity:          req.Capacity,
		Amenities:         cleanAmenities(req.Amenities),
		IsActive:          true,
		WorkStart:         DefaultWorkStart,
		WorkEnd:           DefaultWorkEnd,
		MinBookingMinutes: DefaultMinBookingMinutes,
		MaxBookingMinutes: DefaultMaxBookingMinutes,
	}
	if req.IsActive != nil {
		res.IsActive = *req.IsActive
	}
	if req.WorkStart != nil {
		res.WorkStart = *req.WorkStart
	}
	if req.WorkEnd != nil {
		res.WorkEnd = *req.WorkEnd
	}
	if req.MinBookingMinutes != nil {
		res.MinBookingMinutes = *req.MinBookingMinutes
	}
	if req.MaxBookingMinutes != nil {
		res.MaxBookingMinutes = *req.MaxBookingMinutes
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkType(ctx, res.TypeID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	// Re-read to pick up the joined type name and slug.
	return s.repo.GetByID(ctx, res.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBookable(ctx context.Context, id string) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.IsActive {
		return nil, ErrNotFound
	}
	return res, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TypeID != nil && *req.TypeID != res.TypeID {
		if err := s.checkType(ctx, *req.TypeID); err != nil {
			return nil, err
		}
		res.TypeID = *req.TypeID
	}
	if req.Name != nil {
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.Location != nil {
		res.Location = *req.Location
	}
	if req.ClearCapacity {
		res.Capacity = nil
	} else if req.Capacity != nil {
		res.Capacity = req.Capacity
	}
	if req.Amenities != nil {
		res.Amenities = cleanAmenities(req.Amenities)
	}
	if req.IsActive != nil {
		res.IsActive = *req.IsActive
	}
	if req.WorkStart != nil {
		res.WorkStart = *req.WorkStart
	}
	if req.WorkEnd != nil {
		res.WorkEnd = *req.WorkEnd
	}
	if req.MinBookingMinutes != nil {
		res.MinBookingMinutes = *req.MinBookingMinutes
	}
	if req.MaxBookingMinutes != nil {
		res.MaxBookingMinutes = *req.MaxBookingMinutes
	}

	// Existing bookings are not re-validated against tightened constraints.
	if err := res.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SetImage(ctx context.Context, id, fileID string) (*Resource, error) {
	if err := s.repo.SetImage(ctx, id, fileID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
