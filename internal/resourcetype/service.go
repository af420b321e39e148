package resourcetype

import (
	"context"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CreateRequest struct {
	Name        string
	Slug        string
	Icon        string
	Description string
	Ordering    int
	IsActive    *bool
}

type UpdateRequest struct {
	Name        *string
	Slug        *string
	Icon        *string
	Description *string
	Ordering    *int
	IsActive    *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*ResourceType, error)
	GetByID(ctx context.Context, id string) (*ResourceType, error)
	List(ctx context.Context, filter Filter) ([]*ResourceType, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ResourceType, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(rt *ResourceType) error {
	if strings.TrimSpace(rt.Name) == "" {
		return ErrNameRequired
	}
	if !slugPattern.MatchString(rt.Slug) {
		return ErrInvalidSlug
	}
	if rt.Ordering < 0 {
		return ErrInvalidOrdering
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*ResourceType, error) {
	rt := &ResourceType{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.TrimSpace(req.Slug),
		Icon:        req.Icon,
		Description: req.Description,
		Ordering:    req.Ordering,
		IsActive:    true,
	}
	if req.IsActive != nil {
		rt.IsActive = *req.IsActive
	}
	if err := validate(rt); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*ResourceType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*ResourceType, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*ResourceType, error) {
	rt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rt.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != rt.Slug {
		// Clients filter resources by slug, so it is frozen once resources use the type.
		n, err := s.repo.CountResources(ctx, id)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrTypeInUse.WithField("slug")
		}
		rt.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.Icon != nil {
		rt.Icon = *req.Icon
	}
	if req.Description != nil {
		rt.Description = *req.Description
	}
	if req.Ordering != nil {
		rt.Ordering = *req.Ordering
	}
	if req.IsActive != nil {
		rt.IsActive = *req.IsActive
	}
	if err := validate(rt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountResources(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrTypeInUse
	}
	return s.repo.Delete(ctx, id)
}
