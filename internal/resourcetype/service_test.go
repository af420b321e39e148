package resourcetype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, rt *ResourceType) error {
	args := m.Called(ctx, rt)
	rt.ID = "rt-1"
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*ResourceType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ResourceType), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]*ResourceType, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*ResourceType), args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, rt *ResourceType) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CountResources(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*resourcetype.ResourceType")).Return(nil)

		rt, err := NewService(repo).Create(ctx, CreateRequest{Name: " Meeting Room ", Slug: "meeting-room", Ordering: 1})
		require.NoError(t, err)
		assert.Equal(t, "rt-1", rt.ID)
		assert.Equal(t, "Meeting Room", rt.Name)
		assert.True(t, rt.IsActive)
		repo.AssertExpectations(t)
	})

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{name: "empty name", req: CreateRequest{Name: " ", Slug: "room"}, want: ErrNameRequired},
		{name: "uppercase slug", req: CreateRequest{Name: "Room", Slug: "Room"}, want: ErrInvalidSlug},
		{name: "double dash slug", req: CreateRequest{Name: "Room", Slug: "a--b"}, want: ErrInvalidSlug},
		{name: "negative ordering", req: CreateRequest{Name: "Room", Slug: "room", Ordering: -1}, want: ErrInvalidOrdering},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			_, err := NewService(repo).Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_UpdateSlugFrozenWhenInUse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("GetByID", ctx, "rt-1").Return(&ResourceType{ID: "rt-1", Name: "Room", Slug: "room"}, nil)
	repo.On("CountResources", ctx, "rt-1").Return(3, nil)

	slug := "meeting-room"
	_, err := NewService(repo).Update(ctx, "rt-1", UpdateRequest{Slug: &slug})

	assert.ErrorIs(t, err, ErrTypeInUse)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_UpdateSameSlugSkipsUsageCheck(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("GetByID", ctx, "rt-1").Return(&ResourceType{ID: "rt-1", Name: "Room", Slug: "room"}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*resourcetype.ResourceType")).Return(nil)

	slug, name := "room", "Rooms"
	rt, err := NewService(repo).Update(ctx, "rt-1", UpdateRequest{Slug: &slug, Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Rooms", rt.Name)
	repo.AssertNotCalled(t, "CountResources", mock.Anything, mock.Anything)
}

func TestService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("GetByID", ctx, "rt-1").Return(&ResourceType{ID: "rt-1"}, nil)
	repo.On("CountResources", ctx, "rt-1").Return(1, nil)

	err := NewService(repo).Delete(ctx, "rt-1")

	assert.ErrorIs(t, err, ErrTypeInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
