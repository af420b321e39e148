package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	u.ID = "user-1"
	return args.Error(0)
}

func (m *MockRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	return m.Called(ctx, id, t).Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*User), args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

// plainHasher stores passwords with a prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(hash, plain string) error {
	if hash != "hashed:"+plain {
		return errors.New("mismatch")
	}
	return nil
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and hashes password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByEmail", ctx, "alice@example.com").Return(nil, ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "alice@example.com" && u.PasswordHash == "hashed:password1" && u.IsActive
		})).Return(nil)

		u, err := NewService(repo, plainHasher{}).Register(ctx, "  Alice@Example.com ", "password1", " Alice ")
		require.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
		require.NotNil(t, u.DisplayName)
		assert.Equal(t, "Alice", *u.DisplayName)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByEmail", ctx, "alice@example.com").Return(&User{ID: "x"}, nil)

		_, err := NewService(repo, plainHasher{}).Register(ctx, "alice@example.com", "password1", "")
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := NewService(new(MockRepository), plainHasher{}).Register(ctx, "a@example.com", "short", "")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := NewService(new(MockRepository), plainHasher{}).Register(ctx, "   ", "password1", "")
		assert.ErrorIs(t, err, ErrEmailRequired)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	active := &User{ID: "u1", Email: "a@example.com", PasswordHash: "hashed:secret-pw", IsActive: true}
	inactive := &User{ID: "u2", Email: "b@example.com", PasswordHash: "hashed:secret-pw"}

	repo := new(MockRepository)
	repo.On("GetByEmail", ctx, "a@example.com").Return(active, nil)
	repo.On("GetByEmail", ctx, "b@example.com").Return(inactive, nil)
	repo.On("GetByEmail", ctx, "c@example.com").Return(nil, ErrNotFound)
	repo.On("UpdateLastLogin", ctx, "u1", mock.AnythingOfType("time.Time")).Return(nil)
	svc := NewService(repo, plainHasher{})

	u, err := svc.Login(ctx, "A@example.com", "secret-pw")
	require.NoError(t, err)
	assert.NotNil(t, u.LastLoginAt)

	_, err = svc.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "b@example.com", "secret-pw")
	assert.ErrorIs(t, err, ErrInactiveUser)

	_, err = svc.Login(ctx, "c@example.com", "secret-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_CanManageBookings(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("GetByID", ctx, "admin").Return(&User{ID: "admin", IsActive: true, IsSystemAdmin: true}, nil)
	repo.On("GetByID", ctx, "member").Return(&User{ID: "member", IsActive: true}, nil)
	repo.On("GetByID", ctx, "retired-admin").Return(&User{ID: "retired-admin", IsSystemAdmin: true}, nil)
	repo.On("GetByID", ctx, "ghost").Return(nil, ErrNotFound)
	repo.On("GetByID", ctx, "broken").Return(nil, errors.New("db down"))
	svc := NewService(repo, plainHasher{})

	tests := []struct {
		userID  string
		want    bool
		wantErr bool
	}{
		{userID: "admin", want: true},
		{userID: "member", want: false},
		{userID: "retired-admin", want: false},
		{userID: "ghost", want: false},
		{userID: "broken", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			got, err := svc.CanManageBookings(ctx, tt.userID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
