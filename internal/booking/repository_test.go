package booking

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/resource-booking-backend/internal/db"
)

type pgSeed struct {
	userID     string
	resourceID string
}

// newPgFixture migrates the database named by TEST_DB_DSN, empties it and seeds
// one user and one resource. The test is skipped without a database.
func newPgFixture(t *testing.T) (*pgxpool.Pool, pgSeed) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}
	require.NoError(t, db.Migrate(dsn, db.ActionUp))

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE notifications, audit_log, bookings, resources, files, resource_types, users CASCADE`)
	require.NoError(t, err)

	var seed pgSeed
	var typeID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, display_name) VALUES ('alice@example.com', 'x', 'Alice') RETURNING id`,
	).Scan(&seed.userID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO resource_types (name, slug) VALUES ('Meeting room', 'meeting-room') RETURNING id`,
	).Scan(&typeID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO resources (resource_type_id, name) VALUES ($1, 'Room 1') RETURNING id`, typeID,
	).Scan(&seed.resourceID))

	return pool, seed
}

func pgBooking(seed pgSeed, start, end time.Time) *Booking {
	return &Booking{
		ResourceID: seed.resourceID,
		UserID:     seed.userID,
		Title:      "Sync",
		StartsAt:   start,
		EndsAt:     end,
		Status:     StatusConfirmed,
	}
}

func TestPgxRepository_CreateAndConflict(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	b := pgBooking(seed, base, base.Add(time.Hour))
	require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
		return tx.Create(ctx, b)
	}))
	require.NotEmpty(t, b.ID)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room 1", got.ResourceName)
	assert.Equal(t, "Alice", got.UserName)
	assert.True(t, base.Equal(got.StartsAt))

	cases := []struct {
		name      string
		iv        Interval
		excludeID string
		want      bool
	}{
		{"overlapping", Interval{base.Add(30 * time.Minute), base.Add(90 * time.Minute)}, "", true},
		{"touching end", Interval{base.Add(time.Hour), base.Add(2 * time.Hour)}, "", false},
		{"touching start", Interval{base.Add(-time.Hour), base}, "", false},
		{"excluding itself", Interval{base, base.Add(2 * time.Hour)}, b.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got bool
			require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
				var err error
				got, err = tx.HasConflict(ctx, seed.resourceID, tc.iv, tc.excludeID)
				return err
			}))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPgxRepository_ExclusionConstraintIsBackstop(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
		return tx.Create(ctx, pgBooking(seed, base, base.Add(time.Hour)))
	}))

	err := repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
		return tx.Create(ctx, pgBooking(seed, base.Add(30*time.Minute), base.Add(2*time.Hour)))
	})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Cancelled bookings no longer occupy the slot.
	cancelled := pgBooking(seed, base.Add(2*time.Hour), base.Add(3*time.Hour))
	cancelled.Status = StatusCancelled
	require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
		return tx.Create(ctx, cancelled)
	}))
	require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
		return tx.Create(ctx, pgBooking(seed, base.Add(2*time.Hour), base.Add(3*time.Hour)))
	}))
}

func TestPgxRepository_UnknownResource(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	missing := "00000000-0000-4000-8000-000000000000"
	b := pgBooking(seed, base, base.Add(time.Hour))
	b.ResourceID = missing

	err := repo.WithResourceLock(ctx, missing, func(tx TxRepository) error {
		return tx.Create(ctx, b)
	})
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestPgxRepository_RollbackOnError(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	err := repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
		if err := tx.Create(ctx, pgBooking(seed, base, base.Add(time.Hour))); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := repo.Count(ctx, Filter{ResourceID: seed.resourceID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPgxRepository_LockSerializesWriters(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		taken   int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
				iv := Interval{Start: base, End: base.Add(time.Hour)}
				conflict, err := tx.HasConflict(ctx, seed.resourceID, iv, "")
				if err != nil {
					return err
				}
				if conflict {
					return ErrSlotTaken
				}
				return tx.Create(ctx, pgBooking(seed, iv.Start, iv.End))
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrSlotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, taken)
}

func TestPgxRepository_CompletePastAndFilters(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()
	now := time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC)

	for _, h := range []int{8, 10, 13} {
		start := time.Date(2030, 1, 7, h, 0, 0, 0, time.UTC)
		require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
			return tx.Create(ctx, pgBooking(seed, start, start.Add(time.Hour)))
		}))
	}

	n, err := repo.CompletePast(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	upcoming, err := repo.ListAll(ctx, Filter{Statuses: []Status{StatusConfirmed}, EndsAfter: &now})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 13, upcoming[0].StartsAt.UTC().Hour())

	items, total, err := repo.List(ctx, Filter{UserID: seed.userID, Page: 1, PageSize: 2, SortBy: "starts_at", SortOrder: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, StatusCompleted, items[0].Status)

	counts, err := repo.CountByResourceType(ctx, now.Add(-24*time.Hour), now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count, "only confirmed bookings are counted")
}

func TestPgxRepository_CountByResourceTypeListsIdleTypes(t *testing.T) {
	pool, seed := newPgFixture(t)
	repo := NewPgxRepository(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO resource_types (name, slug, ordering) VALUES ('Desk', 'desk', 1)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO resource_types (name, slug, is_active) VALUES ('Archived', 'archived', false)`)
	require.NoError(t, err)

	month := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, start := range []time.Time{month.Add(10 * time.Hour), month.AddDate(0, 0, 1).Add(10 * time.Hour)} {
		b := pgBooking(seed, start, start.Add(time.Hour))
		require.NoError(t, repo.WithResourceLock(ctx, seed.resourceID, func(tx TxRepository) error {
			return tx.Create(ctx, b)
		}))
	}

	counts, err := repo.CountByResourceType(ctx, month, month.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "Meeting room", counts[0].ResourceTypeName)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "Desk", counts[1].ResourceTypeName)
	assert.Equal(t, 0, counts[1].Count)
}
