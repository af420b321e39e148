package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/audit"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
)

// memRepo keeps bookings in memory and serializes writes per resource the way
// the advisory lock does. A failed callback rolls back everything it wrote.
type memRepo struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	locks    map[string]*sync.Mutex
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings: make(map[string]*Booking),
		locks:    make(map[string]*sync.Mutex),
	}
}

func clone(b *Booking) *Booking {
	cp := *b
	cp.Recurrences = nil
	return &cp
}

// seed stores b directly, bypassing validation.
func (r *memRepo) seed(b *Booking) *Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		r.seq++
		b.ID = fmt.Sprintf("bk-%d", r.seq)
	}
	if b.Status == "" {
		b.Status = StatusConfirmed
	}
	r.bookings[b.ID] = clone(b)
	return b
}

func (r *memRepo) snapshot(id string) *Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil
	}
	return clone(b)
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	if b := r.snapshot(id); b != nil {
		return b, nil
	}
	return nil, ErrNotFound
}

func matches(b *Booking, f Filter) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.ResourceID != "" && b.ResourceID != f.ResourceID {
		return false
	}
	if f.ResourceTypeID != "" && b.ResourceTypeID != f.ResourceTypeID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
		return false
	}
	if f.StartsFrom != nil && b.StartsAt.Before(*f.StartsFrom) {
		return false
	}
	if f.StartsBefore != nil && !b.StartsAt.Before(*f.StartsBefore) {
		return false
	}
	if f.EndsAfter != nil && !b.EndsAt.After(*f.EndsAfter) {
		return false
	}
	return true
}

func (r *memRepo) ListAll(_ context.Context, f Filter) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if matches(b, f) {
			out = append(out, clone(b))
		}
	}
	slices.SortFunc(out, func(a, b *Booking) int { return a.StartsAt.Compare(b.StartsAt) })
	return out, nil
}

func (r *memRepo) List(ctx context.Context, f Filter) ([]*Booking, int, error) {
	all, _ := r.ListAll(ctx, f)
	return all, len(all), nil
}

func (r *memRepo) Count(ctx context.Context, f Filter) (int, error) {
	all, _ := r.ListAll(ctx, f)
	return len(all), nil
}

func (r *memRepo) CountByResourceType(ctx context.Context, from, to time.Time) ([]TypeCount, error) {
	all, _ := r.ListAll(ctx, Filter{Statuses: []Status{StatusConfirmed}, StartsFrom: &from, StartsBefore: &to})
	counts := []TypeCount{}
	index := map[string]int{}
	for _, b := range all {
		i, ok := index[b.ResourceTypeID]
		if !ok {
			i = len(counts)
			index[b.ResourceTypeID] = i
			counts = append(counts, TypeCount{ResourceTypeID: b.ResourceTypeID})
		}
		counts[i].Count++
	}
	return counts, nil
}

func (r *memRepo) CompletePast(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed && b.EndsAt.Before(now) {
			b.Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

func (r *memRepo) resourceLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

func (r *memRepo) WithResourceLock(_ context.Context, resourceID string, fn func(tx TxRepository) error) error {
	l := r.resourceLock(resourceID)
	l.Lock()
	defer l.Unlock()

	tx := &memTx{repo: r, resourceID: resourceID, lock: l, before: make(map[string]*Booking)}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memTx struct {
	repo       *memRepo
	resourceID string
	lock       *sync.Mutex
	// before holds the pre-transaction state of every touched row; nil means created.
	before map[string]*Booking
}

func (t *memTx) touch(id string) {
	if _, ok := t.before[id]; ok {
		return
	}
	t.before[id] = t.repo.snapshot(id)
}

func (t *memTx) rollback() {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for id, b := range t.before {
		if b == nil {
			delete(t.repo.bookings, id)
		} else {
			t.repo.bookings[id] = b
		}
	}
}

func (t *memTx) GetByID(ctx context.Context, id string) (*Booking, error) {
	return t.repo.GetByID(ctx, id)
}

func (t *memTx) HasConflict(_ context.Context, resourceID string, iv Interval, excludeID string) (bool, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, b := range t.repo.bookings {
		if b.ResourceID == resourceID && b.Status == StatusConfirmed && b.ID != excludeID && b.Interval().Overlaps(iv) {
			return true, nil
		}
	}
	return false, nil
}

// Create stores b without any overlap check of its own, so conflicts are only
// caught by the service while it holds the resource lock.
func (t *memTx) Create(_ context.Context, b *Booking) error {
	if b.ResourceID != t.resourceID {
		return fmt.Errorf("create for %s inside lock of %s", b.ResourceID, t.resourceID)
	}
	if t.lock.TryLock() {
		t.lock.Unlock()
		return fmt.Errorf("create for %s without holding its lock", b.ResourceID)
	}
	t.repo.mu.Lock()
	t.repo.seq++
	b.ID = fmt.Sprintf("bk-%d", t.repo.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	t.repo.mu.Unlock()

	t.before[b.ID] = nil
	t.repo.mu.Lock()
	t.repo.bookings[b.ID] = clone(b)
	t.repo.mu.Unlock()
	return nil
}

func (t *memTx) UpdateEndsAt(_ context.Context, id string, endsAt time.Time) error {
	t.touch(id)
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	b, ok := t.repo.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.EndsAt = endsAt
	return nil
}

func (t *memTx) UpdateStatus(_ context.Context, id string, status Status) error {
	t.touch(id)
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	b, ok := t.repo.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

type staticCatalog map[string]*resource.Resource

func (c staticCatalog) GetBookable(_ context.Context, id string) (*resource.Resource, error) {
	res, ok := c[id]
	if !ok || !res.IsActive {
		return nil, resource.ErrNotFound
	}
	return res, nil
}

type staticAuthz map[string]bool

func (a staticAuthz) CanManageBookings(_ context.Context, userID string) (bool, error) {
	return a[userID], nil
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAuditor) Record(_ context.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, value)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
