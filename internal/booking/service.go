package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/audit"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
)

// Catalog resolves resources that may currently be booked.
type Catalog interface {
	// GetBookable returns resource.ErrNotFound for unknown and inactive resources.
	GetBookable(ctx context.Context, id string) (*resource.Resource, error)
}

// Authorizer decides who may act on bookings they do not own.
type Authorizer interface {
	CanManageBookings(ctx context.Context, userID string) (bool, error)
}

type Config struct {
	// Location defines local days and work hours.
	Location        *time.Location
	MaxOccurrences  int
	AvailabilityTTL time.Duration
}

type CreateRequest struct {
	ResourceID     string
	UserID         string
	Title          string
	Description    string
	StartsAt       time.Time
	EndsAt         time.Time
	RecurrenceRule string
}

// CalendarQuery selects confirmed bookings starting on local dates From..To inclusive.
type CalendarQuery struct {
	From           time.Time
	To             time.Time
	ResourceID     string
	ResourceTypeID string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Cancel(ctx context.Context, id, actorID string) (*Booking, error)
	Extend(ctx context.Context, id, actorID string, newEndsAt time.Time) (*Booking, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Calendar(ctx context.Context, q CalendarQuery) ([]*Booking, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
	// GetAvailability uses only the calendar date of date.
	GetAvailability(ctx context.Context, resourceID string, date time.Time) (*Availability, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	authz    Authorizer
	recorder audit.Recorder
	cache    cache.Cache
	cfg      Config
	now      func() time.Time
}

func NewService(
	repo Repository,
	catalog Catalog,
	authz Authorizer,
	recorder audit.Recorder,
	c cache.Cache,
	cfg Config,
) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxOccurrences < 1 {
		cfg.MaxOccurrences = 1
	}
	return &service{
		repo:     repo,
		catalog:  catalog,
		authz:    authz,
		recorder: recorder,
		cache:    c,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *service) bookable(ctx context.Context, resourceID string) (*resource.Resource, error) {
	res, err := s.catalog.GetBookable(ctx, resourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	res, err := s.bookable(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}

	starts := []time.Time{req.StartsAt}
	var rule *string
	if r := strings.TrimSpace(req.RecurrenceRule); r != "" {
		starts, err = expandRecurrence(r, req.StartsAt, s.cfg.Location, s.cfg.MaxOccurrences)
		if err != nil {
			return nil, err
		}
		rule = &r
	}
	length := req.EndsAt.Sub(req.StartsAt)

	var created []*Booking
	err = s.repo.WithResourceLock(ctx, res.ID, func(tx TxRepository) error {
		for i, start := range starts {
			iv := Interval{Start: start, End: start.Add(length)}
			if err := s.validateAndCheckConflict(ctx, tx, res, iv, "", true); err != nil {
				return occurrenceError(err, i)
			}

			b := &Booking{
				ResourceID:     res.ID,
				ResourceName:   res.Name,
				ResourceTypeID: res.TypeID,
				UserID:         req.UserID,
				Title:          title,
				Description:    req.Description,
				StartsAt:       iv.Start,
				EndsAt:         iv.End,
				Status:         StatusConfirmed,
			}
			if i == 0 {
				b.RecurrenceRule = rule
			} else {
				parentID := created[0].ID
				b.ParentBookingID = &parentID
			}
			if err := tx.Create(ctx, b); err != nil {
				return occurrenceError(err, i)
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, created...)

	parent := created[0]
	parent.Recurrences = created[1:]
	details := map[string]any{
		"resource_id": parent.ResourceID,
		"starts_at":   parent.StartsAt,
		"ends_at":     parent.EndsAt,
	}
	if len(created) > 1 {
		details["occurrences"] = len(created)
	}
	s.recorder.Record(ctx, audit.Entry{
		Action:     "booking.created",
		EntityType: "booking",
		EntityID:   parent.ID,
		ActorID:    req.UserID,
		Details:    details,
	})

	return parent, nil
}

// authorize lets the requester and booking managers through.
func (s *service) authorize(ctx context.Context, b *Booking, actorID string) error {
	if b.UserID == actorID {
		return nil
	}
	ok, err := s.authz.CanManageBookings(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, id, actorID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, b, actorID); err != nil {
		return nil, err
	}

	err = s.repo.WithResourceLock(ctx, b.ResourceID, func(tx TxRepository) error {
		cur, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != StatusConfirmed {
			return ErrAlreadyCancelled
		}
		if cur.HasEnded(s.now()) {
			return ErrBookingEnded
		}
		if err := tx.UpdateStatus(ctx, id, StatusCancelled); err != nil {
			return err
		}
		cur.Status = StatusCancelled
		b = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, b)
	s.recorder.Record(ctx, audit.Entry{
		Action:     "booking.cancelled",
		EntityType: "booking",
		EntityID:   b.ID,
		ActorID:    actorID,
	})
	return b, nil
}

func (s *service) Extend(ctx context.Context, id, actorID string, newEndsAt time.Time) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, b, actorID); err != nil {
		return nil, err
	}

	res, err := s.bookable(ctx, b.ResourceID)
	if err != nil {
		return nil, err
	}

	var previousEnd time.Time
	err = s.repo.WithResourceLock(ctx, b.ResourceID, func(tx TxRepository) error {
		cur, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case cur.Status == StatusCancelled:
			return ErrAlreadyCancelled
		case cur.Status == StatusCompleted, cur.HasEnded(s.now()):
			return ErrBookingEnded
		}
		if !newEndsAt.After(cur.EndsAt) {
			return ErrInvalidExtension
		}

		iv := Interval{Start: cur.StartsAt, End: newEndsAt}
		if err := s.validateAndCheckConflict(ctx, tx, res, iv, cur.ID, false); err != nil {
			return err
		}
		if err := tx.UpdateEndsAt(ctx, id, newEndsAt); err != nil {
			return err
		}
		previousEnd = cur.EndsAt
		cur.EndsAt = newEndsAt
		b = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, b)
	s.recorder.Record(ctx, audit.Entry{
		Action:     "booking.extended",
		EntityType: "booking",
		EntityID:   b.ID,
		ActorID:    actorID,
		Details: map[string]any{
			"previous_ends_at": previousEnd,
			"ends_at":          b.EndsAt,
		},
	})
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Calendar(ctx context.Context, q CalendarQuery) ([]*Booking, error) {
	from := s.localDay(q.From)
	to := s.localDay(q.To)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	end := to.AddDate(0, 0, 1)

	return s.repo.ListAll(ctx, Filter{
		ResourceID:     q.ResourceID,
		ResourceTypeID: q.ResourceTypeID,
		Statuses:       []Status{StatusConfirmed},
		StartsFrom:     &from,
		StartsBefore:   &end,
	})
}

func (s *service) Stats(ctx context.Context, userID string) (*Stats, error) {
	now := s.now().In(s.cfg.Location)
	today := s.localDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	// Weeks start on Monday.
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.cfg.Location)
	monthEnd := monthStart.AddDate(0, 1, 0)

	confirmed := []Status{StatusConfirmed}
	window := func(from, to time.Time) Filter {
		return Filter{Statuses: confirmed, StartsFrom: &from, StartsBefore: &to}
	}

	var (
		st  Stats
		err error
	)
	counts := []struct {
		dst    *int
		filter Filter
	}{
		{&st.Total, Filter{Statuses: confirmed}},
		{&st.Today, window(today, tomorrow)},
		{&st.ThisWeek, window(weekStart, weekEnd)},
		{&st.ThisMonth, window(monthStart, monthEnd)},
		{&st.MyUpcoming, Filter{UserID: userID, Statuses: confirmed, EndsAfter: &now}},
		{&st.MyTotal, Filter{UserID: userID}},
	}
	for _, c := range counts {
		if *c.dst, err = s.repo.Count(ctx, c.filter); err != nil {
			return nil, err
		}
	}

	if st.ByTypeMonth, err = s.repo.CountByResourceType(ctx, monthStart, monthEnd); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *service) GetAvailability(ctx context.Context, resourceID string, date time.Time) (*Availability, error) {
	res, err := s.bookable(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	day := s.localDay(date)
	key := availabilityKey(res.ID, day)

	var cached Availability
	switch err := s.cache.Get(ctx, key, &cached); {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		log.Warn().Err(err).Str("key", key).Msg("availability cache read failed")
	}

	dayStart, dayEnd := res.WorkWindow(day, s.cfg.Location)
	bookings, err := s.repo.ListAll(ctx, Filter{
		ResourceID:   res.ID,
		Statuses:     []Status{StatusConfirmed},
		StartsBefore: &dayEnd,
		EndsAfter:    &dayStart,
	})
	if err != nil {
		return nil, err
	}

	av := &Availability{
		ResourceID: res.ID,
		Date:       day.Format(time.DateOnly),
		WorkStart:  dayStart,
		WorkEnd:    dayEnd,
		Slots:      BuildTimeline(dayStart, dayEnd, bookings),
	}
	if err := s.cache.Set(ctx, key, av, s.cfg.AvailabilityTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("availability cache write failed")
	}
	return av, nil
}

// localDay returns midnight of t's calendar date in the configured location.
func (s *service) localDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.cfg.Location)
}

// invalidate drops cached timelines for every local date the bookings touch.
func (s *service) invalidate(ctx context.Context, bookings ...*Booking) {
	seen := make(map[string]struct{}, len(bookings))
	keys := make([]string, 0, len(bookings))
	for _, b := range bookings {
		key := availabilityKey(b.ResourceID, b.StartsAt.In(s.cfg.Location))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("availability cache invalidation failed")
	}
}
