package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/notification"
)

// reminderTolerance is the half-width of the reminder window around now+lead.
const reminderTolerance = 5 * time.Minute

// Notifier stores a notification unless an equivalent one was already sent.
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) (bool, error)
}

// Sweeper runs the periodic batch jobs. Every job is safe to repeat and never
// takes a resource lock.
type Sweeper struct {
	repo     Repository
	notifier Notifier
	loc      *time.Location
	lead     time.Duration
}

func NewSweeper(repo Repository, notifier Notifier, loc *time.Location, reminderLead time.Duration) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{
		repo:     repo,
		notifier: notifier,
		loc:      loc,
		lead:     reminderLead,
	}
}

// CompletePast marks confirmed bookings that ended before now as completed.
func (s *Sweeper) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.CompletePast(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("completed past bookings")
	}
	return n, nil
}

// SendReminders notifies requesters of bookings starting in (now+lead-5m, now+lead+5m].
// It returns how many reminders were newly sent.
func (s *Sweeper) SendReminders(ctx context.Context, now time.Time) (int, error) {
	lo := now.Add(s.lead - reminderTolerance)
	hi := now.Add(s.lead + reminderTolerance)
	// Inclusive upper bound at microsecond storage precision.
	before := hi.Add(time.Microsecond)

	bookings, err := s.repo.ListAll(ctx, Filter{
		Statuses:     []Status{StatusConfirmed},
		StartsFrom:   &lo,
		StartsBefore: &before,
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range bookings {
		if !b.StartsAt.After(lo) || b.StartsAt.After(hi) {
			continue
		}

		bookingID := b.ID
		created, err := s.notifier.Notify(ctx, &notification.Notification{
			UserID:    b.UserID,
			Kind:      notification.KindBookingReminder,
			DedupKey:  b.ID,
			Title:     "Upcoming booking",
			Message:   fmt.Sprintf("%s at %s starts at %s", b.Title, b.ResourceName, b.StartsAt.In(s.loc).Format("15:04")),
			Link:      "/bookings/" + b.ID,
			BookingID: &bookingID,
		})
		if err != nil {
			log.Error().Err(err).Str("booking_id", b.ID).Msg("failed to send booking reminder")
			continue
		}
		if created {
			sent++
		}
	}
	return sent, nil
}

// SendDailySummary sends each user with confirmed bookings on today's local
// date one summary listing them.
func (s *Sweeper) SendDailySummary(ctx context.Context, today time.Time) (int, error) {
	y, m, d := today.In(s.loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	bookings, err := s.repo.ListAll(ctx, Filter{
		Statuses:     []Status{StatusConfirmed},
		StartsFrom:   &dayStart,
		StartsBefore: &dayEnd,
	})
	if err != nil {
		return 0, err
	}

	var users []string
	byUser := make(map[string][]*Booking)
	for _, b := range bookings {
		if _, ok := byUser[b.UserID]; !ok {
			users = append(users, b.UserID)
		}
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	date := dayStart.Format(time.DateOnly)
	sent := 0
	for _, userID := range users {
		items := byUser[userID]
		lines := make([]string, len(items))
		for i, b := range items {
			lines[i] = fmt.Sprintf("%s-%s %s (%s)",
				b.StartsAt.In(s.loc).Format("15:04"), b.EndsAt.In(s.loc).Format("15:04"), b.Title, b.ResourceName)
		}

		created, err := s.notifier.Notify(ctx, &notification.Notification{
			UserID:   userID,
			Kind:     notification.KindDailySummary,
			DedupKey: userID + ":" + date,
			Title:    fmt.Sprintf("Your bookings for %s", date),
			Message:  strings.Join(lines, "\n"),
			Link:     "/bookings/my",
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to send daily summary")
			continue
		}
		if created {
			sent++
		}
	}
	return sent, nil
}
