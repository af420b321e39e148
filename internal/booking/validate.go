package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
)

// validateAndCheckConflict is the only place a candidate interval is admitted.
// Checks run in a fixed order and the first failure wins.
func (s *service) validateAndCheckConflict(
	ctx context.Context,
	checker ConflictChecker,
	res *resource.Resource,
	iv Interval,
	excludeID string,
	requireFuture bool,
) error {
	if !iv.Valid() {
		return ErrInvalidInterval
	}
	if requireFuture && iv.Start.Before(s.now()) {
		return ErrPastBooking
	}
	if err := checkWorkHours(res, iv, s.cfg.Location); err != nil {
		return err
	}
	if !res.DurationAllowed(iv.Duration()) {
		return ErrDurationOutOfBounds
	}

	taken, err := checker.HasConflict(ctx, res.ID, iv, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}

// checkWorkHours requires both ends inside the work window of the start's local day.
func checkWorkHours(res *resource.Resource, iv Interval, loc *time.Location) error {
	dayStart, dayEnd := res.WorkWindow(iv.Start, loc)
	if iv.Start.Before(dayStart) || !iv.Start.Before(dayEnd) {
		return ErrOutsideWorkHours.WithField("starts_at")
	}
	if iv.End.After(dayEnd) {
		return ErrOutsideWorkHours.WithField("ends_at")
	}
	return nil
}

// occurrenceError points a validation failure at the series member that caused it.
func occurrenceError(err error, index int) error {
	if index == 0 {
		return err
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	field := fmt.Sprintf("occurrences[%d]", index)
	if appErr.Field != "" {
		field += "." + appErr.Field
	}
	return appErr.WithField(field)
}
