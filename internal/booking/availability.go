package booking

import (
	"fmt"
	"slices"
	"time"
)

// Slot is one piece of a day's timeline. Occupied slots carry the booking that fills them.
type Slot struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Available    bool      `json:"available"`
	BookingID    string    `json:"booking_id,omitempty"`
	BookingTitle string    `json:"booking_title,omitempty"`
}

// Availability is the timeline of one resource on one local date.
type Availability struct {
	ResourceID string    `json:"resource_id"`
	Date       string    `json:"date"`
	WorkStart  time.Time `json:"work_start"`
	WorkEnd    time.Time `json:"work_end"`
	Slots      []Slot    `json:"slots"`
}

// BuildTimeline partitions [dayStart, dayEnd) into alternating free and occupied
// slots. Bookings are clipped to the window; slots are contiguous, non-overlapping
// and cover the window exactly.
func BuildTimeline(dayStart, dayEnd time.Time, bookings []*Booking) []Slot {
	sorted := slices.Clone(bookings)
	slices.SortFunc(sorted, func(a, b *Booking) int {
		return a.StartsAt.Compare(b.StartsAt)
	})

	slots := []Slot{}
	cursor := dayStart
	for _, b := range sorted {
		start, end := b.StartsAt, b.EndsAt
		if start.Before(cursor) {
			start = cursor
		}
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !start.Before(end) {
			continue
		}

		if cursor.Before(start) {
			slots = append(slots, Slot{Start: cursor, End: start, Available: true})
		}
		slots = append(slots, Slot{
			Start:        start,
			End:          end,
			BookingID:    b.ID,
			BookingTitle: b.Title,
		})
		cursor = end
	}

	if cursor.Before(dayEnd) {
		slots = append(slots, Slot{Start: cursor, End: dayEnd, Available: true})
	}
	return slots
}

func availabilityKey(resourceID string, day time.Time) string {
	return fmt.Sprintf("availability:%s:%s", resourceID, day.Format(time.DateOnly))
}
