package resource

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TimeOfDay is a wall-clock offset from local midnight, in [0, 24h).
type TimeOfDay time.Duration

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return OfDay(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// MustTimeOfDay is ParseTimeOfDay for literals.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// OfDay returns the wall-clock time of t in t's own location.
func OfDay(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond()))
}

// On returns the instant at this wall-clock time on day's calendar date in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	dur := time.Duration(t)
	h := int(dur / time.Hour)
	m := int(dur % time.Hour / time.Minute)
	s := int(dur % time.Minute / time.Second)
	ns := int(dur % time.Second)
	return time.Date(y, mo, d, h, m, s, ns, day.Location())
}

func (t TimeOfDay) String() string {
	dur := time.Duration(t)
	h := int(dur / time.Hour)
	m := int(dur % time.Hour / time.Minute)
	s := int(dur % time.Minute / time.Second)
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t TimeOfDay) pgTime() pgtype.Time {
	return pgtype.Time{Microseconds: int64(time.Duration(t) / time.Microsecond), Valid: true}
}

func timeOfDayFromPg(v pgtype.Time) TimeOfDay {
	return TimeOfDay(time.Duration(v.Microseconds) * time.Microsecond)
}
