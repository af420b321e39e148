package booking

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// expandRecurrence returns the start of every occurrence of rule, beginning
// with start itself, capped at limit entries. Start counts towards COUNT.
func expandRecurrence(rule string, start time.Time, loc *time.Location, limit int) ([]time.Time, error) {
	rule = strings.TrimSpace(rule)
	if upper := strings.ToUpper(rule); strings.HasPrefix(upper, "RRULE:") {
		rule = rule[len("RRULE:"):]
	}
	if rule == "" || strings.Contains(rule, "\n") {
		return nil, ErrInvalidRecurrence
	}

	opt, err := rrule.StrToROptionInLocation(rule, loc)
	if err != nil {
		return nil, ErrInvalidRecurrence
	}
	opt.Dtstart = start.In(loc)
	if opt.Count == 0 && opt.Until.IsZero() {
		opt.Count = limit
	}
	// COUNT includes start, whether or not start matches the rule.
	total := min(limit, opt.Count)
	if opt.Count == 0 {
		total = limit
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, ErrInvalidRecurrence
	}

	starts := []time.Time{start}
	next := r.Iterator()
	for len(starts) < total {
		t, ok := next()
		if !ok {
			break
		}
		// DTSTART is always the first instance even when the rule itself skips it.
		if !t.After(start) {
			continue
		}
		starts = append(starts, t)
	}
	return starts, nil
}
