// Package hours models the weekly operating hours of a provider. Every
// operation takes a week and returns a new one; the input is never mutated.
package hours

import (
	"fmt"
	"time"

	"github.com/janisto/provider-profile/internal/profile"
)

// Field selects which end of a day's hours is being set.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

const clockLayout = "15:04"

// SetTime sets the start or end time of an open day. Closed days and unknown
// days or fields are left untouched. An empty value clears the time.
func SetTime(week profile.Week, day profile.Weekday, field Field, value string) profile.Week {
	out := week.Clone()
	if !day.Valid() {
		return out
	}
	h := out[day]
	if h.IsClosed {
		return out
	}
	var v *string
	if value != "" {
		v = profile.StringPtr(value)
	}
	switch field {
	case FieldStart:
		h.Start = v
	case FieldEnd:
		h.End = v
	default:
		return out
	}
	out[day] = h
	return out
}

// ToggleClosed flips a day between open and closed. Closing a day clears its
// times in the same step so stale times can never be resubmitted.
func ToggleClosed(week profile.Week, day profile.Weekday) profile.Week {
	out := week.Clone()
	if !day.Valid() {
		return out
	}
	h := out[day]
	h.IsClosed = !h.IsClosed
	if h.IsClosed {
		h.Start = nil
		h.End = nil
	}
	out[day] = h
	return out
}

// Normalize returns a complete week where every closed day carries no times.
func Normalize(week profile.Week) profile.Week {
	out := week.Clone()
	for _, d := range profile.Weekdays {
		h := out[d]
		if h.IsClosed {
			h.Start = nil
			h.End = nil
			out[d] = h
		}
	}
	return out
}

// Validate checks every open day with at least one time set: both times must
// be present, formatted HH:MM, and end must be after start. Keys are the
// weekday names.
func Validate(week profile.Week) profile.Errors {
	errs := profile.Errors{}
	for _, d := range profile.Weekdays {
		h, ok := week[d]
		if !ok || h.IsClosed || (h.Start == nil && h.End == nil) {
			continue
		}
		if msg := checkDay(h); msg != "" {
			errs[string(d)] = msg
		}
	}
	return errs
}

func checkDay(h profile.DayHours) string {
	if h.Start == nil || h.End == nil {
		return "Set both opening and closing times"
	}
	start, err := time.Parse(clockLayout, *h.Start)
	if err != nil {
		return fmt.Sprintf("Invalid opening time %q", *h.Start)
	}
	end, err := time.Parse(clockLayout, *h.End)
	if err != nil {
		return fmt.Sprintf("Invalid closing time %q", *h.End)
	}
	if !end.After(start) {
		return "Closing time must be after opening time"
	}
	return ""
}
