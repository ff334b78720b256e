package timerange

import (
	"fmt"
	"strings"
	"time"
)

// Layouts tried in order against each half of a range. Input is lowercased
// before parsing, so the meridiem layouts use the lowercase "pm" token.
// The unpadded minute layouts accept hand-typed values such as "9:5 am".
var layouts = []string{
	"3:04 pm",
	"3:04pm",
	"15:04",
	"3:4 pm",
	"3:4pm",
	"15:4",
}

// separators are rewritten to a single "-" before splitting.
// "â€“" is an en-dash that was decoded with the wrong charset upstream.
var separators = []string{
	" to ",
	" - ",
	" â€“ ",
	" – ",
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// On places the wall-clock time on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	if t.Hour != o.Hour {
		return t.Hour < o.Hour
	}
	return t.Minute < o.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeRange is a parsed duty slot. Start is not required to precede End.
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overnight reports whether the range ends on the following day.
func (r TimeRange) Overnight() bool {
	return r.End.Before(r.Start)
}

// StartOn returns the start instant on the given day.
func (r TimeRange) StartOn(day time.Time) time.Time {
	return r.Start.On(day)
}

// EndOn returns the end instant for a range starting on day. Overnight
// ranges end on the next calendar day.
func (r TimeRange) EndOn(day time.Time) time.Time {
	end := r.End.On(day)
	if r.Overnight() {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Parse reads hand-written ranges such as "03:30 PM to 07:00 PM",
// "11:30 AM-01:30 PM" or "08:00-14:00". It returns ok=false for anything
// it cannot interpret with confidence.
func Parse(text string) (TimeRange, bool) {
	cleaned := strings.TrimSpace(strings.ToLower(text))
	for _, sep := range separators {
		cleaned = strings.ReplaceAll(cleaned, sep, "-")
	}

	parts := strings.Split(cleaned, "-")
	if len(parts) != 2 {
		return TimeRange{}, false
	}

	start, ok := parseClock(parts[0])
	if !ok {
		return TimeRange{}, false
	}
	end, ok := parseClock(parts[1])
	if !ok {
		return TimeRange{}, false
	}

	return TimeRange{Start: start, End: end}, true
}

func parseClock(s string) (TimeOfDay, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, true
		}
	}
	return TimeOfDay{}, false
}
