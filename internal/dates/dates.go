// Package dates converts the human-readable date-time strings accepted by
// the proxy into the epoch-millisecond timestamps TrainerCentral expects.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layouts attempted, in order. ISO date-time first (a trailing Z means UTC),
// then date-only at local midnight, then the DD-MM-YYYY 12-hour form used by
// chat-agent callers. The non-UTC forms are interpreted in the process-local
// zone.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-2006 3:04PM",
}

// InvalidDateError reports an input that matched none of the accepted layouts.
type InvalidDateError struct {
	Input   string
	Layouts []string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected one of %s", e.Input, strings.Join(e.Layouts, ", "))
}

// Normalize parses text in one of the accepted formats and returns
// milliseconds since the Unix epoch.
func Normalize(text string) (int64, error) {
	s := strings.TrimSpace(text)
	for _, layout := range layouts {
		in := s
		if strings.Contains(layout, "PM") {
			// The meridiem marker is case-insensitive.
			in = strings.ToUpper(s)
		}
		t, err := time.ParseInLocation(layout, in, time.Local)
		if err != nil {
			continue
		}
		return t.UnixMilli(), nil
	}
	return 0, &InvalidDateError{Input: text, Layouts: layouts}
}
