// internal/models/daterange.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// apiDateLayout is the wire format for busy-range endpoints. Endpoints are
// always UTC midnight, so the literal Z suffix is safe.
const apiDateLayout = "2006-01-02T15:04:05.000Z"

// DateRange is an inclusive calendar interval with both endpoints normalized
// to UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: r.Start.UTC().Format(apiDateLayout),
		End:   r.End.UTC().Format(apiDateLayout),
	})
}

// RangePayload is the request body for replacing the busy-range collection.
// Pointer fields let validation distinguish "missing" from "empty".
type RangePayload struct {
	Ranges *[]RawDateRange `json:"ranges"`
}

type RawDateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// ValidationError names the condition that failed, suitable for a 400 body.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04",
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// startOfDay discards the time-of-day component, keeping the calendar date in UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseRangePayload validates the full submission before any mutation.
// Validation is all-or-nothing: the first invalid entry rejects the whole
// payload with a ValidationError naming the entry and condition.
func (p RangePayload) ParseRangePayload() ([]DateRange, error) {
	if p.Ranges == nil {
		return nil, ValidationError{Reason: `expected an object with a "ranges" array`}
	}

	ranges := make([]DateRange, 0, len(*p.Ranges))
	for i, raw := range *p.Ranges {
		if raw.Start == nil || raw.End == nil {
			return nil, ValidationError{Reason: fmt.Sprintf("range %d is missing a start or end date", i)}
		}

		start, err := parseDate(*raw.Start)
		if err != nil {
			return nil, ValidationError{Reason: fmt.Sprintf("range %d has an invalid start date", i)}
		}
		end, err := parseDate(*raw.End)
		if err != nil {
			return nil, ValidationError{Reason: fmt.Sprintf("range %d has an invalid end date", i)}
		}

		start = startOfDay(start)
		end = startOfDay(end)
		if start.After(end) {
			return nil, ValidationError{Reason: fmt.Sprintf("range %d starts after it ends", i)}
		}

		ranges = append(ranges, DateRange{Start: start, End: end})
	}

	return ranges, nil
}
