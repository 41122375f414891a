package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func payloadFromJSON(t *testing.T, body string) RangePayload {
	t.Helper()

	var payload RangePayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	return payload
}

func TestParseRangePayloadNormalizesToMidnight(t *testing.T) {
	payload := payloadFromJSON(t, `{"ranges":[{"start":"2025-06-01T14:30:00Z","end":"2025-06-05"}]}`)

	ranges, err := payload.ParseRangePayload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}

	wantStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	if !ranges[0].Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", ranges[0].Start, wantStart)
	}
	if !ranges[0].End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", ranges[0].End, wantEnd)
	}
}

func TestParseRangePayloadAllowsSameDayRange(t *testing.T) {
	payload := payloadFromJSON(t, `{"ranges":[{"start":"2025-06-01T23:59:00Z","end":"2025-06-01"}]}`)

	if _, err := payload.ParseRangePayload(); err != nil {
		t.Fatalf("same-day range should be valid after normalization: %v", err)
	}
}

func TestParseRangePayloadMissingRangesField(t *testing.T) {
	payload := payloadFromJSON(t, `{"other":[]}`)

	_, err := payload.ParseRangePayload()
	if err == nil {
		t.Fatal("expected error for missing ranges field")
	}
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestParseRangePayloadEmptyArrayIsValid(t *testing.T) {
	payload := payloadFromJSON(t, `{"ranges":[]}`)

	ranges, err := payload.ParseRangePayload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %d", len(ranges))
	}
}

func TestParseRangePayloadRejectsWholeSubmission(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing endpoint",
			body: `{"ranges":[{"start":"2025-06-01","end":"2025-06-05"},{"start":"2025-06-10"}]}`,
			want: "range 1",
		},
		{
			name: "unparseable date",
			body: `{"ranges":[{"start":"not-a-date","end":"2025-06-05"}]}`,
			want: "invalid start",
		},
		{
			name: "start after end",
			body: `{"ranges":[{"start":"2025-06-01","end":"2025-06-05"},{"start":"2025-06-10","end":"2025-06-08"}]}`,
			want: "starts after",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := payloadFromJSON(t, tc.body)
			ranges, err := payload.ParseRangePayload()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if ranges != nil {
				t.Errorf("expected no parsed ranges on failure, got %v", ranges)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should name the failing condition %q", err.Error(), tc.want)
			}
		})
	}
}

func TestDateRangeMarshalJSON(t *testing.T) {
	r := DateRange{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"start":"2025-06-01T00:00:00.000Z","end":"2025-06-05T00:00:00.000Z"}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}
