package timeslot_test

import (
	"testing"
	"time"

	"classbook/shared/timeslot"
	"classbook/shared/timezone"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		date        string
		start       string
		end         string
		expectError bool
	}{
		{
			name:  "valid slot",
			date:  "2025-03-14",
			start: "09:00",
			end:   "10:30",
		},
		{
			name:        "invalid date format",
			date:        "14/03/2025",
			start:       "09:00",
			end:         "10:30",
			expectError: true,
		},
		{
			name:        "invalid start time",
			date:        "2025-03-14",
			start:       "9am",
			end:         "10:30",
			expectError: true,
		},
		{
			name:        "invalid end time",
			date:        "2025-03-14",
			start:       "09:00",
			end:         "25:00",
			expectError: true,
		},
		{
			name:        "end before start",
			date:        "2025-03-14",
			start:       "10:30",
			end:         "09:00",
			expectError: true,
		},
		{
			name:        "zero-length slot",
			date:        "2025-03-14",
			start:       "09:00",
			end:         "09:00",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := timeslot.Parse(tt.date, tt.start, tt.end)

			if tt.expectError {
				if err == nil {
					t.Error("expected parse error, got nil")
				}

				return
			}

			if err != nil {
				t.Fatalf("expected no parse error, got: %v", err)
			}

			if !slot.Start.Before(slot.End) {
				t.Errorf("expected start %v to be before end %v", slot.Start, slot.End)
			}

			if timeslot.FormatDate(slot.Date) != tt.date {
				t.Errorf("expected date %s, got %s", tt.date, timeslot.FormatDate(slot.Date))
			}

			if timeslot.FormatClock(slot.Start) != tt.start {
				t.Errorf("expected start %s, got %s", tt.start, timeslot.FormatClock(slot.Start))
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, timezone.GetLocation())
	at := func(hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, timezone.GetLocation())
	}

	tests := []struct {
		name     string
		s1, e1   time.Time
		s2, e2   time.Time
		expected bool
	}{
		{
			name: "identical intervals",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(9, 0), e2: at(10, 0),
			expected: true,
		},
		{
			name: "partial overlap at the front",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(9, 30), e2: at(11, 0),
			expected: true,
		},
		{
			name: "one interval contains the other",
			s1:   at(9, 0), e1: at(12, 0),
			s2: at(10, 0), e2: at(11, 0),
			expected: true,
		},
		{
			name: "back to back is not an overlap",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(10, 0), e2: at(11, 0),
			expected: false,
		},
		{
			name: "back to back the other way",
			s1:   at(10, 0), e1: at(11, 0),
			s2: at(9, 0), e2: at(10, 0),
			expected: false,
		},
		{
			name: "fully disjoint",
			s1:   at(9, 0), e1: at(10, 0),
			s2: at(14, 0), e2: at(15, 0),
			expected: false,
		},
		{
			name: "one minute of overlap",
			s1:   at(9, 0), e1: at(10, 1),
			s2: at(10, 0), e2: at(11, 0),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timeslot.Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.expected {
				t.Errorf("expected Overlaps to be %v, got %v", tt.expected, got)
			}

			// The overlap relation is symmetric.
			if got := timeslot.Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.expected {
				t.Errorf("expected symmetric Overlaps to be %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestOverlapsSlot(t *testing.T) {
	friday, err := timeslot.Parse("2025-03-14", "09:00", "10:00")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	fridayLater, err := timeslot.Parse("2025-03-14", "09:30", "10:30")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	saturday, err := timeslot.Parse("2025-03-15", "09:00", "10:00")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if !timeslot.OverlapsSlot(friday, fridayLater) {
		t.Error("expected same-day overlapping slots to overlap")
	}

	if timeslot.OverlapsSlot(friday, saturday) {
		t.Error("expected slots on different days to never overlap")
	}
}

func TestInPastAndLapsed(t *testing.T) {
	slot, err := timeslot.Parse("2025-03-14", "09:00", "10:00")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	before := slot.Start.Add(-time.Hour)
	during := slot.Start.Add(30 * time.Minute)
	after := slot.End.Add(time.Minute)

	if timeslot.InPast(slot, before) {
		t.Error("expected slot not to be in the past before its start")
	}

	if !timeslot.InPast(slot, during) {
		t.Error("expected slot to be in the past once its start has elapsed")
	}

	if timeslot.Lapsed(slot, during) {
		t.Error("expected slot not to be lapsed while still running")
	}

	if !timeslot.Lapsed(slot, after) {
		t.Error("expected slot to be lapsed after its end")
	}
}

func TestFromInstants(t *testing.T) {
	parsed, err := timeslot.Parse("2025-03-14", "09:00", "10:00")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	rebuilt := timeslot.FromInstants(parsed.Date, parsed.Start, parsed.End)

	if !rebuilt.Start.Equal(parsed.Start) || !rebuilt.End.Equal(parsed.End) {
		t.Errorf("expected rebuilt slot to equal parsed slot, got %+v vs %+v", rebuilt, parsed)
	}
}
