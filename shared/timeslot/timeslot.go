// Package timeslot centralizes calendar-day and wall-clock parsing plus the
// half-open interval overlap rule used everywhere a booking window is compared.
package timeslot

import (
	"fmt"
	"time"

	"classbook/shared/constant"
	"classbook/shared/failure"
	"classbook/shared/timezone"
)

// Slot is one booking window: a calendar day plus wall-clock start/end on
// that day. Start and End carry the full instant (date combined with time of
// day in the application timezone) so comparisons against "now" never
// re-parse strings.
type Slot struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Parse builds a Slot from wire strings ("2006-01-02", "15:04"). The end
// must be strictly after the start and both fall on the given day.
func Parse(date, start, end string) (Slot, error) {
	day, err := timezone.Parse(constant.CalendarDayFormat, date)
	if err != nil {
		return Slot{}, failure.BadRequestFromString(fmt.Sprintf("invalid date %q: expected %s", date, constant.CalendarDayFormat))
	}

	startAt, err := at(day, start)
	if err != nil {
		return Slot{}, err
	}

	endAt, err := at(day, end)
	if err != nil {
		return Slot{}, err
	}

	if !startAt.Before(endAt) {
		return Slot{}, failure.BadRequestFromString("start time must be before end time")
	}

	return Slot{Date: day, Start: startAt, End: endAt}, nil
}

// FromInstants rebuilds a Slot from stored timestamps.
func FromInstants(date, start, end time.Time) Slot {
	return Slot{Date: date, Start: start, End: end}
}

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints (e1 == s2) do not overlap, so back-to-back
// bookings are allowed.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// OverlapsSlot applies Overlaps to two slots on the same calendar day.
// Slots on different days never overlap (no cross-midnight bookings).
func OverlapsSlot(a, b Slot) bool {
	if !SameDay(a.Date, b.Date) {
		return false
	}

	return Overlaps(a.Start, a.End, b.Start, b.End)
}

// SameDay compares two dates by calendar day in the application timezone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := timezone.ToAppTime(a).Date()
	by, bm, bd := timezone.ToAppTime(b).Date()

	return ay == by && am == bm && ad == bd
}

// InPast reports whether the slot's start instant has already elapsed
// relative to now.
func InPast(s Slot, now time.Time) bool {
	return s.Start.Before(now)
}

// Lapsed reports whether the slot's end instant has already elapsed.
func Lapsed(s Slot, now time.Time) bool {
	return s.End.Before(now)
}

// FormatDate renders the calendar day in wire format.
func FormatDate(t time.Time) string {
	return timezone.Format(t, constant.CalendarDayFormat)
}

// FormatClock renders a wall-clock time in wire format.
func FormatClock(t time.Time) string {
	return timezone.Format(t, constant.WallClockFormat)
}

func at(day time.Time, clock string) (time.Time, error) {
	t, err := timezone.Parse(constant.WallClockFormat, clock)
	if err != nil {
		return time.Time{}, failure.BadRequestFromString(fmt.Sprintf("invalid time %q: expected %s", clock, constant.WallClockFormat))
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, timezone.GetLocation()), nil
}
