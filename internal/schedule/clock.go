package schedule

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// DefaultTimezone is the operating zone shared by every tenant.
	DefaultTimezone = "America/Lima"

	DateLayout = "2006-01-02"
	// WireLayout is the timestamp shape the upstream expects.
	WireLayout = "2006-01-02 15:04:05"
)

// Clock returns the current instant. Tests inject fixed clocks.
type Clock func() time.Time

// Location resolves an IANA zone name. An empty name resolves to
// DefaultTimezone.
func Location(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("schedule: load timezone %q: %w", name, err)
	}
	return loc, nil
}

// NowIn returns the clock's current time in loc.
func NowIn(loc *time.Location, clock Clock) time.Time {
	if clock == nil {
		clock = time.Now
	}
	return clock().In(loc)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrParse, s)
	}
	return d, nil
}

// At combines a calendar date and a time of day in loc.
func At(date time.Time, tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// wallClock drops the zone, keeping the local reading. Blocked intervals are
// stored this way because the upstream sends them without an offset.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
