package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrParse reports an unrecognized date, time or hours encoding.
var ErrParse = errors.New("schedule: parse error")

var timeLayouts = []string{"3:04 PM", "3:04PM", "15:04"}

// dayFields are the upstream document keys, Monday first.
var dayFields = [7]string{
	"reunion_lunes",
	"reunion_martes",
	"reunion_miercoles",
	"reunion_jueves",
	"reunion_viernes",
	"reunion_sabado",
	"reunion_domingo",
}

var closedMarkers = map[string]struct{}{
	"NO DISPONIBLE": {},
	"CERRADO":       {},
	"NO ATIENDE":    {},
	"CLOSED":        {},
	"NOT AVAILABLE": {},
	"-":             {},
	"N/A":           {},
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Kitchen renders the time as "02:30 PM".
func (t TimeOfDay) Kitchen() string {
	return time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("03:04 PM")
}

// ParseTimeOfDay accepts "3:04 PM", "3:04PM" and "15:04", case-insensitively.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: time %q", ErrParse, s)
}

// DayIndex maps a weekday to Monday=0 ... Sunday=6.
func DayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// DayField returns the document key holding the hours for wd.
func DayField(wd time.Weekday) string {
	return dayFields[DayIndex(wd)]
}

// IsClosedMarker reports whether a day value means "closed".
func IsClosedMarker(v string) bool {
	_, ok := closedMarkers[strings.ToUpper(strings.TrimSpace(v))]
	return ok
}

// ParseHoursRange parses "09:00-18:00" (any of the time encodings, spaces
// ignored). Closing must be after opening.
func ParseHoursRange(s string) (opens, closes TimeOfDay, err error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	parts := strings.Split(compact, "-")
	if len(parts) != 2 {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: hours range %q", ErrParse, s)
	}
	opens, err = ParseTimeOfDay(parts[0])
	if err != nil {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: hours range %q", ErrParse, s)
	}
	closes, err = ParseTimeOfDay(parts[1])
	if err != nil {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: hours range %q", ErrParse, s)
	}
	if closes.Minutes() <= opens.Minutes() {
		return TimeOfDay{}, TimeOfDay{}, fmt.Errorf("%w: hours range %q closes before it opens", ErrParse, s)
	}
	return opens, closes, nil
}

// BusinessHours is a tenant's weekly schedule. It is never mutated after
// decoding, so cached documents are shared between callers.
type BusinessHours struct {
	Days    [7]string // Monday=0 ... Sunday=6
	Blocked []BlockedInterval
}

// ForDay returns the raw hours value for wd.
func (b *BusinessHours) ForDay(wd time.Weekday) string {
	return strings.TrimSpace(b.Days[DayIndex(wd)])
}

// DayName is the English weekday name for index i (Monday=0).
func DayName(i int) string {
	return time.Weekday((i + 1) % 7).String()
}
