package schedule

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

var blockTimestampLayouts = []string{
	WireLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// BlockedInterval is an ad-hoc closure in the tenant's local wall clock.
// Start is inclusive, End exclusive.
type BlockedInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether at falls inside [Start, End).
func (b BlockedInterval) Contains(at time.Time) bool {
	w := wallClock(at)
	return !w.Before(b.Start) && w.Before(b.End)
}

// IsBlocked reports whether at falls inside any of intervals.
func IsBlocked(at time.Time, intervals []BlockedInterval) bool {
	for _, b := range intervals {
		if b.Contains(at) {
			return true
		}
	}
	return false
}

// ParseBlockedIntervals decodes the upstream's loose encodings: a JSON array
// (or a string holding one) of {inicio, fin} or {fecha, inicio, fin} objects,
// or comma-separated "YYYY-MM-DD HH:MM-HH:MM" strings. Entries that cannot be
// read are skipped and counted.
func ParseBlockedIntervals(raw json.RawMessage) ([]BlockedInterval, int) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, 0
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, 1
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, 0
		}
		if strings.HasPrefix(s, "[") {
			return ParseBlockedIntervals(json.RawMessage(s))
		}
		var out []BlockedInterval
		skipped := 0
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			if b, ok := parseBlockString(part); ok {
				out = append(out, b)
			} else {
				skipped++
			}
		}
		return out, skipped
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 1
		}
		var out []BlockedInterval
		skipped := 0
		for _, item := range items {
			if b, ok := parseBlockItem(item); ok {
				out = append(out, b)
			} else {
				skipped++
			}
		}
		return out, skipped
	default:
		return nil, 1
	}
}

func parseBlockItem(item json.RawMessage) (BlockedInterval, bool) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return parseBlockString(s)
	}
	var obj struct {
		Fecha  string `json:"fecha"`
		Inicio string `json:"inicio"`
		Fin    string `json:"fin"`
	}
	if err := json.Unmarshal(item, &obj); err != nil {
		return BlockedInterval{}, false
	}
	if strings.TrimSpace(obj.Fecha) != "" {
		day, err := time.Parse(DateLayout, strings.TrimSpace(obj.Fecha))
		if err != nil {
			return BlockedInterval{}, false
		}
		from, err := ParseTimeOfDay(obj.Inicio)
		if err != nil {
			return BlockedInterval{}, false
		}
		to, err := ParseTimeOfDay(obj.Fin)
		if err != nil {
			return BlockedInterval{}, false
		}
		return newBlock(At(day, from, time.UTC), At(day, to, time.UTC))
	}
	start, ok := parseBlockTimestamp(obj.Inicio)
	if !ok {
		return BlockedInterval{}, false
	}
	end, ok := parseBlockTimestamp(obj.Fin)
	if !ok {
		return BlockedInterval{}, false
	}
	return newBlock(start, end)
}

// parseBlockString reads "2025-01-10 14:00-15:00".
func parseBlockString(s string) (BlockedInterval, bool) {
	datePart, rangePart, found := strings.Cut(strings.TrimSpace(s), " ")
	if !found {
		return BlockedInterval{}, false
	}
	day, err := time.Parse(DateLayout, datePart)
	if err != nil {
		return BlockedInterval{}, false
	}
	from, to, err := ParseHoursRange(rangePart)
	if err != nil {
		return BlockedInterval{}, false
	}
	return newBlock(At(day, from, time.UTC), At(day, to, time.UTC))
}

func parseBlockTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range blockTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func newBlock(start, end time.Time) (BlockedInterval, bool) {
	if !end.After(start) {
		return BlockedInterval{}, false
	}
	return BlockedInterval{Start: start, End: end}, true
}
