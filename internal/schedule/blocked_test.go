package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlockedHalfOpen(t *testing.T) {
	loc := time.FixedZone("PET", -5*3600)
	blocks, skipped := ParseBlockedIntervals(json.RawMessage(`"2025-01-10 14:00-15:00"`))
	require.Equal(t, 0, skipped)
	require.Len(t, blocks, 1)

	at := func(h, m int) time.Time { return time.Date(2025, 1, 10, h, m, 0, 0, loc) }
	assert.False(t, IsBlocked(at(13, 59), blocks))
	assert.True(t, IsBlocked(at(14, 0), blocks), "start is inclusive")
	assert.True(t, IsBlocked(at(14, 59), blocks))
	assert.False(t, IsBlocked(at(15, 0), blocks), "end is exclusive")
	assert.False(t, IsBlocked(time.Date(2025, 1, 11, 14, 30, 0, 0, loc), blocks))
}

func TestParseBlockedIntervalsEncodings(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantBlocks  int
		wantSkipped int
	}{
		{"null", `null`, 0, 0},
		{"empty string", `""`, 0, 0},
		{"csv strings", `"2025-01-10 14:00-15:00, 2025-01-11 09:00 - 10:30"`, 2, 0},
		{"array of full timestamps", `[{"inicio":"2025-01-10 14:00:00","fin":"2025-01-10 15:00:00"}]`, 1, 0},
		{"array with fecha", `[{"fecha":"2025-01-10","inicio":"2:00 PM","fin":"3:00 PM"}]`, 1, 0},
		{"json encoded array", `"[{\"inicio\":\"2025-01-10 14:00\",\"fin\":\"2025-01-10 15:00\"}]"`, 1, 0},
		{"array of strings", `["2025-01-10 14:00-15:00"]`, 1, 0},
		{"bad entries skipped", `[{"inicio":"soon","fin":"later"},"2025-01-10 14:00-15:00",{"fecha":"2025-01-10","inicio":"15:00","fin":"14:00"}]`, 1, 2},
		{"unsupported shape", `42`, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, skipped := ParseBlockedIntervals(json.RawMessage(tt.raw))
			assert.Len(t, blocks, tt.wantBlocks)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestBlockedIntervalWallClock(t *testing.T) {
	blocks, _ := ParseBlockedIntervals(json.RawMessage(`[{"fecha":"2025-01-10","inicio":"14:00","fin":"15:00"}]`))
	require.Len(t, blocks, 1)
	// The same local reading matches regardless of the candidate's zone.
	lima := time.FixedZone("PET", -5*3600)
	assert.True(t, IsBlocked(time.Date(2025, 1, 10, 14, 30, 0, 0, lima), blocks))
	assert.True(t, IsBlocked(time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC), blocks))
}
