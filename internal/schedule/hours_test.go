package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"02:30 PM", TimeOfDay{14, 30}, false},
		{"2:30pm", TimeOfDay{14, 30}, false},
		{" 10:05 am ", TimeOfDay{10, 5}, false},
		{"12:00 AM", TimeOfDay{0, 0}, false},
		{"12:15 PM", TimeOfDay{12, 15}, false},
		{"15:45", TimeOfDay{15, 45}, false},
		{"9:00", TimeOfDay{9, 0}, false},
		{"25:00", TimeOfDay{}, true},
		{"14:00 PM", TimeOfDay{}, true},
		{"noon", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayFormatting(t *testing.T) {
	tod := TimeOfDay{Hour: 18, Minute: 5}
	assert.Equal(t, "18:05", tod.String())
	assert.Equal(t, "06:05 PM", tod.Kitchen())
	assert.Equal(t, 18*60+5, tod.Minutes())
}

func TestDayField(t *testing.T) {
	assert.Equal(t, "reunion_lunes", DayField(time.Monday))
	assert.Equal(t, "reunion_viernes", DayField(time.Friday))
	assert.Equal(t, "reunion_domingo", DayField(time.Sunday))
	assert.Equal(t, 0, DayIndex(time.Monday))
	assert.Equal(t, 6, DayIndex(time.Sunday))
	assert.Equal(t, "Monday", DayName(0))
	assert.Equal(t, "Sunday", DayName(6))
}

func TestIsClosedMarker(t *testing.T) {
	for _, v := range []string{"NO DISPONIBLE", "cerrado", " No Atiende ", "-", "n/a", "Closed"} {
		assert.True(t, IsClosedMarker(v), v)
	}
	for _, v := range []string{"09:00-18:00", "", "abierto"} {
		assert.False(t, IsClosedMarker(v), v)
	}
}

func TestParseHoursRange(t *testing.T) {
	opens, closes, err := ParseHoursRange("09:00-18:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{9, 0}, opens)
	assert.Equal(t, TimeOfDay{18, 0}, closes)

	opens, closes, err = ParseHoursRange("9:00 AM - 6:00 PM")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{9, 0}, opens)
	assert.Equal(t, TimeOfDay{18, 0}, closes)

	for _, bad := range []string{"09:00", "09:00-18:00-20:00", "nine-six", "18:00-09:00", "10:00-10:00"} {
		_, _, err := ParseHoursRange(bad)
		assert.ErrorIs(t, err, ErrParse, bad)
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("PET", -5*3600)
	d, err := ParseDate("2025-01-10", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, d.Weekday())
	assert.Equal(t, loc, d.Location())

	for _, bad := range []string{"10/01/2025", "2025-13-01", "2025-02-30", "", "tomorrow"} {
		_, err := ParseDate(bad, loc)
		assert.ErrorIs(t, err, ErrParse, bad)
	}
}

func TestLocation(t *testing.T) {
	loc, err := Location("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, loc.String())

	_, err = Location("Mars/Olympus")
	assert.Error(t, err)
}

func TestBusinessHoursForDay(t *testing.T) {
	doc := &BusinessHours{}
	doc.Days[4] = " 09:00-18:00 "
	assert.Equal(t, "09:00-18:00", doc.ForDay(time.Friday))
	assert.Equal(t, "", doc.ForDay(time.Saturday))
}
