package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical", "10:00:00", "11:00:00", "10:00:00", "11:00:00", true},
		{"contained", "10:00:00", "12:00:00", "10:30:00", "11:00:00", true},
		{"partial front", "10:00:00", "11:00:00", "10:30:00", "11:30:00", true},
		{"partial back", "10:30:00", "11:30:00", "10:00:00", "11:00:00", true},
		{"back to back", "10:00:00", "11:00:00", "11:00:00", "12:00:00", false},
		{"back to back reversed", "11:00:00", "12:00:00", "10:00:00", "11:00:00", false},
		{"disjoint", "08:00:00", "09:00:00", "12:00:00", "13:00:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.e1, tc.s2, tc.e2))
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	min, err := ParseTimeOfDay("09:30:00")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, min)

	_, err = ParseTimeOfDay("9:30")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("25:00:00")
	assert.Error(t, err)
}

func TestFormatTimeOfDay(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatTimeOfDay(0))
	assert.Equal(t, "09:05:00", FormatTimeOfDay(9*60+5))
	assert.Equal(t, "23:30:00", FormatTimeOfDay(23*60+30))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(time.Monday))
	assert.Equal(t, 6, ISOWeekday(time.Saturday))
	assert.Equal(t, 7, ISOWeekday(time.Sunday))
}

func TestCombineDateTime(t *testing.T) {
	got, err := CombineDateTime("2026-03-14", "15:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC), got)

	_, err = CombineDateTime("14-03-2026", "15:30:00")
	assert.Error(t, err)
}
