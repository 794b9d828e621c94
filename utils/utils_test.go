package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		conv string
		want float64
	}{
		{Act365F, 1},
		{"", 1},
		{Act360, 365.0 / 360.0},
		{Thirty, 1},
		{Thirty3, 1},
	}
	for _, tc := range cases {
		got, err := YearFraction(start, end, tc.conv)
		require.NoError(t, err, tc.conv)
		assert.InDelta(t, tc.want, got, 1e-12, tc.conv)
	}

	_, err := YearFraction(start, end, "BUS/252")
	assert.Error(t, err)
}

func TestMaturitiesFromDates(t *testing.T) {
	t.Parallel()

	settlement, err := ParseDate("2025-01-02")
	require.NoError(t, err)
	dates, err := ParseDates([]string{"2026-01-02", "2025-07-03", "2035-01-02"})
	require.NoError(t, err)

	got, err := MaturitiesFromDates(settlement, dates, Act365F)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 182.0/365.0, got[1], 1e-12)
	assert.Greater(t, got[2], 10.0)

	_, err = ParseDates([]string{"2025/01/02"})
	assert.Error(t, err)
}

func TestRoundTo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.23, RoundTo(1.23456, 2))
	assert.Equal(t, -0.5, RoundTo(-0.499, 1))
}
