package nss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalFold(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	cases := []struct {
		iv   Interval
		u    float64
		want float64
	}{
		{Unbounded, -3.5, -3.5},
		{Interval{0, inf}, 2, 2},
		{Interval{0, inf}, -2, 2},
		{Interval{TauFloor, inf}, 0, 2 * TauFloor},
		{Interval{-inf, 1}, 3, -1},
		{Interval{-inf, 1}, 0.5, 0.5},
		{Interval{0, 1}, 0.3, 0.3},
		{Interval{0, 1}, 1.5, 0.5},
		{Interval{0, 1}, 2.5, 0.5},
		{Interval{0, 1}, -0.25, 0.25},
		{Interval{2, 2}, 100, 2},
	}
	for _, tc := range cases {
		got := tc.iv.fold(tc.u)
		assert.InDelta(t, tc.want, got, 1e-12, "fold(%g) in %+v", tc.u, tc.iv)
		assert.True(t, tc.iv.Contains(got))
	}
}

func TestBoundsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultBounds.Validate())

	b := DefaultBounds
	b[5] = Interval{0, math.Inf(1)}
	assert.ErrorIs(t, b.Validate(), ErrInvalidInput, "tau2 lower bound of zero")

	b = DefaultBounds
	b[4] = Interval{-1, 5}
	assert.ErrorIs(t, b.Validate(), ErrInvalidInput, "negative tau1 lower bound")

	b = DefaultBounds
	b[1] = Interval{2, 1}
	assert.ErrorIs(t, b.Validate(), ErrInvalidInput, "inverted interval")

	b = DefaultBounds
	b[2] = Interval{math.NaN(), 1}
	assert.ErrorIs(t, b.Validate(), ErrInvalidInput, "NaN limit")
}

func TestBoundsContains(t *testing.T) {
	t.Parallel()

	assert.True(t, DefaultBounds.Contains(DefaultGuess))
	assert.False(t, DefaultBounds.Contains(Params{B0: -1, Tau1: 1, Tau2: 1}))
	assert.False(t, DefaultBounds.Contains(Params{Tau1: 1, Tau2: 0}))
}
