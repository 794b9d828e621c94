package session_test

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/nsscurve/config"
	"github.com/meenmo/nsscurve/input"
	"github.com/meenmo/nsscurve/nss"
	"github.com/meenmo/nsscurve/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(config.Default(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestNew_FitsDefaultInputs(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, []float64{1, 2, 3}, s.Maturities)
	assert.Equal(t, []float64{0.5, 0.6, 0.8}, s.Rates)
	require.NotNil(t, s.Fitted)
	assert.False(t, s.Diverged())
	require.Len(t, s.Curve, 300)
	for _, r := range s.Curve {
		assert.False(t, math.IsNaN(r) || math.IsInf(r, 0))
	}
	assert.Len(t, s.Points(), 3)
}

func TestSliderRanges(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	p := s.Fitted.Params

	assert.Equal(t, "b0", s.Sliders[0].Name)
	assert.Equal(t, p.B0+10, s.Sliders[0].Max)
	assert.Equal(t, p.B1-10, s.Sliders[1].Min)
	assert.Equal(t, p.B2+2, s.Sliders[2].Max)
	assert.Equal(t, p.B3-2, s.Sliders[3].Min)
	assert.Equal(t, nss.TauFloor, s.Sliders[4].Min)
	assert.Equal(t, p.Tau2+2, s.Sliders[5].Max)
	for i, sl := range s.Sliders {
		assert.Equal(t, session.SliderStep, sl.Step)
		assert.LessOrEqual(t, sl.Min, sl.Value, sl.Name)
		assert.GreaterOrEqual(t, sl.Max, sl.Value, sl.Name)
		assert.Equal(t, p.Slice()[i], sl.Value)
	}
}

func TestSetParam_RedrawsWithoutRefit(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	fitted := *s.Fitted
	before := append([]float64(nil), s.Curve...)

	require.NoError(t, s.SetParam(0, s.Params.B0+1))
	assert.True(t, s.Diverged())
	assert.Equal(t, fitted, *s.Fitted)
	assert.Equal(t, nss.Rates(s.Grid, s.Params), s.Curve)
	assert.NotEqual(t, before, s.Curve)

	mse, err := s.DisplayedMSE()
	require.NoError(t, err)
	assert.Greater(t, mse, s.Fitted.MSE)
}

func TestSetParam_ClampsToSlider(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	require.NoError(t, s.SetParam(5, -50))
	assert.Equal(t, nss.TauFloor, s.Params.Tau2)
	assert.Equal(t, s.Sliders[5].Min, s.Sliders[5].Value)

	require.NoError(t, s.SetParam(2, 1e9))
	assert.Equal(t, s.Sliders[2].Max, s.Params.B2)

	for _, r := range s.Curve {
		assert.False(t, math.IsNaN(r) || math.IsInf(r, 0))
	}

	assert.ErrorIs(t, s.SetParam(6, 1), nss.ErrInvalidInput)
	assert.ErrorIs(t, s.SetParam(0, math.NaN()), nss.ErrInvalidInput)
}

func TestRefit_StartsFromDefaultGuess(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	first := s.Fitted.Params

	require.NoError(t, s.SetParam(1, s.Params.B1+3))
	require.NoError(t, s.SetParam(4, s.Params.Tau1+1))
	require.NoError(t, s.Refit())

	assert.Equal(t, first, s.Fitted.Params)
	assert.False(t, s.Diverged())
}

func TestSetInputs(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	require.NoError(t, s.SetInputs("[6M, 1Y, 5Y, 10Y]", "[3.1, 3.3, 3.8, 4.0]"))
	assert.Equal(t, []float64{0.5, 1, 5, 10}, s.Maturities)
	require.NoError(t, s.Refit())
	assert.Less(t, s.Fitted.MSE, 1e-2)

	assert.ErrorIs(t, s.SetInputs("[1, 2]", "[0.5]"), nss.ErrInvalidInput)
	assert.ErrorIs(t, s.SetInputs("eval('1')", "[0.5]"), input.ErrSyntax)
	assert.Equal(t, []float64{0.5, 1, 5, 10}, s.Maturities)
}

func TestRefit_RejectsZeroMaturity(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	prev := s.Fitted

	require.NoError(t, s.SetInputs("[0, 1, 2]", "[0.5, 0.6, 0.8]"))
	assert.ErrorIs(t, s.Refit(), nss.ErrInvalidInput)
	assert.Same(t, prev, s.Fitted)
}
