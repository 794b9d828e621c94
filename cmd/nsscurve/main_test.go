package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/nsscurve/config"
	"github.com/meenmo/nsscurve/input"
	"github.com/meenmo/nsscurve/nss"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	out, err := evaluate(config.Default(), "[3, -1, 0.5, 0.2, 1.5, 6]", "[6M, 1Y, 10Y]")
	require.NoError(t, err)
	require.Len(t, out.Points, 3)
	assert.Equal(t, 0.5, out.Points[0].Maturity)
	assert.Equal(t, nss.Rate(10, out.Params), out.Points[2].Rate)

	out, err = evaluate(config.Default(), "[3, -1, 0.5, 0.2, 1.5, 6]", "")
	require.NoError(t, err)
	assert.Len(t, out.Points, 300)
}

func TestEvaluate_Rejects(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	_, err := evaluate(cfg, "[1, 2, 3]", "")
	assert.Error(t, err)

	_, err = evaluate(cfg, "[1, 0, 0, 0, 0, 1]", "")
	assert.ErrorIs(t, err, nss.ErrInvalidInput)

	_, err = evaluate(cfg, "[1, 0, 0, 0, 1, 1]", "[0, 1]")
	assert.ErrorIs(t, err, nss.ErrInvalidInput)

	_, err = evaluate(cfg, "os.system('x')", "")
	assert.ErrorIs(t, err, input.ErrSyntax)
}
