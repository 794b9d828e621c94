package nss

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize"
)

func TestTraceRecorder(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	r := newTraceRecorder(zerolog.New(&buf).Level(zerolog.TraceLevel), DefaultBounds)
	require.NoError(t, r.Init())

	loc := &optimize.Location{X: []float64{-1, 0, 0, 0, 1, 1}, F: 0.25}
	stats := &optimize.Stats{MajorIterations: 3, FuncEvaluations: 10}

	require.NoError(t, r.Record(loc, optimize.FuncEvaluation, stats))
	assert.NotContains(t, buf.String(), "major iteration")

	require.NoError(t, r.Record(loc, optimize.MajorIteration, stats))
	out := buf.String()
	assert.Contains(t, out, "major iteration")
	assert.Contains(t, out, `"iteration":3`)
	// The level is reported after folding into its bounds.
	assert.Contains(t, out, `"params":[1,0,0,0,1,1]`)
	assert.Contains(t, out, `"component":"nss_solver"`)
}
