package nss

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"
)

// traceRecorder logs solver progress in parameter space.
type traceRecorder struct {
	log    zerolog.Logger
	bounds Bounds
}

func newTraceRecorder(l zerolog.Logger, b Bounds) *traceRecorder {
	return &traceRecorder{log: l.With().Str("component", "nss_solver").Logger(), bounds: b}
}

func (r *traceRecorder) Init() error {
	r.log.Trace().Msg("search started")
	return nil
}

func (r *traceRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op&optimize.MajorIteration == 0 || loc == nil {
		return nil
	}
	r.log.Trace().
		Int("iteration", stats.MajorIterations).
		Int("evaluations", stats.FuncEvaluations).
		Float64("mse", loc.F).
		Floats64("params", r.bounds.project(make([]float64, len(loc.X)), loc.X)).
		Msg("major iteration")
	return nil
}
