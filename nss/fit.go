package nss

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Method selects the local search used by Fit.
type Method string

const (
	MethodNelderMead Method = "nelder-mead" // derivative-free simplex search
	MethodBFGS       Method = "bfgs"        // quasi-Newton, finite-difference gradient
	MethodLBFGS      Method = "lbfgs"       // limited-memory BFGS, finite-difference gradient
)

// Solver holds the search settings. The zero value means DefaultSolver.
type Solver struct {
	// Method is the local search algorithm.
	Method Method
	// MaxIterations caps the number of major iterations. Must be positive.
	MaxIterations int
	// MaxEvaluations caps objective evaluations; 0 leaves it uncapped.
	MaxEvaluations int
	// FunctionTolerance is the smallest improvement of the best MSE that
	// still counts as progress.
	FunctionTolerance float64
	// ConvergeWindow is the number of iterations without progress after
	// which the search is considered converged.
	ConvergeWindow int
	// SimplexSize is the edge of the initial Nelder-Mead simplex.
	SimplexSize float64
	// GradientStep is the forward-difference step for BFGS/LBFGS.
	GradientStep float64
	// Runtime caps wall-clock time; 0 disables the cap. A non-zero value
	// makes results depend on machine speed.
	Runtime time.Duration
}

// DefaultSolver is a deterministic Nelder-Mead configuration.
var DefaultSolver = Solver{
	Method:            MethodNelderMead,
	MaxIterations:     20000,
	MaxEvaluations:    0,
	FunctionTolerance: 1e-14,
	ConvergeWindow:    200,
	SimplexSize:       0.05,
	GradientStep:      1e-7,
}

// Validate checks that the settings describe a runnable search.
func (s Solver) Validate() error {
	switch s.Method {
	case MethodNelderMead, MethodBFGS, MethodLBFGS:
	default:
		return fmt.Errorf("solver: unknown method %q: %w", s.Method, ErrInvalidInput)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("solver: MaxIterations must be positive, got %d: %w", s.MaxIterations, ErrInvalidInput)
	}
	if s.MaxEvaluations < 0 {
		return fmt.Errorf("solver: MaxEvaluations must not be negative: %w", ErrInvalidInput)
	}
	if !(s.FunctionTolerance >= 0) {
		return fmt.Errorf("solver: FunctionTolerance must not be negative: %w", ErrInvalidInput)
	}
	if s.ConvergeWindow <= 0 {
		return fmt.Errorf("solver: ConvergeWindow must be positive: %w", ErrInvalidInput)
	}
	if s.Method == MethodNelderMead && !(s.SimplexSize > 0) {
		return fmt.Errorf("solver: SimplexSize must be positive: %w", ErrInvalidInput)
	}
	if s.Method != MethodNelderMead && !(s.GradientStep > 0) {
		return fmt.Errorf("solver: GradientStep must be positive: %w", ErrInvalidInput)
	}
	if s.Runtime < 0 {
		return fmt.Errorf("solver: Runtime must not be negative: %w", ErrInvalidInput)
	}
	return nil
}

func (s Solver) method() optimize.Method {
	switch s.Method {
	case MethodBFGS:
		return &optimize.BFGS{}
	case MethodLBFGS:
		return &optimize.LBFGS{}
	default:
		return &optimize.NelderMead{SimplexSize: s.SimplexSize}
	}
}

// FitInput holds the observations and search settings for Fit.
type FitInput struct {
	// Maturities in years, each > 0, matched index-to-index with Rates.
	Maturities []float64
	// Rates are the observed rates; negative values are allowed.
	Rates []float64
	// InitialGuess defaults to DefaultGuess when nil.
	InitialGuess *Params
	// Bounds defaults to DefaultBounds when nil.
	Bounds *Bounds
	// Solver defaults to DefaultSolver when zero.
	Solver Solver
	// Logger, when set, receives a debug summary and a trace of major
	// iterations.
	Logger *zerolog.Logger
}

// FitResult is the outcome of one Fit call.
type FitResult struct {
	Params      Params  `json:"params"`
	MSE         float64 `json:"mse"`
	Converged   bool    `json:"converged"`
	Status      string  `json:"status"`
	Iterations  int     `json:"iterations"`
	Evaluations int     `json:"evaluations"`
	// Warning wraps ErrNotConverged when Converged is false.
	Warning error `json:"-"`
}

// Fit finds the parameters minimising the mean squared error between the
// curve and the observed rates, subject to the bounds.
//
// The search always starts from the initial guess, so identical inputs give
// identical results. Invalid inputs fail with ErrInvalidInput before any
// evaluation. A non-finite objective fails with ErrNumericalInstability.
// Hitting a budget is not an error: the best point found is returned with
// Converged=false and Warning set.
func Fit(in FitInput) (FitResult, error) {
	if err := validateObservations(in.Maturities, in.Rates); err != nil {
		return FitResult{}, err
	}

	guess := DefaultGuess
	if in.InitialGuess != nil {
		guess = *in.InitialGuess
	}
	bounds := DefaultBounds
	if in.Bounds != nil {
		bounds = *in.Bounds
	}
	solver := in.Solver
	if solver == (Solver{}) {
		solver = DefaultSolver
	}

	if err := bounds.Validate(); err != nil {
		return FitResult{}, fmt.Errorf("Fit: %w", err)
	}
	if err := solver.Validate(); err != nil {
		return FitResult{}, fmt.Errorf("Fit: %w", err)
	}
	if !guess.Finite() {
		return FitResult{}, fmt.Errorf("Fit: initial guess has non-finite values: %w", ErrInvalidInput)
	}
	if !bounds.Contains(guess) {
		return FitResult{}, fmt.Errorf("Fit: initial guess %+v lies outside the bounds: %w", guess, ErrInvalidInput)
	}

	obj := objective{maturities: in.Maturities, rates: in.Rates, bounds: bounds}
	x0 := guess.Slice()
	if f0 := obj.value(x0); math.IsInf(f0, 1) {
		return FitResult{}, fmt.Errorf("Fit: objective is not finite at the initial guess: %w", ErrNumericalInstability)
	}

	problem := optimize.Problem{Func: obj.value}
	if solver.Method != MethodNelderMead {
		fdSettings := &fd.Settings{Formula: fd.Forward, Step: solver.GradientStep}
		problem.Grad = func(grad, x []float64) {
			fd.Gradient(grad, obj.value, x, fdSettings)
		}
	}

	settings := &optimize.Settings{
		MajorIterations: solver.MaxIterations,
		FuncEvaluations: solver.MaxEvaluations,
		Runtime:         solver.Runtime,
		Converger: &optimize.FunctionConverge{
			Absolute:   solver.FunctionTolerance,
			Iterations: solver.ConvergeWindow,
		},
	}
	if in.Logger != nil {
		settings.Recorder = newTraceRecorder(*in.Logger, bounds)
	}

	res, err := optimize.Minimize(problem, x0, settings, solver.method())
	if res == nil {
		return FitResult{}, fmt.Errorf("Fit: solver setup: %w", err)
	}
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return FitResult{}, fmt.Errorf("Fit: objective is not finite at the best point (status %s): %w", res.Status, ErrNumericalInstability)
	}

	best, _ := ParamsFromSlice(bounds.project(make([]float64, NumParams), res.X))
	out := FitResult{
		Params:      best,
		MSE:         res.F,
		Converged:   err == nil && converged(res.Status),
		Status:      res.Status.String(),
		Iterations:  res.MajorIterations,
		Evaluations: res.FuncEvaluations,
	}
	if !out.Converged {
		if err != nil {
			out.Warning = fmt.Errorf("Fit: %s after %d iterations (%v): %w", res.Status, res.MajorIterations, err, ErrNotConverged)
		} else {
			out.Warning = fmt.Errorf("Fit: %s after %d iterations: %w", res.Status, res.MajorIterations, ErrNotConverged)
		}
	}

	if in.Logger != nil {
		in.Logger.Debug().
			Str("method", string(solver.Method)).
			Int("points", len(in.Maturities)).
			Str("status", out.Status).
			Bool("converged", out.Converged).
			Int("iterations", out.Iterations).
			Int("evaluations", out.Evaluations).
			Float64("mse", out.MSE).
			Msg("fit finished")
	}
	return out, nil
}

// MSE returns the mean squared error of p against the observations.
// It applies no bounds and no validation beyond matching lengths.
func MSE(maturities, rates []float64, p Params) (float64, error) {
	if len(maturities) != len(rates) || len(maturities) == 0 {
		return 0, fmt.Errorf("MSE: need equal, non-empty inputs, got %d and %d: %w", len(maturities), len(rates), ErrInvalidInput)
	}
	return meanSquaredError(Rates(maturities, p), rates), nil
}

func validateObservations(maturities, rates []float64) error {
	if len(maturities) == 0 {
		return fmt.Errorf("Fit: at least one observation is required: %w", ErrInvalidInput)
	}
	if len(maturities) != len(rates) {
		return fmt.Errorf("Fit: %d maturities but %d rates: %w", len(maturities), len(rates), ErrInvalidInput)
	}
	for i, t := range maturities {
		if !(t > 0) || math.IsInf(t, 1) {
			return fmt.Errorf("Fit: maturity[%d] = %g must be positive and finite: %w", i, t, ErrInvalidInput)
		}
	}
	for i, r := range rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("Fit: rate[%d] = %g must be finite: %w", i, r, ErrInvalidInput)
		}
	}
	return nil
}

// objective is the MSE seen through the bound folding, so the optimizer
// can move freely while every evaluated point respects the bounds.
type objective struct {
	maturities []float64
	rates      []float64
	bounds     Bounds
}

func (o objective) value(x []float64) float64 {
	p, err := ParamsFromSlice(o.bounds.project(make([]float64, NumParams), x))
	if err != nil {
		return math.Inf(1)
	}
	mse := meanSquaredError(Rates(o.maturities, p), o.rates)
	if math.IsNaN(mse) || math.IsInf(mse, 0) {
		return math.Inf(1)
	}
	return mse
}

func meanSquaredError(pred, obs []float64) float64 {
	resid := make([]float64, len(pred))
	floats.SubTo(resid, pred, obs)
	return floats.Dot(resid, resid) / float64(len(resid))
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}
