// Package session holds the state behind an interactive curve editor:
// the observed points, the last fit, the slider ranges and the curve
// currently on screen. Rendering is left to the caller.
//
// A Session belongs to a single event loop and is not safe for concurrent
// use. Independent sessions share nothing.
package session

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meenmo/nsscurve/config"
	"github.com/meenmo/nsscurve/input"
	"github.com/meenmo/nsscurve/nss"
	"github.com/meenmo/nsscurve/utils"
)

// SliderStep is the increment of every parameter slider.
const SliderStep = 0.01

// Slider is the editable range of one parameter.
type Slider struct {
	Name  string  `json:"name"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value float64 `json:"value"`
}

// Session is the application state of one interactive user.
type Session struct {
	ID         string
	Maturities []float64
	Rates      []float64
	Grid       []float64

	// Fitted is the last fit, nil before the first Refit.
	Fitted *nss.FitResult
	// Params are the displayed parameters; they diverge from Fitted when
	// the user moves a slider.
	Params  nss.Params
	Sliders [nss.NumParams]Slider
	// Curve holds the displayed rates over Grid.
	Curve []float64

	solver nss.Solver
	bounds nss.Bounds
	log    zerolog.Logger
}

// New creates a session with the configured default inputs and an initial
// fit, mirroring what a user sees when the editor opens.
func New(cfg *config.Config, log zerolog.Logger) (*Session, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	id := uuid.NewString()
	s := &Session{
		ID:     id,
		Grid:   grid,
		solver: cfg.SolverSettings(),
		bounds: cfg.FitBounds(),
		log:    log.With().Str("component", "session").Str("session_id", id).Logger(),
	}
	if err := s.SetInputs(cfg.Preview.DefaultYears, cfg.Preview.DefaultRates); err != nil {
		return nil, err
	}
	if err := s.Refit(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetInputs parses the years and rates text fields. Tenor codes such as
// "6M" are accepted for years. The current fit and curve are left as they
// are until the next Refit.
func (s *Session) SetInputs(yearsText, ratesText string) error {
	years, err := input.ParseMaturities(yearsText)
	if err != nil {
		return fmt.Errorf("session: years: %w", err)
	}
	rates, err := input.ParseList(ratesText)
	if err != nil {
		return fmt.Errorf("session: rates: %w", err)
	}
	if len(years) != len(rates) {
		return fmt.Errorf("session: %d years but %d rates: %w", len(years), len(rates), nss.ErrInvalidInput)
	}
	s.Maturities, s.Rates = years, rates
	return nil
}

// Refit fits the current inputs from the fixed default guess, recentres the
// sliders on the result and redraws the curve. A fit that stops on its
// budget is still applied; its warning is logged.
func (s *Session) Refit() error {
	res, err := nss.Fit(nss.FitInput{
		Maturities: s.Maturities,
		Rates:      s.Rates,
		Bounds:     &s.bounds,
		Solver:     s.solver,
		Logger:     &s.log,
	})
	if err != nil {
		s.log.Error().Err(err).Int("points", len(s.Maturities)).Msg("refit failed")
		return fmt.Errorf("session: %w", err)
	}
	if res.Warning != nil {
		s.log.Warn().Err(res.Warning).Float64("mse", res.MSE).Msg("refit returned best effort parameters")
	}

	s.Fitted = &res
	s.Params = res.Params
	s.Sliders = s.slidersAround(res.Params)
	s.redraw()

	s.log.Info().
		Float64("mse", res.MSE).
		Bool("converged", res.Converged).
		Floats64("params", res.Params.Slice()).
		Msg("curve refitted")
	return nil
}

// SetParam moves slider i to value, clamped to the slider range and
// snapped to SliderStep, and redraws the curve without refitting.
func (s *Session) SetParam(i int, value float64) error {
	if i < 0 || i >= nss.NumParams {
		return fmt.Errorf("session: parameter index %d out of range: %w", i, nss.ErrInvalidInput)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("session: %s value must be finite: %w", nss.ParamNames[i], nss.ErrInvalidInput)
	}

	sl := &s.Sliders[i]
	v := utils.RoundTo(value/sl.Step, 0) * sl.Step
	v = math.Min(math.Max(v, sl.Min), sl.Max)
	sl.Value = v

	x := s.Params.Slice()
	x[i] = v
	s.Params, _ = nss.ParamsFromSlice(x)
	s.redraw()

	s.log.Debug().Str("param", sl.Name).Float64("value", v).Msg("slider moved")
	return nil
}

// Diverged reports whether the displayed parameters differ from the last fit.
func (s *Session) Diverged() bool {
	return s.Fitted == nil || s.Params != s.Fitted.Params
}

// Points returns the observed inputs as curve points.
func (s *Session) Points() []nss.Point {
	pts := make([]nss.Point, len(s.Maturities))
	for i := range s.Maturities {
		pts[i] = nss.Point{Maturity: s.Maturities[i], Rate: s.Rates[i]}
	}
	return pts
}

// DisplayedMSE is the error of the displayed parameters against the inputs.
func (s *Session) DisplayedMSE() (float64, error) {
	return nss.MSE(s.Maturities, s.Rates, s.Params)
}

func (s *Session) redraw() {
	s.Curve = nss.Rates(s.Grid, s.Params)
}

// slidersAround centres the ranges on p: the level from its floor up to
// ten above, the slope ten either side, the curvatures two either side and
// the taus from the floor up to two above.
func (s *Session) slidersAround(p nss.Params) [nss.NumParams]Slider {
	floor := s.bounds[4].Lower
	if s.bounds[5].Lower > floor {
		floor = s.bounds[5].Lower
	}
	levelMin := 0.0
	if p.B0 < 0 {
		levelMin = p.B0
	}

	ranges := [nss.NumParams][2]float64{
		{levelMin, p.B0 + 10},
		{p.B1 - 10, p.B1 + 10},
		{p.B2 - 2, p.B2 + 2},
		{p.B3 - 2, p.B3 + 2},
		{floor, p.Tau1 + 2},
		{floor, p.Tau2 + 2},
	}

	var out [nss.NumParams]Slider
	for i, v := range p.Slice() {
		out[i] = Slider{
			Name:  nss.ParamNames[i],
			Min:   ranges[i][0],
			Max:   ranges[i][1],
			Step:  SliderStep,
			Value: v,
		}
	}
	return out
}
