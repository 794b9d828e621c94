package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/meenmo/nsscurve/nss"
)

// EnvPrefix prefixes environment overrides, e.g. NSS_SOLVER_METHOD.
const EnvPrefix = "NSS"

// Config holds solver, bound, preview and logging settings.
type Config struct {
	Solver  SolverConfig  `mapstructure:"solver"`
	Bounds  BoundsConfig  `mapstructure:"bounds"`
	Preview PreviewConfig `mapstructure:"preview"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SolverConfig mirrors nss.Solver.
type SolverConfig struct {
	Method            string        `mapstructure:"method"`
	MaxIterations     int           `mapstructure:"max_iterations"`
	MaxEvaluations    int           `mapstructure:"max_evaluations"`
	FunctionTolerance float64       `mapstructure:"function_tolerance"`
	ConvergeWindow    int           `mapstructure:"converge_window"`
	SimplexSize       float64       `mapstructure:"simplex_size"`
	GradientStep      float64       `mapstructure:"gradient_step"`
	Runtime           time.Duration `mapstructure:"runtime"`
}

// BoundsConfig controls the fit bounds.
type BoundsConfig struct {
	// TauFloor is the lower bound of both decay scales. Must be > 0.
	TauFloor float64 `mapstructure:"tau_floor"`
	// NonNegativeLevel keeps B0 >= 0.
	NonNegativeLevel bool `mapstructure:"non_negative_level"`
}

// PreviewConfig describes the dense maturity grid and the initial inputs
// of an interactive session.
type PreviewConfig struct {
	Start        float64 `mapstructure:"start"`
	End          float64 `mapstructure:"end"`
	Points       int     `mapstructure:"points"`
	DefaultYears string  `mapstructure:"default_years"`
	DefaultRates string  `mapstructure:"default_rates"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	s := nss.DefaultSolver
	return &Config{
		Solver: SolverConfig{
			Method:            string(s.Method),
			MaxIterations:     s.MaxIterations,
			MaxEvaluations:    s.MaxEvaluations,
			FunctionTolerance: s.FunctionTolerance,
			ConvergeWindow:    s.ConvergeWindow,
			SimplexSize:       s.SimplexSize,
			GradientStep:      s.GradientStep,
			Runtime:           s.Runtime,
		},
		Bounds: BoundsConfig{
			TauFloor:         nss.TauFloor,
			NonNegativeLevel: true,
		},
		Preview: PreviewConfig{
			Start:        1,
			End:          30,
			Points:       300,
			DefaultYears: "[1, 2, 3]",
			DefaultRates: "[0.5, 0.6, 0.8]",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("solver.method", d.Solver.Method)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("solver.max_evaluations", d.Solver.MaxEvaluations)
	v.SetDefault("solver.function_tolerance", d.Solver.FunctionTolerance)
	v.SetDefault("solver.converge_window", d.Solver.ConvergeWindow)
	v.SetDefault("solver.simplex_size", d.Solver.SimplexSize)
	v.SetDefault("solver.gradient_step", d.Solver.GradientStep)
	v.SetDefault("solver.runtime", d.Solver.Runtime)

	v.SetDefault("bounds.tau_floor", d.Bounds.TauFloor)
	v.SetDefault("bounds.non_negative_level", d.Bounds.NonNegativeLevel)

	v.SetDefault("preview.start", d.Preview.Start)
	v.SetDefault("preview.end", d.Preview.End)
	v.SetDefault("preview.points", d.Preview.Points)
	v.SetDefault("preview.default_years", d.Preview.DefaultYears)
	v.SetDefault("preview.default_rates", d.Preview.DefaultRates)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if err := c.SolverSettings().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !(c.Bounds.TauFloor > 0) || math.IsInf(c.Bounds.TauFloor, 0) {
		return fmt.Errorf("bounds.tau_floor must be positive and finite, got %g", c.Bounds.TauFloor)
	}
	if c.Preview.Points < 2 {
		return fmt.Errorf("preview.points must be at least 2")
	}
	if !(c.Preview.Start > 0) || !(c.Preview.End > c.Preview.Start) {
		return fmt.Errorf("preview range must satisfy 0 < start < end")
	}

	validLogLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}

// SolverSettings converts the solver section to nss.Solver.
func (c *Config) SolverSettings() nss.Solver {
	return nss.Solver{
		Method:            nss.Method(c.Solver.Method),
		MaxIterations:     c.Solver.MaxIterations,
		MaxEvaluations:    c.Solver.MaxEvaluations,
		FunctionTolerance: c.Solver.FunctionTolerance,
		ConvergeWindow:    c.Solver.ConvergeWindow,
		SimplexSize:       c.Solver.SimplexSize,
		GradientStep:      c.Solver.GradientStep,
		Runtime:           c.Solver.Runtime,
	}
}

// FitBounds builds the fit bounds from the bounds section.
func (c *Config) FitBounds() nss.Bounds {
	b := nss.DefaultBounds
	if !c.Bounds.NonNegativeLevel {
		b[0] = nss.Unbounded
	}
	b[4].Lower = c.Bounds.TauFloor
	b[5].Lower = c.Bounds.TauFloor
	return b
}

// Grid returns the preview maturity grid.
func (c *Config) Grid() ([]float64, error) {
	return nss.Grid(c.Preview.Start, c.Preview.End, c.Preview.Points)
}
