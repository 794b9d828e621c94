package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/nsscurve/config"
	"github.com/meenmo/nsscurve/input"
	"github.com/meenmo/nsscurve/internal/logger"
	"github.com/meenmo/nsscurve/nss"
	"github.com/meenmo/nsscurve/utils"
)

type fitInput struct {
	TaskID         string               `json:"task_id,omitempty"`
	Maturities     []float64            `json:"maturities,omitempty"`
	Tenors         []string             `json:"tenors,omitempty"`
	SettlementDate string               `json:"settlement_date,omitempty"`
	MaturityDates  []string             `json:"maturity_dates,omitempty"`
	DayCount       string               `json:"day_count,omitempty"`
	Rates          []float64            `json:"rates"`
	InitialGuess   *nss.Params          `json:"initial_guess,omitempty"`
	Bounds         map[string]boundJSON `json:"bounds,omitempty"`
}

// boundJSON is one parameter interval; a missing side is unbounded.
type boundJSON struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

type fitOutput struct {
	TaskID      string      `json:"task_id,omitempty"`
	Maturities  []float64   `json:"maturities,omitempty"`
	Params      *nss.Params `json:"params,omitempty"`
	MSE         float64     `json:"mse"`
	Converged   bool        `json:"converged"`
	Status      string      `json:"status,omitempty"`
	Iterations  int         `json:"iterations,omitempty"`
	Evaluations int         `json:"evaluations,omitempty"`
	Warning     string      `json:"warning,omitempty"`
	Error       string      `json:"error,omitempty"`
	ErrorKind   string      `json:"error_kind,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	configPath := flag.String("config", "", "YAML config path (defaults and NSS_* env if omitted)")
	yearsText := flag.String("years", "", "Maturities as a bracketed list, e.g. \"[1, 2, 3]\" or \"[6M, 1Y]\"")
	ratesText := flag.String("rates", "", "Rates as a bracketed list, e.g. \"[0.5, 0.6, 0.8]\"")
	workers := flag.Int("workers", runtime.NumCPU(), "Maximum concurrent fits for array input")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: nssfit [-config cfg.yaml] -input <path> | -years \"[1, 2, 3]\" -rates \"[0.5, 0.6, 0.8]\"")
		fmt.Fprintln(os.Stderr, "Fit Nelson-Siegel-Svensson parameters to observed rates.")
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		exitError(fmt.Sprintf("load config: %v", err))
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Component("nssfit")

	var inputs []fitInput
	isArray := false
	if *yearsText != "" || *ratesText != "" {
		in, err := inputFromText(*yearsText, *ratesText)
		if err != nil {
			exitError(err.Error())
		}
		inputs = []fitInput{in}
	} else {
		path := strings.TrimSpace(*inputPath)
		if path == "" {
			if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
				fmt.Fprintln(os.Stderr, "Usage: nssfit -input <path>")
				os.Exit(2)
			}
		}
		raw, err := readInput(path)
		if err != nil {
			exitError(fmt.Sprintf("read input: %v", err))
		}
		inputs, isArray, err = parseInputs(raw)
		if err != nil {
			exitError(fmt.Sprintf("parse JSON: %v", err))
		}
	}

	outputs := runAll(inputs, cfg, log, *workers)

	hadError := false
	for _, out := range outputs {
		if out.Error != "" {
			hadError = true
		}
	}

	if isArray {
		b, _ := json.Marshal(outputs)
		fmt.Println(string(b))
	} else {
		b, _ := json.Marshal(outputs[0])
		fmt.Println(string(b))
	}

	if hadError {
		os.Exit(1)
	}
}

// runAll fits every input, at most workers at a time, keeping input order.
func runAll(inputs []fitInput, cfg *config.Config, log zerolog.Logger, workers int) []fitOutput {
	outputs := make([]fitOutput, len(inputs))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range inputs {
		g.Go(func() error {
			in := inputs[i]
			if in.TaskID == "" {
				in.TaskID = uuid.NewString()
			}
			taskLog := log.With().Str("task_id", in.TaskID).Logger()

			out, err := process(in, cfg, taskLog)
			if err != nil {
				taskLog.Error().Err(err).Msg("fit failed")
				outputs[i] = fitOutput{TaskID: in.TaskID, Error: err.Error(), ErrorKind: errorKind(err)}
				return nil
			}
			outputs[i] = *out
			return nil
		})
	}
	_ = g.Wait()
	return outputs
}

func process(in fitInput, cfg *config.Config, log zerolog.Logger) (*fitOutput, error) {
	maturities, err := resolveMaturities(in)
	if err != nil {
		return nil, err
	}
	bounds, err := applyBounds(cfg.FitBounds(), in.Bounds)
	if err != nil {
		return nil, err
	}

	res, err := nss.Fit(nss.FitInput{
		Maturities:   maturities,
		Rates:        in.Rates,
		InitialGuess: in.InitialGuess,
		Bounds:       &bounds,
		Solver:       cfg.SolverSettings(),
		Logger:       &log,
	})
	if err != nil {
		return nil, err
	}

	out := &fitOutput{
		TaskID:      in.TaskID,
		Maturities:  maturities,
		Params:      &res.Params,
		MSE:         res.MSE,
		Converged:   res.Converged,
		Status:      res.Status,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
		log.Warn().Err(res.Warning).Msg("best effort fit")
	}
	log.Info().Float64("mse", res.MSE).Bool("converged", res.Converged).Msg("fit done")
	return out, nil
}

// resolveMaturities accepts exactly one of maturities, tenors or dated
// maturities with a settlement date.
func resolveMaturities(in fitInput) ([]float64, error) {
	given := 0
	for _, n := range []int{len(in.Maturities), len(in.Tenors), len(in.MaturityDates)} {
		if n > 0 {
			given++
		}
	}
	if given > 1 {
		return nil, fmt.Errorf("give only one of maturities, tenors, maturity_dates: %w", nss.ErrInvalidInput)
	}

	switch {
	case len(in.Tenors) > 0:
		out := make([]float64, len(in.Tenors))
		for i, s := range in.Tenors {
			v, err := input.ParseTenor(s)
			if err != nil {
				return nil, fmt.Errorf("tenor %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case len(in.MaturityDates) > 0:
		settlement, err := utils.ParseDate(in.SettlementDate)
		if err != nil {
			return nil, fmt.Errorf("settlement_date: %w: %w", err, nss.ErrInvalidInput)
		}
		dates, err := utils.ParseDates(in.MaturityDates)
		if err != nil {
			return nil, fmt.Errorf("maturity_dates: %w: %w", err, nss.ErrInvalidInput)
		}
		out, err := utils.MaturitiesFromDates(settlement, dates, in.DayCount)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, nss.ErrInvalidInput)
		}
		return out, nil
	default:
		return in.Maturities, nil
	}
}

func applyBounds(base nss.Bounds, overrides map[string]boundJSON) (nss.Bounds, error) {
	for name, bj := range overrides {
		idx := -1
		for i, pn := range nss.ParamNames {
			if strings.EqualFold(name, pn) {
				idx = i
			}
		}
		if idx < 0 {
			return base, fmt.Errorf("unknown parameter %q in bounds: %w", name, nss.ErrInvalidInput)
		}
		iv := nss.Unbounded
		if bj.Lower != nil {
			iv.Lower = *bj.Lower
		}
		if bj.Upper != nil {
			iv.Upper = *bj.Upper
		}
		base[idx] = iv
	}
	return base, nil
}

func inputFromText(years, rates string) (fitInput, error) {
	m, err := input.ParseMaturities(years)
	if err != nil {
		return fitInput{}, fmt.Errorf("years: %w", err)
	}
	r, err := input.ParseList(rates)
	if err != nil {
		return fitInput{}, fmt.Errorf("rates: %w", err)
	}
	return fitInput{Maturities: m, Rates: r}, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, nss.ErrInvalidInput), errors.Is(err, input.ErrSyntax):
		return "invalid_input"
	case errors.Is(err, nss.ErrNumericalInstability):
		return "numerical_instability"
	default:
		return "error"
	}
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]fitInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []fitInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var in fitInput
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return nil, false, err
	}
	return []fitInput{in}, false, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(fitOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
