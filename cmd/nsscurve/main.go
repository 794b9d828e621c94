package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/meenmo/nsscurve/config"
	"github.com/meenmo/nsscurve/input"
	"github.com/meenmo/nsscurve/internal/logger"
	"github.com/meenmo/nsscurve/nss"
)

type curveOutput struct {
	Params nss.Params  `json:"params"`
	Points []nss.Point `json:"points,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "YAML config path (defaults and NSS_* env if omitted)")
	paramsText := flag.String("params", "", "Parameters as \"[b0, b1, b2, b3, tau1, tau2]\"")
	gridText := flag.String("maturities", "", "Maturities to evaluate (defaults to the preview grid)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help || *paramsText == "" {
		fmt.Fprintln(os.Stderr, "Usage: nsscurve -params \"[b0, b1, b2, b3, tau1, tau2]\" [-maturities \"[1, 2, 5]\"]")
		fmt.Fprintln(os.Stderr, "Evaluate the Nelson-Siegel-Svensson curve for given parameters.")
		if !*help {
			os.Exit(2)
		}
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		exitError(fmt.Sprintf("load config: %v", err))
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Component("nsscurve")

	out, err := evaluate(cfg, *paramsText, *gridText)
	if err != nil {
		exitError(err.Error())
	}
	log.Debug().Int("points", len(out.Points)).Msg("curve evaluated")

	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}

func evaluate(cfg *config.Config, paramsText, gridText string) (*curveOutput, error) {
	values, err := input.ParseList(paramsText)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	p, err := nss.ParamsFromSlice(values)
	if err != nil {
		return nil, err
	}
	if !(p.Tau1 > 0) || !(p.Tau2 > 0) {
		return nil, fmt.Errorf("params: tau1 and tau2 must be positive: %w", nss.ErrInvalidInput)
	}

	var grid []float64
	if gridText == "" {
		grid, err = cfg.Grid()
	} else {
		grid, err = input.ParseMaturities(gridText)
	}
	if err != nil {
		return nil, fmt.Errorf("maturities: %w", err)
	}
	for i, t := range grid {
		if !(t > 0) {
			return nil, fmt.Errorf("maturities: element %d = %g must be positive: %w", i, t, nss.ErrInvalidInput)
		}
	}

	return &curveOutput{Params: p, Points: nss.Curve(grid, p)}, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(curveOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
