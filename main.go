package main

import (
	"fmt"

	"github.com/meenmo/nsscurve/input"
	"github.com/meenmo/nsscurve/nss"
)

func main() {
	years, _ := input.ParseList("[1, 2, 3]")
	rates, _ := input.ParseList("[0.5, 0.6, 0.8]")

	res, err := nss.Fit(nss.FitInput{Maturities: years, Rates: rates})
	if err != nil {
		fmt.Printf("fit failed: %v\n", err)
		return
	}

	p := res.Params
	fmt.Printf("b0=%.6f b1=%.6f b2=%.6f b3=%.6f tau1=%.6f tau2=%.6f\n", p.B0, p.B1, p.B2, p.B3, p.Tau1, p.Tau2)
	fmt.Printf("MSE: %.3e (%s, %d iterations)\n", res.MSE, res.Status, res.Iterations)
	if res.Warning != nil {
		fmt.Printf("warning: %v\n", res.Warning)
	}
	for _, t := range []float64{1, 2, 3, 5, 10, 30} {
		fmt.Printf("%5.1fY  %.4f\n", t, nss.Rate(t, p))
	}
}
