package utils

import (
	"fmt"
	"time"
)

// Supported day count conventions.
const (
	Act360  = "ACT/360"
	Act365F = "ACT/365F"
	Thirty  = "30/360"
	Thirty3 = "30E/360"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, 30E/360, 30/360. An empty
// convention means ACT/365F.
func YearFraction(start, end time.Time, convention string) (float64, error) {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0, nil
	case Act365F, "":
		return Days(start, end) / 365.0, nil
	case Thirty3, Thirty:
		// 30E/360 ISDA (Eurobond basis)
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0, nil
	default:
		return 0, fmt.Errorf("YearFraction: unsupported day count %q", convention)
	}
}

// MaturitiesFromDates converts maturity dates into year fractions from
// settlement, keeping the input order. Dates on or before settlement
// produce non-positive maturities, which the fitter rejects.
func MaturitiesFromDates(settlement time.Time, dates []time.Time, convention string) ([]float64, error) {
	out := make([]float64, len(dates))
	for i, d := range dates {
		yf, err := YearFraction(settlement, d, convention)
		if err != nil {
			return nil, err
		}
		out[i] = yf
	}
	return out, nil
}
