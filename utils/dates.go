package utils

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the only date format accepted on input.
const DateLayout = "2006-01-02"

// ParseDate converts YYYY-MM-DD to time.Time.
func ParseDate(strDate string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", strDate, err)
	}
	return t, nil
}

// ParseDates applies ParseDate to each element.
func ParseDates(strDates []string) ([]time.Time, error) {
	out := make([]time.Time, len(strDates))
	for i, s := range strDates {
		t, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Days returns the day count fraction in days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
