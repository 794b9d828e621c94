package input

import (
	"fmt"
	"strings"
)

// ParseTenor converts tenor strings like "1W", "3M", "10Y" to year fractions.
// Days and weeks use a 365-day year. A bare number is taken as years.
func ParseTenor(tenor string) (float64, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if tenor == "" {
		return 0, fmt.Errorf("%w: empty tenor", ErrSyntax)
	}

	unit := tenor[len(tenor)-1]
	var perYear float64
	switch unit {
	case 'D':
		perYear = 365
	case 'W':
		perYear = 365.0 / 7.0
	case 'M':
		perYear = 12
	case 'Y':
		perYear = 1
	default:
		return parseNumber(tenor)
	}

	v, err := parseNumber(strings.TrimSuffix(tenor, string(unit)))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad tenor %q", ErrSyntax, tenor)
	}
	return v / perYear, nil
}
