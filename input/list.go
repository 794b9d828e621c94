// Package input turns user-typed text into numeric sequences for the fitter.
//
// Only bracketed numeric lists and tenor codes are understood; the text is
// never evaluated as an expression.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("input: syntax error")

// ParseList parses a list of numbers such as "[1, 2, 3]" or "0.5 0.6 0.8".
// Brackets are optional but must balance. Elements are separated by commas
// and/or whitespace. NaN and infinities are rejected.
func ParseList(s string) ([]float64, error) {
	return parseElements(s, parseNumber)
}

// ParseMaturities is ParseList that also accepts tenor codes, so
// "[6M, 1Y, 2.5, 10Y]" yields [0.5, 1, 2.5, 10].
func ParseMaturities(s string) ([]float64, error) {
	return parseElements(s, ParseTenor)
}

func parseElements(s string, parse func(string) (float64, error)) ([]float64, error) {
	body, err := unbracket(s)
	if err != nil {
		return nil, err
	}

	var fields []string
	if strings.Contains(body, ",") {
		for _, f := range strings.Split(body, ",") {
			f = strings.TrimSpace(f)
			if f == "" || strings.ContainsAny(f, " \t\r\n") {
				return nil, fmt.Errorf("%w: malformed element %q in %q", ErrSyntax, f, s)
			}
			fields = append(fields, f)
		}
	} else {
		fields = strings.Fields(body)
	}

	out := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := parse(f)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func unbracket(s string) (string, error) {
	s = strings.TrimSpace(s)
	open := strings.HasPrefix(s, "[")
	closed := strings.HasSuffix(s, "]")
	if open != closed {
		return "", fmt.Errorf("%w: unbalanced brackets in %q", ErrSyntax, s)
	}
	if open {
		s = s[1 : len(s)-1]
	}
	if strings.ContainsAny(s, "[]") {
		return "", fmt.Errorf("%w: nested lists are not supported", ErrSyntax)
	}
	return s, nil
}

func parseNumber(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrSyntax, tok)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrSyntax, tok)
	}
	return v, nil
}
