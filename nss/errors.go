package nss

import "errors"

var (
	// ErrInvalidInput marks inputs rejected before the solver runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericalInstability marks a non-finite objective, i.e. the curve
	// produced NaN or Inf at the starting point or at the best point found.
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrNotConverged is non-fatal. It is carried in FitResult.Warning when
	// the solver stopped on a budget or a method failure; the parameters in
	// the result are the best found so far.
	ErrNotConverged = errors.New("solver did not converge")
)
