package nss

import (
	"fmt"
	"math"
)

// TauFloor is the smallest decay scale the default bounds admit.
// Both taus are kept strictly positive so the curve never divides by zero.
const TauFloor = 1e-4

// Interval is an inclusive [Lower, Upper] range; either side may be infinite.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies inside the interval.
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lower && v <= iv.Upper
}

// Bounds holds one interval per parameter, in Params order.
type Bounds [NumParams]Interval

// Unbounded is (−∞, +∞).
var Unbounded = Interval{Lower: math.Inf(-1), Upper: math.Inf(1)}

// DefaultBounds keeps the level non-negative and both taus above TauFloor.
var DefaultBounds = Bounds{
	{Lower: 0, Upper: math.Inf(1)},
	Unbounded,
	Unbounded,
	Unbounded,
	{Lower: TauFloor, Upper: math.Inf(1)},
	{Lower: TauFloor, Upper: math.Inf(1)},
}

// Contains reports whether every parameter of p lies inside its interval.
func (b Bounds) Contains(p Params) bool {
	for i, v := range p.Slice() {
		if !b[i].Contains(v) {
			return false
		}
	}
	return true
}

// Validate rejects NaN limits, inverted intervals and tau intervals that
// reach zero or below.
func (b Bounds) Validate() error {
	for i, iv := range b {
		name := ParamNames[i]
		if math.IsNaN(iv.Lower) || math.IsNaN(iv.Upper) {
			return fmt.Errorf("bounds: %s has a NaN limit: %w", name, ErrInvalidInput)
		}
		if iv.Lower > iv.Upper {
			return fmt.Errorf("bounds: %s lower %g exceeds upper %g: %w", name, iv.Lower, iv.Upper, ErrInvalidInput)
		}
		if math.IsInf(iv.Lower, 1) || math.IsInf(iv.Upper, -1) {
			return fmt.Errorf("bounds: %s interval is empty: %w", name, ErrInvalidInput)
		}
	}
	for _, i := range []int{4, 5} {
		if !(b[i].Lower > 0) {
			return fmt.Errorf("bounds: %s lower bound must be > 0, got %g: %w", ParamNames[i], b[i].Lower, ErrInvalidInput)
		}
	}
	return nil
}

// fold maps an unconstrained coordinate u onto iv by reflecting at the
// limits. Points inside the interval map to themselves, so the search can
// start from the caller's guess unchanged and can land exactly on a limit.
func (iv Interval) fold(u float64) float64 {
	lo, hi := iv.Lower, iv.Upper
	loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)

	switch {
	case loInf && hiInf:
		return u
	case hiInf:
		return lo + math.Abs(u-lo)
	case loInf:
		return hi - math.Abs(hi-u)
	}

	w := hi - lo
	if w == 0 {
		return lo
	}
	r := math.Mod(u-lo, 2*w)
	if r < 0 {
		r += 2 * w
	}
	if r > w {
		r = 2*w - r
	}
	return lo + r
}

// project folds every coordinate of x into b, writing into dst.
func (b Bounds) project(dst, x []float64) []float64 {
	for i := range x {
		dst[i] = b[i].fold(x[i])
	}
	return dst
}
