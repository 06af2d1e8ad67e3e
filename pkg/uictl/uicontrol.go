// Package uictl has numeric helpers shared by volume controls and their views.
package uictl

import (
	"math"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Levels is a control exposing a recent series of values, oldest first.
type Levels[N Number] interface {
	Read() []N
}

// Clamp bounds v to [lo, hi].
func Clamp[N Number](v, lo, hi N) N {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// Finite reports whether v is a usable number (not NaN, not ±Inf).
func Finite[F constraints.Float](v F) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Percent rounds v to the nearest whole number and bounds it to [0, 100].
// Non-finite input yields ok=false.
func Percent[F constraints.Float](v F) (pct F, ok bool) {
	if !Finite(v) {
		return 0, false
	}

	return Clamp(F(math.Round(float64(v))), 0, 100), true
}
