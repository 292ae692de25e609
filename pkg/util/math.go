package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// Clip bounds v to [lo, hi]. NaN maps to lo. When lo > hi the result is hi.
func Clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func Clip01(v float64) float64 { return Clip(v, 0, 1) }

// RoundMoney rounds half away from zero to cents.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FloorMoney truncates toward negative infinity at cents.
func FloorMoney(v float64) float64 {
	return decimal.NewFromFloat(v).RoundFloor(2).InexactFloat64()
}

// PopStdDev is the population standard deviation.
func PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Diffs returns consecutive differences of xs.
func Diffs(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}
