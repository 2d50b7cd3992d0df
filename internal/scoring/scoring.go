// Package scoring provides the shared confidence, variance, and severity math
// used by all detectors.
package scoring

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values, or 0 when
// fewer than two samples exist.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Median returns the middle value of the sorted input, or 0 for an empty
// slice. The input slice is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Quartile returns the value at the given quartile (0.25, 0.5, 0.75) of the
// sorted input using linear interpolation.
func Quartile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Clamp01 clamps v to the [0,1] confidence range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CoefficientOfVariation returns stddev/mean, or 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}

// RegularityConfidence scores how evenly spaced a series of intervals is:
// 1 - (stddev / mean), clamped to [0,1].
func RegularityConfidence(intervals []float64) float64 {
	mean := Mean(intervals)
	if mean == 0 {
		return 0
	}
	return Clamp01(1 - StdDev(intervals)/mean)
}

// SampleBonus maps a sample count onto [0,1], saturating at saturation
// samples. More observations mean more trust in the derived statistic.
func SampleBonus(count, saturation int) float64 {
	if saturation <= 0 {
		return 0
	}
	return Clamp01(float64(count) / float64(saturation))
}
