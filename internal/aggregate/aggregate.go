// Package aggregate condenses a burst of raw sensor samples into a single
// value. Infrared sky readings are noisy and occasionally spike when the
// sensor catches a bird or heat plume, so the capture loop takes several
// samples per cycle and aggregates them before correction.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the middle value of samples. Returns 0 for an empty
// slice. The input is not modified.
func Median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Mean returns the arithmetic mean of samples, or 0 for an empty slice.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// TrimmedMean discards the largest and smallest sample before averaging,
// which knocks out single-sample spikes without the lag of a median over
// a short burst. Falls back to Mean when there are fewer than three
// samples. The input is not modified.
func TrimmedMean(samples []float64) float64 {
	if len(samples) < 3 {
		return Mean(samples)
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return stat.Mean(sorted[1:len(sorted)-1], nil)
}
