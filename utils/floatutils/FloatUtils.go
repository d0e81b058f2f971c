// Package floatutils provides utilities for working with floats
package floatutils

import (
	"gonum.org/v1/gonum/spatial/r1"
)

// Within returns whether value lies in the closed interval
func Within(value float64, interval r1.Interval) bool {
	return value >= interval.Min && value <= interval.Max
}

// MaxSlice gets the maximum value and indices of the maximum values in
// a slice of float64.
func MaxSlice(values []float64) (max float64, indices []int) {
	max, indices = values[0], []int{0}

	for i, value := range values {
		if value > max {
			max = value
			indices = []int{i}
		} else if value == max && i != 0 {
			indices = append(indices, i)
		}
	}
	return
}

// Argmax returns the index of the maximum value in values. Ties are
// broken by the first index holding the maximum.
func Argmax(values []float64) int {
	_, indices := MaxSlice(values)
	return indices[0]
}

// Max calculates and returns the maximum float64 in a list
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, val := range floats {
		if val > max {
			max = val
		}
	}
	return max
}
