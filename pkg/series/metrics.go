// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package series

import (
	"fmt"
	"math"
	"strconv"
)

// ValueOrError is a computed scalar paired with an optional error. A nil Err
// means the value is valid. Metric functions return this instead of failing,
// so a degenerate input (empty, mismatched lengths, zero denominator) is
// representable without aborting the enclosing comparison.
type ValueOrError struct {
	Value float64
	Err   error
}

// Valid reports whether the value carries no error.
func (v ValueOrError) Valid() bool {
	return v.Err == nil
}

func (v ValueOrError) String() string {
	if v.Err != nil {
		return "Error: " + v.Err.Error()
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

func errValue(err error) ValueOrError {
	return ValueOrError{Value: 0, Err: err}
}

func validateLengths(actual, predicted []float64) error {
	if len(actual) == 0 || len(predicted) == 0 {
		return fmt.Errorf("actual (%d) and predicted (%d) must not be empty", len(actual), len(predicted))
	}
	if len(actual) != len(predicted) {
		return fmt.Errorf("actual and predicted must be of equal length: %d != %d", len(actual), len(predicted))
	}
	return nil
}

// MSE returns the mean of squared differences between the two sequences.
// Symmetric in its arguments.
func MSE(actual, predicted []float64) ValueOrError {
	if err := validateLengths(actual, predicted); err != nil {
		return errValue(err)
	}
	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return ValueOrError{Value: sum / float64(len(actual))}
}

// MAE returns the mean of absolute differences between the two sequences.
// Symmetric in its arguments.
func MAE(actual, predicted []float64) ValueOrError {
	if err := validateLengths(actual, predicted); err != nil {
		return errValue(err)
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return ValueOrError{Value: sum / float64(len(actual))}
}

// MAPE returns the mean absolute percentage error with actual as the
// percentage base, so MAPE(a, b) != MAPE(b, a) in general. A zero in the
// base sequence leaves the percentage undefined and is reported as an
// error value rather than Inf or NaN.
func MAPE(actual, predicted []float64) ValueOrError {
	if err := validateLengths(actual, predicted); err != nil {
		return errValue(err)
	}
	sum := 0.0
	for i := range actual {
		if actual[i] == 0 {
			return errValue(fmt.Errorf("actual must not contain zero values: zero at index %d", i))
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
	}
	return ValueOrError{Value: 100 * sum / float64(len(actual))}
}
