// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdantlabs/powerval/pkg/compare"
	"github.com/verdantlabs/powerval/pkg/series"
)

func threshold(v float64) *float64 {
	return &v
}

func okResult(mse, mape, mae float64) compare.Result {
	return compare.Result{
		MSE:  series.ValueOrError{Value: mse},
		MAPE: series.ValueOrError{Value: mape},
		MAE:  series.ValueOrError{Value: mae},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		v       Validation
		result  compare.Result
		verdict Verdict
	}{
		{
			name:    "no thresholds always passes",
			v:       Validation{Name: "unchecked"},
			result:  okResult(100, 100, 100),
			verdict: VerdictPass,
		},
		{
			name:    "all thresholds met",
			v:       Validation{Name: "ok", MaxMSE: threshold(0.1), MaxMAPE: threshold(10), MaxMAE: threshold(0.2)},
			result:  okResult(0.02, 7.78, 0.13),
			verdict: VerdictPass,
		},
		{
			name:    "mape over threshold",
			v:       Validation{Name: "drift", MaxMAPE: threshold(5.0)},
			result:  okResult(0.02, 7.78, 0.13),
			verdict: VerdictFail,
		},
		{
			name:    "boundary value passes",
			v:       Validation{Name: "edge", MaxMAPE: threshold(7.78)},
			result:  okResult(0, 7.78, 0),
			verdict: VerdictPass,
		},
		{
			name: "metric error yields error verdict",
			v:    Validation{Name: "broken", MaxMAPE: threshold(5.0)},
			result: compare.Result{
				MSE:  series.ValueOrError{Value: 0.1},
				MAPE: series.ValueOrError{Err: errors.New("actual must not contain zero values: zero at index 0")},
				MAE:  series.ValueOrError{Value: 0.1},
			},
			verdict: VerdictError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Evaluate(tt.v, tt.result)
			assert.Equal(t, tt.verdict, outcome.Verdict)
		})
	}
}

func TestEvaluateMetricFlags(t *testing.T) {
	v := Validation{Name: "drift", MaxMAPE: threshold(5.0)}
	outcome := Evaluate(v, okResult(0.02, 7.78, 0.13))

	assert.False(t, outcome.MAPEPassed)
	assert.True(t, outcome.MSEPassed) // unset threshold means no check
	assert.True(t, outcome.MAEPassed)
	assert.Equal(t, VerdictFail, outcome.Verdict)
}

func TestEvaluateNotesDroppedSamples(t *testing.T) {
	result := okResult(0, 0, 0)
	result.DroppedActual = 3

	outcome := Evaluate(Validation{Name: "jitter"}, result)
	assert.Equal(t, VerdictPass, outcome.Verdict)
	assert.Contains(t, outcome.Note, "dropped 3 actual / 0 predicted")
}

func TestErrorOutcome(t *testing.T) {
	outcome := ErrorOutcome(Validation{Name: "gone"}, "expected 1 series, got 0 for query: up")
	assert.Equal(t, VerdictError, outcome.Verdict)
	assert.Equal(t, "expected 1 series, got 0 for query: up", outcome.UnexpectedError)
}
