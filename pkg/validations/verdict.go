// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validations

import (
	"fmt"

	"github.com/verdantlabs/powerval/pkg/compare"
	"github.com/verdantlabs/powerval/pkg/series"
)

// Verdict classifies one validation's comparison result.
type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictFail  Verdict = "FAIL"
	VerdictError Verdict = "ERROR"
)

// Outcome is the evaluated result of one validation: the comparison result,
// per-metric pass flags, the overall verdict, and bookkeeping for the report.
// UnexpectedError is set by the batch runner when the comparison itself blew
// up; in that case Result is the zero value.
type Outcome struct {
	Validation Validation
	Result     compare.Result

	MSEPassed  bool
	MAPEPassed bool
	MAEPassed  bool

	UnexpectedError string
	Verdict         Verdict
	Note            string
}

// metricPassed applies the threshold rule: no configured maximum always
// passes; an errored metric never passes.
func metricPassed(max *float64, metric series.ValueOrError) bool {
	if max == nil {
		return true
	}
	return metric.Err == nil && metric.Value <= *max
}

// Evaluate classifies a comparison result against the validation's
// thresholds. The verdict is PASS only when all three configured metrics
// pass; ERROR when any metric carries a computation error; FAIL otherwise.
func Evaluate(v Validation, result compare.Result) Outcome {
	outcome := Outcome{
		Validation: v,
		Result:     result,
		MSEPassed:  metricPassed(v.MaxMSE, result.MSE),
		MAPEPassed: metricPassed(v.MaxMAPE, result.MAPE),
		MAEPassed:  metricPassed(v.MaxMAE, result.MAE),
	}

	switch {
	case result.MSE.Err != nil || result.MAPE.Err != nil || result.MAE.Err != nil:
		outcome.Verdict = VerdictError
	case outcome.MSEPassed && outcome.MAPEPassed && outcome.MAEPassed:
		outcome.Verdict = VerdictPass
	default:
		outcome.Verdict = VerdictFail
	}

	if result.DroppedActual > 0 || result.DroppedPredicted > 0 {
		outcome.Note = fmt.Sprintf("dropped %d actual / %d predicted samples during alignment",
			result.DroppedActual, result.DroppedPredicted)
	}
	return outcome
}

// ErrorOutcome records a validation whose comparison failed outright
// (cardinality violation, fetch failure, panic).
func ErrorOutcome(v Validation, reason string) Outcome {
	return Outcome{
		Validation:      v,
		UnexpectedError: reason,
		Verdict:         VerdictError,
	}
}
