// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package runner executes a batch of validations against one time window.
// Validations run one at a time in declaration order; a failure in one never
// aborts the rest of the batch.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verdantlabs/powerval/pkg/compare"
	"github.com/verdantlabs/powerval/pkg/validations"
)

// BatchResult collects the evaluated outcome of every validation in a run.
// Passed is true only when every verdict is PASS; an ERROR verdict fails the
// batch.
type BatchResult struct {
	Start    time.Time
	End      time.Time
	Outcomes []validations.Outcome
	Passed   bool
}

// Runner drives a comparator over a list of validations.
type Runner struct {
	comparator *compare.Comparator
}

// New returns a Runner using the given comparator.
func New(comparator *compare.Comparator) *Runner {
	return &Runner{comparator: comparator}
}

// Run compares every validation over [start, end] and evaluates its verdict.
// Cardinality violations, fetch failures, and panics are confined to the
// validation that caused them and recorded as ERROR outcomes.
func (r *Runner) Run(ctx context.Context, list []validations.Validation, start, end time.Time) BatchResult {
	result := BatchResult{Start: start, End: end, Passed: true}

	for _, v := range list {
		slog.Info("running validation", "name", v.Name, "actual", v.Actual.OneLine(), "predicted", v.Predicted.OneLine())

		outcome := r.runOne(ctx, v, start, end)
		if outcome.Verdict != validations.VerdictPass {
			result.Passed = false
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result
}

func (r *Runner) runOne(ctx context.Context, v validations.Validation, start, end time.Time) (outcome validations.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("validation panicked", "name", v.Name, "panic", p)
			outcome = validations.ErrorOutcome(v, fmt.Sprintf("panic: %v", p))
		}
	}()

	result, err := r.comparator.Compare(ctx, start, end, v.Actual.Resolved(), v.Predicted.Resolved())
	if err != nil {
		slog.Error("comparison failed", "name", v.Name, "error", err)
		return validations.ErrorOutcome(v, err.Error())
	}
	return validations.Evaluate(v, result)
}
