// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package compare orchestrates one comparison: fetch the actual and predicted
// series through an injected fetch capability, align them in time, and compute
// the error metrics. The comparator performs no network access of its own,
// which keeps it testable against a stub Fetcher.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verdantlabs/powerval/pkg/series"
)

// Fetcher is the narrow time-series fetch capability the comparator depends
// on: a range query returning zero or more labeled series. Implementations
// wrap a concrete telemetry backend.
type Fetcher interface {
	RangeQuery(ctx context.Context, query string, start, end time.Time) ([]series.Series, error)
}

// CardinalityError reports a query that did not denote exactly one series.
type CardinalityError struct {
	Query string
	Want  int
	Got   int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("expected %d series, got %d for query: %s", e.Want, e.Got, e.Query)
}

// Result is the outcome of one comparison: both input series exactly as
// fetched (unaligned), the count of samples dropped from each side during
// alignment, and the three error metrics computed over the aligned values.
type Result struct {
	Actual    series.Series
	Predicted series.Series

	DroppedActual    int
	DroppedPredicted int

	MSE  series.ValueOrError
	MAPE series.ValueOrError
	MAE  series.ValueOrError
}

// Comparator runs fetch-align-measure for a pair of queries.
type Comparator struct {
	fetcher Fetcher
}

// New returns a Comparator using the given fetch capability.
func New(fetcher Fetcher) *Comparator {
	return &Comparator{fetcher: fetcher}
}

func recoverFetch(err *error) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("panic during fetch: %v", p)
	}
}

// singleSeries fetches a query and requires it to denote exactly one series.
func (c *Comparator) singleSeries(ctx context.Context, query string, start, end time.Time) (series.Series, error) {
	result, err := c.fetcher.RangeQuery(ctx, query, start, end)
	if err != nil {
		return series.Series{}, fmt.Errorf("range query failed: %w", err)
	}
	if len(result) != 1 {
		return series.Series{}, &CardinalityError{Query: query, Want: 1, Got: len(result)}
	}
	return result[0], nil
}

// Compare fetches the two queries over [start, end], aligns the resulting
// series, and computes MSE, MAPE, and MAE over the aligned values with the
// actual side as the MAPE base. Fetch and cardinality problems are returned
// as errors; metric computation problems are carried inline in the Result.
func (c *Comparator) Compare(ctx context.Context, start, end time.Time, actualQuery, predictedQuery string) (Result, error) {
	var actual, predicted series.Series

	// The two sides are independent, so fetch them concurrently. Panics must
	// not escape the goroutines: a misbehaving fetcher fails this comparison
	// only, not the whole batch.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverFetch(&err)
		actual, err = c.singleSeries(gctx, actualQuery, start, end)
		return err
	})
	g.Go(func() (err error) {
		defer recoverFetch(&err)
		predicted, err = c.singleSeries(gctx, predictedQuery, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	alignedActual, alignedPredicted := series.AlignTimestamps(actual, predicted)
	droppedActual := actual.Len() - alignedActual.Len()
	droppedPredicted := predicted.Len() - alignedPredicted.Len()
	if droppedActual > 0 || droppedPredicted > 0 {
		slog.Debug("alignment dropped samples",
			"actual_dropped", droppedActual,
			"predicted_dropped", droppedPredicted,
			"actual_query", actualQuery)
	}

	actualValues := alignedActual.Values()
	predictedValues := alignedPredicted.Values()

	return Result{
		Actual:           actual,
		Predicted:        predicted,
		DroppedActual:    droppedActual,
		DroppedPredicted: droppedPredicted,
		MSE:              series.MSE(actualValues, predictedValues),
		MAPE:             series.MAPE(actualValues, predictedValues),
		MAE:              series.MAE(actualValues, predictedValues),
	}, nil
}
