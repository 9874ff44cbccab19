// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/powerval/pkg/compare"
	"github.com/verdantlabs/powerval/pkg/query"
	"github.com/verdantlabs/powerval/pkg/series"
	"github.com/verdantlabs/powerval/pkg/validations"
)

// fakeFetcher serves canned responses and can panic on demand.
type fakeFetcher struct {
	responses map[string][]series.Series
	panicOn   string
}

func (f *fakeFetcher) RangeQuery(_ context.Context, q string, _, _ time.Time) ([]series.Series, error) {
	if q == f.panicOn {
		panic("fetcher blew up")
	}
	return f.responses[q], nil
}

func mustTemplate(t *testing.T, q string) query.Template {
	t.Helper()
	tmpl, err := query.New(q, nil)
	require.NoError(t, err)
	return tmpl
}

func goodSeries(q string) []series.Series {
	return []series.Series{series.New(q, nil, []series.Sample{
		{Timestamp: 100, Value: 1.0},
		{Timestamp: 103, Value: 2.0},
		{Timestamp: 106, Value: 3.0},
	})}
}

func TestRunBatchPartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[string][]series.Series{
			"good_a": goodSeries("good_a"),
			"good_b": goodSeries("good_b"),
			// "absent" is not present: cardinality violation for the second validation
		},
		panicOn: "explosive",
	}

	list := []validations.Validation{
		{
			Name:      "healthy",
			Actual:    mustTemplate(t, "good_a"),
			Predicted: mustTemplate(t, "good_b"),
		},
		{
			Name:      "missing-series",
			Actual:    mustTemplate(t, "absent"),
			Predicted: mustTemplate(t, "good_b"),
		},
		{
			Name:      "panics",
			Actual:    mustTemplate(t, "explosive"),
			Predicted: mustTemplate(t, "good_b"),
		},
		{
			Name:      "also-healthy",
			Actual:    mustTemplate(t, "good_a"),
			Predicted: mustTemplate(t, "good_b"),
		},
	}

	r := New(compare.New(fetcher))
	result := r.Run(context.Background(), list, time.Unix(100, 0), time.Unix(106, 0))

	require.Len(t, result.Outcomes, 4)
	assert.False(t, result.Passed)

	assert.Equal(t, validations.VerdictPass, result.Outcomes[0].Verdict)

	assert.Equal(t, validations.VerdictError, result.Outcomes[1].Verdict)
	assert.Contains(t, result.Outcomes[1].UnexpectedError, "expected 1 series, got 0")

	assert.Equal(t, validations.VerdictError, result.Outcomes[2].Verdict)
	assert.Contains(t, result.Outcomes[2].UnexpectedError, "panic")

	// The batch kept going after the failures.
	assert.Equal(t, validations.VerdictPass, result.Outcomes[3].Verdict)
}

func TestRunAllPassing(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string][]series.Series{
		"good_a": goodSeries("good_a"),
		"good_b": goodSeries("good_b"),
	}}

	list := []validations.Validation{{
		Name:      "identical",
		Actual:    mustTemplate(t, "good_a"),
		Predicted: mustTemplate(t, "good_b"),
	}}

	result := New(compare.New(fetcher)).Run(context.Background(), list, time.Unix(100, 0), time.Unix(106, 0))
	assert.True(t, result.Passed)
}

func TestRunFailedThresholdFailsBatch(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string][]series.Series{
		"good_a": goodSeries("good_a"),
		"off_b": {series.New("off_b", nil, []series.Sample{
			{Timestamp: 100, Value: 2.0},
			{Timestamp: 103, Value: 4.0},
			{Timestamp: 106, Value: 6.0},
		})},
	}}

	maxMAPE := 5.0
	list := []validations.Validation{{
		Name:      "way-off",
		Actual:    mustTemplate(t, "good_a"),
		Predicted: mustTemplate(t, "off_b"),
		MaxMAPE:   &maxMAPE,
	}}

	result := New(compare.New(fetcher)).Run(context.Background(), list, time.Unix(100, 0), time.Unix(106, 0))
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, validations.VerdictFail, result.Outcomes[0].Verdict)
	assert.False(t, result.Passed)
}
