// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplesAt(timestamps ...int64) []Sample {
	samples := make([]Sample, len(timestamps))
	for i, ts := range timestamps {
		samples[i] = Sample{Timestamp: ts, Value: float64(ts) * 1.1}
	}
	return samples
}

func TestAlignTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		a     []int64
		b     []int64
		wantA []int64
		wantB []int64
	}{
		{
			name: "identical grids",
			a:    []int64{1, 2, 3, 4}, b: []int64{1, 2, 3, 4},
			wantA: []int64{1, 2, 3, 4}, wantB: []int64{1, 2, 3, 4},
		},
		{
			name: "b starts late",
			a:    []int64{1, 2, 3, 4}, b: []int64{2, 3, 4},
			wantA: []int64{2, 3, 4}, wantB: []int64{2, 3, 4},
		},
		{
			name: "b ends late",
			a:    []int64{1, 2, 3}, b: []int64{1, 2, 3, 4},
			wantA: []int64{1, 2, 3}, wantB: []int64{1, 2, 3},
		},
		{
			name: "gap in a",
			a:    []int64{1, 3, 4}, b: []int64{1, 2, 3, 4},
			wantA: []int64{1, 3, 4}, wantB: []int64{1, 3, 4},
		},
		{
			name: "two gaps in a",
			a:    []int64{1, 4}, b: []int64{1, 2, 3, 4},
			wantA: []int64{1, 4}, wantB: []int64{1, 4},
		},
		{
			name: "disjoint ranges",
			a:    []int64{1, 2, 3, 4}, b: []int64{100, 200, 300, 400},
			wantA: []int64{}, wantB: []int64{},
		},
		{
			name: "matching three second cadence",
			a:    []int64{100, 103, 106}, b: []int64{100, 103, 106},
			wantA: []int64{100, 103, 106}, wantB: []int64{100, 103, 106},
		},
		{
			name: "single sample cannot establish cadence",
			a:    []int64{100}, b: []int64{100, 103, 106},
			wantA: []int64{}, wantB: []int64{},
		},
		{
			name: "empty input",
			a:    nil, b: []int64{100, 103},
			wantA: []int64{}, wantB: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New("a", nil, samplesAt(tt.a...))
			b := New("b", nil, samplesAt(tt.b...))

			gotA, gotB := AlignTimestamps(a, b)
			assert.Equal(t, tt.wantA, gotA.Timestamps())
			assert.Equal(t, tt.wantB, gotB.Timestamps())
			assert.Equal(t, gotA.Len(), gotB.Len())

			// Swapping the arguments must yield the same pairs, swapped.
			swappedB, swappedA := AlignTimestamps(b, a)
			assert.Equal(t, gotA.Timestamps(), swappedA.Timestamps())
			assert.Equal(t, gotB.Timestamps(), swappedB.Timestamps())
		})
	}
}

func TestAlignTimestampsKeepsIdentity(t *testing.T) {
	a := New("query_a", map[string]string{"job": "metal"}, samplesAt(1, 2, 3))
	b := New("query_b", map[string]string{"job": "vm"}, samplesAt(2, 3, 4))

	gotA, gotB := AlignTimestamps(a, b)

	assert.Equal(t, "query_a", gotA.Query)
	assert.Equal(t, "query_b", gotB.Query)
	assert.Equal(t, map[string]string{"job": "metal"}, gotA.Labels)
	assert.Equal(t, map[string]string{"job": "vm"}, gotB.Labels)

	// Inputs are untouched.
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 3, b.Len())
}

func TestAlignTimestampsDroppedCounts(t *testing.T) {
	a := New("a", nil, samplesAt(1, 2, 3))
	b := New("b", nil, samplesAt(100, 200, 300))

	gotA, gotB := AlignTimestamps(a, b)

	assert.Zero(t, gotA.Len())
	assert.Zero(t, gotB.Len())
	assert.Equal(t, 3, a.Len()-gotA.Len())
	assert.Equal(t, 3, b.Len()-gotB.Len())
}
