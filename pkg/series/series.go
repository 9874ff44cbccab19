// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package series models labeled, time-ordered telemetry samples and the
// numeric machinery used to compare two of them: timestamp alignment under
// sampling jitter and the standard regression-error metrics (MSE, MAE, MAPE).
package series

import "time"

// Sample is a single (timestamp, value) observation. Timestamps are epoch
// seconds, as delivered by a Prometheus range query.
type Sample struct {
	Timestamp int64
	Value     float64
}

// Time returns the wall-clock representation of the sample's timestamp.
// Display only; all comparisons operate on the raw epoch seconds.
func (s Sample) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Series is one identified time series: its originating query, the label set
// that identifies it, and its samples in ascending timestamp order as
// delivered by the source. A Series is never mutated after construction;
// alignment produces new Series values instead of editing in place.
type Series struct {
	Query   string
	Labels  map[string]string
	Samples []Sample
}

// New builds a Series from a query, a label set, and samples. The sample
// slice is copied so later mutation of the caller's slice cannot leak in.
// Samples must already be in ascending timestamp order.
func New(query string, labels map[string]string, samples []Sample) Series {
	copied := make([]Sample, len(samples))
	copy(copied, samples)
	return Series{Query: query, Labels: labels, Samples: copied}
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Samples)
}

// Values returns the sample values in timestamp order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Samples))
	for i, sample := range s.Samples {
		values[i] = sample.Value
	}
	return values
}

// Timestamps returns the sample timestamps in order.
func (s Series) Timestamps() []int64 {
	timestamps := make([]int64, len(s.Samples))
	for i, sample := range s.Samples {
		timestamps[i] = sample.Timestamp
	}
	return timestamps
}
