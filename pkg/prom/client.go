// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package prom implements the fetch capability against a Prometheus server
// using its HTTP API.
package prom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/verdantlabs/powerval/pkg/series"
)

// Client wraps the Prometheus HTTP API as a compare.Fetcher. The query
// resolution step is fixed at construction and should match the validation
// queries' rate windows (rate interval at least 4x the scrape interval).
type Client struct {
	api  promv1.API
	step time.Duration
}

// NewClient builds a Client for the Prometheus server at url.
func NewClient(url string, step time.Duration) (*Client, error) {
	c, err := api.NewClient(api.Config{Address: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client for %s: %w", url, err)
	}
	return &Client{api: promv1.NewAPI(c), step: step}, nil
}

// RangeQuery evaluates query over [start, end] and converts the response
// matrix into series values.
func (c *Client) RangeQuery(ctx context.Context, query string, start, end time.Time) ([]series.Series, error) {
	value, warnings, err := c.api.QueryRange(ctx, query, promv1.Range{Start: start, End: end, Step: c.step})
	if err != nil {
		return nil, fmt.Errorf("range query failed for %s: %w", query, err)
	}
	for _, w := range warnings {
		slog.Warn("prometheus warning", "query", query, "warning", w)
	}

	matrix, ok := value.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %s for query %s, want matrix", value.Type(), query)
	}
	return FromMatrix(query, matrix), nil
}

// FromMatrix converts a Prometheus response matrix into one Series per
// sample stream, preserving label sets and sample order.
func FromMatrix(query string, matrix model.Matrix) []series.Series {
	result := make([]series.Series, 0, len(matrix))
	for _, stream := range matrix {
		labels := make(map[string]string, len(stream.Metric))
		for name, value := range stream.Metric {
			labels[string(name)] = string(value)
		}

		samples := make([]series.Sample, len(stream.Values))
		for i, pair := range stream.Values {
			samples[i] = series.Sample{
				Timestamp: pair.Timestamp.Unix(),
				Value:     float64(pair.Value),
			}
		}
		result = append(result, series.New(query, labels, samples))
	}
	return result
}
