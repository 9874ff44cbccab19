// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVars = map[string]string{
	"vm_selector":    `vm_id=~".*myvm"`,
	"level":          "vm",
	"rate_interval":  "20s",
	"metal_job_name": "metal",
	"vm_job_name":    "vm",
}

func TestNewResolvesPlaceholders(t *testing.T) {
	tmpl, err := New(`rate(node_cpu_joules_total{{vm_selector}, job="{metal_job_name}"}[{rate_interval}])`, testVars)
	require.NoError(t, err)

	assert.Equal(t, `rate(node_cpu_joules_total{vm_id=~".*myvm", job="metal"}[20s])`, tmpl.Resolved())
	assert.Contains(t, tmpl.Original(), "{vm_selector}")
}

func TestNewMissingVariable(t *testing.T) {
	_, err := New(`sum(node_cpu_joules_total{job="{job_name}"})`, testVars)
	require.Error(t, err)

	var missing *MissingVariableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "job_name", missing.Name)
}

func TestOneLine(t *testing.T) {
	tmpl, err := New("sum(\n  rate(process_cpu_seconds_total[{rate_interval}])\n)\n", testVars)
	require.NoError(t, err)

	want := "sum( rate(process_cpu_seconds_total[20s]) )"
	assert.Equal(t, want, tmpl.OneLine())
}

func TestOneLineIdempotent(t *testing.T) {
	tmpl, err := New("sum by (mode) (\n\trate(vm_cpu_usage_seconds_total[5m])\n)", nil)
	require.NoError(t, err)

	once := tmpl.OneLine()
	rebuilt, err := New(once, nil)
	require.NoError(t, err)
	assert.Equal(t, once, rebuilt.OneLine())
}

func TestMetricName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain counter", `node_platform_joules_total{job="vm"}`, "node_platform_joules_total"},
		{"inside rate", `rate(process_cpu_bpf_time_total{mode="dynamic"}[20s])`, "process_cpu_bpf_time_total"},
		{"no counter token", `avg(node_load1)`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.query, nil)
			require.NoError(t, err)
			if tt.want != "" {
				assert.Equal(t, tt.want, tmpl.MetricName())
				return
			}
			assert.Regexp(t, `^unknown_[0-9a-f]{8}$`, tmpl.MetricName())
		})
	}
}

func TestMetricNameFallbackDeterministic(t *testing.T) {
	a, err := New(`avg(node_load1)`, nil)
	require.NoError(t, err)
	b, err := New(`avg(node_load1)`, nil)
	require.NoError(t, err)
	c, err := New(`avg(node_load5)`, nil)
	require.NoError(t, err)

	assert.Equal(t, a.MetricName(), b.MetricName())
	assert.NotEqual(t, a.MetricName(), c.MetricName())
}

func TestMode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"double quoted", `process_cpu_bpf_time_total{mode="dynamic"}`, "dynamic"},
		{"single quoted", `process_cpu_bpf_time_total{mode='idle'}`, "idle"},
		{"absent", `process_cpu_bpf_time_total{job="vm"}`, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := New(tt.query, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.Mode())
		})
	}
}
