// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validations loads the declarative list of named comparisons and
// classifies comparison results against their configured thresholds.
package validations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verdantlabs/powerval/pkg/config"
	"github.com/verdantlabs/powerval/pkg/query"
	"github.com/verdantlabs/powerval/pkg/validation"
)

// Default keys identifying the two query-template fields of an entry.
const (
	DefaultActualKey    = "actual"
	DefaultPredictedKey = "predicted"
)

// Validation is one named comparison unit: a ground-truth query, a derived
// query, display labels for each side, a unit, and optional maximum
// thresholds per metric. A nil threshold means no check for that metric.
type Validation struct {
	Name      string
	Actual    query.Template
	Predicted query.Template

	ActualLabel    string
	PredictedLabel string
	Units          string

	MaxMSE  *float64
	MaxMAPE *float64
	MaxMAE  *float64
}

type queryKeys struct {
	Actual    string `yaml:"actual"`
	Predicted string `yaml:"predicted"`
}

func (k queryKeys) withDefaults(base queryKeys) queryKeys {
	if k.Actual == "" {
		k.Actual = base.Actual
	}
	if k.Predicted == "" {
		k.Predicted = base.Predicted
	}
	return k
}

type entrySpec struct {
	Name      string            `yaml:"name"`
	QueryKeys *queryKeys        `yaml:"query_keys"`
	Labels    map[string]string `yaml:"labels"`
	Units     string            `yaml:"units"`
	MaxMSE    *float64          `yaml:"max_mse"`
	MaxMAPE   *float64          `yaml:"max_mape"`
	MaxMAE    *float64          `yaml:"max_mae"`
	Queries   map[string]string `yaml:",inline"`
}

type fileSpec struct {
	Config struct {
		QueryKeys queryKeys         `yaml:"query_keys"`
		Labels    map[string]string `yaml:"labels"`
	} `yaml:"config"`
	Validations []entrySpec `yaml:"validations"`
}

// ReadFile parses a validations file and resolves every query template
// against vars. Any malformed entry or undefined template variable fails the
// whole load; partial loads are not supported.
func ReadFile(path string, vars map[string]string) ([]Validation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read validations file: %w", err)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse validations file %s: %w", path, err)
	}
	if len(spec.Validations) == 0 {
		return nil, fmt.Errorf("validations file %s defines no validations", path)
	}

	defaults := queryKeys{Actual: DefaultActualKey, Predicted: DefaultPredictedKey}
	fileKeys := spec.Config.QueryKeys.withDefaults(defaults)

	validations := make([]Validation, 0, len(spec.Validations))
	for i, entry := range spec.Validations {
		v, err := buildValidation(entry, fileKeys, spec.Config.Labels, vars)
		if err != nil {
			return nil, fmt.Errorf("validation %d: %w", i, err)
		}
		validations = append(validations, v)
	}
	return validations, nil
}

func buildValidation(entry entrySpec, fileKeys queryKeys, fileLabels, vars map[string]string) (Validation, error) {
	if entry.Name == "" {
		return Validation{}, fmt.Errorf("missing name")
	}

	keys := fileKeys
	if entry.QueryKeys != nil {
		keys = entry.QueryKeys.withDefaults(fileKeys)
	}
	for _, key := range []string{keys.Actual, keys.Predicted} {
		if err := validation.ValidateLabelName(key); err != nil {
			return Validation{}, fmt.Errorf("%s: query key: %w", entry.Name, err)
		}
	}

	actual, err := resolveQuery(entry, keys.Actual, vars)
	if err != nil {
		return Validation{}, fmt.Errorf("%s: %w", entry.Name, err)
	}
	predicted, err := resolveQuery(entry, keys.Predicted, vars)
	if err != nil {
		return Validation{}, fmt.Errorf("%s: %w", entry.Name, err)
	}

	return Validation{
		Name:           entry.Name,
		Actual:         actual,
		Predicted:      predicted,
		ActualLabel:    sideLabel(keys.Actual, entry.Labels, fileLabels),
		PredictedLabel: sideLabel(keys.Predicted, entry.Labels, fileLabels),
		Units:          entry.Units,
		MaxMSE:         entry.MaxMSE,
		MaxMAPE:        entry.MaxMAPE,
		MaxMAE:         entry.MaxMAE,
	}, nil
}

func resolveQuery(entry entrySpec, key string, vars map[string]string) (query.Template, error) {
	raw, ok := entry.Queries[key]
	if !ok || raw == "" {
		return query.Template{}, fmt.Errorf("missing query field %q", key)
	}
	tmpl, err := query.New(raw, vars)
	if err != nil {
		return query.Template{}, fmt.Errorf("query field %q: %w", key, err)
	}
	return tmpl, nil
}

// sideLabel resolves the display label for one side: entry-local override,
// else the file-level default mapping, else the side's own key.
func sideLabel(key string, entryLabels, fileLabels map[string]string) string {
	if label, ok := entryLabels[key]; ok && label != "" {
		return label
	}
	if label, ok := fileLabels[key]; ok && label != "" {
		return label
	}
	return key
}

// Loader builds the variable context from the runtime configuration and
// loads the configured validations file against it.
type Loader struct {
	cfg *config.Config
}

// NewLoader returns a Loader for cfg.
func NewLoader(cfg *config.Config) *Loader {
	return &Loader{cfg: cfg}
}

// Vars constructs the template variable context. The workload identification
// strategy is mutually exclusive: a non-zero PID produces a process-scoped
// selector, otherwise the workload name produces a name-based
// regular-expression selector.
func (l *Loader) Vars() (map[string]string, error) {
	vars := map[string]string{}

	vm := l.cfg.Metal.VM
	if vm.PID != 0 {
		vars["level"] = "process"
		vars["vm_selector"] = fmt.Sprintf(`pid="%d"`, vm.PID)
	} else {
		if err := validation.ValidateWorkloadName(vm.Name); err != nil {
			return nil, fmt.Errorf("metal.vm.name: %w", err)
		}
		vars["level"] = "vm"
		vars["vm_selector"] = fmt.Sprintf(`vm_id=~".*%s"`, vm.Name)
	}

	prom := l.cfg.Prometheus
	for _, job := range []string{prom.Job.Metal, prom.Job.VM} {
		if err := validation.ValidateWorkloadName(job); err != nil {
			return nil, fmt.Errorf("prometheus.job: %w", err)
		}
	}
	vars["rate_interval"] = prom.RateInterval
	vars["metal_job_name"] = prom.Job.Metal
	vars["vm_job_name"] = prom.Job.VM
	return vars, nil
}

// Load builds the variable context and reads the configured validations file.
func (l *Loader) Load() ([]Validation, error) {
	vars, err := l.Vars()
	if err != nil {
		return nil, err
	}
	return ReadFile(l.cfg.ValidationsFile, vars)
}
