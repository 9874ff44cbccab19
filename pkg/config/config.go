// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the runtime configuration for a validation run.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// VM identifies the workload whose derived metrics are being validated.
// Exactly one identification strategy applies: a non-zero PID selects
// process-scoped queries, otherwise Name selects workload-scoped queries by
// a name-based regular expression.
type VM struct {
	PID  int    `yaml:"pid"`
	Name string `yaml:"name"`
}

// Metal holds the bare-metal side of the comparison.
type Metal struct {
	VM VM `yaml:"vm"`
}

// PrometheusJob carries the job label values for the two comparison sides.
type PrometheusJob struct {
	Metal string `yaml:"metal" validate:"required"`
	VM    string `yaml:"vm" validate:"required"`
}

// Prometheus holds the connection and query-shape settings.
type Prometheus struct {
	URL          string        `yaml:"url" validate:"required,url"`
	RateInterval string        `yaml:"rate_interval" validate:"required"`
	Step         string        `yaml:"step" validate:"required"`
	Job          PrometheusJob `yaml:"job"`
}

// StepDuration returns the query resolution step as a duration.
func (p Prometheus) StepDuration() (time.Duration, error) {
	step, err := time.ParseDuration(p.Step)
	if err != nil {
		return 0, fmt.Errorf("invalid prometheus step %q: %w", p.Step, err)
	}
	return step, nil
}

// Report configures where run artifacts are written.
type Report struct {
	Dir         string `yaml:"dir" validate:"required"`
	MachineSpec bool   `yaml:"machine_spec"`
}

// Config is the full runtime configuration.
type Config struct {
	LogLevel        string     `yaml:"log_level"`
	Metal           Metal      `yaml:"metal"`
	Prometheus      Prometheus `yaml:"prometheus"`
	ValidationsFile string     `yaml:"validations_file" validate:"required"`
	Report          Report     `yaml:"report"`
}

// Default returns a Config populated with the defaults applied when the file
// omits a field. The rate interval should be at least 4x the scrape interval.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Prometheus: Prometheus{
			RateInterval: "20s",
			Step:         "3s",
			Job:          PrometheusJob{Metal: "metal", VM: "vm"},
		},
		ValidationsFile: "validations.yaml",
		Report:          Report{Dir: "/tmp/powerval", MachineSpec: true},
	}
}

// Load reads path, applies defaults for omitted fields, and validates the
// result. Configuration errors are operator errors and abort the run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if _, err := cfg.Prometheus.StepDuration(); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(cfg.Prometheus.RateInterval); err != nil {
		return nil, fmt.Errorf("invalid prometheus rate_interval %q: %w", cfg.Prometheus.RateInterval, err)
	}
	return &cfg, nil
}
