// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package machine collects the host hardware and OS details embedded in
// validation reports, so a report is interpretable without access to the
// machine it ran on.
package machine

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Spec describes the machine a validation run executed on.
type Spec struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	KernelVersion string `json:"kernel_version"`

	CPUModel    string `json:"cpu_model"`
	CPUCores    int    `json:"cpu_cores"`
	MemoryBytes uint64 `json:"memory_bytes"`
}

// Collect gathers the machine spec. Collection is best effort: a probe that
// fails leaves its fields zero and logs a warning, since a missing spec
// detail must never fail a validation run.
func Collect() Spec {
	var spec Spec

	if info, err := host.Info(); err == nil {
		spec.Hostname = info.Hostname
		spec.OS = info.OS
		spec.Platform = info.Platform
		spec.KernelVersion = info.KernelVersion
	} else {
		slog.Warn("failed to collect host info", "error", err)
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		spec.CPUModel = infos[0].ModelName
	} else if err != nil {
		slog.Warn("failed to collect cpu info", "error", err)
	}
	if cores, err := cpu.Counts(true); err == nil {
		spec.CPUCores = cores
	} else {
		slog.Warn("failed to count cpus", "error", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		spec.MemoryBytes = vm.Total
	} else {
		slog.Warn("failed to collect memory info", "error", err)
	}

	return spec
}
