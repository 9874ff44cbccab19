// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/powerval/pkg/config"
	"github.com/verdantlabs/powerval/pkg/logging"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "powerval",
		Short: "A CLI to validate estimated power metrics against ground truth",
		Long: `Powerval compares model-estimated power time series against
measured ground truth from a Prometheus instance, computes error metrics
(MSE, MAPE, MAE), and classifies each validation against its configured
thresholds.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "powerval.yaml",
		"Path to the runtime configuration file")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(queryCmd)
}

// loadConfig reads the runtime config and installs the configured logger.
// Every subcommand goes through here before touching the network.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

// resolveWindow turns the start/end/last flags into a concrete time window.
// Explicit start and end take precedence; otherwise the window is the last
// `last` duration ending now.
func resolveWindow(startFlag, endFlag string, last time.Duration) (time.Time, time.Time, error) {
	if startFlag == "" && endFlag == "" {
		end := time.Now()
		return end.Add(-last), end, nil
	}
	if startFlag == "" || endFlag == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end must be given together")
	}
	start, err := time.Parse(time.RFC3339, startFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start %q: %w", startFlag, err)
	}
	end, err := time.Parse(time.RFC3339, endFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end %q: %w", endFlag, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end must be after --start")
	}
	return start, end, nil
}
