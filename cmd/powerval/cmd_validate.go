// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/powerval/pkg/compare"
	"github.com/verdantlabs/powerval/pkg/machine"
	"github.com/verdantlabs/powerval/pkg/prom"
	"github.com/verdantlabs/powerval/pkg/report"
	"github.com/verdantlabs/powerval/pkg/runner"
	"github.com/verdantlabs/powerval/pkg/ux"
	"github.com/verdantlabs/powerval/pkg/validations"
)

var (
	validateStart string
	validateEnd   string
	validateLast  time.Duration

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Run every configured validation over a time window",
		Long: `Loads the validations file, resolves each query pair against the
configured workload, fetches both sides from Prometheus over the window, and
reports a PASS/FAIL/ERROR verdict per validation plus a run report on disk.

Examples:
  powerval validate                      # validate the last 10 minutes
  powerval validate --last 1h            # validate the last hour
  powerval validate \
    --start 2025-10-03T12:00:00Z \
    --end   2025-10-03T12:30:00Z         # validate an explicit window`,
		Run: runValidateCommand,
	}
)

func init() {
	validateCmd.Flags().StringVar(&validateStart, "start", "",
		"Window start (RFC3339); requires --end")
	validateCmd.Flags().StringVar(&validateEnd, "end", "",
		"Window end (RFC3339); requires --start")
	validateCmd.Flags().DurationVar(&validateLast, "last", 10*time.Minute,
		"Validate the trailing window of this length (ignored with --start/--end)")
}

func runValidateCommand(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start, end, err := resolveWindow(validateStart, validateEnd, validateLast)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	list, err := validations.NewLoader(cfg).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading validations: %v\n", err)
		os.Exit(1)
	}

	step, err := cfg.Prometheus.StepDuration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	client, err := prom.NewClient(cfg.Prometheus.URL, step)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Prometheus: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("%s %s to %s (%d validations)\n\n",
		ux.Styles.Title.Render("Validating"),
		start.Format(time.RFC3339), end.Format(time.RFC3339), len(list))

	batch := runner.New(compare.New(client)).Run(ctx, list, start, end)
	printBatch(batch)

	var spec *machine.Spec
	if cfg.Report.MachineSpec {
		s := machine.Collect()
		spec = &s
	}
	runDir, err := report.NewWriter(cfg.Report.Dir).Write(batch, spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nReport written to %s\n", ux.Styles.Highlight.Render(runDir))

	if !batch.Passed {
		os.Exit(1)
	}
}

func printBatch(batch runner.BatchResult) {
	for _, outcome := range batch.Outcomes {
		fmt.Printf("  %s  %s\n", ux.Verdict(string(outcome.Verdict)), outcome.Validation.Name)

		switch {
		case outcome.UnexpectedError != "":
			fmt.Printf("         %s\n", ux.Styles.Error.Render(outcome.UnexpectedError))
		default:
			fmt.Printf("         mse=%s mape=%s mae=%s\n",
				outcome.Result.MSE.String(), outcome.Result.MAPE.String(), outcome.Result.MAE.String())
		}
		if outcome.Note != "" {
			fmt.Printf("         %s\n", ux.Styles.Warning.Render(outcome.Note))
		}
	}

	verdict := "PASS"
	if !batch.Passed {
		verdict = "FAIL"
	}
	fmt.Printf("\n%s %s\n", ux.Styles.Subtitle.Render("Overall:"), ux.Verdict(verdict))
}
