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

	"github.com/verdantlabs/powerval/pkg/prom"
	"github.com/verdantlabs/powerval/pkg/query"
	"github.com/verdantlabs/powerval/pkg/ux"
	"github.com/verdantlabs/powerval/pkg/validations"
)

var (
	queryLast time.Duration

	queryCmd = &cobra.Command{
		Use:   "query [promql-template]",
		Short: "Run a single range query and print the series it returns",
		Long: `Resolves a PromQL template against the configured workload
variables and runs it as a range query. Useful for debugging a validation
entry before committing it to the validations file.

Template placeholders like {vm_selector}, {rate_interval}, {metal_job_name}
and {vm_job_name} are substituted from the runtime configuration:

  powerval query 'rate(process_cpu_seconds_total{{vm_selector}}[{rate_interval}])'`,
		Args: cobra.ExactArgs(1),
		Run:  runQueryCommand,
	}
)

func init() {
	queryCmd.Flags().DurationVar(&queryLast, "last", 10*time.Minute,
		"Query the trailing window of this length")
}

func runQueryCommand(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	vars, err := validations.NewLoader(cfg).Vars()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	tmpl, err := query.New(args[0], vars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving template: %v\n", err)
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	end := time.Now()
	results, err := client.RangeQuery(ctx, tmpl.Resolved(), end.Add(-queryLast), end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running query: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s\n", ux.Styles.Title.Render("Query:"), tmpl.OneLine())
	if len(results) == 0 {
		fmt.Println(ux.Styles.Warning.Render("no series returned"))
		return
	}
	for _, s := range results {
		fmt.Printf("\n%s %v\n", ux.Styles.Subtitle.Render("Series"), s.Labels)
		if s.Len() == 0 {
			fmt.Println(ux.Styles.Muted.Render("  no samples"))
			continue
		}
		first, last := s.Samples[0], s.Samples[s.Len()-1]
		fmt.Printf("  %d samples, %s to %s\n", s.Len(),
			first.Time().Format(time.RFC3339), last.Time().Format(time.RFC3339))
		fmt.Printf("  first=%g last=%g\n", first.Value, last.Value)
	}
}
