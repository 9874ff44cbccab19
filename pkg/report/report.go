// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report writes the on-disk artifacts of a validation run: a
// machine-readable report.json, a human-readable report.md, and the raw
// fetched samples behind every comparison so a run can be re-analyzed
// without re-querying Prometheus.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/powerval/pkg/machine"
	"github.com/verdantlabs/powerval/pkg/runner"
	"github.com/verdantlabs/powerval/pkg/series"
	"github.com/verdantlabs/powerval/pkg/validations"
)

// Writer writes one run directory per batch under a fixed base directory.
type Writer struct {
	baseDir string
}

// NewWriter returns a Writer rooted at baseDir. The directory is created on
// the first Write.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Report is the serialized form of a batch run.
type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Passed      bool          `json:"passed"`
	Machine     *machine.Spec `json:"machine,omitempty"`
	Results     []Entry       `json:"results"`
}

// Entry is the serialized outcome of one validation.
type Entry struct {
	Name           string  `json:"name"`
	ActualQuery    string  `json:"actual_query"`
	PredictedQuery string  `json:"predicted_query"`
	ActualLabel    string  `json:"actual_label"`
	PredictedLabel string  `json:"predicted_label"`
	Units          string  `json:"units,omitempty"`
	Verdict        string  `json:"verdict"`
	MSE            Metric  `json:"mse"`
	MAPE           Metric  `json:"mape"`
	MAE            Metric  `json:"mae"`
	DroppedActual  int     `json:"dropped_actual_samples"`
	DroppedPred    int     `json:"dropped_predicted_samples"`
	Note           string  `json:"note,omitempty"`
	Error          string  `json:"error,omitempty"`
	SamplesFile    string  `json:"samples_file,omitempty"`
}

// Metric carries a computed metric value, its configured threshold, and
// whether it passed. Value is nil when the computation errored.
type Metric struct {
	Value  *float64 `json:"value,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Passed bool     `json:"passed"`
	Error  string   `json:"error,omitempty"`
}

// Write persists the batch to a fresh run directory and returns its path.
func (w *Writer) Write(batch runner.BatchResult, spec *machine.Spec) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(w.baseDir, batch.Start.Format("20060102-150405")+"-"+runID[:8])
	if err := os.MkdirAll(filepath.Join(runDir, "samples"), 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", runDir, err)
	}

	rep := Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Start:       batch.Start,
		End:         batch.End,
		Passed:      batch.Passed,
		Machine:     spec,
	}
	for _, outcome := range batch.Outcomes {
		entry := newEntry(outcome)
		if file, err := w.writeSamples(runDir, outcome); err != nil {
			slog.Warn("failed to write raw samples", "validation", outcome.Validation.Name, "error", err)
		} else if file != "" {
			entry.SamplesFile = file
		}
		rep.Results = append(rep.Results, entry)
	}

	if err := w.writeJSON(runDir, rep); err != nil {
		return "", err
	}
	if err := w.writeMarkdown(runDir, rep); err != nil {
		return "", err
	}
	return runDir, nil
}

func newEntry(outcome validations.Outcome) Entry {
	v := outcome.Validation
	return Entry{
		Name:           v.Name,
		ActualQuery:    v.Actual.OneLine(),
		PredictedQuery: v.Predicted.OneLine(),
		ActualLabel:    v.ActualLabel,
		PredictedLabel: v.PredictedLabel,
		Units:          v.Units,
		Verdict:        string(outcome.Verdict),
		MSE:            newMetric(outcome.Result.MSE, v.MaxMSE, outcome.MSEPassed),
		MAPE:           newMetric(outcome.Result.MAPE, v.MaxMAPE, outcome.MAPEPassed),
		MAE:            newMetric(outcome.Result.MAE, v.MaxMAE, outcome.MAEPassed),
		DroppedActual:  outcome.Result.DroppedActual,
		DroppedPred:    outcome.Result.DroppedPredicted,
		Note:           outcome.Note,
		Error:          outcome.UnexpectedError,
	}
}

func newMetric(value series.ValueOrError, max *float64, passed bool) Metric {
	m := Metric{Max: max, Passed: passed}
	if value.Err != nil {
		m.Error = value.Err.Error()
		return m
	}
	v := value.Value
	m.Value = &v
	return m
}

// sampleDump pairs the as-fetched samples of both comparison sides.
type sampleDump struct {
	Actual    []series.Sample `json:"actual"`
	Predicted []series.Sample `json:"predicted"`
}

// writeSamples dumps the fetched samples for one outcome. The base name
// derives from the metric and mode of the actual-side query; a numeric
// suffix keeps validations over the same metric from clobbering each other.
func (w *Writer) writeSamples(runDir string, outcome validations.Outcome) (string, error) {
	if outcome.Result.Actual.Len() == 0 && outcome.Result.Predicted.Len() == 0 {
		return "", nil
	}

	base := outcome.Validation.Actual.MetricName() + "-" + outcome.Validation.Actual.Mode()
	name := base + ".json"
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(runDir, "samples", name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s-%d.json", base, i)
	}

	dump := sampleDump{
		Actual:    outcome.Result.Actual.Samples,
		Predicted: outcome.Result.Predicted.Samples,
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", err
	}
	rel := filepath.Join("samples", name)
	if err := os.WriteFile(filepath.Join(runDir, rel), data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

func (w *Writer) writeJSON(runDir string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "report.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write report.json: %w", err)
	}
	return nil
}

var markdownTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"metric": formatMetric,
}).Parse(`# Validation Report

- **Run ID**: {{.RunID}}
- **Generated**: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
- **Window**: {{.Start.Format "2006-01-02 15:04:05"}} to {{.End.Format "2006-01-02 15:04:05"}}
- **Result**: {{if .Passed}}PASS{{else}}FAIL{{end}}
{{- if .Machine}}

## Machine

| Host | OS | CPU | Cores | Memory |
|------|----|-----|-------|--------|
| {{.Machine.Hostname}} | {{.Machine.Platform}} ({{.Machine.KernelVersion}}) | {{.Machine.CPUModel}} | {{.Machine.CPUCores}} | {{.Machine.MemoryBytes}} |
{{- end}}

## Results

| Validation | Verdict | MSE | MAPE | MAE | Note |
|------------|---------|-----|------|-----|------|
{{- range .Results}}
| {{.Name}} | {{.Verdict}} | {{metric .MSE}} | {{metric .MAPE}} | {{metric .MAE}} | {{if .Error}}{{.Error}}{{else}}{{.Note}}{{end}} |
{{- end}}

## Queries
{{range .Results}}
### {{.Name}}

- {{.ActualLabel}}: ` + "`{{.ActualQuery}}`" + `
- {{.PredictedLabel}}: ` + "`{{.PredictedQuery}}`" + `
{{- if .SamplesFile}}
- samples: {{.SamplesFile}}
{{- end}}
{{end}}`))

func formatMetric(m Metric) string {
	if m.Error != "" {
		return "error"
	}
	if m.Value == nil {
		return "-"
	}
	s := fmt.Sprintf("%.4f", *m.Value)
	if m.Max != nil {
		s += fmt.Sprintf(" (max %.4f)", *m.Max)
	}
	return s
}

func (w *Writer) writeMarkdown(runDir string, rep Report) error {
	var out strings.Builder
	if err := markdownTemplate.Execute(&out, rep); err != nil {
		return fmt.Errorf("failed to render report.md: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "report.md"), []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report.md: %w", err)
	}
	return nil
}
