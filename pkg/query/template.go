// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query resolves parameterized PromQL templates against a named
// variable context and derives display/bookkeeping properties from the
// resolved string.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	metricNamePattern  = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+_total\b`)
	modePattern        = regexp.MustCompile(`mode=['"]([a-z]+)['"]`)
)

// MissingVariableError reports a template placeholder with no value in the
// variable context. Surfaces at load time so a misconfigured validation spec
// is caught before any network access.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template references undefined variable %q", e.Name)
}

// Template is a query string with named {placeholder} variables, the context
// it was resolved against, and the resolved form. Construct with New;
// Templates are immutable.
type Template struct {
	original string
	vars     map[string]string
	resolved string
}

// New resolves tmpl against vars, substituting every {name} placeholder.
// Returns a MissingVariableError if the template references a variable the
// context does not define.
func New(tmpl string, vars map[string]string) (Template, error) {
	var missing *MissingVariableError
	resolved := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := vars[name]
		if !ok {
			if missing == nil {
				missing = &MissingVariableError{Name: name}
			}
			return match
		}
		return value
	})
	if missing != nil {
		return Template{}, missing
	}
	return Template{original: tmpl, vars: vars, resolved: resolved}, nil
}

// Original returns the unresolved template string.
func (t Template) Original() string {
	return t.original
}

// Resolved returns the query with all placeholders substituted.
func (t Template) Resolved() string {
	return t.resolved
}

// OneLine returns the resolved query with newlines and runs of whitespace
// collapsed to single spaces, for compact display and storage. Idempotent.
func (t Template) OneLine() string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(t.resolved, " "))
}

// MetricName extracts a counter-style metric token from the resolved query.
// Best effort: when no token is found the identity degrades to a
// deterministic digest of the query content instead of failing.
func (t Template) MetricName() string {
	if name := metricNamePattern.FindString(t.resolved); name != "" {
		return name
	}
	sum := sha256.Sum256([]byte(t.resolved))
	return "unknown_" + hex.EncodeToString(sum[:4])
}

// Mode extracts the quoted mode label attribute from the resolved query,
// or "unknown" when absent. Best effort, display only.
func (t Template) Mode() string {
	if m := modePattern.FindStringSubmatch(t.resolved); m != nil {
		return m[1]
	}
	return "unknown"
}
