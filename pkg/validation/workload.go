// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for values interpolated into
// PromQL queries.
//
// Workload names and job label names from the runtime configuration end up
// inside label matchers and regular expressions. Validating them first
// prevents PromQL injection through a crafted configuration value.
package validation

import (
	"fmt"
	"regexp"
)

// workloadPattern matches valid workload identifiers.
// Allows: letters, digits, dots, underscores, hyphens
// Max length: 63 characters (libvirt domain name limit)
var workloadPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,62}$`)

// labelNamePattern matches valid Prometheus label names.
var labelNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateWorkloadName validates a workload (VM) name before it is embedded
// in a name-based regular-expression matcher.
//
// Returns an error if the name is empty or contains characters outside the
// allowed set.
func ValidateWorkloadName(name string) error {
	if name == "" {
		return fmt.Errorf("workload name cannot be empty")
	}
	if !workloadPattern.MatchString(name) {
		return fmt.Errorf("invalid workload name: %q (must be 1-63 alphanumeric chars, dots, underscores, or hyphens)", name)
	}
	return nil
}

// ValidateLabelName validates a Prometheus label name before it is embedded
// in a label matcher.
func ValidateLabelName(name string) error {
	if name == "" {
		return fmt.Errorf("label name cannot be empty")
	}
	if !labelNamePattern.MatchString(name) {
		return fmt.Errorf("invalid label name: %q", name)
	}
	return nil
}
