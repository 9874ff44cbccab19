// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for powerval.
//
// Built on Go's standard library slog package. Logs go to stderr so report
// output on stdout stays machine-readable, following Unix conventions.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a configuration string to a slog level. Accepted values
// are debug, info, warn, and error (case-insensitive).
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Setup installs the process-wide default logger at the given level.
// An unknown level falls back to info with a warning rather than failing
// the run.
func Setup(level string) {
	parsed, err := ParseLevel(level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parsed}))
	slog.SetDefault(logger)
	if err != nil {
		slog.Warn("invalid log level, using info", "level", level)
	}
}
