// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the powerval CLI.
package ux

import (
	"github.com/charmbracelet/lipgloss"
)

// Powerval color palette
var (
	ColorSuccess = lipgloss.Color("#2ECC71") // green - passing validations
	ColorWarning = lipgloss.Color("#F4D03F") // gold/amber - warnings, dropped samples
	ColorError   = lipgloss.Color("#E74C3C") // red - failures and errors
	ColorAccent  = lipgloss.Color("#3498DB") // blue - headings, query text
	ColorMuted   = lipgloss.Color("#7F8C8D") // gray - secondary detail
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorAccent),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
}

// Verdict renders a verdict string in its semantic color: green for PASS,
// red for FAIL, amber for anything else (ERROR).
func Verdict(verdict string) string {
	switch verdict {
	case "PASS":
		return Styles.Success.Render(verdict)
	case "FAIL":
		return Styles.Error.Render(verdict)
	default:
		return Styles.Warning.Render(verdict)
	}
}
