// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the covidctl CLI.
package ux

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// covidctl palette - clinical blues with semantic accents
var (
	ColorBlueBright  = lipgloss.Color("#4FC3F7") // highlights, headers
	ColorBluePrimary = lipgloss.Color("#2196F3") // main brand color
	ColorBlueDeep    = lipgloss.Color("#1565C0") // borders, accents
	ColorSlate       = lipgloss.Color("#546E7A") // muted text

	ColorSuccess = lipgloss.Color("#66BB6A") // green for success, completed
	ColorWarning = lipgloss.Color("#FFB300") // amber for warnings, pending
	ColorError   = lipgloss.Color("#EF5350") // red for errors, failed
	ColorRunning = lipgloss.Color("#4FC3F7") // blue for running
)

// plain disables styling and animation for non-TTY output or --plain.
var plain = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())

// SetPlain overrides TTY detection, forcing plain output when true.
func SetPlain(p bool) {
	plain = p
}

// Plain reports whether plain (undecorated, non-animated) output is active.
func Plain() bool {
	return plain
}

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style

	BadgeRunning   lipgloss.Style
	BadgeCompleted lipgloss.Style
	BadgeFailed    lipgloss.Style
	BadgePending   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorBlueBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorBluePrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorBlueBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlueDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),

	BadgeRunning:   lipgloss.NewStyle().Foreground(ColorRunning).Bold(true),
	BadgeCompleted: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
	BadgeFailed:    lipgloss.NewStyle().Foreground(ColorError).Bold(true),
	BadgePending:   lipgloss.NewStyle().Foreground(ColorSlate),
}

// Icon provides themed status icons.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconRunning Icon = "●"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with its semantic styling.
func (i Icon) Render() string {
	if plain {
		return string(i)
	}
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconRunning:
		return Styles.BadgeRunning.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// StatusBadge renders a process status {running, completed, failed, pending}
// as a coloured badge. Unknown statuses render muted and unchanged.
func StatusBadge(status string) string {
	label := strings.ToUpper(status)
	if plain {
		return label
	}
	switch status {
	case "running":
		return Styles.BadgeRunning.Render(string(IconRunning) + " " + label)
	case "completed":
		return Styles.BadgeCompleted.Render(string(IconSuccess) + " " + label)
	case "failed":
		return Styles.BadgeFailed.Render(string(IconError) + " " + label)
	case "pending":
		return Styles.BadgePending.Render(string(IconPending) + " " + label)
	default:
		return Styles.Muted.Render(label)
	}
}

// LogLevelStyle returns the style for a backend log level.
func LogLevelStyle(level string) lipgloss.Style {
	switch level {
	case "ERROR":
		return Styles.Error
	case "WARNING":
		return Styles.Warning
	case "SUCCESS":
		return Styles.Success
	default:
		return Styles.Muted
	}
}

// Title prints a styled section title.
func Title(text string) {
	if plain {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with icon.
func Success(text string) {
	fmt.Printf("%s %s\n", IconSuccess.Render(), text)
}

// Warning prints a warning message with icon.
func Warning(text string) {
	fmt.Printf("%s %s\n", IconWarning.Render(), text)
}

// Error prints an error message with icon to stderr.
func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", IconError.Render(), text)
}

// Info prints an informational line.
func Info(text string) {
	fmt.Printf("%s %s\n", IconArrow.Render(), text)
}

// Muted prints a de-emphasized line.
func Muted(text string) {
	if plain {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}

// Box prints content inside a rounded border with an optional title.
func Box(title, content string) {
	if plain {
		if title != "" {
			fmt.Println(title)
		}
		fmt.Println(content)
		return
	}
	if title != "" {
		content = Styles.Bold.Render(title) + "\n" + content
	}
	fmt.Println(Styles.Box.Render(content))
}

// ProgressBar renders a textual progress bar like "[████░░░░] 50%".
// current is clamped to [0, total].
func ProgressBar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	filled := current * width / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := current * 100 / total
	if plain {
		return fmt.Sprintf("[%s] %d%%", bar, pct)
	}
	return fmt.Sprintf("[%s] %d%%", Styles.Subtitle.Render(bar), pct)
}
