package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Human-facing output goes to stderr; the preview table goes to stdout.
var (
	stderr io.Writer = os.Stderr
	stdout io.Writer = os.Stdout
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F"))
	styleStep    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleRule    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

func colorize(style lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return style.Render(text)
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(styleSuccess, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(styleError, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(styleWarning, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(styleBold, label+":")
	fmt.Fprintf(stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(styleStep, "→ "+msg))
}

func printSeparator() {
	fmt.Fprintln(stderr, colorize(styleRule, "────────────────────────────────────────────────────────────"))
}
