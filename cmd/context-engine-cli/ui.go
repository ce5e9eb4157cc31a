// Package main provides UI utilities for the context engine CLI.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// UI provides user-friendly output utilities.
type UI struct {
	progress *mpb.Progress
	noColor  bool
	jsonMode bool
}

// NewUI creates a new UI instance.
func NewUI(jsonMode, noColor bool) *UI {
	var progress *mpb.Progress
	if !jsonMode {
		progress = mpb.New(mpb.WithWidth(64))
	}
	return &UI{
		progress: progress,
		noColor:  noColor,
		jsonMode: jsonMode,
	}
}

// Close closes the UI and cleans up resources.
func (ui *UI) Close() {
	if ui.progress != nil {
		if IsTerminal() {
			ui.progress.Wait()
		} else {
			// Piped output cannot render bars and Wait() may hang.
			ui.progress.Shutdown()
		}
	}
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("✓ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
	}
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgRed).Printf("✗ %s\n", fmt.Sprintf(format, args...))
	}
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("⚠ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgYellow).Printf("⚠ %s\n", fmt.Sprintf(format, args...))
	}
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgCyan).Printf("ℹ %s\n", fmt.Sprintf(format, args...))
	}
}

// Section prints a section header.
func (ui *UI) Section(title string) {
	if ui.jsonMode {
		return
	}
	fmt.Println()
	if ui.noColor {
		fmt.Printf("━━━ %s ━━━\n", strings.ToUpper(title))
	} else {
		color.New(color.FgMagenta, color.Bold).Printf("━━━ %s ━━━\n", strings.ToUpper(title))
	}
	fmt.Println()
}

// KeyValue prints a key-value pair.
func (ui *UI) KeyValue(key string, value interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("  %s: %v\n", key, value)
	} else {
		color.New(color.FgYellow).Printf("  %s: ", key)
		fmt.Printf("%v\n", value)
	}
}

// Newline prints a newline.
func (ui *UI) Newline() {
	if !ui.jsonMode {
		fmt.Println()
	}
}

// ProgressBar creates a new progress bar.
func (ui *UI) ProgressBar(name string, total int64) *mpb.Bar {
	if ui.progress == nil || ui.jsonMode {
		return nil
	}

	return ui.progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DSyncSpaceR}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.OnComplete(
				decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 12}),
				" done",
			),
		),
	)
}

// Spinner wraps a spinner for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message. In JSON mode the
// spinner is inert.
func NewSpinner(message string, jsonMode bool) *Spinner {
	if jsonMode || !IsTerminal() {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// IsTerminal checks if stdout is a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
