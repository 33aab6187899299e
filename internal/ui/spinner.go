// Package ui provides terminal helpers for the prdgen CLI.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner wraps a terminal spinner for slow provider calls.
type Spinner struct {
	s   *spinner.Spinner
	out io.Writer
}

// NewSpinner creates a spinner writing to w with the given message.
// It stays silent when w is not a terminal.
func NewSpinner(w io.Writer, msg string) *Spinner {
	opt := spinner.WithWriter(w)
	if f, ok := w.(*os.File); ok {
		opt = spinner.WithWriterFile(f)
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, opt)
	s.Suffix = "  " + msg
	s.Color("cyan") //nolint:errcheck
	return &Spinner{s: s, out: w}
}

// Start begins the animation.
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop halts the spinner and clears the line.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// Success stops the spinner and prints a green check.
func (sp *Spinner) Success(msg string) {
	sp.s.Stop()
	Pass(sp.out, msg)
}

// Fail stops the spinner and prints a red cross.
func (sp *Spinner) Fail(msg string) {
	sp.s.Stop()
	Failure(sp.out, msg)
}

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	dim    = color.New(color.FgHiBlack)
	title  = color.New(color.FgCyan, color.Bold)
)

// Pass prints a green "✓ msg" line.
func Pass(w io.Writer, msg string) {
	green.Fprintf(w, "  ✓ %s\n", msg) //nolint:errcheck
}

// Failure prints a red "✗ msg" line.
func Failure(w io.Writer, msg string) {
	red.Fprintf(w, "  ✗ %s\n", msg) //nolint:errcheck
}

// Warn prints a yellow "⚠ msg" line.
func Warn(w io.Writer, msg string) {
	yellow.Fprintf(w, "  ⚠ %s\n", msg) //nolint:errcheck
}

// Detail prints an indented dimmed line under a check.
func Detail(w io.Writer, msg string) {
	dim.Fprintf(w, "    %s\n", msg) //nolint:errcheck
}

// Title prints a bold cyan heading.
func Title(w io.Writer, msg string) {
	title.Fprintf(w, "\n  %s\n\n", msg) //nolint:errcheck
}
