package toolchain

import (
	"context"
	"strings"
)

// Severity levels for diagnostics
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic is a minimal build/check problem report. Position fields may be
// zero; diagnostics are not required to be precise.
type Diagnostic struct {
	File        string
	Line        int
	Column      int
	Severity    string
	Text        string
	ToolMissing bool
}

// Collector produces diagnostics by invoking the toolchain once per call
type Collector struct {
	runner *Runner
}

// NewCollector creates a collector backed by the given runner
func NewCollector(runner *Runner) *Collector {
	return &Collector{runner: runner}
}

// Diagnose compiles a single file and collapses the result into diagnostics.
// A clean run with no error output yields an empty slice. Any failure is
// condensed into one synthetic error diagnostic carrying the raw text, which
// is sufficient for an iterative repair loop.
func (c *Collector) Diagnose(ctx context.Context, file string) []Diagnostic {
	res := c.runner.CheckFile(ctx, file)

	if res.ToolMissing {
		return []Diagnostic{{
			File:        file,
			Severity:    SeverityError,
			Text:        "lean toolchain unavailable: " + strings.TrimSpace(res.Stderr),
			ToolMissing: true,
		}}
	}

	errText := strings.TrimSpace(res.Stderr)
	if res.OK() && errText == "" {
		return nil
	}

	severity := SeverityError
	if res.ExitCode == 0 {
		severity = SeverityWarning
	}
	text := errText
	if text == "" {
		text = strings.TrimSpace(res.Stdout)
	}

	return []Diagnostic{{
		File:     file,
		Severity: severity,
		Text:     text,
	}}
}

// CountErrors counts error-severity diagnostics
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// ErrorTexts returns the texts of error-severity diagnostics in order
func ErrorTexts(diags []Diagnostic) []string {
	var texts []string
	for _, d := range diags {
		if d.Severity == SeverityError {
			texts = append(texts, d.Text)
		}
	}
	return texts
}
