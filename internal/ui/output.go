// Package ui provides consistent styled output for the fleetgen CLI.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// Writer provides styled output methods that respect color settings.
type Writer struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// NewWriter creates a Writer that writes to stdout/stderr.
// Color is disabled when noColor is true or the NO_COLOR env var is set.
func NewWriter(noColor bool) *Writer {
	return NewWriterWithOutputs(os.Stdout, os.Stderr, noColor || os.Getenv("NO_COLOR") != "")
}

// NewWriterWithOutputs creates a Writer with custom output destinations.
func NewWriterWithOutputs(out, errOut io.Writer, noColor bool) *Writer {
	return &Writer{out: out, errOut: errOut, noColor: noColor}
}

// Success prints a message with a green checkmark prefix.
func (w *Writer) Success(msg string) {
	writeLine(w.out, w.styled(colorGreen, "✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning to stderr with a yellow prefix.
func (w *Writer) Warning(msg string) {
	writeLine(w.errOut, w.styled(colorYellow, "warning:"), msg)
}

// Warningf prints a formatted warning.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr with a red prefix.
func (w *Writer) Error(msg string) {
	writeLine(w.errOut, w.styled(colorRed, "error:"), msg)
}

// Errors prints every violation aggregated in err on its own line and
// returns how many were printed.
func (w *Writer) Errors(err error) int {
	msgs := Violations(err)
	for _, m := range msgs {
		w.Error(m)
	}

	return len(msgs)
}

// Violations flattens nested multierrors into one message per violation.
// An error that wraps an aggregate keeps its context as a prefix.
func Violations(err error) []string {
	if err == nil {
		return nil
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) == 0 {
		return []string{err.Error()}
	}

	prefix := ""
	if merr != err { //nolint:errorlint // identity check against the unwrapped aggregate
		outer := err.Error()
		inner := merr.Error()
		if len(outer) > len(inner) && outer[len(outer)-len(inner):] == inner {
			prefix = outer[:len(outer)-len(inner)]
		}
	}

	var out []string
	for _, e := range merr.Errors {
		for _, m := range Violations(e) {
			out = append(out, prefix+m)
		}
	}

	return out
}

func (w *Writer) styled(color, text string) string {
	if w.noColor {
		return text
	}

	return color + text + colorReset
}

func writeLine(out io.Writer, prefix, msg string) {
	// Best-effort: if stderr fails there is nowhere left to report it.
	_, _ = fmt.Fprintf(out, "%s %s\n", prefix, msg)
}
