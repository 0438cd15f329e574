// Package check compares a generated master.cfg on disk against what the
// current fleet config would produce.
package check

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/donaldgifford/fleetgen/internal/generate"
)

// Opts configures the check operation.
type Opts struct {
	// Generate describes the inputs and the output file to compare.
	Generate *generate.Opts
	// OutputFormat is "text" or "json".
	OutputFormat string
	// Writer is the output destination.
	Writer io.Writer
}

// Status indicates the drift state of the output file.
type Status string

// Drift statuses.
const (
	StatusUpToDate Status = "up-to-date"
	StatusStale    Status = "stale"
	StatusMissing  Status = "missing"
)

// Result holds the comparison result.
type Result struct {
	Path     string `json:"path"`
	Status   Status `json:"status"`
	Expected string `json:"expected_sha256"`
	Actual   string `json:"actual_sha256,omitempty"`
	// FirstDiffLine is the first differing line (1-based) of a stale file.
	FirstDiffLine int `json:"first_diff_line,omitempty"`
}

// UpToDate reports whether the file on disk matches the rendered output.
func (r *Result) UpToDate() bool {
	return r.Status == StatusUpToDate
}

// Run renders the configuration in memory and compares it with the output file.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	if opts.Generate == nil {
		return nil, errors.New("check requires generate options")
	}

	expected, _, err := generate.Build(ctx, opts.Generate)
	if err != nil {
		return nil, err
	}

	path := opts.Generate.OutputPath
	if path == "" {
		path = generate.DefaultOutput
	}

	result := &Result{Path: path, Expected: hash(expected)}

	actual, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = StatusMissing
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		result.Actual = hash(actual)
		result.Status = StatusUpToDate

		if result.Actual != result.Expected {
			result.Status = StatusStale
			result.FirstDiffLine = firstDiffLine(expected, actual)
		}
	}

	return result, renderResult(opts.Writer, opts.OutputFormat, result)
}

func hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func firstDiffLine(a, b []byte) int {
	la := bytes.Split(a, []byte("\n"))
	lb := bytes.Split(b, []byte("\n"))

	for i := 0; i < len(la) && i < len(lb); i++ {
		if !bytes.Equal(la[i], lb[i]) {
			return i + 1
		}
	}

	return min(len(la), len(lb)) + 1
}

func renderResult(w io.Writer, format string, result *Result) error {
	if w == nil {
		return nil
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	default:
		return renderText(w, result)
	}
}

func renderText(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "FILE\tSTATUS\tDETAIL"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", result.Path, statusLabel(result.Status), detail(result)); err != nil {
		return err
	}

	return tw.Flush()
}

func detail(r *Result) string {
	switch r.Status {
	case StatusStale:
		return fmt.Sprintf("differs from line %d", r.FirstDiffLine)
	case StatusMissing:
		return "run fleetgen generate"
	default:
		return r.Expected[:12]
	}
}

func statusLabel(s Status) string {
	switch s {
	case StatusUpToDate:
		return "ok"
	case StatusStale:
		return "stale"
	case StatusMissing:
		return "MISSING"
	default:
		return string(s)
	}
}
