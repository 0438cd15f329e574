// Package hooks runs user commands after a master.cfg has been written,
// typically "buildbot checkconfig" or "buildbot reconfig".
package hooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

// OutputVar names the environment variable holding the absolute path of the
// written document.
const OutputVar = "FLEETGEN_OUTPUT"

// Opts configures hook execution.
type Opts struct {
	// Commands are shell commands run in order.
	Commands []string
	// OutputPath is the document just written. Hooks run in its directory.
	OutputPath string
	// Stdout receives hook standard output.
	Stdout io.Writer
	// Stderr receives hook standard error.
	Stderr io.Writer
	// Logger for debug output.
	Logger *slog.Logger
}

// RunPostGenerate runs every hook even when an earlier one fails. The
// document is already in place, so failures are reported, not rolled back.
func RunPostGenerate(ctx context.Context, opts *Opts) error {
	if len(opts.Commands) == 0 {
		return nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	output, err := filepath.Abs(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", opts.OutputPath, err)
	}

	var result *multierror.Error

	for _, command := range opts.Commands {
		logger.Debug("running post-generate hook", "cmd", command)

		if err := run(ctx, command, output, opts); err != nil {
			logger.Warn("post-generate hook failed", "cmd", command, "err", err)
			result = multierror.Append(result, fmt.Errorf("hook %q: %w", command, err))
		}
	}

	return result.ErrorOrNil()
}

func run(ctx context.Context, command, output string, opts *Opts) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // hooks come from the user's own settings
	cmd.Dir = filepath.Dir(output)
	cmd.Env = append(os.Environ(), OutputVar+"="+output)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	return cmd.Run()
}
