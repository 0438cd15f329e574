// Package cmd defines the CLI commands for fleetgen.
package cmd

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/ui"
)

var (
	verbose      bool
	noColor      bool
	settingsFile string
	settings     = &config.Settings{}
)

// rootCmd is the base command for the fleetgen CLI.
var rootCmd = &cobra.Command{
	Use:   "fleetgen",
	Short: "Generate buildbot master configs from a fleet description",
	Long: `Fleetgen turns a declarative description of a CI fleet (workers, builders,
GitHub webhook triggers and status/comment reporters) into a buildbot
master.cfg by filling the extension points of a template skeleton.

The web UI and worker ports are read from the ADMIN_PORT and COMMS_PORT
environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		initLogger()

		return loadSettings()
	},
}

// Execute runs the root command and reports any failure, one line per violation.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.NewWriter(noColor).Errors(err)
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "",
		"settings file (default is $HOME/.config/fleetgen/settings.yaml)")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func loadSettings() error {
	path := settingsFile
	if path == "" {
		path = config.DefaultSettingsPath()
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		return err
	}

	slog.Debug("loaded settings", "path", path, "template", s.Template, "output", s.Output)
	settings = s

	return nil
}

// environ exposes the process environment to HCL configs as env.<NAME>.
func environ() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env
}

func requireConfig(path string) error {
	if path == "" {
		return errors.New("--config is required")
	}

	return nil
}
