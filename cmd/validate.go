package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/fleetgen/internal/generate"
	"github.com/donaldgifford/fleetgen/internal/getter"
	"github.com/donaldgifford/fleetgen/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a fleet config without rendering it",
	Long: `Decode the fleet config and run the schema and integrity checks (unique
names, declared references, the runtests builder). Ports are not needed.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&configPath, "config", "c", "", "fleet config path or go-getter URL")
	addFetchFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(c *cobra.Command, _ []string) error {
	if err := requireConfig(configPath); err != nil {
		return err
	}

	opts := &generate.Opts{
		ConfigPath: configPath,
		Env:        environ(),
		Ref:        sourceRef,
		Checksum:   checksum,
		Logger:     slog.Default(),
	}

	fleet, err := generate.LoadFleet(c.Context(), getter.New(opts.Logger), opts)
	if err != nil {
		return err
	}

	ui.NewWriterWithOutputs(c.OutOrStdout(), c.ErrOrStderr(), noColor).Successf(
		"%s is valid (%d workers, %d builders)", configPath, len(fleet.Workers), len(fleet.Builders))

	return nil
}
