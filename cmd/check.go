package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/fleetgen/internal/check"
)

var checkOutputFormat string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether master.cfg is up to date",
	Long: `Render the fleet config in memory and compare it with the master.cfg on
disk. Exits non-zero when the file is stale or missing, so CI can catch a
config change that was not regenerated.`,
	RunE: runCheck,
}

func init() {
	addSourceFlags(checkCmd)
	checkCmd.Flags().StringVarP(&checkOutputFormat, "format", "o", "text", "output format (text, json)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(c *cobra.Command, _ []string) error {
	genOpts, err := generateOpts(c)
	if err != nil {
		return err
	}

	result, err := check.Run(c.Context(), &check.Opts{
		Generate:     genOpts,
		OutputFormat: checkOutputFormat,
		Writer:       c.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	if !result.UpToDate() {
		return fmt.Errorf("%s is %s; run fleetgen generate", result.Path, result.Status)
	}

	return nil
}
