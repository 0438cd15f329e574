package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/fleetgen/internal/initcmd"
	"github.com/donaldgifford/fleetgen/internal/ui"
)

var (
	initWithTemplate bool
	initHostname     string
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter fleet config",
	Long: `Write a starter fleet.yaml with one worker, the runtests builder, a
webhook trigger and a status reporter. With --with-template the built-in
skeleton is written next to it for customisation. Existing files are
never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initWithTemplate, "with-template", false, "also write the template skeleton")
	initCmd.Flags().StringVar(&initHostname, "hostname", "", "hostname for the starter config (default localhost)")
	rootCmd.AddCommand(initCmd)
}

func runInit(c *cobra.Command, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}

	written, err := initcmd.Run(&initcmd.Opts{
		Dir:          dir,
		WithTemplate: initWithTemplate,
		Hostname:     initHostname,
	})
	if err != nil {
		return err
	}

	w := ui.NewWriterWithOutputs(c.OutOrStdout(), c.ErrOrStderr(), noColor)
	for _, path := range written {
		w.Successf("Created %s", path)
	}

	return nil
}
