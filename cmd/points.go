package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/fleetgen/internal/list"
)

var (
	pointsOutputFormat string
	pointsTemplate     string
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List the template extension points",
	Long: `List the extension points fleetgen fills and how often the template
skeleton references each of them.`,
	RunE: runPoints,
}

func init() {
	pointsCmd.Flags().StringVarP(&pointsOutputFormat, "output", "o", "table", "output format (table, json)")
	pointsCmd.Flags().StringVarP(&pointsTemplate, "template", "t", "", "template skeleton (default is the built-in one)")
	rootCmd.AddCommand(pointsCmd)
}

func runPoints(c *cobra.Command, _ []string) error {
	tmplPath, _ := settings.Apply(pointsTemplate, "")

	return list.Run(&list.Opts{
		TemplatePath: tmplPath,
		OutputFormat: pointsOutputFormat,
		Writer:       c.OutOrStdout(),
	})
}
