package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/generate"
	"github.com/donaldgifford/fleetgen/internal/hooks"
	"github.com/donaldgifford/fleetgen/internal/ui"
)

var (
	configPath   string
	templatePath string
	outputPath   string
	sourceRef    string
	checksum     string
	dryRun       bool
	noHooks      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render master.cfg from a fleet config",
	Long: `Render a buildbot master.cfg from a fleet config. The config may be YAML,
JSON or HCL, given as a local path or a go-getter URL (for example
"github.com/acme/ci//fleet.hcl?ref=v1").

ADMIN_PORT and COMMS_PORT must be set. The output is only replaced once
every check has passed.`,
	Aliases: []string{"gen"},
	RunE:    runGenerate,
}

func init() {
	addSourceFlags(generateCmd)
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the document instead of writing it")
	generateCmd.Flags().BoolVar(&noHooks, "no-hooks", false, "skip post_generate hooks from settings")
	rootCmd.AddCommand(generateCmd)
}

func addSourceFlags(c *cobra.Command) {
	c.Flags().StringVarP(&configPath, "config", "c", "", "fleet config path or go-getter URL")
	c.Flags().StringVarP(&templatePath, "template", "t", "", "template skeleton (default is the built-in one)")
	c.Flags().StringVar(&outputPath, "output", "", "output path (default is ./master.cfg)")
	addFetchFlags(c)
}

func addFetchFlags(c *cobra.Command) {
	c.Flags().StringVar(&sourceRef, "ref", "", "git ref for remote sources")
	c.Flags().StringVar(&checksum, "checksum", "", "expected sha256 of the fleet config")
}

// generateOpts resolves the environment and builds the pipeline options.
func generateOpts(c *cobra.Command) (*generate.Opts, error) {
	if err := requireConfig(configPath); err != nil {
		return nil, err
	}

	env, err := config.LoadEnvironment(os.LookupEnv)
	if err != nil {
		return nil, err
	}

	pwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	tmplPath, outPath := settings.Apply(templatePath, outputPath)

	return &generate.Opts{
		ConfigPath:   configPath,
		TemplatePath: tmplPath,
		OutputPath:   outPath,
		Environment:  env,
		Env:          environ(),
		Stdout:       c.OutOrStdout(),
		Ref:          sourceRef,
		Checksum:     checksum,
		Pwd:          pwd,
		Logger:       slog.Default(),
	}, nil
}

func runGenerate(c *cobra.Command, _ []string) error {
	opts, err := generateOpts(c)
	if err != nil {
		return err
	}

	opts.DryRun = dryRun

	result, err := generate.Run(c.Context(), opts)
	if err != nil {
		return err
	}

	if !result.Written {
		return nil
	}

	w := ui.NewWriterWithOutputs(c.OutOrStdout(), c.ErrOrStderr(), noColor)
	w.Successf("Wrote %s (%d workers, %d builders, %d schedulers, %d reporters)",
		result.OutputPath, result.Workers, result.Builders, result.Schedulers, result.Services)

	if noHooks {
		return nil
	}

	err = hooks.RunPostGenerate(c.Context(), &hooks.Opts{
		Commands:   settings.PostGenerate,
		OutputPath: result.OutputPath,
		Stdout:     c.OutOrStdout(),
		Stderr:     c.ErrOrStderr(),
		Logger:     opts.Logger,
	})
	if err == nil {
		return nil
	}

	for _, v := range ui.Violations(err) {
		w.Warningf("post-generate %s", v)
	}

	return errors.New("post-generate hooks failed; the document was written")
}
