// Package generate orchestrates the fleetgen generate workflow.
package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/getter"
	"github.com/donaldgifford/fleetgen/internal/points"
	"github.com/donaldgifford/fleetgen/internal/pysyntax"
	tmpl "github.com/donaldgifford/fleetgen/internal/template"
)

// DefaultOutput is the file name written when no output path is given.
const DefaultOutput = "master.cfg"

// Opts holds the options for the generate command.
type Opts struct {
	// ConfigPath is the fleet config: a local path or a go-getter URL.
	ConfigPath string

	// TemplatePath overrides the embedded skeleton. Local path or go-getter URL.
	TemplatePath string

	// OutputPath is where master.cfg is written. Defaults to DefaultOutput.
	OutputPath string

	// Environment carries the ports read from the process environment.
	Environment config.Environment

	// Env is exposed to HCL configs as env.<NAME>.
	Env map[string]string

	// DryRun writes the document to Stdout instead of OutputPath.
	DryRun bool

	// Stdout receives the document in dry-run mode.
	Stdout io.Writer

	// Ref pins remote sources to a git ref.
	Ref string

	// Checksum is the expected sha256 of the fleet config.
	Checksum string

	// Pwd resolves relative go-getter sources. Defaults to the working directory.
	Pwd string

	// Logger for debug output.
	Logger *slog.Logger
}

// Result holds the output of a successful generate operation.
type Result struct {
	OutputPath string
	Bytes      int
	SHA256     string
	Workers    int
	Builders   int
	Schedulers int
	Services   int
	Written    bool
}

// Run executes the generate workflow. Nothing is written unless every stage
// succeeds.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	logger := loggerFor(opts)

	content, fleet, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(content)
	result := &Result{
		OutputPath: outputPath(opts),
		Bytes:      len(content),
		SHA256:     hex.EncodeToString(sum[:]),
		Workers:    len(fleet.Workers),
		Builders:   len(fleet.Builders),
		Schedulers: 1 + len(fleet.WebhookTriggers),
		Services:   len(fleet.StatusPushes) + len(fleet.CommentPushes),
	}

	if opts.DryRun {
		if opts.Stdout == nil {
			return nil, errors.New("dry run requested without an output writer")
		}

		if _, err := opts.Stdout.Write(content); err != nil {
			return nil, fmt.Errorf("writing document: %w", err)
		}

		return result, nil
	}

	if err := WriteAtomic(result.OutputPath, content); err != nil {
		return nil, err
	}

	result.Written = true
	logger.Info("master config generated", "path", result.OutputPath, "bytes", result.Bytes)

	return result, nil
}

// Build loads, validates and renders the configuration without writing it.
func Build(ctx context.Context, opts *Opts) ([]byte, *config.Fleet, error) {
	logger := loggerFor(opts)
	fetcher := getter.New(logger)

	fleet, err := LoadFleet(ctx, fetcher, opts)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("loaded fleet config",
		"workers", len(fleet.Workers),
		"builders", len(fleet.Builders),
		"triggers", len(fleet.WebhookTriggers))

	skel, err := loadSkeleton(ctx, fetcher, opts)
	if err != nil {
		return nil, nil, err
	}

	content, err := Render(ctx, config.NewModel(fleet, opts.Environment), skel)
	if err != nil {
		return nil, nil, err
	}

	return content, fleet, nil
}

// LoadFleet fetches, decodes, schema-checks and validates the fleet config.
func LoadFleet(ctx context.Context, fetcher *getter.Getter, opts *Opts) (*config.Fleet, error) {
	src, err := fetcher.Open(ctx, opts.ConfigPath, getter.FetchOpts{
		Ref:      opts.Ref,
		Checksum: opts.Checksum,
		Pwd:      opts.Pwd,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching fleet config: %w", err)
	}
	defer closeSource(loggerFor(opts), src)

	if src.Fetched {
		loggerFor(opts).Debug("fetched fleet config", "src", opts.ConfigPath, "path", src.Path)
	}

	fleet, err := config.Load(src.Path, config.LoadOpts{Env: opts.Env})
	if err != nil {
		return nil, err
	}

	if err := config.Validate(fleet); err != nil {
		return nil, err
	}

	return fleet, nil
}

func loadSkeleton(ctx context.Context, fetcher *getter.Getter, opts *Opts) (*tmpl.Skeleton, error) {
	if opts.TemplatePath == "" {
		return tmpl.Default()
	}

	src, err := fetcher.Open(ctx, opts.TemplatePath, getter.FetchOpts{Ref: opts.Ref, Pwd: opts.Pwd})
	if err != nil {
		return nil, fmt.Errorf("fetching template: %w", err)
	}
	defer closeSource(loggerFor(opts), src)

	return tmpl.Load(src.Path)
}

// Render is the deterministic core: the same model and skeleton always yield
// byte-identical output.
func Render(ctx context.Context, m *config.Model, skel *tmpl.Skeleton) ([]byte, error) {
	registry := points.Default()

	if err := skel.Check(registry.Names()); err != nil {
		return nil, err
	}

	fragments, err := registry.Resolve(m)
	if err != nil {
		return nil, err
	}

	content, err := skel.Fill(fragments)
	if err != nil {
		return nil, fmt.Errorf("filling template %s: %w", skel.Name, err)
	}

	if err := pysyntax.Check(ctx, content, skel.Name); err != nil {
		return nil, fmt.Errorf("rendered document is not valid python: %w", err)
	}

	return content, nil
}

// WriteAtomic writes content next to path and renames it into place, so a
// reader never observes a partial document.
func WriteAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}

func outputPath(opts *Opts) string {
	if opts.OutputPath == "" {
		return DefaultOutput
	}

	return opts.OutputPath
}

func loggerFor(opts *Opts) *slog.Logger {
	if opts.Logger == nil {
		return slog.Default()
	}

	return opts.Logger
}

func closeSource(logger *slog.Logger, src *getter.Source) {
	if err := src.Close(); err != nil {
		logger.Warn("failed to clean up fetched source", "path", src.Path, "error", err)
	}
}
