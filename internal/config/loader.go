package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Format identifies the notation a fleet config is written in.
type Format string

// Supported fleet config notations. JSON is read by the YAML decoder.
const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// LoadOpts configures how a fleet config is decoded.
type LoadOpts struct {
	// Env is exposed to HCL configs as the env object (env.GITHUB_TOKEN).
	// YAML configs ignore it.
	Env map[string]string
}

// FormatFromPath picks the notation from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported config extension %q, expected .yaml, .yml, .json or .hcl", filepath.Ext(path))
	}
}

// Load reads a fleet config from path, decodes it and checks its schema.
// Schema violations are returned together as a *multierror.Error of *SchemaError.
func Load(path string, opts LoadOpts) (*Fleet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is the user-specified fleet config
	if err != nil {
		return nil, fmt.Errorf("reading fleet config %s: %w", path, err)
	}

	fleet, err := LoadBytes(data, filepath.Base(path), format, opts)
	if err != nil {
		return nil, fmt.Errorf("loading fleet config %s: %w", path, err)
	}

	return fleet, nil
}

// LoadBytes decodes an in-memory fleet config. name is used in HCL diagnostics.
func LoadBytes(data []byte, name string, format Format, opts LoadOpts) (*Fleet, error) {
	var (
		fleet *Fleet
		err   error
	)

	switch format {
	case FormatYAML:
		fleet, err = decodeYAML(data)
	case FormatHCL:
		fleet, err = decodeHCL(data, name, opts.Env)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err != nil {
		return nil, err
	}

	if err := CheckSchema(fleet); err != nil {
		return nil, err
	}

	return fleet, nil
}

func decodeYAML(data []byte) (*Fleet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fleet Fleet
	if err := dec.Decode(&fleet); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Reason: "config is empty"}
		}

		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			var result *multierror.Error
			for _, msg := range typeErr.Errors {
				result = multierror.Append(result, &SchemaError{Reason: msg})
			}

			return nil, result.ErrorOrNil()
		}

		return nil, &SchemaError{Reason: err.Error()}
	}

	return &fleet, nil
}
