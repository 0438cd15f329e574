// Package initcmd implements the fleetgen init command for writing a starter fleet config.
package initcmd

import (
	"fmt"
	"os"
	"path/filepath"

	tmpl "github.com/donaldgifford/fleetgen/internal/template"
)

// File names written by init.
const (
	ConfigFile   = "fleet.yaml"
	TemplateFile = "master.cfg.tmpl"
)

// Opts configures the init operation.
type Opts struct {
	// Dir is the target directory. Empty means current directory.
	Dir string
	// WithTemplate also writes the default skeleton for customisation.
	WithTemplate bool
	// Hostname is written into the starter config.
	Hostname string
}

const starterConfig = `# Fleet description for fleetgen.
# Render with: ADMIN_PORT=8010 COMMS_PORT=9989 fleetgen generate --config fleet.yaml

hostname: %s

change_hook:
  secret: change-me

workers:
  - name: worker-1
    password: change-me

builders:
  # The force scheduler always targets the builder named runtests.
  - name: runtests
    repository_url: https://github.com/example/app.git
    worker_names: [worker-1]
    steps:
      - name: test
        command: make test

webhook_triggers:
  - name: app-push
    description: Push to example/app
    builder_names: [runtests]
    project_filter: example/app

status_pushes:
  - token: change-me
    context: ci/runtests
    builder_names: [runtests]
`

type starterFile struct {
	name    string
	content string
}

// Run executes the init workflow and returns the paths written.
func Run(opts *Opts) ([]string, error) {
	dir := "."
	if opts.Dir != "" {
		dir = opts.Dir
	}

	hostname := opts.Hostname
	if hostname == "" {
		hostname = "localhost"
	}

	files := []starterFile{{ConfigFile, fmt.Sprintf(starterConfig, hostname)}}
	if opts.WithTemplate {
		files = append(files, starterFile{TemplateFile, tmpl.DefaultSource()})
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%s already exists at %s", f.name, path)
		}
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	written := make([]string, 0, len(files))

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", f.name, err)
		}

		written = append(written, path)
	}

	return written, nil
}
