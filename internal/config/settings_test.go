package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/fleetgen/internal/config"
)

func TestLoadSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
template: /etc/fleetgen/master.cfg.tmpl
output: /srv/buildbot/master.cfg
post_generate:
  - buildbot checkconfig .
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/fleetgen/master.cfg.tmpl", s.Template)
	assert.Equal(t, "/srv/buildbot/master.cfg", s.Output)
	assert.Equal(t, []string{"buildbot checkconfig ."}, s.PostGenerate)
}

func TestLoadSettings_NotFound(t *testing.T) {
	t.Parallel()

	s, err := config.LoadSettings("/nonexistent/settings.yaml")
	require.NoError(t, err)
	assert.Empty(t, s.Template)
	assert.Empty(t, s.Output)
}

func TestLoadSettings_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid"), 0o644))

	_, err := config.LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing settings")
}

func TestSettings_Apply(t *testing.T) {
	t.Parallel()

	s := &config.Settings{Template: "default.tmpl", Output: "default.cfg"}

	tmpl, out := s.Apply("", "")
	assert.Equal(t, "default.tmpl", tmpl)
	assert.Equal(t, "default.cfg", out)

	tmpl, out = s.Apply("mine.tmpl", "mine.cfg")
	assert.Equal(t, "mine.tmpl", tmpl)
	assert.Equal(t, "mine.cfg", out)
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	assert.Equal(t, "/custom/config/fleetgen", config.DefaultConfigDir())
	assert.Equal(t, "/custom/config/fleetgen/settings.yaml", config.DefaultSettingsPath())
}
