package generate_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/generate"
)

// newCLIOpts mirrors what cmd/generate.go builds from flags and the process
// environment.
func newCLIOpts(t *testing.T, environ map[string]string) (*generate.Opts, error) {
	t.Helper()

	env, err := config.LoadEnvironment(func(key string) (string, bool) {
		v, ok := environ[key]
		return v, ok
	})
	if err != nil {
		return nil, err
	}

	src, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fleet", "valid.yaml"))
	require.NoError(t, err)

	return &generate.Opts{
		ConfigPath:  src,
		OutputPath:  filepath.Join(t.TempDir(), "master.cfg"),
		Environment: env,
		Env:         environ,
	}, nil
}

func TestCLI_GenerateEndToEnd(t *testing.T) {
	t.Parallel()

	opts, err := newCLIOpts(t, map[string]string{"ADMIN_PORT": "8010", "COMMS_PORT": "9989"})
	require.NoError(t, err)

	result, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.FileExists(t, opts.OutputPath)
	assert.Equal(t, 2, result.Workers)
	assert.Equal(t, 2, result.Builders)
	assert.Equal(t, 3, result.Schedulers)
	assert.Equal(t, 2, result.Services)
}

func TestCLI_MissingCommsPort(t *testing.T) {
	t.Parallel()

	_, err := newCLIOpts(t, map[string]string{"ADMIN_PORT": "8010"})
	require.Error(t, err)

	var ee *config.EnvironmentError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, config.CommsPortVar, ee.Variable)
	assert.Contains(t, err.Error(), "COMMS_PORT")
}

func TestCLI_FormatsAgree(t *testing.T) {
	t.Parallel()

	environ := map[string]string{"ADMIN_PORT": "8010", "COMMS_PORT": "9989", "HOOK_SECRET": "hook-secret"}

	render := func(name string) string {
		opts, err := newCLIOpts(t, environ)
		require.NoError(t, err)

		opts.ConfigPath, err = filepath.Abs(filepath.Join("..", "..", "testdata", "fleet", name))
		require.NoError(t, err)

		_, err = generate.Run(context.Background(), opts)
		require.NoError(t, err)

		return readOutput(t, opts.OutputPath)
	}

	yamlOut := render("valid.yaml")
	assert.Equal(t, yamlOut, render("valid.hcl"))
}
