package generate_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/generate"
	"github.com/donaldgifford/fleetgen/internal/points"
	tmpl "github.com/donaldgifford/fleetgen/internal/template"
)

const baseFleet = `hostname: ci.example.com
change_hook:
  secret: s3cret
workers:
  - name: W1
    password: pw1
builders:
  - name: B1
    repository_url: https://git.example/app.git
    worker_names: [W1]
    steps:
      - name: build
        command: make
  - name: runtests
    repository_url: https://git.example/app.git
    worker_names: [W1]
    steps:
      - name: test
        command: make test
`

var testEnv = config.Environment{AdminPort: 8010, CommsPort: 9989}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func newOpts(t *testing.T, fleetYAML string) *generate.Opts {
	t.Helper()

	dir := t.TempDir()

	return &generate.Opts{
		ConfigPath:  writeFile(t, dir, "fleet.yaml", fleetYAML),
		OutputPath:  filepath.Join(dir, "out", "master.cfg"),
		Environment: testEnv,
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestRun_WritesDocument(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)

	result, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, result.Written)
	assert.Equal(t, opts.OutputPath, result.OutputPath)
	assert.Equal(t, 1, result.Workers)
	assert.Equal(t, 2, result.Builders)
	assert.Equal(t, 1, result.Schedulers)
	assert.Equal(t, 0, result.Services)
	assert.Len(t, result.SHA256, 64)

	out := readOutput(t, opts.OutputPath)
	assert.Equal(t, result.Bytes, len(out))
	assert.Contains(t, out, "c['workers'] = [worker.Worker('W1', 'pw1')]")
	assert.Contains(t, out, "dict(pb=dict(port=9989))")
	assert.Contains(t, out, "'http://%s:%d/' % ('ci.example.com', 8010)")
	assert.Contains(t, out, "port=8010,")
	assert.Contains(t, out, "'secret': 's3cret'")
	assert.Contains(t, out, "'pullrequest_ref': 'direct'")
	assert.NotContains(t, out, "{{")
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	_, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)
	first := readOutput(t, opts.OutputPath)

	_, err = generate.Run(context.Background(), opts)
	require.NoError(t, err)
	second := readOutput(t, opts.OutputPath)

	assert.Equal(t, first, second)
}

func TestRun_BuilderStepsFollowCheckout(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	_, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)

	out := readOutput(t, opts.OutputPath)

	b1 := strings.Index(out, "name='B1'")
	require.GreaterOrEqual(t, b1, 0)

	end := strings.Index(out[b1:], "name='runtests'")
	require.Positive(t, end)

	builder := out[b1 : b1+end]

	checkout := strings.Index(builder, "steps.Git(repourl='https://git.example/app.git', mode='incremental')")
	build := strings.Index(builder, "steps.ShellCommand(name='build', command='make')")

	require.GreaterOrEqual(t, checkout, 0, "checkout step missing:\n%s", builder)
	require.GreaterOrEqual(t, build, 0, "build step missing:\n%s", builder)
	assert.Less(t, checkout, build)
	assert.Contains(t, builder, "workernames=['W1']")
}

func TestRun_UndeclaredStatusPushBuilder(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet+`status_pushes:
  - token: tok
    context: ci/ghost
    builder_names: [ghost]
`)

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)

	var re *config.ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "ghost", re.Name)
	assert.Contains(t, err.Error(), "ghost")
	assert.NoFileExists(t, opts.OutputPath)
}

func TestRun_ForceScheduler(t *testing.T) {
	t.Parallel()

	t.Run("always present", func(t *testing.T) {
		t.Parallel()

		opts := newOpts(t, baseFleet)
		_, err := generate.Run(context.Background(), opts)
		require.NoError(t, err)

		assert.Contains(t, readOutput(t, opts.OutputPath),
			"c['schedulers'] = [schedulers.ForceScheduler(name='force', builderNames=['runtests'])]")
	})

	t.Run("fails without runtests builder", func(t *testing.T) {
		t.Parallel()

		fleet := strings.Replace(baseFleet, "name: runtests", "name: unit", 1)
		opts := newOpts(t, fleet)

		_, err := generate.Run(context.Background(), opts)
		require.Error(t, err)

		var re *config.ReferenceError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, config.ForceSchedulerBuilder, re.Name)
		assert.NoFileExists(t, opts.OutputPath)
	})
}

func TestRun_ProjectFilter(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet+`webhook_triggers:
  - name: filtered
    description: Push to acme/app
    builder_names: [B1]
    project_filter: acme/app
  - name: unfiltered
    description: Any push
    builder_names: [runtests]
`)

	result, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Schedulers)

	out := readOutput(t, opts.OutputPath)
	assert.Equal(t, 1, strings.Count(out, "util.ChangeFilter(project='acme/app')"))
	assert.Equal(t, 2, strings.Count(out, "schedulers.AnyBranchScheduler("))

	unfiltered := out[strings.Index(out, "name='unfiltered'"):]
	unfiltered = unfiltered[:strings.Index(unfiltered, ")")]
	assert.NotContains(t, unfiltered, "change_filter")
}

func TestRun_Pushes(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet+`status_pushes:
  - token: status-token
    context: ci/status
    builder_names: [runtests]
comment_pushes:
  - token: comment-token
    context: ci/comment
    builder_names: [B1]
`)

	result, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Services)

	out := readOutput(t, opts.OutputPath)
	assert.Contains(t, out, "reporters.GitHubStatusPush(")
	assert.Contains(t, out, "reporters.GitHubCommentPush(")
	assert.Contains(t, out, "startDescription='Build started.'")
	assert.Contains(t, out, "endDescription='Build done.'")
	assert.Contains(t, out, "postURLs=False")
}

func TestRun_ZeroPortFails(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	opts.Environment = config.Environment{AdminPort: 8010}

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)

	var re *points.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, points.CommsPort, re.Point)
	assert.NoFileExists(t, opts.OutputPath)
}

func TestRun_TemplateMismatch(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	src := tmpl.DefaultSource() + "\nc['extra'] = {{ point \"nonexistent\" }}\n"
	opts.TemplatePath = writeFile(t, t.TempDir(), "master.cfg.tmpl", src)

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)

	var me *tmpl.MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, []string{"nonexistent"}, me.Unknown)
	assert.NoFileExists(t, opts.OutputPath)
}

func TestRun_CustomTemplate(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	src := "# custom header\n" + tmpl.DefaultSource()
	opts.TemplatePath = writeFile(t, t.TempDir(), "master.cfg.tmpl", src)

	_, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(readOutput(t, opts.OutputPath), "# custom header\n"))
}

func TestRun_InvalidPythonTemplate(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	src := tmpl.DefaultSource() + "\nif :\n"
	opts.TemplatePath = writeFile(t, t.TempDir(), "master.cfg.tmpl", src)

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid python")
	assert.NoFileExists(t, opts.OutputPath)
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	opts := newOpts(t, baseFleet)
	opts.DryRun = true
	opts.Stdout = &buf

	result, err := generate.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.False(t, result.Written)
	assert.Equal(t, result.Bytes, buf.Len())
	assert.Contains(t, buf.String(), "BuildmasterConfig")
	assert.NoFileExists(t, opts.OutputPath)
}

func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	opts := &generate.Opts{
		ConfigPath:  filepath.Join(t.TempDir(), "missing.yaml"),
		OutputPath:  filepath.Join(t.TempDir(), "master.cfg"),
		Environment: testEnv,
	}

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching fleet config")
}

func TestRun_HCLConfig(t *testing.T) {
	t.Parallel()

	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fleet", "valid.hcl"))
	require.NoError(t, err)

	opts := &generate.Opts{
		ConfigPath:  path,
		OutputPath:  filepath.Join(t.TempDir(), "master.cfg"),
		Environment: testEnv,
		Env:         map[string]string{"HOOK_SECRET": "from-env"},
	}

	_, err = generate.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Contains(t, readOutput(t, opts.OutputPath), "'secret': 'from-env'")
}

func TestWriteAtomic_ReplacesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "master.cfg", "old")

	require.NoError(t, generate.WriteAtomic(path, []byte("new")))
	assert.Equal(t, "new", readOutput(t, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestRun_SchedulerNameCollisions(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet+`webhook_triggers:
  - name: force
    description: Push to acme/app
    builder_names: [B1]
  - name: force
    description: Any push
    builder_names: [runtests]
`)

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)

	var de *config.DuplicateNameError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, config.ForceSchedulerName, de.Name)
	assert.NoFileExists(t, opts.OutputPath)
}

func TestRun_ConfigChecksumMismatch(t *testing.T) {
	t.Parallel()

	opts := newOpts(t, baseFleet)
	opts.Checksum = "0000000000000000000000000000000000000000000000000000000000000000"

	_, err := generate.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching fleet config")
	assert.NoFileExists(t, opts.OutputPath)
}
