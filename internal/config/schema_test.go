package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/fleetgen/internal/config"
)

func validFleet() *config.Fleet {
	return &config.Fleet{
		Hostname:   "ci.example.com",
		ChangeHook: config.ChangeHook{Secret: "hook-secret"},
		Workers: []config.Worker{
			{Name: "W1", Password: "pw"},
		},
		Builders: []config.Builder{
			{
				Name:          "runtests",
				RepositoryURL: "https://github.com/example/app.git",
				WorkerNames:   []string{"W1"},
				Steps:         []config.Step{{Name: "build", Command: "make"}},
			},
		},
	}
}

func ptr(s string) *string { return &s }

func TestCheckSchema_Valid(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.CheckSchema(validFleet()))
}

func TestCheckSchema_BuilderWithoutSteps(t *testing.T) {
	t.Parallel()

	f := validFleet()
	f.Builders[0].Steps = nil

	require.NoError(t, config.CheckSchema(f))
}

func TestCheckSchema_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(f *config.Fleet)
		field  string
	}{
		{
			name:   "missing hostname",
			mutate: func(f *config.Fleet) { f.Hostname = " " },
			field:  "hostname",
		},
		{
			name:   "hostname with scheme",
			mutate: func(f *config.Fleet) { f.Hostname = "http://ci" },
			field:  "hostname",
		},
		{
			name:   "missing secret",
			mutate: func(f *config.Fleet) { f.ChangeHook.Secret = "" },
			field:  "change_hook.secret",
		},
		{
			name:   "no workers",
			mutate: func(f *config.Fleet) { f.Workers = nil },
			field:  "workers",
		},
		{
			name:   "no builders",
			mutate: func(f *config.Fleet) { f.Builders = nil },
			field:  "builders",
		},
		{
			name:   "builder without workers",
			mutate: func(f *config.Fleet) { f.Builders[0].WorkerNames = nil },
			field:  "builders[0].worker_names",
		},
		{
			name:   "blank worker reference",
			mutate: func(f *config.Fleet) { f.Builders[0].WorkerNames = []string{"W1", ""} },
			field:  "builders[0].worker_names[1]",
		},
		{
			name:   "step without command",
			mutate: func(f *config.Fleet) { f.Builders[0].Steps[0].Command = "" },
			field:  "builders[0].steps[0].command",
		},
		{
			name: "trigger without builders",
			mutate: func(f *config.Fleet) {
				f.WebhookTriggers = []config.WebhookTrigger{{Name: "t", Description: "d"}}
			},
			field: "webhook_triggers[0].builder_names",
		},
		{
			name: "empty project filter",
			mutate: func(f *config.Fleet) {
				f.WebhookTriggers = []config.WebhookTrigger{
					{Name: "t", Description: "d", BuilderNames: []string{"runtests"}, ProjectFilter: ptr("")},
				}
			},
			field: "webhook_triggers[0].project_filter",
		},
		{
			name: "status push without token",
			mutate: func(f *config.Fleet) {
				f.StatusPushes = []config.Push{{Context: "ci", BuilderNames: []string{"runtests"}}}
			},
			field: "status_pushes[0].token",
		},
		{
			name: "comment push without context",
			mutate: func(f *config.Fleet) {
				f.CommentPushes = []config.Push{{Token: "t", BuilderNames: []string{"runtests"}}}
			},
			field: "comment_pushes[0].context",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := validFleet()
			tt.mutate(f)

			err := config.CheckSchema(f)
			require.Error(t, err)
			assert.Contains(t, schemaFields(t, err), tt.field)
		})
	}
}

func TestCheckSchema_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	f := validFleet()
	f.Hostname = ""
	f.ChangeHook.Secret = ""
	f.Workers[0].Password = ""

	err := config.CheckSchema(f)
	require.Error(t, err)
	assert.Equal(t, []string{"hostname", "change_hook.secret", "workers[0].password"}, schemaFields(t, err))
}
