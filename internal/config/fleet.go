// Package config handles parsing, schema checking and validation of fleet configurations.
package config

// The built-in force scheduler is emitted into every config under
// ForceSchedulerName and always targets ForceSchedulerBuilder.
const (
	ForceSchedulerName    = "force"
	ForceSchedulerBuilder = "runtests"
)

// Fleet is the declarative description of a CI fleet (fleet.yaml or fleet.hcl).
type Fleet struct {
	Hostname        string           `yaml:"hostname"`
	ChangeHook      ChangeHook       `yaml:"change_hook"`
	Workers         []Worker         `yaml:"workers"`
	Builders        []Builder        `yaml:"builders"`
	WebhookTriggers []WebhookTrigger `yaml:"webhook_triggers"`
	StatusPushes    []Push           `yaml:"status_pushes"`
	CommentPushes   []Push           `yaml:"comment_pushes"`
}

// Worker is a named execution endpoint with its credential.
type Worker struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Builder is a CI job definition: a checkout of RepositoryURL followed by Steps,
// run on any of WorkerNames.
type Builder struct {
	Name          string   `yaml:"name"`
	RepositoryURL string   `yaml:"repository_url"`
	WorkerNames   []string `yaml:"worker_names"`
	Steps         []Step   `yaml:"steps"`
}

// Step is a single shell command of a builder. Order within the builder is significant.
type Step struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// WebhookTrigger starts builds when a GitHub push matches ProjectFilter.
// A nil ProjectFilter matches every project.
type WebhookTrigger struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	BuilderNames  []string `yaml:"builder_names"`
	ProjectFilter *string  `yaml:"project_filter"`
}

// Push reports build outcomes back to GitHub. Status and comment pushes share this shape.
type Push struct {
	Token        string   `yaml:"token"`
	Context      string   `yaml:"context"`
	BuilderNames []string `yaml:"builder_names"`
}

// ChangeHook holds the secret used to authenticate incoming GitHub deliveries.
type ChangeHook struct {
	Secret string `yaml:"secret"`
}

// Model is a validated fleet together with the deployment environment it is
// generated for. Everything the generator emits is derived from a Model.
type Model struct {
	Fleet       *Fleet
	Environment Environment
}

// NewModel pairs a fleet with its environment.
func NewModel(fleet *Fleet, env Environment) *Model {
	return &Model{
		Fleet:       fleet,
		Environment: env,
	}
}

// WorkerNames returns the declared worker names in declaration order.
func (f *Fleet) WorkerNames() []string {
	names := make([]string, 0, len(f.Workers))
	for i := range f.Workers {
		names = append(names, f.Workers[i].Name)
	}

	return names
}

// BuilderNames returns the declared builder names in declaration order.
func (f *Fleet) BuilderNames() []string {
	names := make([]string, 0, len(f.Builders))
	for i := range f.Builders {
		names = append(names, f.Builders[i].Name)
	}

	return names
}

// TriggerNames returns the declared webhook trigger names in declaration order.
func (f *Fleet) TriggerNames() []string {
	names := make([]string, 0, len(f.WebhookTriggers))
	for i := range f.WebhookTriggers {
		names = append(names, f.WebhookTriggers[i].Name)
	}

	return names
}

// HasFilter reports whether the trigger restricts which projects it fires for.
func (w *WebhookTrigger) HasFilter() bool {
	return w.ProjectFilter != nil
}
