package config

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclRoot mirrors Fleet using labeled blocks. Every attribute is optional so
// that missing values are reported by CheckSchema like they are for YAML.
type hclRoot struct {
	Hostname        string               `hcl:"hostname,optional"`
	ChangeHook      *hclChangeHook       `hcl:"change_hook,block"`
	Workers         []*hclWorker         `hcl:"worker,block"`
	Builders        []*hclBuilder        `hcl:"builder,block"`
	WebhookTriggers []*hclWebhookTrigger `hcl:"webhook_trigger,block"`
	StatusPushes    []*hclPush           `hcl:"status_push,block"`
	CommentPushes   []*hclPush           `hcl:"comment_push,block"`
}

type hclChangeHook struct {
	Secret string `hcl:"secret,optional"`
}

type hclWorker struct {
	Name     string `hcl:"name,label"`
	Password string `hcl:"password,optional"`
}

type hclBuilder struct {
	Name          string     `hcl:"name,label"`
	RepositoryURL string     `hcl:"repository_url,optional"`
	WorkerNames   []string   `hcl:"worker_names,optional"`
	Steps         []*hclStep `hcl:"step,block"`
}

type hclStep struct {
	Name    string `hcl:"name,label"`
	Command string `hcl:"command,optional"`
}

type hclWebhookTrigger struct {
	Name          string   `hcl:"name,label"`
	Description   string   `hcl:"description,optional"`
	BuilderNames  []string `hcl:"builder_names,optional"`
	ProjectFilter *string  `hcl:"project_filter,optional"`
}

type hclPush struct {
	Token        string   `hcl:"token,optional"`
	Context      string   `hcl:"context,optional"`
	BuilderNames []string `hcl:"builder_names,optional"`
}

func decodeHCL(data []byte, name string, env map[string]string) (*Fleet, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, evalContext(env), &root); diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}

	return root.translate(), nil
}

// evalContext exposes the environment as the env object. Keys are sorted so
// diagnostics are stable between runs.
func evalContext(env map[string]string) *hcl.EvalContext {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := make(map[string]cty.Value, len(keys))
	for _, k := range keys {
		vals[k] = cty.StringVal(env[k])
	}

	envVal := cty.EmptyObjectVal
	if len(vals) > 0 {
		envVal = cty.ObjectVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVal},
	}
}

func diagnosticsError(diags hcl.Diagnostics) error {
	var result *multierror.Error

	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}

		se := &SchemaError{Reason: d.Summary}
		if d.Detail != "" {
			se.Reason += ": " + d.Detail
		}
		if d.Subject != nil {
			se.Field = d.Subject.String()
		}

		result = multierror.Append(result, se)
	}

	return result.ErrorOrNil()
}

func (r *hclRoot) translate() *Fleet {
	fleet := &Fleet{Hostname: r.Hostname}

	if r.ChangeHook != nil {
		fleet.ChangeHook.Secret = r.ChangeHook.Secret
	}

	for _, w := range r.Workers {
		fleet.Workers = append(fleet.Workers, Worker{Name: w.Name, Password: w.Password})
	}

	for _, b := range r.Builders {
		builder := Builder{
			Name:          b.Name,
			RepositoryURL: b.RepositoryURL,
			WorkerNames:   b.WorkerNames,
		}
		for _, s := range b.Steps {
			builder.Steps = append(builder.Steps, Step{Name: s.Name, Command: s.Command})
		}
		fleet.Builders = append(fleet.Builders, builder)
	}

	for _, t := range r.WebhookTriggers {
		fleet.WebhookTriggers = append(fleet.WebhookTriggers, WebhookTrigger{
			Name:          t.Name,
			Description:   t.Description,
			BuilderNames:  t.BuilderNames,
			ProjectFilter: t.ProjectFilter,
		})
	}

	fleet.StatusPushes = translatePushes(r.StatusPushes)
	fleet.CommentPushes = translatePushes(r.CommentPushes)

	return fleet
}

func translatePushes(in []*hclPush) []Push {
	var out []Push
	for _, p := range in {
		out = append(out, Push{Token: p.Token, Context: p.Context, BuilderNames: p.BuilderNames})
	}

	return out
}
