package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// schemaChecker accumulates schema violations for a single fleet.
type schemaChecker struct {
	result *multierror.Error
}

func (c *schemaChecker) fail(field, reason string) {
	c.result = multierror.Append(c.result, &SchemaError{Field: field, Reason: reason})
}

func (c *schemaChecker) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "required")
	}
}

func (c *schemaChecker) names(field string, names []string) {
	if len(names) == 0 {
		c.fail(field, "at least one name is required")

		return
	}

	for i, n := range names {
		c.required(fmt.Sprintf("%s[%d]", field, i), n)
	}
}

// CheckSchema verifies that every field of the fleet is present and well formed.
// It reports every violation, not just the first, as a *multierror.Error of *SchemaError.
func CheckSchema(f *Fleet) error {
	c := &schemaChecker{}

	c.required("hostname", f.Hostname)
	if strings.ContainsAny(f.Hostname, "/: \t") {
		c.fail("hostname", fmt.Sprintf("must be a bare host name, got %q", f.Hostname))
	}

	c.required("change_hook.secret", f.ChangeHook.Secret)

	if len(f.Workers) == 0 {
		c.fail("workers", "at least one worker is required")
	}

	for i := range f.Workers {
		w := &f.Workers[i]
		p := fmt.Sprintf("workers[%d]", i)
		c.required(p+".name", w.Name)
		c.required(p+".password", w.Password)
	}

	if len(f.Builders) == 0 {
		c.fail("builders", "at least one builder is required")
	}

	for i := range f.Builders {
		checkBuilder(c, &f.Builders[i], i)
	}

	for i := range f.WebhookTriggers {
		t := &f.WebhookTriggers[i]
		p := fmt.Sprintf("webhook_triggers[%d]", i)
		c.required(p+".name", t.Name)
		c.required(p+".description", t.Description)
		c.names(p+".builder_names", t.BuilderNames)

		// An empty filter is ambiguous: it would either match nothing or be
		// silently dropped. Omit the key to trigger on every project.
		if t.ProjectFilter != nil && strings.TrimSpace(*t.ProjectFilter) == "" {
			c.fail(p+".project_filter", "must not be empty; omit it to trigger on all projects")
		}
	}

	checkPushes(c, "status_pushes", f.StatusPushes)
	checkPushes(c, "comment_pushes", f.CommentPushes)

	return c.result.ErrorOrNil()
}

func checkBuilder(c *schemaChecker, b *Builder, index int) {
	p := fmt.Sprintf("builders[%d]", index)
	c.required(p+".name", b.Name)
	c.required(p+".repository_url", b.RepositoryURL)
	c.names(p+".worker_names", b.WorkerNames)

	for j := range b.Steps {
		s := &b.Steps[j]
		sp := fmt.Sprintf("%s.steps[%d]", p, j)
		c.required(sp+".name", s.Name)
		c.required(sp+".command", s.Command)
	}
}

func checkPushes(c *schemaChecker, field string, pushes []Push) {
	for i := range pushes {
		p := fmt.Sprintf("%s[%d]", field, i)
		c.required(p+".token", pushes[i].Token)
		c.required(p+".context", pushes[i].Context)
		c.names(p+".builder_names", pushes[i].BuilderNames)
	}
}
