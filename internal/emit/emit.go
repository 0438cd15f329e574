// Package emit renders fleet entities into buildbot configuration expressions.
package emit

import (
	"fmt"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/pyexpr"
)

// Fixed notification texts shared by every status and comment push.
const (
	StartDescription = "Build started."
	EndDescription   = "Build done."
)

// PullRequestRef is the only pull-request ref policy the GitHub hook is configured with.
const PullRequestRef = "direct"

// Worker renders a worker declaration.
func Worker(w *config.Worker) pyexpr.Expr {
	return pyexpr.Call{
		Func: "worker.Worker",
		Args: []pyexpr.Expr{pyexpr.Str(w.Name), pyexpr.Str(w.Password)},
	}
}

// Step renders a shell command step.
func Step(s *config.Step) pyexpr.Expr {
	return pyexpr.Call{
		Func: "steps.ShellCommand",
		Kwargs: []pyexpr.Kwarg{
			{Name: "name", Value: pyexpr.Str(s.Name)},
			{Name: "command", Value: pyexpr.Str(s.Command)},
		},
	}
}

// Checkout renders the incremental git checkout every builder starts with.
func Checkout(repoURL string) pyexpr.Expr {
	return pyexpr.Call{
		Func: "steps.Git",
		Kwargs: []pyexpr.Kwarg{
			{Name: "repourl", Value: pyexpr.Str(repoURL)},
			{Name: "mode", Value: pyexpr.Str("incremental")},
		},
	}
}

// Builder renders a builder: the checkout step, then the declared steps in
// order, bound to its workers.
func Builder(b *config.Builder) pyexpr.Expr {
	factorySteps := make(pyexpr.List, 0, len(b.Steps)+1)
	factorySteps = append(factorySteps, Checkout(b.RepositoryURL))

	for i := range b.Steps {
		factorySteps = append(factorySteps, Step(&b.Steps[i]))
	}

	return pyexpr.Call{
		Func: "util.BuilderConfig",
		Kwargs: []pyexpr.Kwarg{
			{Name: "name", Value: pyexpr.Str(b.Name)},
			{Name: "workernames", Value: pyexpr.ListOf(b.WorkerNames...)},
			{Name: "factory", Value: pyexpr.Call{
				Func: "util.BuildFactory",
				Args: []pyexpr.Expr{factorySteps},
			}},
		},
	}
}

// WebhookTrigger renders an any-branch scheduler. The change filter is only
// emitted when the trigger has a project filter.
func WebhookTrigger(w *config.WebhookTrigger) pyexpr.Expr {
	call := pyexpr.Call{
		Func: "schedulers.AnyBranchScheduler",
		Kwargs: []pyexpr.Kwarg{
			{Name: "name", Value: pyexpr.Str(w.Name)},
			{Name: "reason", Value: pyexpr.Str(w.Description)},
			{Name: "builderNames", Value: pyexpr.ListOf(w.BuilderNames...)},
		},
	}

	if w.HasFilter() {
		call.Kwargs = append(call.Kwargs, pyexpr.Kwarg{
			Name: "change_filter",
			Value: pyexpr.Call{
				Func:   "util.ChangeFilter",
				Kwargs: []pyexpr.Kwarg{{Name: "project", Value: pyexpr.Str(*w.ProjectFilter)}},
			},
		})
	}

	return call
}

// PushKind selects the GitHub reporter a push is rendered as.
type PushKind int

// Push kinds.
const (
	StatusPush PushKind = iota
	CommentPush
)

// Reporter returns the buildbot reporter class for the kind.
func (k PushKind) Reporter() (pyexpr.Ident, error) {
	switch k {
	case StatusPush:
		return "reporters.GitHubStatusPush", nil
	case CommentPush:
		return "reporters.GitHubCommentPush", nil
	default:
		return "", fmt.Errorf("unknown push kind %d", int(k))
	}
}

// Push renders a GitHub status or comment reporter.
func Push(kind PushKind, p *config.Push) (pyexpr.Expr, error) {
	reporter, err := kind.Reporter()
	if err != nil {
		return nil, err
	}

	return pyexpr.Call{
		Func: reporter,
		Kwargs: []pyexpr.Kwarg{
			{Name: "token", Value: pyexpr.Str(p.Token)},
			{Name: "context", Value: pyexpr.Str(p.Context)},
			{Name: "postURLs", Value: pyexpr.Bool(false)},
			{Name: "startDescription", Value: pyexpr.Str(StartDescription)},
			{Name: "endDescription", Value: pyexpr.Str(EndDescription)},
			{Name: "builders", Value: pyexpr.ListOf(p.BuilderNames...)},
		},
	}, nil
}

// ChangeHookDialect renders the github change hook dialect options.
func ChangeHookDialect(h *config.ChangeHook) pyexpr.Expr {
	return pyexpr.Dict{
		{Key: pyexpr.Str("secret"), Value: pyexpr.Str(h.Secret)},
		{Key: pyexpr.Str("pullrequest_ref"), Value: pyexpr.Str(PullRequestRef)},
	}
}

// ForceScheduler renders the built-in manual trigger bound to the runtests builder.
func ForceScheduler() pyexpr.Expr {
	return pyexpr.Call{
		Func: "schedulers.ForceScheduler",
		Kwargs: []pyexpr.Kwarg{
			{Name: "name", Value: pyexpr.Str(config.ForceSchedulerName)},
			{Name: "builderNames", Value: pyexpr.ListOf(config.ForceSchedulerBuilder)},
		},
	}
}
