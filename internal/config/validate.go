package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks referential integrity of a schema-valid fleet. It runs two
// passes, name uniqueness then reference resolution, and returns every
// violation found as a *multierror.Error of *DuplicateNameError and
// *ReferenceError. The order of reported violations is deterministic.
func Validate(f *Fleet) error {
	var result *multierror.Error

	result = multierror.Append(result, duplicates("worker", f.WorkerNames())...)
	result = multierror.Append(result, duplicates("builder", f.BuilderNames())...)
	result = multierror.Append(result, duplicates("webhook_trigger", f.TriggerNames())...)

	if at := indexesOf(f.TriggerNames(), ForceSchedulerName); len(at) > 0 {
		result = multierror.Append(result, &DuplicateNameError{
			Kind:    "webhook_trigger",
			Name:    ForceSchedulerName,
			Indexes: at,
			Builtin: "built-in force scheduler",
		})
	}

	workers := nameSet(f.WorkerNames())
	builders := nameSet(f.BuilderNames())

	for i := range f.Builders {
		b := &f.Builders[i]
		result = multierror.Append(result,
			dangling(fmt.Sprintf("builders[%d].worker_names", i), "worker", b.WorkerNames, workers)...)
	}

	for i := range f.WebhookTriggers {
		result = multierror.Append(result,
			dangling(fmt.Sprintf("webhook_triggers[%d].builder_names", i), "builder", f.WebhookTriggers[i].BuilderNames, builders)...)
	}

	for i := range f.StatusPushes {
		result = multierror.Append(result,
			dangling(fmt.Sprintf("status_pushes[%d].builder_names", i), "builder", f.StatusPushes[i].BuilderNames, builders)...)
	}

	for i := range f.CommentPushes {
		result = multierror.Append(result,
			dangling(fmt.Sprintf("comment_pushes[%d].builder_names", i), "builder", f.CommentPushes[i].BuilderNames, builders)...)
	}

	// The built-in force scheduler is part of every generated config.
	if !builders[ForceSchedulerBuilder] {
		result = multierror.Append(result, &ReferenceError{
			Field: "schedulers.force.builder_names[0]",
			Kind:  "builder",
			Name:  ForceSchedulerBuilder,
		})
	}

	return result.ErrorOrNil()
}

// duplicates returns one error per name that occurs more than once, listing
// every index it occurs at, in order of first occurrence.
func duplicates(kind string, names []string) []error {
	seen := make(map[string][]int, len(names))
	var order []string

	for i, n := range names {
		if _, ok := seen[n]; !ok {
			order = append(order, n)
		}
		seen[n] = append(seen[n], i)
	}

	var errs []error

	for _, n := range order {
		if len(seen[n]) > 1 {
			errs = append(errs, &DuplicateNameError{Kind: kind, Name: n, Indexes: seen[n]})
		}
	}

	return errs
}

func indexesOf(names []string, name string) []int {
	var at []int

	for i, n := range names {
		if n == name {
			at = append(at, i)
		}
	}

	return at
}

func dangling(field, kind string, refs []string, declared map[string]bool) []error {
	var errs []error

	for j, ref := range refs {
		if !declared[ref] {
			errs = append(errs, &ReferenceError{
				Field: fmt.Sprintf("%s[%d]", field, j),
				Kind:  kind,
				Name:  ref,
			})
		}
	}

	return errs
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}
