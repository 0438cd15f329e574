package config

import (
	"fmt"
	"strings"
)

// SchemaError reports a missing, mistyped or malformed field in a fleet config.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Reason
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DuplicateNameError reports a worker, builder or webhook trigger name declared
// more than once. Indexes holds every position the name occurs at. Builtin is
// set when the name is taken by an entity every generated config contains.
type DuplicateNameError struct {
	Kind    string
	Name    string
	Indexes []int
	Builtin string
}

func (e *DuplicateNameError) Error() string {
	at := make([]string, len(e.Indexes))
	for i, idx := range e.Indexes {
		at[i] = fmt.Sprintf("%ss[%d]", e.Kind, idx)
	}

	if e.Builtin != "" {
		return fmt.Sprintf("%s name %q declared at %s is reserved for the %s",
			e.Kind, e.Name, strings.Join(at, ", "), e.Builtin)
	}

	return fmt.Sprintf("duplicate %s name %q declared at %s", e.Kind, e.Name, strings.Join(at, ", "))
}

// ReferenceError reports a name reference that does not resolve to a declared entity.
type ReferenceError struct {
	// Field is the path of the offending reference, e.g. "builders[0].worker_names[1]".
	Field string
	// Kind is the entity kind the reference should resolve to ("worker" or "builder").
	Kind string
	// Name is the unresolved name.
	Name string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: references undeclared %s %q", e.Field, e.Kind, e.Name)
}

// EnvironmentError reports a missing or invalid required environment variable.
type EnvironmentError struct {
	Variable string
	Reason   string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("environment variable %s: %s", e.Variable, e.Reason)
}
