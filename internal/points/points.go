// Package points resolves the named extension points of the master.cfg skeleton.
//
// Each point is a generator callable registered under a fixed name. The set of
// names is closed: a skeleton that uses an unknown name, or misses a known
// one, was written for a different generator version.
package points

import (
	"fmt"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/pyexpr"
)

// Extension point names.
const (
	Workers           = "workers"
	Builders          = "builders"
	ForceScheduler    = "force_scheduler"
	WebhookTriggers   = "webhook_triggers"
	StatusPushes      = "status_pushes"
	CommentPushes     = "comment_pushes"
	ChangeHookDialect = "change_hook_dialect"
	Hostname          = "hostname"
	AdminPort         = "admin_port"
	CommsPort         = "comms_port"
)

// GenerateFunc produces the fragment for one extension point.
type GenerateFunc func(m *config.Model) (pyexpr.Expr, error)

// Point is a registered extension point.
type Point struct {
	Name        string
	Description string
	Generate    GenerateFunc
}

// Registry maps extension point names to their generators, in a fixed order.
type Registry struct {
	points []Point
	index  map[string]int
}

// RenderError reports an extension point whose fragment could not be produced.
type RenderError struct {
	Point string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering extension point %q: %v", e.Point, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRegistry builds a registry from points. Names must be unique.
func NewRegistry(points ...Point) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(points))}

	for _, p := range points {
		if p.Name == "" || p.Generate == nil {
			return nil, fmt.Errorf("extension point %q: name and generator are required", p.Name)
		}

		if _, dup := r.index[p.Name]; dup {
			return nil, fmt.Errorf("extension point %q registered twice", p.Name)
		}

		r.index[p.Name] = len(r.points)
		r.points = append(r.points, p)
	}

	return r, nil
}

// Default returns the registry of every extension point fleetgen knows.
func Default() *Registry {
	r, err := NewRegistry(
		Point{Workers, "worker declarations", workers},
		Point{Builders, "builder declarations with checkout and steps", builders},
		Point{ForceScheduler, "built-in force scheduler bound to runtests", forceScheduler},
		Point{WebhookTriggers, "GitHub webhook schedulers", webhookTriggers},
		Point{StatusPushes, "GitHub status reporters", statusPushes},
		Point{CommentPushes, "GitHub comment reporters", commentPushes},
		Point{ChangeHookDialect, "github change hook dialect options", changeHookDialect},
		Point{Hostname, "public host name used in the buildbot URL", hostname},
		Point{AdminPort, "web UI port from ADMIN_PORT", adminPort},
		Point{CommsPort, "worker protocol port from COMMS_PORT", commsPort},
	)
	if err != nil {
		panic(err)
	}

	return r
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.points))
	for i := range r.points {
		names[i] = r.points[i].Name
	}

	return names
}

// Points returns the registered points in registration order.
func (r *Registry) Points() []Point {
	return append([]Point(nil), r.points...)
}

// Resolve produces the fragment of every registered point. It is
// all-or-nothing: the first failing point aborts with a *RenderError.
// Fragments are rendered where they are placed, see template.Skeleton.Fill.
func (r *Registry) Resolve(m *config.Model) (map[string]pyexpr.Expr, error) {
	fragments := make(map[string]pyexpr.Expr, len(r.points))

	for i := range r.points {
		p := &r.points[i]

		expr, err := p.Generate(m)
		if err != nil {
			return nil, &RenderError{Point: p.Name, Err: err}
		}

		if expr == nil {
			return nil, &RenderError{Point: p.Name, Err: fmt.Errorf("generator returned no fragment")}
		}

		fragments[p.Name] = expr
	}

	return fragments, nil
}
