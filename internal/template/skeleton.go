// Package template parses master.cfg skeletons and fills their extension points.
//
// A skeleton uses Go template syntax, but the only construct it may contain is
// a point action such as {{ point "workers" }}. Parsing yields an ordered list
// of literal and point segments that is filled programmatically.
package template

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/donaldgifford/fleetgen/internal/pyexpr"
)

// pointFunc is the only template function a skeleton may call.
const pointFunc = "point"

//go:embed master.cfg.tmpl
var defaultSkeleton string

// DefaultName is the name of the embedded skeleton.
const DefaultName = "master.cfg.tmpl"

// Segment is either literal text or a reference to an extension point.
type Segment struct {
	Text  string
	Point string
}

// IsPoint reports whether the segment is an extension point.
func (s Segment) IsPoint() bool {
	return s.Point != ""
}

// Skeleton is a parsed master.cfg template.
type Skeleton struct {
	Name     string
	Segments []Segment
}

// SkeletonError reports a construct a skeleton may not contain.
type SkeletonError struct {
	Location string
	Reason   string
}

func (e *SkeletonError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Reason)
}

// MismatchError reports a skeleton written for a different set of extension points.
type MismatchError struct {
	Name    string
	Unknown []string
	Missing []string
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown extension points: "+strings.Join(e.Unknown, ", "))
	}

	if len(e.Missing) > 0 {
		parts = append(parts, "missing extension points: "+strings.Join(e.Missing, ", "))
	}

	return fmt.Sprintf("template %s does not match this generator (%s)", e.Name, strings.Join(parts, "; "))
}

// Default returns the embedded skeleton.
func Default() (*Skeleton, error) {
	return Parse(DefaultName, defaultSkeleton)
}

// DefaultSource returns the raw text of the embedded skeleton.
func DefaultSource() string {
	return defaultSkeleton
}

// Load reads and parses a skeleton file.
func Load(path string) (*Skeleton, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the user-specified template
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	return Parse(filepath.Base(path), string(data))
}

// Parse parses skeleton text. Anything other than literal text and
// {{ point "<name>" }} actions is rejected.
func Parse(name, text string) (*Skeleton, error) {
	funcs := template.FuncMap{
		pointFunc: func(string) string { return "" },
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}

	for _, t := range tmpl.Templates() {
		if t.Name() != name {
			return nil, &SkeletonError{Location: name, Reason: "nested template definitions are not supported"}
		}
	}

	sk := &Skeleton{Name: name}
	if tmpl.Tree == nil || tmpl.Tree.Root == nil {
		return sk, nil
	}

	for _, node := range tmpl.Tree.Root.Nodes {
		seg, err := segmentFor(tmpl.Tree, node)
		if err != nil {
			return nil, err
		}
		sk.Segments = append(sk.Segments, seg)
	}

	return sk, nil
}

func segmentFor(tree *parse.Tree, node parse.Node) (Segment, error) {
	switch n := node.(type) {
	case *parse.TextNode:
		return Segment{Text: string(n.Text)}, nil
	case *parse.ActionNode:
		name, ok := pointName(n)
		if !ok {
			loc, ctx := tree.ErrorContext(n)
			return Segment{}, &SkeletonError{
				Location: loc,
				Reason:   fmt.Sprintf("unsupported action %s, only {{ point \"<name>\" }} is allowed", ctx),
			}
		}

		return Segment{Point: name}, nil
	default:
		loc, ctx := tree.ErrorContext(node)
		return Segment{}, &SkeletonError{
			Location: loc,
			Reason:   fmt.Sprintf("unsupported construct %s, skeletons may only contain point actions", ctx),
		}
	}
}

func pointName(n *parse.ActionNode) (string, bool) {
	if n.Pipe == nil || len(n.Pipe.Decl) > 0 || len(n.Pipe.Cmds) != 1 {
		return "", false
	}

	args := n.Pipe.Cmds[0].Args
	if len(args) != 2 {
		return "", false
	}

	fn, ok := args[0].(*parse.IdentifierNode)
	if !ok || fn.Ident != pointFunc {
		return "", false
	}

	str, ok := args[1].(*parse.StringNode)
	if !ok || str.Text == "" {
		return "", false
	}

	return str.Text, true
}

// Points returns the distinct extension points used, in order of first use.
func (s *Skeleton) Points() []string {
	seen := make(map[string]bool)

	var names []string

	for _, seg := range s.Segments {
		if seg.IsPoint() && !seen[seg.Point] {
			seen[seg.Point] = true
			names = append(names, seg.Point)
		}
	}

	return names
}

// Check verifies that the skeleton uses exactly the known extension points:
// every point it references is known and every known point is referenced.
func (s *Skeleton) Check(known []string) error {
	used := make(map[string]bool)
	for _, p := range s.Points() {
		used[p] = true
	}

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	mismatch := &MismatchError{Name: s.Name}

	for _, p := range s.Points() {
		if !knownSet[p] {
			mismatch.Unknown = append(mismatch.Unknown, p)
		}
	}

	for _, k := range known {
		if !used[k] {
			mismatch.Missing = append(mismatch.Missing, k)
		}
	}

	if len(mismatch.Unknown) == 0 && len(mismatch.Missing) == 0 {
		return nil
	}

	sort.Strings(mismatch.Unknown)

	return mismatch
}

// Fill merges fragments into the skeleton. Each fragment is laid out for the
// indent of the line its point appears on, and its continuation lines are
// indented to match.
func (s *Skeleton) Fill(fragments map[string]pyexpr.Expr) ([]byte, error) {
	var b strings.Builder

	for _, seg := range s.Segments {
		if !seg.IsPoint() {
			b.WriteString(seg.Text)
			continue
		}

		expr, ok := fragments[seg.Point]
		if !ok || expr == nil {
			return nil, fmt.Errorf("no fragment for extension point %q", seg.Point)
		}

		indent := currentIndent(b.String())
		b.WriteString(indentContinuation(pyexpr.RenderAt(expr, len(indent)), indent))
	}

	return []byte(b.String()), nil
}

// currentIndent returns the leading whitespace of the last line of s.
func currentIndent(s string) string {
	line := s[strings.LastIndexByte(s, '\n')+1:]
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func indentContinuation(frag, indent string) string {
	if indent == "" || !strings.Contains(frag, "\n") {
		return frag
	}

	return strings.ReplaceAll(frag, "\n", "\n"+indent)
}
