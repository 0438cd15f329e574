// Package pysyntax checks generated Python source for syntax errors with tree-sitter.
package pysyntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError locates one ERROR or MISSING node in parsed source.
type SyntaxError struct {
	Name   string
	Line   uint32 // 0-indexed
	Column uint32 // 0-indexed
	Kind   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Name, e.Line+1, e.Column+1, e.Kind)
}

// ErrorList is every syntax error found in one document.
type ErrorList []SyntaxError

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i := range l {
		msgs[i] = l[i].Error()
	}

	return strings.Join(msgs, "\n")
}

// Check parses content as Python and returns an ErrorList if the tree
// contains any ERROR or MISSING node. name is used in error locations.
func Check(ctx context.Context, content []byte, name string) error {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	root := tree.RootNode()
	if root == nil {
		return fmt.Errorf("parsing %s: no syntax tree", name)
	}

	if !root.HasError() {
		return nil
	}

	var errs ErrorList
	collect(root, name, &errs)

	if len(errs) == 0 {
		errs = append(errs, SyntaxError{Name: name, Kind: "syntax error"})
	}

	return errs
}

func collect(node *sitter.Node, name string, errs *ErrorList) {
	if node.IsError() || node.IsMissing() {
		kind := "syntax error"
		if node.IsMissing() {
			kind = "missing " + node.Type()
		}

		*errs = append(*errs, SyntaxError{
			Name:   name,
			Line:   node.StartPoint().Row,
			Column: node.StartPoint().Column,
			Kind:   kind,
		})

		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collect(child, name, errs)
		}
	}
}
