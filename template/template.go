package template

import (
	"strings"

	"github.com/cpcf/bootstrapp/errors"
)

// Template is a parsed template, reusable across renders.
type Template struct {
	nodes  []Node
	delims Delims
}

// Parse parses src with the default <{ }> delimiters.
func Parse(src string) (*Template, error) {
	return ParseWithDelims(src, DefaultDelims())
}

// ParseWithDelims parses src with a custom delimiter pair.
func ParseWithDelims(src string, d Delims) (*Template, error) {
	if d.Open == "" || d.Close == "" {
		return nil, errors.New(errors.ErrInternal, "tag delimiters must be non-empty")
	}
	tokens, err := lexer{delims: d}.tokenize(src)
	if err != nil {
		return nil, err
	}
	nodes, err := parseTokens(tokens)
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes, delims: d}, nil
}

// Render renders the template against ctx. im resolves import tags and may
// be nil for templates that do not import.
func (t *Template) Render(ctx Context, im *Importer) (string, error) {
	var b strings.Builder
	if err := renderNodes(&b, t.nodes, NewScope(ctx), im); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderString parses and renders src in one step, without import support.
func RenderString(src string, ctx Context) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return t.Render(ctx, nil)
}

// RenderPathSegment renders one file or directory name. Names may use
// variable tags with transformers; control flow has no place in a name and
// is rejected.
func RenderPathSegment(segment string, ctx Context) (string, error) {
	t, err := Parse(segment)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSpecValidation,
			"invalid template in name %q", segment)
	}
	if containsControl(t.nodes) {
		return "", errors.Newf(errors.ErrSpecValidation,
			"control tags are not allowed in file or directory names: %q", segment)
	}
	return t.Render(ctx, nil)
}

func containsControl(nodes []Node) bool {
	for _, n := range nodes {
		switch n.(type) {
		case IfNode, ForNode, ImportNode:
			return true
		}
	}
	return false
}
