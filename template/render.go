package template

import (
	"strings"

	"github.com/cpcf/bootstrapp/errors"
)

// renderNodes walks the tree appending output to b. sc carries the base
// context plus any live loop frames; im may be nil for templates that are
// known not to import.
func renderNodes(b *strings.Builder, nodes []Node, sc *Scope, im *Importer) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case TextNode:
			b.WriteString(n.Text)

		case VarNode:
			s, err := applyTransformers(sc.Resolve(n.Path).String(), n.Transformers)
			if err != nil {
				return err
			}
			b.WriteString(s)

		case IfNode:
			branch := n.Then
			if !n.Cond.Eval(sc) {
				branch = n.Else
			}
			if err := renderNodes(b, branch, sc, im); err != nil {
				return err
			}

		case ForNode:
			for _, item := range sc.Resolve(n.SeqPath).List() {
				sc.push(n.Var, item)
				err := renderNodes(b, n.Body, sc, im)
				sc.pop()
				if err != nil {
					return err
				}
			}

		case ImportNode:
			if im == nil {
				return errors.Newf(errors.ErrImportNotFound,
					"import %q: no content root available", n.Path)
			}
			imported, key, err := im.resolve(n.Path)
			if err != nil {
				return err
			}
			if err := im.enter(key); err != nil {
				return err
			}
			err = renderNodes(b, imported, sc, im)
			im.exit()
			if err != nil {
				return err
			}

		default:
			return errors.Newf(errors.ErrInternal, "unhandled node type %T", n)
		}
	}
	return nil
}
