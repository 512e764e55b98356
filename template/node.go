package template

import "github.com/cpcf/bootstrapp/errors"

// Node is one element of a parsed template.
type Node interface {
	node()
}

// TextNode is literal output.
type TextNode struct {
	Text string
}

// VarNode emits a resolved value, passed through its transformer chain.
// A Nil resolution emits nothing.
type VarNode struct {
	Path         []string
	Transformers []string
}

// IfNode renders Then when its condition holds, Else otherwise.
type IfNode struct {
	Cond Expr
	Then []Node
	Else []Node
}

// ForNode renders Body once per item of the resolved list, binding Var to
// the item. A non-list resolution renders nothing.
type ForNode struct {
	Var     string
	SeqPath []string
	Body    []Node
}

// ImportNode splices another template file, rendered against the current
// scope.
type ImportNode struct {
	Path string
}

func (TextNode) node()   {}
func (VarNode) node()    {}
func (IfNode) node()     {}
func (ForNode) node()    {}
func (ImportNode) node() {}

type blockKind uint8

const (
	blockTop blockKind = iota
	blockIf
	blockElse
	blockFor
)

type parser struct {
	tokens []token
	pos    int
}

// parseTokens builds the node tree. Control lines are collapsed out of the
// token stream first, so a control tag alone on a line leaves no text.
func parseTokens(tokens []token) ([]Node, error) {
	p := &parser{tokens: collapseControlLines(tokens)}
	nodes, _, err := p.parseBlock(blockTop)
	return nodes, err
}

// parseBlock consumes nodes until the terminator that closes the given
// block kind, returning the terminator it consumed (zero at end of input).
func (p *parser) parseBlock(kind blockKind) ([]Node, tagKind, error) {
	var nodes []Node

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.kind {
		case tokenText, tokenWhitespace:
			nodes = append(nodes, TextNode{Text: tok.text})
			p.pos++
			continue
		case tokenNewline:
			nodes = append(nodes, TextNode{Text: "\n"})
			p.pos++
			continue
		}

		t := tok.tag
		switch t.kind {
		case tagVar:
			nodes = append(nodes, VarNode{Path: t.path, Transformers: t.transformers})
			p.pos++

		case tagImport:
			nodes = append(nodes, ImportNode{Path: t.importPath})
			p.pos++

		case tagIf:
			p.pos++
			then, term, err := p.parseBlock(blockIf)
			if err != nil {
				return nil, 0, err
			}
			var elseNodes []Node
			if term == tagElse {
				elseNodes, _, err = p.parseBlock(blockElse)
				if err != nil {
					return nil, 0, err
				}
			}
			nodes = append(nodes, IfNode{Cond: t.cond, Then: then, Else: elseNodes})

		case tagFor:
			p.pos++
			body, _, err := p.parseBlock(blockFor)
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, ForNode{Var: t.loopVar, SeqPath: t.seqPath, Body: body})

		case tagElse:
			switch kind {
			case blockIf:
				p.pos++
				return nodes, tagElse, nil
			case blockElse:
				return nil, 0, errors.New(errors.ErrSpecValidation, "if block has more than one else")
			case blockFor:
				return nil, 0, errors.New(errors.ErrSpecValidation, "else is not allowed inside for")
			default:
				return nil, 0, errors.New(errors.ErrSpecValidation, "else without matching if")
			}

		case tagEnd:
			if kind == blockTop {
				return nil, 0, errors.New(errors.ErrSpecValidation, "end without matching if or for")
			}
			p.pos++
			return nodes, tagEnd, nil
		}
	}

	if kind != blockTop {
		return nil, 0, errors.New(errors.ErrSpecValidation, "unclosed if or for block")
	}
	return nodes, 0, nil
}

// collapseControlLines removes lines occupied by a single control tag: the
// tag token survives as structure, its surrounding horizontal whitespace
// and the trailing newline do not. Variable tags and lines carrying any
// other content are untouched.
func collapseControlLines(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	var line []token

	flush := func(newline bool) {
		if tag := soleControlTag(line); tag != nil {
			out = append(out, *tag)
			return
		}
		out = append(out, line...)
		if newline {
			out = append(out, token{kind: tokenNewline})
		}
	}

	for _, tok := range tokens {
		if tok.kind == tokenNewline {
			flush(true)
			line = line[:0]
			continue
		}
		line = append(line, tok)
	}
	if len(line) > 0 {
		flush(false)
	}
	return out
}

// soleControlTag returns the line's tag token when the line is exactly one
// control tag plus horizontal whitespace, else nil.
func soleControlTag(line []token) *token {
	var tag *token
	for i := range line {
		switch line[i].kind {
		case tokenWhitespace:
		case tokenTag:
			if tag != nil || !line[i].tag.kind.isControl() {
				return nil
			}
			tag = &line[i]
		default:
			return nil
		}
	}
	return tag
}
