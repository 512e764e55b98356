package template

import "github.com/cpcf/bootstrapp/errors"

// Expr is a parsed condition. Evaluation is pure: context in, bool out.
//
// Grammar, loosest to tightest binding:
//
//	expr      := term ('or' term)*
//	term      := factor ('and' factor)*
//	factor    := ['not'] ( statement | '(' expr ')' )
//	statement := path ( ('==' | '!=') string-literal )?
//
// A bare path is its value's truthiness. A comparison compares the value's
// string form against the literal; a Nil value never equals any literal,
// so == is false and != is true regardless of the literal.
type Expr interface {
	Eval(r Resolver) bool
}

// ParseCondition parses a condition expression, as found in an if tag or
// an inclusion rule.
func ParseCondition(src string) (Expr, error) {
	s := newScanner(src)
	s.scanSpace()
	return parseConditionScanner(s)
}

func parseConditionScanner(s *scanner) (Expr, error) {
	tokens, err := lexCondition(s)
	if err != nil {
		return nil, err
	}
	p := condParser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, errors.New(errors.ErrSpecValidation, "unexpected trailing tokens in condition")
	}
	return expr, nil
}

type condTokenKind uint8

const (
	condOr condTokenKind = iota
	condAnd
	condNot
	condLParen
	condRParen
	condEquals
	condNotEquals
	condPath
	condString
)

type condToken struct {
	kind condTokenKind
	path []string
	str  string
}

func lexCondition(s *scanner) ([]condToken, error) {
	var tokens []condToken
	s.scanSpace()
	for !s.atEnd() {
		switch {
		case s.scanKeyword("or"):
			tokens = append(tokens, condToken{kind: condOr})
		case s.scanKeyword("and"):
			tokens = append(tokens, condToken{kind: condAnd})
		case s.scanKeyword("not"):
			tokens = append(tokens, condToken{kind: condNot})
		case s.scanLiteral("("):
			tokens = append(tokens, condToken{kind: condLParen})
		case s.scanLiteral(")"):
			tokens = append(tokens, condToken{kind: condRParen})
		case s.scanLiteral("=="):
			tokens = append(tokens, condToken{kind: condEquals})
		case s.scanLiteral("!="):
			tokens = append(tokens, condToken{kind: condNotEquals})
		case s.scanLiteral(`"`):
			lit, err := scanStringLiteral(s, `"`)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, condToken{kind: condString, str: lit})
		case s.scanLiteral("'"):
			lit, err := scanStringLiteral(s, "'")
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, condToken{kind: condString, str: lit})
		default:
			path, ok := s.scanPath()
			if !ok {
				return nil, errors.Newf(errors.ErrSpecValidation,
					"invalid condition near %q", s.rest())
			}
			tokens = append(tokens, condToken{kind: condPath, path: path})
		}
		s.scanSpace()
	}
	return tokens, nil
}

func scanStringLiteral(s *scanner, quote string) (string, error) {
	lit, ok := s.scanUpTo(quote)
	if !ok {
		return "", errors.New(errors.ErrSpecValidation, "unterminated string in condition")
	}
	s.scanLiteral(quote)
	return lit, nil
}

type condParser struct {
	tokens []condToken
	pos    int
}

func (p *condParser) parseExpr() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.pos < len(p.tokens) && p.tokens[p.pos].kind == condOr {
		p.pos++
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return orExpr{terms: terms}, nil
}

func (p *condParser) parseTerm() (Expr, error) {
	first, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	factors := []Expr{first}
	for p.pos < len(p.tokens) && p.tokens[p.pos].kind == condAnd {
		p.pos++
		factor, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		factors = append(factors, factor)
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return andExpr{factors: factors}, nil
}

func (p *condParser) parseFactor() (Expr, error) {
	if p.pos >= len(p.tokens) {
		return nil, errors.New(errors.ErrSpecValidation, "empty condition")
	}

	invert := false
	if p.tokens[p.pos].kind == condNot {
		invert = true
		p.pos++
		if p.pos >= len(p.tokens) {
			return nil, errors.New(errors.ErrSpecValidation, "expected expression after 'not'")
		}
	}

	var expr Expr
	switch p.tokens[p.pos].kind {
	case condLParen:
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != condRParen {
			return nil, errors.New(errors.ErrSpecValidation, "expected ')' in condition")
		}
		p.pos++
		expr = inner
	case condPath:
		var err error
		expr, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrSpecValidation, "unexpected token in condition")
	}

	if invert {
		return notExpr{expr: expr}, nil
	}
	return expr, nil
}

func (p *condParser) parseStatement() (Expr, error) {
	path := p.tokens[p.pos].path
	p.pos++

	if p.pos >= len(p.tokens) {
		return truthyExpr{path: path}, nil
	}
	kind := p.tokens[p.pos].kind
	if kind != condEquals && kind != condNotEquals {
		return truthyExpr{path: path}, nil
	}
	p.pos++
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != condString {
		return nil, errors.New(errors.ErrSpecValidation, "expected string literal after comparison operator")
	}
	literal := p.tokens[p.pos].str
	p.pos++
	return compareExpr{path: path, literal: literal, negate: kind == condNotEquals}, nil
}

type orExpr struct {
	terms []Expr
}

func (e orExpr) Eval(r Resolver) bool {
	for _, t := range e.terms {
		if t.Eval(r) {
			return true
		}
	}
	return false
}

type andExpr struct {
	factors []Expr
}

func (e andExpr) Eval(r Resolver) bool {
	for _, f := range e.factors {
		if !f.Eval(r) {
			return false
		}
	}
	return true
}

type notExpr struct {
	expr Expr
}

func (e notExpr) Eval(r Resolver) bool {
	return !e.expr.Eval(r)
}

type truthyExpr struct {
	path []string
}

func (e truthyExpr) Eval(r Resolver) bool {
	return r.Resolve(e.path).Truthy()
}

type compareExpr struct {
	path    []string
	literal string
	negate  bool
}

func (e compareExpr) Eval(r Resolver) bool {
	v := r.Resolve(e.path)
	if v.IsNil() {
		return e.negate
	}
	eq := v.String() == e.literal
	if e.negate {
		return !eq
	}
	return eq
}
