package template

import (
	"strings"

	"github.com/cpcf/bootstrapp/errors"
)

// Delims is the tag delimiter pair surrounding every tag in a template.
type Delims struct {
	Open  string
	Close string
}

// DefaultDelims returns the standard <{ }> delimiter pair.
func DefaultDelims() Delims {
	return Delims{Open: "<{", Close: "}>"}
}

type tokenKind uint8

const (
	tokenText tokenKind = iota
	tokenWhitespace
	tokenNewline
	tokenTag
)

// token is one lexed unit of template source. tokenWhitespace is a text
// run of horizontal whitespace only; the distinction drives control-line
// collapsing.
type token struct {
	kind tokenKind
	text string
	tag  *tag
}

type lexer struct {
	delims Delims
}

// tokenize splits src into text, whitespace, newline and tag tokens. Tag
// bodies are parsed eagerly, so a malformed tag fails the whole template.
func (l lexer) tokenize(src string) ([]token, error) {
	var tokens []token
	s := newScanner(src)

	for !s.atEnd() {
		if s.lookingAt(l.delims.Open) {
			tok, err := l.scanTag(s)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}
		if s.scanLiteral("\n") {
			tokens = append(tokens, token{kind: tokenNewline})
			continue
		}
		tokens = append(tokens, l.scanText(s))
	}
	return tokens, nil
}

func (l lexer) scanTag(s *scanner) (token, error) {
	s.scanLiteral(l.delims.Open)
	body, ok := s.scanUpTo(l.delims.Close)
	if !ok {
		return token{}, errors.Newf(errors.ErrSpecValidation,
			"missing closing delimiter %q", l.delims.Close)
	}
	s.scanLiteral(l.delims.Close)
	t, err := parseTag(body)
	if err != nil {
		return token{}, err
	}
	return token{kind: tokenTag, tag: t}, nil
}

// scanText consumes literal text up to the next newline or a real open
// delimiter. A delimiter-start byte that does not begin the full delimiter
// is literal text.
func (l lexer) scanText(s *scanner) token {
	first := l.delims.Open[0]
	start := s.pos
	for !s.atEnd() {
		c := s.peek()
		if c == '\n' {
			break
		}
		if c == first && s.lookingAt(l.delims.Open) {
			break
		}
		s.pos++
	}
	text := s.src[start:s.pos]
	if isBlank(text) {
		return token{kind: tokenWhitespace, text: text}
	}
	return token{kind: tokenText, text: text}
}

// isBlank reports whether text is horizontal whitespace only.
func isBlank(text string) bool {
	return strings.Trim(text, " \t\r") == ""
}
