package template

import "strings"

// scanner is a position-based string scanner. All scan methods either
// consume input and report success or leave the position untouched.
type scanner struct {
	src string
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	return s.src[s.pos]
}

func (s *scanner) rest() string {
	return s.src[s.pos:]
}

func (s *scanner) lookingAt(lit string) bool {
	return strings.HasPrefix(s.rest(), lit)
}

func (s *scanner) scanLiteral(lit string) bool {
	if !s.lookingAt(lit) {
		return false
	}
	s.pos += len(lit)
	return true
}

// scanUpTo consumes up to but not including the next occurrence of lit.
// When lit does not occur the position is unchanged and ok is false.
func (s *scanner) scanUpTo(lit string) (string, bool) {
	idx := strings.Index(s.rest(), lit)
	if idx < 0 {
		return "", false
	}
	out := s.src[s.pos : s.pos+idx]
	s.pos += idx
	return out, true
}

// scanUpToAny consumes up to the first byte contained in stop. ok is false
// when nothing was consumed.
func (s *scanner) scanUpToAny(stop string) (string, bool) {
	start := s.pos
	for s.pos < len(s.src) && !strings.ContainsRune(stop, rune(s.src[s.pos])) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.src[start:s.pos], true
}

// scanSpace consumes a run of whitespace (spaces, tabs, newlines) and
// reports whether any was consumed.
func (s *scanner) scanSpace() bool {
	start := s.pos
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return s.pos > start
		}
	}
	return s.pos > start
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func (s *scanner) scanIdentifier() (string, bool) {
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.src[start:s.pos], true
}

// scanPath consumes a dot path (IDENT ('.' IDENT)*). A trailing dot not
// followed by an identifier byte is left unconsumed.
func (s *scanner) scanPath() ([]string, bool) {
	var path []string
	for {
		ident, ok := s.scanIdentifier()
		if !ok {
			break
		}
		path = append(path, ident)
		backtrack := s.pos
		if !s.scanLiteral(".") {
			break
		}
		if s.atEnd() || !isIdentByte(s.peek()) {
			s.pos = backtrack
			break
		}
	}
	return path, len(path) > 0
}

// scanKeyword consumes kw only when it forms a whole identifier, so "or"
// does not match the prefix of "orange".
func (s *scanner) scanKeyword(kw string) bool {
	backtrack := s.pos
	ident, ok := s.scanIdentifier()
	if ok && ident == kw {
		return true
	}
	s.pos = backtrack
	return false
}
