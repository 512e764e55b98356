package template

import "github.com/cpcf/bootstrapp/errors"

type tagKind uint8

const (
	tagIf tagKind = iota
	tagFor
	tagElse
	tagEnd
	tagImport
	tagVar
)

// tag is the parsed body of one delimited tag.
type tag struct {
	kind         tagKind
	cond         Expr     // tagIf
	loopVar      string   // tagFor
	seqPath      []string // tagFor
	importPath   string   // tagImport
	path         []string // tagVar
	transformers []string // tagVar
}

func (k tagKind) isControl() bool {
	return k != tagVar
}

// parseTag parses a tag body. Control forms are tried first with
// backtracking, so control words are not reserved: "iffy" or "else.x" fall
// through to the variable form.
func parseTag(body string) (*tag, error) {
	s := newScanner(body)
	s.scanSpace()

	for _, scan := range []func(*scanner) (*tag, error){
		scanIfTag,
		scanForTag,
		scanElseTag,
		scanEndTag,
		scanImportTag,
		scanVarTag,
	} {
		t, err := scan(s)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return nil, errors.Newf(errors.ErrSpecValidation, "invalid tag %q", body)
}

func scanIfTag(s *scanner) (*tag, error) {
	backtrack := s.pos
	if !s.scanLiteral("if") {
		return nil, nil
	}
	if !s.scanSpace() {
		if s.atEnd() {
			return nil, errors.New(errors.ErrSpecValidation, "if tag is missing its condition")
		}
		s.pos = backtrack
		return nil, nil
	}
	cond, err := parseConditionScanner(s)
	if err != nil {
		return nil, err
	}
	return &tag{kind: tagIf, cond: cond}, nil
}

func scanForTag(s *scanner) (*tag, error) {
	backtrack := s.pos
	if !s.scanLiteral("for") {
		return nil, nil
	}
	if !s.scanSpace() {
		if s.atEnd() {
			return nil, errors.New(errors.ErrSpecValidation, "for tag is missing its loop clause")
		}
		s.pos = backtrack
		return nil, nil
	}
	loopVar, ok := s.scanIdentifier()
	if !ok {
		return nil, errors.New(errors.ErrSpecValidation, "expected loop variable in for tag")
	}
	if !s.scanSpace() {
		s.pos = backtrack
		return nil, nil
	}
	if !s.scanLiteral("in") {
		return nil, errors.New(errors.ErrSpecValidation, "expected 'in' in for tag")
	}
	if !s.scanSpace() {
		return nil, errors.New(errors.ErrSpecValidation, "expected whitespace after 'in'")
	}
	seq, ok := s.scanPath()
	if !ok {
		return nil, errors.New(errors.ErrSpecValidation, "expected sequence path in for tag")
	}
	s.scanSpace()
	if !s.atEnd() {
		return nil, errors.Newf(errors.ErrSpecValidation, "unexpected content after for tag: %q", s.rest())
	}
	return &tag{kind: tagFor, loopVar: loopVar, seqPath: seq}, nil
}

func scanElseTag(s *scanner) (*tag, error) {
	backtrack := s.pos
	if !s.scanLiteral("else") {
		return nil, nil
	}
	s.scanSpace()
	if !s.atEnd() {
		s.pos = backtrack
		return nil, nil
	}
	return &tag{kind: tagElse}, nil
}

func scanEndTag(s *scanner) (*tag, error) {
	backtrack := s.pos
	if !s.scanLiteral("end") {
		return nil, nil
	}
	s.scanSpace()
	if !s.atEnd() {
		s.pos = backtrack
		return nil, nil
	}
	return &tag{kind: tagEnd}, nil
}

func scanImportTag(s *scanner) (*tag, error) {
	backtrack := s.pos
	if !s.scanLiteral("import") {
		return nil, nil
	}
	if !s.scanSpace() {
		if s.atEnd() {
			return nil, errors.New(errors.ErrSpecValidation, "import tag is missing its path")
		}
		s.pos = backtrack
		return nil, nil
	}
	if !s.scanLiteral(`"`) {
		if s.atEnd() {
			return nil, errors.New(errors.ErrSpecValidation, "import tag is missing its path")
		}
		s.pos = backtrack
		return nil, nil
	}
	file, ok := s.scanUpToAny("\"\n")
	if !ok {
		return nil, errors.New(errors.ErrSpecValidation, "import tag has an empty path")
	}
	if !s.scanLiteral(`"`) {
		return nil, errors.New(errors.ErrSpecValidation, "unterminated path in import tag")
	}
	s.scanSpace()
	if !s.atEnd() {
		return nil, errors.Newf(errors.ErrSpecValidation, "unexpected content after import tag: %q", s.rest())
	}
	return &tag{kind: tagImport, importPath: file}, nil
}

func scanVarTag(s *scanner) (*tag, error) {
	backtrack := s.pos
	transformers, err := scanTransformers(s)
	if err != nil {
		return nil, err
	}
	path, ok := s.scanPath()
	if !ok {
		s.pos = backtrack
		return nil, nil
	}
	s.scanSpace()
	if !s.atEnd() {
		return nil, errors.Newf(errors.ErrSpecValidation, "invalid variable tag near %q", s.rest())
	}
	return &tag{kind: tagVar, path: path, transformers: transformers}, nil
}

func scanTransformers(s *scanner) ([]string, error) {
	var transformers []string
	for s.scanLiteral("#") {
		name, ok := s.scanIdentifier()
		if !ok {
			return nil, errors.New(errors.ErrSpecValidation, "expected transformer name after #")
		}
		transformers = append(transformers, name)
		s.scanSpace()
	}
	return transformers, nil
}
