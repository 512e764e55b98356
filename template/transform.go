package template

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cpcf/bootstrapp/errors"
)

// TransformFunc rewrites a value's string form. Transformers in a variable
// tag apply left to right before emission.
type TransformFunc func(string) string

var transformers = map[string]TransformFunc{
	"lowercased":             strings.ToLower,
	"uppercased":             strings.ToUpper,
	"uppercasingFirstLetter": upperFirst,
	"lowercasingFirstLetter": lowerFirst,
	"trimmed":                strings.TrimSpace,
	"removingWhitespace":     removeWhitespace,
	// collapsingWhitespace is a historical alias accepted by existing
	// bundles; it behaves exactly like removingWhitespace.
	"collapsingWhitespace": removeWhitespace,
}

// LookupTransformer resolves a transformer by name. An unknown name is an
// error, never a no-op.
func LookupTransformer(name string) (TransformFunc, error) {
	fn, ok := transformers[name]
	if !ok {
		return nil, errors.Newf(errors.ErrSpecValidation,
			"unknown transformer %q (known: %s)", name, strings.Join(TransformerNames(), ", "))
	}
	return fn, nil
}

// TransformerNames lists the registered transformer names, sorted.
func TransformerNames() []string {
	names := make([]string, 0, len(transformers))
	for name := range transformers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func applyTransformers(s string, names []string) (string, error) {
	for _, name := range names {
		fn, err := LookupTransformer(name)
		if err != nil {
			return "", err
		}
		s = fn(s)
	}
	return s, nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func removeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
