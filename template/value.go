// Package template implements the tag-based templating language used by
// template bundles: <{ }> delimited tags with conditionals, loops, imports
// and value transformers, rendered against a string-keyed context.
package template

import (
	"encoding/json"
	"fmt"

	"github.com/cpcf/bootstrapp/errors"
)

// Kind discriminates the Value union.
type Kind uint8

const (
	KindNil Kind = iota
	KindString
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is the tagged union the language operates on: a string, a bool, a
// list of Contexts (loop items), or Nil. The zero Value is Nil. Lookup
// failures resolve to Nil rather than erroring, so templates can probe for
// optional values.
type Value struct {
	kind Kind
	str  string
	b    bool
	list []Context
}

// Nil is the absent value.
var Nil = Value{}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ListValue returns a list Value over the given loop items.
func ListValue(items ...Context) Value { return Value{kind: KindList, list: items} }

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

// Truthy reports the value's truth for conditions and dependsOn checks:
// Nil is false, Bool is itself, everything else is true. Note that the
// empty string, the empty list and the string "false" are all true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// String returns the render form: the text of a string, "true"/"false" for
// a bool, and empty for Nil and lists.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// AsBool returns the underlying bool and whether the value is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// List returns the underlying items, nil unless the value is a List.
func (v Value) List() []Context {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// UnmarshalJSON decodes a spec-file value: string, bool, null, or an array
// of objects (each object becoming a Context of decoded values). Numbers
// and bare objects have no Value form and are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := valueFromJSON(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func valueFromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Nil, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case []any:
		items := make([]Context, 0, len(x))
		for _, el := range x {
			obj, ok := el.(map[string]any)
			if !ok {
				return Nil, errors.Newf(errors.ErrSpecValidation,
					"list values must contain objects, got %T", el)
			}
			item := make(Context, len(obj))
			for k, fv := range obj {
				fval, err := valueFromJSON(fv)
				if err != nil {
					return Nil, err
				}
				item[k] = fval
			}
			items = append(items, item)
		}
		return ListValue(items...), nil
	default:
		return Nil, errors.Newf(errors.ErrSpecValidation,
			"unsupported value of type %T", raw)
	}
}

// Context maps names to Values. It is the unit of template state: the base
// render context, and each loop item.
type Context map[string]Value

// Resolve looks up a dot path in the context. A missing name, or a path
// descending through anything that is not a nested item, yields Nil.
func (c Context) Resolve(path []string) Value {
	if len(path) == 0 {
		return Nil
	}
	v, ok := c[path[0]]
	if !ok || len(path) > 1 {
		return Nil
	}
	return v
}

// Resolver resolves dot paths to Values. Context resolves against itself;
// Scope adds loop-frame chaining.
type Resolver interface {
	Resolve(path []string) Value
}

// Scope chains loop frames over a base Context. A lookup checks the
// innermost frame whose loop variable matches the first path segment, then
// falls back outward to the base. The frame item shadows any base entry of
// the same name.
type Scope struct {
	base   Context
	frames []frame
}

type frame struct {
	name string
	item Context
}

// NewScope returns a Scope over the given base context with no loop frames.
func NewScope(base Context) *Scope {
	return &Scope{base: base}
}

// Resolve implements Resolver with loop-frame chaining. A loop variable
// referenced without a field selector has no Value form and yields Nil.
func (s *Scope) Resolve(path []string) Value {
	if len(path) == 0 {
		return Nil
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].name == path[0] {
			if len(path) == 1 {
				return Nil
			}
			return s.frames[i].item.Resolve(path[1:])
		}
	}
	return s.base.Resolve(path)
}

func (s *Scope) push(name string, item Context) {
	s.frames = append(s.frames, frame{name: name, item: item})
}

func (s *Scope) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}
