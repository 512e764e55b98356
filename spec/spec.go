// Package spec models the Bootstrapp.json file that describes a template
// bundle: its identity, parameters, substitutions, inclusion rules and
// package references.
package spec

import (
	"encoding/json"

	"github.com/cpcf/bootstrapp/template"
)

// SpecFileName is the specification file expected at a bundle root.
const SpecFileName = "Bootstrapp.json"

// ProjectType classifies what a bundle produces.
type ProjectType string

const (
	TypeGeneral      ProjectType = "General"
	TypeSwiftPackage ProjectType = "Swift Package"
	TypeXcodeProject ProjectType = "Xcode Project"
)

// ParamKind is the declared type of a template parameter.
type ParamKind string

const (
	KindString ParamKind = "String"
	KindBool   ParamKind = "Bool"
	KindOption ParamKind = "Option"
)

// Spec is a parsed template specification.
type Spec struct {
	SpecificationVersion string                    `json:"specificationVersion"`
	TemplateVersion      string                    `json:"templateVersion"`
	ID                   string                    `json:"id"`
	Type                 ProjectType               `json:"type"`
	Description          string                    `json:"description"`
	OutputDirectoryName  string                    `json:"outputDirectoryName"`
	ProjectSpecification string                    `json:"projectSpecification,omitempty"`
	Substitutions        map[string]template.Value `json:"substitutions,omitempty"`
	Parameters           []Parameter               `json:"parameters,omitempty"`
	ParametrizableFiles  []string                  `json:"parametrizableFiles,omitempty"`
	IncludeDirectories   []InclusionRule           `json:"includeDirectories,omitempty"`
	IncludeFiles         []InclusionRule           `json:"includeFiles,omitempty"`
	Packages             []PackageRef              `json:"packages,omitempty"`
}

// Parameter declares one user-facing template parameter. Parameters apply
// in declaration order, so a parameter may depend on any one declared
// before it.
type Parameter struct {
	Name            string
	ID              string
	Kind            ParamKind
	Default         any // string, bool or option index; nil when absent
	ValidationRegex string
	Options         []string
	DependsOn       string
}

// UnmarshalJSON accepts "kind" for the parameter kind, falling back to the
// legacy "type" key still present in older bundles.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name            string          `json:"name"`
		ID              string          `json:"id"`
		Kind            ParamKind       `json:"kind"`
		LegacyKind      ParamKind       `json:"type"`
		Default         json.RawMessage `json:"default"`
		ValidationRegex string          `json:"validationRegex"`
		Options         []string        `json:"options"`
		DependsOn       string          `json:"dependsOn"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Name = raw.Name
	p.ID = raw.ID
	p.Kind = raw.Kind
	if p.Kind == "" {
		p.Kind = raw.LegacyKind
	}
	p.ValidationRegex = raw.ValidationRegex
	p.Options = raw.Options
	p.DependsOn = raw.DependsOn

	p.Default = nil
	if len(raw.Default) > 0 {
		var v any
		if err := json.Unmarshal(raw.Default, &v); err != nil {
			return err
		}
		p.Default = v
	}
	return nil
}

// HasDefault reports whether the parameter declares a default. An empty
// string default still counts.
func (p *Parameter) HasDefault() bool {
	return p.Default != nil
}

// DefaultString returns the default as a string for String parameters.
func (p *Parameter) DefaultString() (string, bool) {
	s, ok := p.Default.(string)
	return s, ok
}

// DefaultBool returns the default as a bool for Bool parameters.
func (p *Parameter) DefaultBool() (bool, bool) {
	b, ok := p.Default.(bool)
	return b, ok
}

// DefaultOptionIndex returns the default as an option index for Option
// parameters. JSON numbers arrive as float64; only whole numbers qualify.
func (p *Parameter) DefaultOptionIndex() (int, bool) {
	switch v := p.Default.(type) {
	case int:
		return v, true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// InclusionRule ties a condition to a set of output paths. When the
// condition is false the paths, and everything beneath them, are excluded
// from the output.
type InclusionRule struct {
	Condition string
	Paths     []string
}

// UnmarshalJSON reads the {"if": ..., "directories"/"files"/"paths": [...]}
// rule shape. The path keys are interchangeable; filtering treats every
// listed path as a subtree root.
func (r *InclusionRule) UnmarshalJSON(data []byte) error {
	var raw struct {
		If          string   `json:"if"`
		Directories []string `json:"directories"`
		Files       []string `json:"files"`
		Paths       []string `json:"paths"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Condition = raw.If
	r.Paths = r.Paths[:0]
	r.Paths = append(r.Paths, raw.Directories...)
	r.Paths = append(r.Paths, raw.Files...)
	r.Paths = append(r.Paths, raw.Paths...)
	return nil
}

// PackageRef names an external package dependency the template can weave
// into its output.
type PackageRef struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Version string `json:"version"`
}
