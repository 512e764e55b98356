package spec

import (
	"regexp"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/template"
)

// Validate checks the structural health of the specification. It returns
// the first problem found; every problem is fatal for a run.
func (s *Spec) Validate() error {
	for _, req := range []struct {
		key, value string
	}{
		{"specificationVersion", s.SpecificationVersion},
		{"templateVersion", s.TemplateVersion},
		{"id", s.ID},
		{"type", string(s.Type)},
		{"description", s.Description},
		{"outputDirectoryName", s.OutputDirectoryName},
	} {
		if req.value == "" {
			return errors.Newf(errors.ErrSpecValidation, "missing required key %q", req.key)
		}
	}

	if err := checkSpecificationVersion(s.SpecificationVersion); err != nil {
		return err
	}

	switch s.Type {
	case TypeGeneral, TypeSwiftPackage, TypeXcodeProject:
	default:
		return errors.Newf(errors.ErrSpecValidation, "unknown template type %q", s.Type)
	}

	if s.Type == TypeXcodeProject && s.ProjectSpecification == "" {
		return errors.New(errors.ErrSpecValidation,
			"projectSpecification is required for Xcode Project templates")
	}
	if s.Type != TypeXcodeProject && s.ProjectSpecification != "" {
		return errors.Newf(errors.ErrSpecValidation,
			"projectSpecification is only valid for Xcode Project templates, not %q", s.Type)
	}

	if err := s.validateParameters(); err != nil {
		return err
	}

	for _, pattern := range s.ParametrizableFiles {
		if _, err := regexp.Compile(pattern); err != nil {
			return errors.Wrapf(err, errors.ErrSpecValidation,
				"invalid parametrizableFiles pattern %q", pattern)
		}
	}

	for _, rules := range [][]InclusionRule{s.IncludeDirectories, s.IncludeFiles} {
		for _, rule := range rules {
			if rule.Condition == "" {
				return errors.New(errors.ErrSpecValidation, "inclusion rule has no condition")
			}
			if _, err := template.ParseCondition(rule.Condition); err != nil {
				return errors.Wrapf(err, errors.ErrSpecValidation,
					"invalid inclusion rule condition %q", rule.Condition)
			}
		}
	}

	for _, pkg := range s.Packages {
		if pkg.Name == "" {
			return errors.New(errors.ErrSpecValidation, "package reference has no name")
		}
	}

	return nil
}

func (s *Spec) validateParameters() error {
	seen := make(map[string]struct{}, len(s.Parameters))

	for _, p := range s.Parameters {
		if p.ID == "" {
			return errors.Newf(errors.ErrSpecValidation, "parameter %q has no id", p.Name)
		}
		if p.Name == "" {
			return errors.Newf(errors.ErrSpecValidation, "parameter %q has no name", p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return errors.Newf(errors.ErrSpecValidation, "duplicate parameter id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		switch p.Kind {
		case KindString, KindBool, KindOption:
		default:
			return errors.Newf(errors.ErrSpecValidation,
				"parameter %q has unknown kind %q", p.ID, p.Kind)
		}

		if p.Kind == KindOption && len(p.Options) == 0 {
			return errors.Newf(errors.ErrSpecValidation,
				"Option parameter %q declares no options", p.ID)
		}

		if p.ValidationRegex != "" {
			if p.Kind != KindString {
				return errors.Newf(errors.ErrSpecValidation,
					"parameter %q: validationRegex is only valid for String parameters", p.ID)
			}
			if _, err := regexp.Compile(p.ValidationRegex); err != nil {
				return errors.Wrapf(err, errors.ErrSpecValidation,
					"parameter %q: invalid validationRegex", p.ID)
			}
		}

		if err := validateDefault(&p); err != nil {
			return err
		}

		if p.DependsOn != "" {
			if p.DependsOn == p.ID {
				return errors.Newf(errors.ErrSpecValidation,
					"parameter %q depends on itself", p.ID)
			}
			if !s.hasParameter(p.DependsOn) {
				return errors.Newf(errors.ErrSpecValidation,
					"parameter %q depends on unknown parameter %q", p.ID, p.DependsOn)
			}
		}
	}
	return nil
}

func validateDefault(p *Parameter) error {
	if !p.HasDefault() {
		return nil
	}

	switch p.Kind {
	case KindString:
		if _, ok := p.DefaultString(); !ok {
			return errors.Newf(errors.ErrSpecValidation,
				"parameter %q: default for a String parameter must be a string", p.ID)
		}
	case KindBool:
		if _, ok := p.DefaultBool(); !ok {
			return errors.Newf(errors.ErrSpecValidation,
				"parameter %q: default for a Bool parameter must be a bool", p.ID)
		}
	case KindOption:
		idx, ok := p.DefaultOptionIndex()
		if !ok {
			return errors.Newf(errors.ErrSpecValidation,
				"parameter %q: default for an Option parameter must be an option index", p.ID)
		}
		if idx < 0 || idx >= len(p.Options) {
			return errors.Newf(errors.ErrSpecValidation,
				"parameter %q: default option index %d out of range (0..%d)", p.ID, idx, len(p.Options)-1)
		}
	}
	return nil
}

func (s *Spec) hasParameter(id string) bool {
	for _, p := range s.Parameters {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Parameter returns the declared parameter with the given id.
func (s *Spec) Parameter(id string) (*Parameter, bool) {
	for i := range s.Parameters {
		if s.Parameters[i].ID == id {
			return &s.Parameters[i], true
		}
	}
	return nil, false
}
