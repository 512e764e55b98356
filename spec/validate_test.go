package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpcf/bootstrapp/errors"
)

func validSpec() *Spec {
	return &Spec{
		SpecificationVersion: "1.0",
		TemplateVersion:      "1.0.0",
		ID:                   "com.example.app",
		Type:                 TypeGeneral,
		Description:          "A template",
		OutputDirectoryName:  "<{ NAME }>",
	}
}

func TestValidateAcceptsMinimalSpec(t *testing.T) {
	require.NoError(t, validSpec().Validate())
}

func TestValidateRequiredKeys(t *testing.T) {
	tests := []struct {
		key    string
		mutate func(*Spec)
	}{
		{"specificationVersion", func(s *Spec) { s.SpecificationVersion = "" }},
		{"templateVersion", func(s *Spec) { s.TemplateVersion = "" }},
		{"id", func(s *Spec) { s.ID = "" }},
		{"type", func(s *Spec) { s.Type = "" }},
		{"description", func(s *Spec) { s.Description = "" }},
		{"outputDirectoryName", func(s *Spec) { s.OutputDirectoryName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := validSpec()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		want   string
	}{
		{
			"unknown type",
			func(s *Spec) { s.Type = "Android App" },
			"unknown template type",
		},
		{
			"xcode without project specification",
			func(s *Spec) { s.Type = TypeXcodeProject },
			"projectSpecification is required",
		},
		{
			"project specification on general",
			func(s *Spec) { s.ProjectSpecification = "project.yml" },
			"only valid for Xcode Project",
		},
		{
			"parameter without id",
			func(s *Spec) { s.Parameters = []Parameter{{Name: "x", Kind: KindString}} },
			"has no id",
		},
		{
			"parameter without name",
			func(s *Spec) { s.Parameters = []Parameter{{ID: "X", Kind: KindString}} },
			"has no name",
		},
		{
			"duplicate parameter id",
			func(s *Spec) {
				s.Parameters = []Parameter{
					{Name: "a", ID: "X", Kind: KindString},
					{Name: "b", ID: "X", Kind: KindString},
				}
			},
			"duplicate parameter id",
		},
		{
			"unknown kind",
			func(s *Spec) { s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: "Number"}} },
			"unknown kind",
		},
		{
			"option without options",
			func(s *Spec) { s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindOption}} },
			"declares no options",
		},
		{
			"option default out of range",
			func(s *Spec) {
				s.Parameters = []Parameter{
					{Name: "x", ID: "X", Kind: KindOption, Options: []string{"a", "b"}, Default: 2},
				}
			},
			"out of range",
		},
		{
			"option default not an index",
			func(s *Spec) {
				s.Parameters = []Parameter{
					{Name: "x", ID: "X", Kind: KindOption, Options: []string{"a"}, Default: 0.5},
				}
			},
			"must be an option index",
		},
		{
			"string default wrong type",
			func(s *Spec) {
				s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindString, Default: true}}
			},
			"must be a string",
		},
		{
			"bool default wrong type",
			func(s *Spec) {
				s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindBool, Default: "yes"}}
			},
			"must be a bool",
		},
		{
			"validation regex on bool",
			func(s *Spec) {
				s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindBool, ValidationRegex: ".*"}}
			},
			"only valid for String",
		},
		{
			"validation regex does not compile",
			func(s *Spec) {
				s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindString, ValidationRegex: "("}}
			},
			"invalid validationRegex",
		},
		{
			"depends on itself",
			func(s *Spec) {
				s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindString, DependsOn: "X"}}
			},
			"depends on itself",
		},
		{
			"depends on unknown",
			func(s *Spec) {
				s.Parameters = []Parameter{{Name: "x", ID: "X", Kind: KindString, DependsOn: "NOPE"}}
			},
			"unknown parameter",
		},
		{
			"parametrizable pattern does not compile",
			func(s *Spec) { s.ParametrizableFiles = []string{"["} },
			"invalid parametrizableFiles pattern",
		},
		{
			"inclusion rule without condition",
			func(s *Spec) { s.IncludeFiles = []InclusionRule{{Paths: []string{"LICENSE"}}} },
			"no condition",
		},
		{
			"inclusion rule condition does not parse",
			func(s *Spec) { s.IncludeDirectories = []InclusionRule{{Condition: "A ==", Paths: []string{"d"}}} },
			"invalid inclusion rule condition",
		},
		{
			"package without name",
			func(s *Spec) { s.Packages = []PackageRef{{URL: "https://example.com"}} },
			"no name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrSpecValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateAllowsForwardDependsOn(t *testing.T) {
	s := validSpec()
	s.Parameters = []Parameter{
		{Name: "a", ID: "A", Kind: KindString, DependsOn: "B"},
		{Name: "b", ID: "B", Kind: KindBool},
	}
	assert.NoError(t, s.Validate())
}

func TestSpecParameterLookup(t *testing.T) {
	s := validSpec()
	s.Parameters = []Parameter{{Name: "a", ID: "A", Kind: KindString}}

	p, ok := s.Parameter("A")
	require.True(t, ok)
	assert.Equal(t, "a", p.Name)

	_, ok = s.Parameter("missing")
	assert.False(t, ok)
}
