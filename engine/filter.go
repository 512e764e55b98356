package engine

import (
	"path"
	"strings"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/spec"
	"github.com/cpcf/bootstrapp/template"
)

// filter is the resolved inclusion filter for one run. Every rule whose
// condition evaluated false contributes its rendered paths to a single
// excluded set; rules are independent of each other.
type filter struct {
	excluded map[string]struct{}
}

func buildFilter(s *spec.Spec, ctx template.Context) (*filter, error) {
	f := &filter{excluded: make(map[string]struct{})}

	for _, rules := range [][]spec.InclusionRule{s.IncludeDirectories, s.IncludeFiles} {
		for _, rule := range rules {
			expr, err := template.ParseCondition(rule.Condition)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrSpecValidation,
					"inclusion rule condition %q", rule.Condition)
			}
			if expr.Eval(ctx) {
				continue
			}
			for _, raw := range rule.Paths {
				rendered, err := template.RenderPathSegment(raw, ctx)
				if err != nil {
					return nil, err
				}
				f.excluded[cleanRulePath(rendered)] = struct{}{}
			}
		}
	}
	return f, nil
}

func cleanRulePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean(strings.Trim(p, "/"))
}

// Excluded reports whether the rendered relative path, or any ancestor of
// it, is excluded. Ancestor matching makes an excluded directory take its
// whole subtree with it no matter where the walk encounters it.
func (f *filter) Excluded(rel string) bool {
	if len(f.excluded) == 0 {
		return false
	}
	for p := rel; p != "." && p != ""; p = path.Dir(p) {
		if _, ok := f.excluded[p]; ok {
			return true
		}
	}
	return false
}
