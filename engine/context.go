package engine

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/spec"
	"github.com/cpcf/bootstrapp/template"
)

// Built-in context keys. These are set first and no substitution or
// parameter may override them; packages is reserved and set last.
const (
	keyCurrentYear     = "CURRENT_YEAR"
	keyCurrentDate     = "CURRENT_DATE"
	keyCurrentDatetime = "CURRENT_DATETIME"
	keyCurrentTime     = "CURRENT_TIME"
	keyTemplateVersion = "TEMPLATE_VERSION"
	keyPackages        = "packages"
)

func isBuiltinKey(k string) bool {
	switch k {
	case keyCurrentYear, keyCurrentDate, keyCurrentDatetime, keyCurrentTime, keyTemplateVersion:
		return true
	}
	return false
}

// buildContext resolves the run context: built-ins, then substitutions,
// then parameters in declared order, then the filtered package list under
// the reserved packages key.
func buildContext(s *spec.Spec, req Request, now time.Time) (template.Context, error) {
	ctx := template.Context{
		keyCurrentYear:     template.StringValue(now.Format("2006")),
		keyCurrentDate:     template.StringValue(now.Format("2006-01-02")),
		keyCurrentDatetime: template.StringValue(now.Format(time.RFC3339)),
		keyCurrentTime:     template.StringValue(now.Format("15:04:05")),
		keyTemplateVersion: template.StringValue(s.TemplateVersion),
	}

	for k, v := range s.Substitutions {
		if isBuiltinKey(k) || k == keyPackages {
			continue
		}
		ctx[k] = v
	}

	for i := range s.Parameters {
		p := &s.Parameters[i]
		if isBuiltinKey(p.ID) {
			continue
		}

		// A parameter whose dependency resolved falsy is omitted
		// entirely, its default notwithstanding. Omission cascades:
		// anything depending on this parameter sees Nil too.
		if p.DependsOn != "" && !ctx.Resolve([]string{p.DependsOn}).Truthy() {
			delete(ctx, p.ID)
			continue
		}

		v, err := resolveParameter(p, req.Params)
		if err != nil {
			return nil, err
		}
		ctx[p.ID] = v
	}

	ctx[keyPackages] = selectPackages(s.Packages, req.ExcludePackages)
	return ctx, nil
}

func resolveParameter(p *spec.Parameter, supplied map[string]template.Value) (template.Value, error) {
	val, ok := supplied[p.ID]

	switch p.Kind {
	case spec.KindString:
		var text string
		switch {
		case ok:
			// A supplied Bool lands as its true/false text form.
			text = val.String()
		case p.HasDefault():
			text, _ = p.DefaultString()
		default:
			return template.Nil, missingParameter(p)
		}
		if p.ValidationRegex != "" {
			if err := matchValidationRegex(p, text); err != nil {
				return template.Nil, err
			}
		}
		return template.StringValue(text), nil

	case spec.KindBool:
		if ok {
			if b, isBool := val.AsBool(); isBool {
				return template.BoolValue(b), nil
			}
			b, err := strconv.ParseBool(val.String())
			if err != nil {
				return template.Nil, errors.Newf(errors.ErrParamResolution,
					"parameter %q: cannot parse %q as a boolean", p.ID, val.String())
			}
			return template.BoolValue(b), nil
		}
		if p.HasDefault() {
			b, _ := p.DefaultBool()
			return template.BoolValue(b), nil
		}
		return template.Nil, missingParameter(p)

	case spec.KindOption:
		if ok {
			choice := val.String()
			if !slices.Contains(p.Options, choice) {
				return template.Nil, errors.Newf(errors.ErrParamResolution,
					"parameter %q: %q is not one of the options (%s)",
					p.ID, choice, strings.Join(p.Options, ", "))
			}
			return template.StringValue(choice), nil
		}
		if p.HasDefault() {
			idx, _ := p.DefaultOptionIndex()
			if idx < 0 || idx >= len(p.Options) {
				return template.Nil, errors.Newf(errors.ErrSpecValidation,
					"parameter %q: default option index %d out of range", p.ID, idx)
			}
			return template.StringValue(p.Options[idx]), nil
		}
		return template.Nil, missingParameter(p)
	}

	return template.Nil, errors.Newf(errors.ErrInternal, "unhandled parameter kind %q", p.Kind)
}

func missingParameter(p *spec.Parameter) error {
	return errors.Newf(errors.ErrParamResolution,
		"missing value for required parameter %q", p.ID)
}

func matchValidationRegex(p *spec.Parameter, text string) error {
	re, err := regexp.Compile("^(?:" + p.ValidationRegex + ")$")
	if err != nil {
		return errors.Wrapf(err, errors.ErrSpecValidation,
			"parameter %q: invalid validationRegex", p.ID)
	}
	if !re.MatchString(text) {
		return errors.Newf(errors.ErrParamResolution,
			"parameter %q: value %q does not match validation pattern %q",
			p.ID, text, p.ValidationRegex)
	}
	return nil
}

// selectPackages drops excluded names and keeps declared order.
func selectPackages(packages []spec.PackageRef, exclude []string) template.Value {
	items := make([]template.Context, 0, len(packages))
	for _, pkg := range packages {
		if slices.Contains(exclude, pkg.Name) {
			continue
		}
		items = append(items, template.Context{
			"name":    template.StringValue(pkg.Name),
			"url":     template.StringValue(pkg.URL),
			"version": template.StringValue(pkg.Version),
		})
	}
	return template.ListValue(items...)
}
