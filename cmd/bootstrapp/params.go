package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/template"
)

// collectParams merges the params file with the --param flags; flags win.
func collectParams(flags []string, file string) (map[string]template.Value, error) {
	params := make(map[string]template.Value)

	if file != "" {
		fromFile, err := readParamsFile(file)
		if err != nil {
			return nil, err
		}
		for key, value := range fromFile {
			params[key] = value
		}
	}

	for _, kv := range flags {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrParamResolution,
				"malformed --param %q, want KEY=VALUE", kv)
		}
		params[key] = coerceParam(value)
	}
	return params, nil
}

// coerceParam maps the words true and false, in any casing, to booleans.
// Everything else stays a string.
func coerceParam(raw string) template.Value {
	if strings.EqualFold(raw, "true") {
		return template.BoolValue(true)
	}
	if strings.EqualFold(raw, "false") {
		return template.BoolValue(false)
	}
	return template.StringValue(raw)
}

func readParamsFile(path string) (map[string]template.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfig, "reading params file %s", path)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfig,
			"params file %s is not a YAML mapping", path)
	}

	params := make(map[string]template.Value, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case bool:
			params[key] = template.BoolValue(v)
		case string:
			params[key] = coerceParam(v)
		default:
			params[key] = template.StringValue(fmt.Sprint(v))
		}
	}
	return params, nil
}
