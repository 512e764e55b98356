package engine

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/spec"
	"github.com/cpcf/bootstrapp/template"
	"github.com/cpcf/bootstrapp/write"
	"github.com/cpcf/bootstrapp/xcodegen"
)

// generateProject runs the Xcode Project flow: locate the rendered project
// spec inside the output tree, preflight it as YAML, invoke the generator,
// then write the template macros into the produced .xcodeproj.
func (e *Engine) generateProject(b *Bundle, s *spec.Spec, ctx template.Context, outDir string) (string, error) {
	specName, err := template.RenderPathSegment(s.ProjectSpecification, ctx)
	if err != nil {
		return "", err
	}
	specPath := filepath.Join(outDir, filepath.FromSlash(specName))

	data, err := os.ReadFile(specPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrSpecValidation,
				"project specification %q not found in output tree", specName)
		}
		return "", errors.Wrapf(err, errors.ErrIO, "reading %s", specPath)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", errors.Wrapf(err, errors.ErrSpecValidation,
			"project specification %s is not valid YAML", specName)
	}

	workDir := outDir
	if presets, ok := b.PresetsPath(); ok {
		workDir = filepath.Join(outDir, PresetsDirName)
		if err := write.CopyTree(workDir, presets); err != nil {
			return "", err
		}
		e.logger.Debug().Str("presets", workDir).Msg("copied presets")
	}

	if err := e.generator.Generate(specPath, outDir, workDir); err != nil {
		return "", err
	}

	projPath, err := findXcodeProject(outDir)
	if err != nil {
		return "", err
	}

	year := ctx.Resolve([]string{keyCurrentYear}).String()
	holder := ctx.Resolve([]string{"COPYRIGHT_HOLDER"}).String()
	if err := xcodegen.WriteTemplateMacros(projPath, year, holder); err != nil {
		return "", err
	}
	return projPath, nil
}

func findXcodeProject(outDir string) (string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "listing %s", outDir)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".xcodeproj") {
			return filepath.Join(outDir, entry.Name()), nil
		}
	}
	return "", errors.Newf(errors.ErrExternalTool,
		"generator finished but produced no .xcodeproj in %s", outDir)
}
