// Package engine orchestrates template instantiation: it opens a bundle,
// resolves the run context, walks the content tree into a fresh output
// directory and, for Xcode Project templates, drives the external project
// generator.
package engine

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/logging"
	"github.com/cpcf/bootstrapp/manifest"
	"github.com/cpcf/bootstrapp/spec"
	"github.com/cpcf/bootstrapp/template"
	"github.com/cpcf/bootstrapp/write"
	"github.com/cpcf/bootstrapp/xcodegen"
)

// Generator produces a project from a rendered project specification. The
// engine only needs this one call; the xcodegen package provides the real
// implementation and tests substitute fakes.
type Generator interface {
	Generate(specPath, projectDir, workDir string) error
}

// Engine instantiates template bundles. One Engine may run any number of
// bundles; each run is synchronous and independent.
type Engine struct {
	logger     zerolog.Logger
	outputRoot string
	generator  Generator
	now        func() time.Time
	version    string
}

// New creates an Engine with working defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:    logging.GetLogger("engine"),
		generator: xcodegen.New(""),
		now:       time.Now,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request carries the per-run inputs.
type Request struct {
	// BundlePath is the template bundle directory.
	BundlePath string
	// Params are externally supplied parameter values, keyed by id.
	Params map[string]template.Value
	// ExcludePackages drops spec-declared packages by name.
	ExcludePackages []string
}

// Result reports what a run produced.
type Result struct {
	// OutputDir is the generated output tree.
	OutputDir string
	// ProjectPath is the generated .xcodeproj for Xcode Project
	// templates, empty otherwise.
	ProjectPath string
	// FilesWritten counts the files recorded in the run manifest.
	FilesWritten int
}

// Path is the single path a run reports: the project for Xcode Project
// templates, the output directory otherwise.
func (r *Result) Path() string {
	if r.ProjectPath != "" {
		return r.ProjectPath
	}
	return r.OutputDir
}

// Instantiate runs one bundle to completion. Any failure aborts the run;
// partial output stays on disk for inspection.
func (e *Engine) Instantiate(req Request) (*Result, error) {
	b, err := OpenBundle(req.BundlePath)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Str("bundle", b.Root).Msg("opening bundle")

	s, err := spec.Load(b.SpecPath())
	if err != nil {
		return nil, err
	}
	e.logger.Info().
		Str("id", s.ID).
		Str("type", string(s.Type)).
		Str("version", s.TemplateVersion).
		Msg("loaded template spec")

	now := e.now()
	ctx, err := buildContext(s, req, now)
	if err != nil {
		return nil, err
	}

	outDir, err := e.prepareOutputDir(s, ctx, now)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Str("output", outDir).Msg("prepared output directory")

	f, err := buildFilter(s, ctx)
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(s.ParametrizableFiles)
	if err != nil {
		return nil, err
	}

	rec := manifest.NewRecorder("bootstrapp "+e.version, s.ID, s.TemplateVersion, now)
	logger := e.logger.With().Str("run", rec.RunID()).Logger()
	w := &walker{
		logger:      logger,
		content:     b.ContentFS(),
		contentRoot: b.ContentPath(),
		out:         outDir,
		ctx:         ctx,
		filter:      f,
		classifier:  classifier,
		importer:    template.NewImporter(b.ContentFS(), b.ContentPath(), template.DefaultDelims()),
		rec:         rec,
	}
	if err := w.walk(); err != nil {
		return nil, err
	}
	logger.Info().Int("files", rec.Len()).Msg("content tree written")

	if err := rec.Write(outDir); err != nil {
		return nil, err
	}

	result := &Result{OutputDir: outDir, FilesWritten: rec.Len()}

	if s.Type == spec.TypeXcodeProject {
		projPath, err := e.generateProject(b, s, ctx, outDir)
		if err != nil {
			return nil, err
		}
		result.ProjectPath = projPath
		logger.Info().Str("project", projPath).Msg("generated Xcode project")
	}
	return result, nil
}

// prepareOutputDir renders the output leaf name, joins it onto the output
// root and recreates the directory from scratch.
func (e *Engine) prepareOutputDir(s *spec.Spec, ctx template.Context, now time.Time) (string, error) {
	leaf, err := template.RenderPathSegment(s.OutputDirectoryName, ctx)
	if err != nil {
		return "", err
	}
	if leaf == "" {
		return "", errors.New(errors.ErrSpecValidation,
			"outputDirectoryName rendered to an empty string")
	}
	if strings.ContainsAny(leaf, `/\`) {
		return "", errors.Newf(errors.ErrSpecValidation,
			"outputDirectoryName must render to a single name, got %q", leaf)
	}

	root := e.outputRoot
	if root == "" {
		root = filepath.Join(os.TempDir(), "Results", now.Format("2006-01-02"))
	}
	outDir := filepath.Join(root, leaf)

	if _, err := os.Stat(outDir); err == nil {
		e.logger.Info().Str("output", outDir).Msg("removing previous output")
		if err := os.RemoveAll(outDir); err != nil {
			return "", errors.Wrapf(err, errors.ErrIO, "removing previous output %s", outDir)
		}
	}
	if err := write.Dir(outDir); err != nil {
		return "", err
	}
	return outDir, nil
}
