package engine

import (
	"crypto/sha256"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/manifest"
	"github.com/cpcf/bootstrapp/template"
	"github.com/cpcf/bootstrapp/write"
)

// PlaceholderName marks a file that exists only to keep its directory in
// the bundle. It is never emitted; its directory still is.
const PlaceholderName = ".ignored-placeholder"

// classifier decides which files get their contents rendered. Patterns
// full-match the un-rendered slash-separated source path.
type classifier struct {
	patterns []*regexp.Regexp
}

func newClassifier(patterns []string) (*classifier, error) {
	c := &classifier{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSpecValidation,
				"invalid parametrizableFiles pattern %q", p)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

func (c *classifier) matches(rel string) bool {
	for _, re := range c.patterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// walker materializes the content tree into the output directory: names
// rendered, excluded paths dropped, contents rendered or byte-copied, and
// every emitted file recorded in the manifest.
type walker struct {
	logger      zerolog.Logger
	content     fs.FS
	contentRoot string
	out         string
	ctx         template.Context
	filter      *filter
	classifier  *classifier
	importer    *template.Importer
	rec         *manifest.Recorder

	renderedDirs map[string]string // source rel dir -> rendered rel dir
}

func (w *walker) walk() error {
	w.renderedDirs = map[string]string{".": ""}

	return fs.WalkDir(w.content, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "walking %s", p)
		}
		if p == "." {
			return nil
		}
		if !d.IsDir() && d.Name() == PlaceholderName {
			return nil
		}

		rel, err := w.renderedPath(p, d.Name())
		if err != nil {
			return err
		}

		if w.filter.Excluded(rel) {
			w.logger.Debug().Str("path", p).Msg("excluded")
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			w.renderedDirs[p] = rel
			return write.Dir(filepath.Join(w.out, filepath.FromSlash(rel)))
		}
		return w.emitFile(p, rel, d)
	})
}

// renderedPath renders the entry's own name and joins it onto the already
// rendered parent path.
func (w *walker) renderedPath(p, name string) (string, error) {
	rendered, err := template.RenderPathSegment(name, w.ctx)
	if err != nil {
		return "", err
	}
	if rendered == "" {
		return "", errors.Newf(errors.ErrSpecValidation,
			"name %q rendered to an empty string", name)
	}
	return path.Join(w.renderedDirs[path.Dir(p)], rendered), nil
}

func (w *walker) emitFile(src, rel string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "stating %s", src)
	}
	mode := info.Mode().Perm()
	dst := filepath.Join(w.out, filepath.FromSlash(rel))

	if w.classifier.matches(src) {
		data, err := fs.ReadFile(w.content, src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "reading %s", src)
		}
		if utf8.Valid(data) {
			return w.renderFile(src, rel, dst, data, mode)
		}
		w.logger.Warn().Str("path", src).Msg("not valid UTF-8, copying bytes")
	}
	return w.copyFile(src, rel, dst, mode)
}

func (w *walker) renderFile(src, rel, dst string, data []byte, mode fs.FileMode) error {
	tpl, err := template.Parse(string(data))
	if err != nil {
		return errors.Wrapf(err, errors.CodeOf(err), "parsing %s", src)
	}
	out, err := tpl.Render(w.ctx, w.importer)
	if err != nil {
		return errors.Wrapf(err, errors.CodeOf(err), "rendering %s", src)
	}

	rendered := []byte(out)
	if err := write.File(dst, rendered, write.Options{MkdirParents: true, Mode: mode}); err != nil {
		return err
	}
	w.rec.RecordRendered(rel, rendered)
	w.logger.Debug().Str("source", src).Str("output", rel).Msg("rendered")
	return nil
}

func (w *walker) copyFile(src, rel, dst string, mode fs.FileMode) error {
	f, err := w.content.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "opening %s", src)
	}
	defer f.Close()

	hasher := sha256.New()
	n, err := write.Stream(dst, io.TeeReader(f, hasher), write.Options{MkdirParents: true, Mode: mode})
	if err != nil {
		return err
	}
	w.rec.Record(rel, manifest.ActionCopied, hasher.Sum(nil), n)
	w.logger.Debug().Str("source", src).Str("output", rel).Msg("copied")
	return nil
}
