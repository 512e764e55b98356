package template

import (
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cpcf/bootstrapp/errors"
)

// maxImportDepth bounds nested imports.
const maxImportDepth = 10

// Importer resolves import tags against a bundle content root. Parsed
// imports are cached for the duration of a run; the importer is not safe
// for concurrent use, matching the single-threaded run model.
type Importer struct {
	fsys   fs.FS
	root   string // absolute content root, for error messages
	delims Delims
	cache  map[string][]Node
	active []string
}

// NewImporter creates an Importer over fsys. root is the absolute path the
// filesystem is rooted at and appears in error messages.
func NewImporter(fsys fs.FS, root string, delims Delims) *Importer {
	return &Importer{
		fsys:   fsys,
		root:   root,
		delims: delims,
		cache:  make(map[string][]Node),
	}
}

// resolve loads and parses the imported file, returning its nodes and the
// canonical cache key for cycle tracking.
func (im *Importer) resolve(p string) ([]Node, string, error) {
	key := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if !fs.ValidPath(key) {
		return nil, "", errors.Newf(errors.ErrImportNotFound,
			"import %q escapes the content root %s", p, im.root)
	}
	if nodes, ok := im.cache[key]; ok {
		return nodes, key, nil
	}

	data, err := fs.ReadFile(im.fsys, key)
	if err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrImportNotFound,
			"import target not found: %s", filepath.Join(im.root, filepath.FromSlash(key)))
	}
	tpl, err := ParseWithDelims(string(data), im.delims)
	if err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrSpecValidation,
			"imported template %s", key)
	}
	im.cache[key] = tpl.nodes
	return tpl.nodes, key, nil
}

// enter pushes an import onto the active chain, failing on cycles and on
// chains deeper than maxImportDepth.
func (im *Importer) enter(key string) error {
	if slices.Contains(im.active, key) {
		return errors.Newf(errors.ErrSpecValidation,
			"import cycle: %s -> %s", strings.Join(im.active, " -> "), key)
	}
	if len(im.active) >= maxImportDepth {
		return errors.Newf(errors.ErrSpecValidation,
			"imports nested deeper than %d levels: %s", maxImportDepth, strings.Join(im.active, " -> "))
	}
	im.active = append(im.active, key)
	return nil
}

func (im *Importer) exit() {
	im.active = im.active[:len(im.active)-1]
}
