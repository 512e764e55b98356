// Package write performs file output for generated project trees.
package write

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cpcf/bootstrapp/errors"
)

// Options control how a file lands on disk.
type Options struct {
	// MkdirParents creates missing parent directories first.
	MkdirParents bool
	// Atomic writes through a temporary file renamed into place, so a
	// crash never leaves a half-written file at the target path.
	Atomic bool
	// Mode is the file mode to create with. Zero means 0o644.
	Mode fs.FileMode
}

func (o Options) mode() fs.FileMode {
	if o.Mode == 0 {
		return 0o644
	}
	return o.Mode
}

// File writes data to path.
func File(path string, data []byte, opts Options) error {
	if opts.MkdirParents {
		if err := Dir(filepath.Dir(path)); err != nil {
			return err
		}
	}
	if opts.Atomic {
		return atomicWrite(path, data, opts.mode())
	}
	if err := os.WriteFile(path, data, opts.mode()); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "writing %s", path)
	}
	return nil
}

// Stream copies r to path, returning the number of bytes written.
func Stream(path string, r io.Reader, opts Options) (int64, error) {
	if opts.MkdirParents {
		if err := Dir(filepath.Dir(path)); err != nil {
			return 0, err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, opts.mode())
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrIO, "creating %s", path)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, errors.Wrapf(err, errors.ErrIO, "writing %s", path)
	}
	if err := f.Close(); err != nil {
		return n, errors.Wrapf(err, errors.ErrIO, "closing %s", path)
	}
	return n, nil
}

// Dir creates path and any missing parents.
func Dir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "creating directory %s", path)
	}
	return nil
}

func atomicWrite(path string, data []byte, mode fs.FileMode) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "creating %s", tmp)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIO, "writing %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIO, "closing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIO, "replacing %s", path)
	}
	return nil
}

// CopyTree copies the directory tree rooted at src into dst, preserving
// regular file modes. dst is created if missing. Entries that are neither
// directories nor regular files are skipped.
func CopyTree(dst, src string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "walking %s", p)
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "relativizing %s", p)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return Dir(target)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "stating %s", p)
		}
		f, err := os.Open(p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "opening %s", p)
		}
		defer f.Close()

		_, err = Stream(target, f, Options{Mode: info.Mode().Perm()})
		return err
	})
}
