package spec

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpcf/bootstrapp/errors"
)

// Load reads and validates the specification file at path.
func Load(path string) (*Spec, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "resolving %q", path)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrSpecValidation,
				"template specification not found: %s", absPath)
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "reading %s", absPath)
	}

	return Parse(data)
}

// Parse unmarshals and validates specification JSON.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, errors.ErrSpecValidation, "malformed template specification")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
