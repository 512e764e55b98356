package spec

import (
	"strconv"
	"strings"

	"github.com/cpcf/bootstrapp/errors"
)

// SupportedSpecMajor is the specification major version this build reads.
// Bundles written for another major are rejected rather than misread.
const SupportedSpecMajor = 1

// Version is a parsed major[.minor[.patch]] version string.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
}

// ParseVersion parses "major", "major.minor" or "major.minor.patch" with
// non-negative numeric components.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, errors.Newf(errors.ErrSpecValidation, "invalid version %q", s)
	}

	var v Version
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, errors.Newf(errors.ErrSpecValidation, "invalid version %q", s)
		}
		switch i {
		case 0:
			v.Major = n
		case 1:
			v.Minor = n
		case 2:
			v.Patch = n
		}
	}
	return v, nil
}

func checkSpecificationVersion(s string) error {
	v, err := ParseVersion(s)
	if err != nil {
		return err
	}
	if v.Major != SupportedSpecMajor {
		return errors.Newf(errors.ErrSpecValidation,
			"unsupported specification version %q (supported major: %d)", s, SupportedSpecMajor)
	}
	return nil
}
