// Package config loads the optional user-level bootstrapp configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/cpcf/bootstrapp/errors"
)

// Config is the user configuration. Every field has a working default; a
// missing configuration file is not an error.
type Config struct {
	// OutputRoot is where generated projects land when --output-dir is
	// not given. Empty means a dated directory under the system temp dir.
	OutputRoot string `toml:"output_root"`

	// Generator is the project generator executable used for Xcode
	// Project templates. Empty means xcodegen, looked up on PATH.
	Generator string `toml:"generator"`
}

// Path returns the standard location of the configuration file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "bootstrapp", "config.toml")
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the configuration from path. A missing file yields the
// zero configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfig, "reading %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfig, "parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	if c.OutputRoot != "" && !filepath.IsAbs(c.OutputRoot) {
		return errors.Newf(errors.ErrConfig,
			"output_root must be an absolute path, got %q", c.OutputRoot)
	}
	return nil
}
