package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithOutputRoot sets the directory generated projects are placed under.
// Empty keeps the default dated directory under the system temp dir.
func WithOutputRoot(root string) Option {
	return func(e *Engine) {
		e.outputRoot = root
	}
}

// WithGenerator sets the external project generator.
func WithGenerator(g Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithClock sets the time source for the date built-ins and the manifest.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithVersion sets the version string recorded in run manifests.
func WithVersion(version string) Option {
	return func(e *Engine) {
		e.version = version
	}
}
