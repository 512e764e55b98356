// Package xcodegen drives the external XcodeGen project generator and
// writes the Xcode template-macros file into generated projects.
package xcodegen

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/logging"
)

// DefaultBin is the generator executable used when none is configured.
const DefaultBin = "xcodegen"

// CLI runs a generator binary.
type CLI struct {
	Bin string
}

// New returns a runner for bin. Empty selects DefaultBin.
func New(bin string) *CLI {
	if bin == "" {
		bin = DefaultBin
	}
	return &CLI{Bin: bin}
}

// Generate produces an Xcode project from the project spec at specPath
// into projectDir, with workDir as the generator's working directory. A
// missing binary or a non-zero exit is fatal.
func (c *CLI) Generate(specPath, projectDir, workDir string) error {
	logger := logging.GetLogger("xcodegen")

	bin, err := exec.LookPath(c.Bin)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExternalTool,
			"generator %q not found on PATH", c.Bin)
	}

	cmd := exec.Command(bin, "generate", "--spec", specPath, "--project", projectDir)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug().
		Str("bin", bin).
		Str("spec", specPath).
		Str("project", projectDir).
		Str("workdir", workDir).
		Msg("running generator")

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return errors.Wrapf(err, errors.ErrExternalTool, "generator failed: %s", detail)
		}
		return errors.Wrap(err, errors.ErrExternalTool, "generator failed")
	}

	logger.Debug().Msg("generator finished")
	return nil
}
