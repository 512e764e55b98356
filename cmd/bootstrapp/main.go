package main

import (
	"fmt"
	"os"

	"github.com/cpcf/bootstrapp/errors"
)

// Set through -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrapp: %v\n", err)
		// Errors without a code come from cobra's flag and argument
		// handling, so they exit like usage errors.
		if errors.CodeOf(err) == errors.ErrUnknown {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
