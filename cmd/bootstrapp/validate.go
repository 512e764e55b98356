package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cpcf/bootstrapp/engine"
	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/spec"
	"github.com/cpcf/bootstrapp/template"
)

var validateCmd = &cobra.Command{
	Use:   "validate <template-bundle>",
	Short: "Check a template bundle without instantiating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := engine.OpenBundle(args[0])
		if err != nil {
			return err
		}
		s, err := spec.Load(b.SpecPath())
		if err != nil {
			return err
		}

		// Spec validation parse-checks inclusion conditions and the
		// parametrizable patterns; the output name template is only
		// touched at instantiation time, so check it here.
		if _, err := template.RenderPathSegment(s.OutputDirectoryName, template.Context{}); err != nil {
			return errors.Wrapf(err, errors.CodeOf(err), "outputDirectoryName")
		}

		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return nil
	},
}
