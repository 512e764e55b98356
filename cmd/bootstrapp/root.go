package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cpcf/bootstrapp/config"
	"github.com/cpcf/bootstrapp/engine"
	"github.com/cpcf/bootstrapp/logging"
	"github.com/cpcf/bootstrapp/xcodegen"
)

var (
	verbosity       int
	paramFlags      []string
	paramsFile      string
	excludePackages []string
	outputDir       string

	rootCmd = &cobra.Command{
		Use:   "bootstrapp <template-bundle>",
		Short: "Instantiate a project from a template bundle",
		Long: `bootstrapp turns a template bundle into a ready-to-use project: it renders
the bundle's content tree against your parameter values and, for Xcode
Project templates, runs the external project generator on the result.

On success the resolved output path is the only line written to stdout;
everything else goes to stderr.`,
		Args: cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := collectParams(paramFlags, paramsFile)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			root := outputDir
			if root == "" {
				root = cfg.OutputRoot
			}

			eng := engine.New(
				engine.WithLogger(logging.GetLogger("engine")),
				engine.WithOutputRoot(root),
				engine.WithGenerator(xcodegen.New(cfg.Generator)),
				engine.WithVersion(version),
			)
			result, err := eng.Instantiate(engine.Request{
				BundlePath:      args[0],
				Params:          params,
				ExcludePackages: excludePackages,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Path())
			return nil
		},
	}
)

// Execute runs the command tree. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v info, -vv debug, -vvv trace)")

	rootCmd.Flags().StringArrayVar(&paramFlags, "param", nil,
		"Parameter value as KEY=VALUE (repeatable; true/false become booleans)")
	rootCmd.Flags().StringVar(&paramsFile, "params-file", "",
		"YAML file with parameter values (--param wins on conflict)")
	rootCmd.Flags().StringArrayVar(&excludePackages, "exclude-package", nil,
		"Skip a spec-declared package by name (repeatable)")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "",
		"Directory to place the generated project under (default: dated directory in the system temp dir)")

	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bootstrapp version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}
