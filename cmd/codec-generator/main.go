// Package main provides the CLI entrypoint for codec-generator.
//
// codec-generator reads Smithy JSON AST models and generates Go packages
// holding the types of a service and their wire codecs:
//   - gen writes the package for one service, protocol and target
//   - inspect prints how the shapes of a service are classified
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"
)

var version = "dev"

func main() {
	if err := execRootCmd(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newRootCmd(args []string) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "codec-generator",
		Short:   "Generate Go codecs from Smithy models",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLogLevel(logger.LogLevelVerbose)
				logger.Verbose("Using logger.LogLevelVerbose...")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.AddCommand(newGenCmd(), newInspectCmd())
	rootCmd.SetArgs(args[1:])

	return rootCmd
}

func execRootCmd(args []string) error {
	return newRootCmd(args).Execute()
}
