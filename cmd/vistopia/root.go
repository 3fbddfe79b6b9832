package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config    string
	token     string
	verbosity string
	outputDir string
	logFormat string
	debug     bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "vistopia",
		Short:         "Browse and save Vistopia shows from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			ctx.stdout = cmd.OutOrStdout()
			ctx.stderr = cmd.ErrOrStderr()
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVarP(&flags.token, "token", "t", "", "API token (overrides config and VISTOPIA_API_TOKEN)")
	pf.StringVarP(&flags.verbosity, "verbosity", "v", "", "Log level: debug, info, warn, error")
	pf.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory that show folders are created in")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")
	pf.BoolVar(&flags.debug, "debug", false, "Shorthand for --verbosity debug")

	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newSubscriptionsCommand(ctx))
	rootCmd.AddCommand(newShowContentCommand(ctx))
	rootCmd.AddCommand(newSaveShowCommand(ctx))
	rootCmd.AddCommand(newSaveTranscriptCommand(ctx))
	rootCmd.AddCommand(newBatchSaveCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
