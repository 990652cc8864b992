/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/sitegen/pkg/buildinfo"
	"github.com/fulmenhq/sitegen/pkg/exitcode"
	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegen",
		Short: "Build-time code generators for the site",
		Long: `Sitegen generates source modules the site imports at build time.

Examples:
   sitegen images     # Regenerate the image manifest, keeping edited alt text
   sitegen demos      # Regenerate the demo list from src/pages
   sitegen generate   # Both of the above
   sitegen version    # Show version (use --extended for build info)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default sitegen.yaml in . or $HOME)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("sitegen {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newImagesCommand())
	cmd.AddCommand(newDemosCommand())
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with the code carried by any error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.From(err))
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) error {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "sitegen",
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		return exitcode.Wrapf(exitcode.ConfigError, err, "failed to initialize logger")
	}
	return nil
}
