/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"io"
	"path/filepath"

	"github.com/fulmenhq/sitegen/pkg/config"
	"github.com/fulmenhq/sitegen/pkg/demolist"
	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/spf13/cobra"
)

func newDemosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demos",
		Short: "Generate the demo list module from the pages directory",
		Long: `Collect the page files under the pages directory and write the demo list
module, one entry per page with its route.

Paths are resolved against the current working directory.`,
		Args: cobra.NoArgs,
		RunE: runDemos,
	}
	addDemosFlags(cmd.Flags(), "out")
	return cmd
}

func runDemos(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, demosBindings("out"))
	if err != nil {
		return err
	}
	return generateDemos(cfg.Demos, cmd.OutOrStdout())
}

func generateDemos(c config.DemosConfig, stdout io.Writer) error {
	searchPath := filepath.Join(workDir(), c.Pages)
	outputPath := filepath.Join(workDir(), c.Out)
	if filepath.IsAbs(c.Pages) {
		searchPath = c.Pages
	}
	if filepath.IsAbs(c.Out) {
		outputPath = c.Out
	}

	demos, err := demolist.GenerateWithOptions(searchPath, outputPath, demolist.Options{
		Patterns:  c.Patterns,
		ConstName: c.ConstName,
		Stdout:    stdout,
	})
	if err != nil {
		return err
	}
	logger.Info("demo list generated", logger.Int("demos", len(demos)), logger.Path(outputPath))
	return nil
}
