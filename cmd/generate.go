/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/fulmenhq/sitegen/pkg/demolist"
	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the image manifest and the demo list",
		Long: `Run the image manifest and demo list generators side by side. A missing
pages directory skips the demo list with a warning; any other failure fails
the command.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	addImagesFlags(cmd.Flags())
	addDemosFlags(cmd.Flags(), "demos-out")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, imagesBindings, demosBindings("demos-out"))
	if err != nil {
		return err
	}
	opts, err := imageOptions(cfg.Images, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		_, err := runImageGeneration(ctx, opts)
		return err
	})
	g.Go(func() error {
		err := generateDemos(cfg.Demos, cmd.OutOrStdout())
		if err != nil && demolist.IsNotExist(err) {
			logger.Warn("pages directory not found, demo list skipped", logger.Path(cfg.Demos.Pages))
			return nil
		}
		return err
	})
	return g.Wait()
}
