/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/sitegen/pkg/ascii"
	"github.com/fulmenhq/sitegen/pkg/config"
	"github.com/fulmenhq/sitegen/pkg/exitcode"
	"github.com/fulmenhq/sitegen/pkg/ignore"
	"github.com/fulmenhq/sitegen/pkg/imagelist"
	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/fulmenhq/sitegen/pkg/pathfinder"
	"github.com/fulmenhq/sitegen/pkg/tools"
	"github.com/spf13/cobra"
)

func newImagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Generate the image manifest module",
		Long: `Scan an image directory, read each image's dimensions and write a
sorted manifest module keyed by identifier. Alt text edited in the previous
manifest is kept; new images get alt text derived from the file name.

Examples:
   sitegen images
   sitegen images --dir public/images --out src/image_list/imageList.ts
   sitegen images --dry-run
   sitegen images --watch --no-format`,
		Args: cobra.NoArgs,
		RunE: runImages,
	}
	addImagesFlags(cmd.Flags())
	cmd.Flags().Bool("dry-run", false, "Print the manifest as a table instead of writing it")
	cmd.Flags().Bool("watch", false, "Regenerate whenever images change")
	return cmd
}

func runImages(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, imagesBindings)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	watch, _ := cmd.Flags().GetBool("watch")

	opts, err := imageOptions(cfg.Images, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	opts.DryRun = dryRun

	if watch {
		if dryRun {
			return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("--watch and --dry-run cannot be combined"))
		}
		logger.Info("watching for image changes", logger.Path(opts.Root))
		return imagelist.Watch(cmd.Context(), opts, imagelist.WatchOptions{
			LoadPrevious: func() (imagelist.Previous, error) {
				return imagelist.LoadPrevious(cfg.Images.Previous)
			},
		})
	}

	res, err := runImageGeneration(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if dryRun {
		return printManifestTable(cmd.OutOrStdout(), res)
	}
	return nil
}

// imageOptions turns the effective config into generator options, loading
// the previous manifest and building the ignore matcher and formatter.
func imageOptions(c config.ImagesConfig, stdout io.Writer) (imagelist.Options, error) {
	opts := imagelist.Options{
		Root:     c.Dir,
		Output:   c.Out,
		Previous: loadPrevious(c.Previous),
		Stdout:   stdout,
		Walk:     pathfinder.WalkOptions{Exclude: c.Exclude},
		Template: imagelist.TemplateOptions{
			ImportPath: c.ImportPath,
			TypeName:   c.TypeName,
			ConstName:  c.ConstName,
		},
	}

	if c.RespectIgnore {
		m, err := ignore.NewMatcher(c.Dir)
		if err != nil {
			return opts, exitcode.Wrapf(exitcode.ConfigError, err, "failed to load ignore files")
		}
		opts.Walk.Ignore = m
	}

	if f := tools.NewCommandFormatter(c.FormatterCommand(), workDir()); f != nil {
		opts.Formatter = f
	}
	return opts, nil
}

// loadPrevious never fails the run: an unreadable manifest only costs the
// edited alt text.
func loadPrevious(path string) imagelist.Previous {
	prev, err := imagelist.LoadPrevious(path)
	if err != nil {
		logger.Warn("previous manifest unavailable, deriving alt text", logger.Path(path), logger.Err(err))
		return imagelist.Previous{}
	}
	logger.Debug("previous manifest loaded", logger.Path(path), logger.Int("entries", len(prev)))
	return prev
}

func runImageGeneration(ctx context.Context, opts imagelist.Options) (*imagelist.Result, error) {
	res, err := imagelist.Generate(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("image manifest generated",
		logger.String("run", res.RunID),
		logger.Int("entries", len(res.Manifest)),
		logger.Int("skipped", res.SkippedTotal()),
		logger.Bool("dry_run", opts.DryRun))
	return res, nil
}

func printManifestTable(w io.Writer, res *imagelist.Result) error {
	rows := make([][]string, 0, len(res.Manifest))
	for _, it := range res.Manifest {
		rows = append(rows, []string{
			it.Key,
			fmt.Sprintf("%dx%d", it.Entry.Width, it.Entry.Height),
			it.Entry.Path,
			it.Entry.Alt,
		})
	}
	if err := ascii.WriteTable(w, []string{"KEY", "SIZE", "PATH", "ALT"}, rows, 48); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d images, %d skipped (dry run, nothing written)\n", len(res.Manifest), res.SkippedTotal())
	return err
}

func workDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
