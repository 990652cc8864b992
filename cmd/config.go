/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/fulmenhq/sitegen/pkg/config"
	"github.com/fulmenhq/sitegen/pkg/exitcode"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBinding maps a config key to the command flag that overrides it.
type flagBinding struct {
	key  string
	flag string
}

var imagesBindings = []flagBinding{
	{"images.dir", "dir"},
	{"images.out", "out"},
	{"images.previous", "previous"},
	{"images.formatter", "formatter"},
	{"images.no_format", "no-format"},
	{"images.respect_ignore", "respect-ignore"},
	{"images.exclude", "exclude"},
	{"images.import_path", "import-path"},
	{"images.type_name", "type-name"},
	{"images.const_name", "const-name"},
}

func demosBindings(outFlag string) []flagBinding {
	return []flagBinding{
		{"demos.pages", "pages"},
		{"demos.out", outFlag},
		{"demos.patterns", "pattern"},
		{"demos.const_name", "demos-const-name"},
	}
}

// addImagesFlags registers the image manifest flags on fs. Defaults mirror
// the config defaults so --help shows effective values.
func addImagesFlags(fs *pflag.FlagSet) {
	d := config.Default().Images
	fs.String("dir", d.Dir, "Image directory to scan")
	fs.String("out", d.Out, "Generated manifest module")
	fs.String("previous", "", "Previous manifest for alt text (default: --out)")
	fs.String("formatter", d.Formatter, "Formatter command run on the output, path appended")
	fs.Bool("no-format", false, "Skip the formatter")
	fs.Bool("respect-ignore", false, "Skip paths matched by .gitignore and .sitegenignore")
	fs.StringSlice("exclude", nil, "Doublestar pattern relative to --dir to skip (repeatable)")
	fs.String("import-path", d.ImportPath, "Module the image type is imported from")
	fs.String("type-name", d.TypeName, "Image type name")
	fs.String("const-name", d.ConstName, "Exported constant name")
}

// addDemosFlags registers the demo list flags on fs. The output flag is
// named by the caller since `generate` already has an --out for images.
func addDemosFlags(fs *pflag.FlagSet, out string) {
	d := config.Default().Demos
	fs.String("pages", d.Pages, "Pages directory to search")
	fs.String(out, d.Out, "Generated demo list module")
	fs.StringSlice("pattern", nil, "Doublestar page pattern (repeatable, default "+d.Patterns[0]+")")
	fs.String("demos-const-name", d.ConstName, "Exported demo list constant name")
}

// loadConfig builds the effective configuration for cmd: defaults, config
// file, SITEGEN_* environment, then flags the user actually set.
func loadConfig(cmd *cobra.Command, bindings ...[]flagBinding) (*config.Config, error) {
	v := config.New()
	for _, set := range bindings {
		if err := bindFlags(v, cmd.Flags(), set); err != nil {
			return nil, exitcode.Wrap(exitcode.ConfigError, err)
		}
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		f := fs.Lookup(b.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return err
		}
	}
	return nil
}
