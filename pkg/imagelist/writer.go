package imagelist

import (
	"fmt"
	"io"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/sitegen/pkg/safeio"
)

// Template defaults match the site's existing image_list module.
const (
	DefaultImportPath = "~/image_list/ImageType"
	DefaultTypeName   = "ImageType"
	DefaultConstName  = "imageList"
)

// manifestSource is rendered with triple-stash so nothing is HTML-escaped.
const manifestSource = "\n  import type { {{{typeName}}} } from \"{{{importPath}}}\"\n" +
	"  // Auto-generated, manual changes will be lost\n" +
	"export const {{{constName}}} = {{{manifest}}} as const satisfies Record<string, {{{typeName}}}>;\n"

var manifestTemplate = raymond.MustParse(manifestSource)

// TemplateOptions names the symbols used in the generated module.
type TemplateOptions struct {
	ImportPath string
	TypeName   string
	ConstName  string
}

func (o TemplateOptions) withDefaults() TemplateOptions {
	if o.ImportPath == "" {
		o.ImportPath = DefaultImportPath
	}
	if o.TypeName == "" {
		o.TypeName = DefaultTypeName
	}
	if o.ConstName == "" {
		o.ConstName = DefaultConstName
	}
	return o
}

// Render produces the generated source text for a sorted manifest.
func Render(s Sorted, opts TemplateOptions) ([]byte, error) {
	opts = opts.withDefaults()
	body, err := s.IndentedJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	out, err := manifestTemplate.Exec(map[string]interface{}{
		"importPath": opts.ImportPath,
		"typeName":   opts.TypeName,
		"constName":  opts.ConstName,
		"manifest":   string(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest template: %w", err)
	}
	return []byte(out), nil
}

// Write renders s, overwrites outputPath with it and reports the entry count to stdout.
func Write(s Sorted, outputPath string, opts TemplateOptions, stdout io.Writer) error {
	content, err := Render(s, opts)
	if err != nil {
		return err
	}
	if err := safeio.WriteFileEnsureDir(outputPath, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	if stdout != nil {
		_, _ = fmt.Fprintf(stdout, "Generated %d images to %s\n", len(s), outputPath)
	}
	return nil
}
