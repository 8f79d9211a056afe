package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/pipeline"
)

// renderCommand creates the render command, which draws one view.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		detailed   bool
		scale      float64
		flags      viewFlags
	)

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Render a view of the family to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a view of the family.

Takes the same view flags as 'layout'. SVG is rendered with Graphviz at the
computed positions; PNG and PDF are converted from the SVG with rsvg-convert,
which must be installed. DOT writes the Graphviz source and JSON the frame.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := c.sourceArg(args)
			if err != nil {
				return err
			}
			opts := c.options(source, flags)
			opts.Formats = parseFormats(formatsStr)
			opts.Detailed = detailed
			opts.Scale = scale
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add member ids to the labels")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG scale factor")
	addViewFlags(cmd, &flags)
	completeValues(cmd, "format", "svg", "png", "pdf", "dot", "json")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := spin(ctx, "Rendering family tree", func() (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	})
	if err != nil {
		return err
	}

	paths := outputPaths(opts.Source, output, opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	printSuccess("Rendered %d format(s)", len(opts.Formats))
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.MemberCount, result.Stats.LinkCount, result.CacheInfo.DataHit && result.CacheInfo.FrameHit)
	return nil
}

// outputPaths names the file of each format. A single format writes to
// output when given; otherwise output (or the source's base name) is used
// as the base and the format is the extension.
func outputPaths(source, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}

	base := output
	if base == "" {
		base = baseName(source)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// baseName derives an output name from a source path or URL.
func baseName(source string) string {
	if strings.Contains(source, "://") {
		return appName
	}
	name := filepath.Base(source)
	if name == "." || name == "/" {
		return appName
	}
	return name
}
