package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

// layoutCommand creates the layout command, which writes the frame of one
// view as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  viewFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [source]",
		Short: "Lay out a view of the family and write its frame as JSON",
		Long: `Lay out a view of the family and write its frame as JSON.

The view starts as the default view around the starting member. --focus
reveals a member together with its ancestor chain, --expand clicks members in
order (revealing or hiding what hangs below them), and --state restores a view
saved with 'state encode' or a share link. The frame lists every visible
member and union with its position, and the links between them.

Frames are cached per sheet content and view options.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := c.sourceArg(args)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), c.options(source, flags), output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	addViewFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, hash, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	frame, cached, err := runner.LayoutWithCacheInfo(ctx, data, hash, opts)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	if output == "" {
		return graph.WriteFrame(frame, stdout)
	}
	if err := graph.WriteFrameFile(frame, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(data.Members), len(frame.Links), cached)
	printDetail("%d nodes visible, %d crossings", len(frame.Nodes), frame.Crossings)
	printNewline()
	printNextStep("Render", appName+" render "+opts.Source+" -f svg")
	return nil
}
