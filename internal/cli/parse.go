package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	famio "github.com/matzehuels/familytree/pkg/io"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

// parseCommand creates the parse command, which turns a sheet into a
// family document.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		output  string
		format  string
		noCache bool
		refresh bool
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "parse [source]",
		Short: "Parse a family sheet into a JSON or YAML document",
		Long: `Parse a family sheet into a family document.

The source is a CSV export URL (for example a Google Sheets export link) or a
local CSV file; it defaults to sheet.url from the config file. Rows that
cannot be placed are skipped with a warning. The document lists every member,
the member/union links and the starting member, and can be used as the
source of every other command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := c.sourceArg(args)
			if err != nil {
				return err
			}
			f, err := famio.ParseFormat(format)
			if err != nil {
				return err
			}
			if output != "" && !cmd.Flags().Changed("format") {
				f = famio.FormatFromPath(output)
			}
			return c.runParse(cmd.Context(), source, output, f, noCache, refresh, list)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "document format: json, yaml")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "print a member table instead of the document")
	addSourceFlags(cmd, &noCache, &refresh)
	completeValues(cmd, "format", "json", "yaml")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, source, output string, format famio.Format, noCache, refresh, list bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	data, _, cached, err := spin3(ctx, "Loading family", func() (*family.Data, string, bool, error) {
		return runner.LoadWithCacheInfo(ctx, pipeline.Options{Source: source, Refresh: refresh})
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d members", len(data.Members)))

	if list {
		printMembers(data.Ordered())
		return nil
	}
	if output == "" {
		return famio.WriteData(data, stdout, format)
	}
	if err := writeData(data, output, format); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Parsed family")
	printFile(output)
	printStats(len(data.Members), len(data.Links), cached)
	printNewline()
	printNextStep("Lay out", appName+" layout "+output)
	return nil
}

func writeData(data *family.Data, path string, format famio.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := famio.WriteData(data, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// spin3 is spin for the loader's four-value result.
func spin3[A, B, C any](ctx context.Context, message string, fn func() (A, B, C, error)) (A, B, C, error) {
	type result struct {
		a A
		b B
		c C
	}
	r, err := spin(ctx, message, func() (result, error) {
		a, b, c, err := fn()
		return result{a, b, c}, err
	})
	return r.a, r.b, r.c, err
}
