package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/pipeline"
	"github.com/matzehuels/familytree/pkg/state"
)

// stateCommand creates the state command for working with encoded views.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Encode and inspect shareable view states",
		Long: `Encode and inspect shareable view states.

A state records the focus, camera, lineage mode and visible members of a
view using ids derived from member names and birth dates, so it survives
rows being inserted into the sheet.`,
	}

	cmd.AddCommand(c.stateEncodeCommand())
	cmd.AddCommand(c.stateDecodeCommand())

	return cmd
}

func (c *CLI) stateEncodeCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:     "encode [source]",
		Short:   "Print the state of a view built from flags",
		Example: "  " + appName + " state encode family.csv --expand mem_2,mem_4",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := c.sourceArg(args)
			if err != nil {
				return err
			}
			encoded, err := c.encodeState(cmd.Context(), c.options(source, flags), flags.noCache)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, encoded)
			return nil
		},
	}

	addViewFlags(cmd, &flags)
	return cmd
}

func (c *CLI) encodeState(ctx context.Context, opts pipeline.Options, noCache bool) (string, error) {
	data, err := c.loadData(ctx, opts, noCache)
	if err != nil {
		return "", err
	}
	ctrl, _, err := pipeline.Layout(ctx, data, opts)
	if err != nil {
		return "", err
	}
	return state.Encode(state.Capture(ctrl, nil), state.BuildIDMap(data))
}

func (c *CLI) stateDecodeCommand() *cobra.Command {
	var (
		source  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "decode <state>",
		Short: "Show what an encoded state contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := c.sourceArg([]string{source})
			if err != nil {
				return err
			}
			opts := pipeline.Options{Source: src, Refresh: refresh, Logger: c.Logger}
			data, err := c.loadData(cmd.Context(), opts, noCache)
			if err != nil {
				return err
			}
			s, err := state.Decode(args[0], state.BuildIDMap(data))
			if err != nil {
				return err
			}
			printState(s, data)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "sheet URL or file (default: sheet.url from config)")
	addSourceFlags(cmd, &noCache, &refresh)
	return cmd
}

func (c *CLI) loadData(ctx context.Context, opts pipeline.Options, noCache bool) (*family.Data, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, _, err := runner.Load(ctx, opts)
	return data, err
}

func printState(s state.State, data *family.Data) {
	focus := "-"
	if m := data.Member(s.Focus); m != nil {
		focus = s.Focus + " " + memberName(m)
	}
	camera := "recenter"
	if s.Transform != nil {
		camera = fmt.Sprintf("k=%g x=%g y=%g", s.Transform.K, s.Transform.X, s.Transform.Y)
	}
	mode := "full"
	if s.Patrilineal {
		mode = "patrilineal"
	}

	printKeyValue("focus", focus)
	printKeyValue("camera", camera)
	printKeyValue("lineage", mode)
	printKeyValue("visible", fmt.Sprint(len(s.Visible)))

	members := make([]*family.Member, 0, len(s.Visible))
	for _, id := range s.Visible {
		if m := data.Member(id); m != nil {
			members = append(members, m)
		}
	}
	if len(members) > 0 {
		printNewline()
		printMembers(members)
	}
}
