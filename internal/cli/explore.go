package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/pipeline"
	"github.com/matzehuels/familytree/pkg/session"
	"github.com/matzehuels/familytree/pkg/state"
)

// exploreCommand creates the explore command, an interactive terminal
// view of the tree.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		resume string
		flags  viewFlags
	)

	cmd := &cobra.Command{
		Use:   "explore [source]",
		Short: "Explore the family tree interactively in the terminal",
		Long: `Explore the family tree interactively in the terminal.

Members are listed generation by generation; a + marks members with hidden
relatives. Enter expands or collapses the selected member, c collapses the
view to its ancestors, f reveals and centers it, p toggles the patrilineal
view and r resets.

The view is saved as a session when you quit; pass its id to --session to
continue where you left off.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := c.sourceArg(args)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), c.options(source, flags), resume, flags.noCache)
		},
	}

	cmd.Flags().StringVar(&resume, "session", "", "resume a saved explore session")
	addViewFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options, resume string, noCache bool) error {
	store, err := session.NewFileStore(c.Config.Server.SessionDir)
	if err != nil {
		return err
	}

	sess := session.New(session.DefaultTTL)
	if resume != "" {
		got, err := store.Get(ctx, resume)
		if err != nil {
			return err
		}
		if got == nil {
			return errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", resume)
		}
		sess = got
		opts.State = sess.State
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, _, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	ctrl, _, err := pipeline.Layout(ctx, data, opts)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(NewExploreModel(ctrl), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	encoded, err := state.Encode(state.Capture(ctrl, nil), state.BuildIDMap(data))
	if err != nil {
		return err
	}
	sess.State = encoded
	sess.Mode = ctrl.Mode().String()
	sess.Touch(session.DefaultTTL)
	if err := store.Set(ctx, sess); err != nil {
		return err
	}

	printSuccess("Saved view")
	printKeyValue("session", sess.ID)
	printKeyValue("state", encoded)
	printNewline()
	printNextStep("Resume", appName+" explore --session "+sess.ID)
	return nil
}
