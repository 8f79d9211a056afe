package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/pkg/editor"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/httputil"
	"github.com/matzehuels/familytree/pkg/pipeline"
)

// editFlags are shared by the edit subcommands.
type editFlags struct {
	source  string
	noCache bool
	refresh bool
}

// editCommand creates the edit command with its subcommands. Edits are
// posted to the configured sheet.upload_url and recorded in the journal.
func (c *CLI) editCommand() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Write changes back to the family spreadsheet",
		Long: `Write changes back to the family spreadsheet.

Fields are given as key=value pairs using the member field names:
first_name, last_name, birth_date, birth_place, death_date, image,
marriage, gender and note.

Every edit is journaled; failed uploads can be resent with "edit replay".`,
	}

	cmd.PersistentFlags().StringVar(&flags.source, "source", "", "sheet URL or file (default: sheet.url from config)")
	cmd.PersistentFlags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.PersistentFlags().BoolVar(&flags.refresh, "refresh", false, "download the sheet again even if cached")

	cmd.AddCommand(c.editSetCommand(&flags))
	cmd.AddCommand(c.editAddCommand(&flags, "add-child", "Add a child below a member", (*editor.Session).AddChild))
	cmd.AddCommand(c.editAddCommand(&flags, "add-spouse", "Add a spouse after a member", (*editor.Session).AddSpouse))
	cmd.AddCommand(c.editDeleteCommand(&flags))
	cmd.AddCommand(c.editMoveCommand(&flags))
	cmd.AddCommand(c.editReplayCommand())
	cmd.AddCommand(c.editLogCommand())

	return cmd
}

func (c *CLI) editSetCommand(flags *editFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "set <member> key=value...",
		Short:   "Update fields of a member",
		Example: "  " + appName + " edit set mem_4 death_date=2019 birth_place=Izmir",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args[1:])
			if err != nil {
				return err
			}
			updates, err := editor.FieldsToUpdates(fields)
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), *flags, true, func(ctx context.Context, s *editor.Session) error {
				if err := s.Save(ctx, args[0], updates); err != nil {
					return err
				}
				printSuccess("Updated %s", args[0])
				for col, val := range updates {
					printKeyValue(col.Key(), val)
				}
				return nil
			})
		},
	}
}

type addFunc func(*editor.Session, context.Context, string, map[string]string) (editor.Payload, error)

func (c *CLI) editAddCommand(flags *editFlags, use, short string, add addFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <member> first_name=... [key=value...]",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args[1:])
			if err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), *flags, true, func(ctx context.Context, s *editor.Session) error {
				p, err := add(s, ctx, args[0], fields)
				if err != nil {
					return err
				}
				printSuccess("Inserted %s at sheet row %d", fields["first_name"], p.Row)
				return nil
			})
		},
	}
}

func (c *CLI) editDeleteCommand(flags *editFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <member>",
		Short: "Delete a member's row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), *flags, true, func(ctx context.Context, s *editor.Session) error {
				if err := s.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) editMoveCommand(flags *editFlags) *cobra.Command {
	var spouse string

	cmd := &cobra.Command{
		Use:   "move <member> <new-parent>",
		Short: "Move a member under another parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), *flags, true, func(ctx context.Context, s *editor.Session) error {
				if err := s.MoveChild(ctx, args[0], args[1], spouse); err != nil {
					return err
				}
				printSuccess("Moved %s under %s", args[0], args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&spouse, "spouse", "", "first name of the other parent")
	return cmd
}

func (c *CLI) editReplayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Resend edits whose upload failed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), editFlags{}, false, func(ctx context.Context, s *editor.Session) error {
				sent, err := s.Replay(ctx)
				if err != nil {
					return err
				}
				if sent == 0 {
					printInfo("Nothing to resend")
					return nil
				}
				printSuccess("Resent %d edits", sent)
				return nil
			})
		},
	}
}

func (c *CLI) editLogCommand() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List journaled edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch editor.Status(status) {
			case "", editor.StatusPending, editor.StatusSent, editor.StatusFailed:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown status %q", status)
			}

			j, err := editor.OpenJournal(cmd.Context(), c.Config.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.List(cmd.Context(), editor.Status(status), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No edits recorded")
				return nil
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"ID", "Time", "Member", "Action", "Row", "Status", "Error"},
				journalRows(entries),
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show edits with this status (pending, sent, failed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of edits (0 for all)")
	completeValues(cmd, "status", "pending", "sent", "failed")
	return cmd
}

// withEditor opens the journal and an editing session and runs fn. The
// family data is loaded only when load is set.
func (c *CLI) withEditor(ctx context.Context, flags editFlags, load bool, fn func(context.Context, *editor.Session) error) error {
	uploader, err := editor.NewClient(c.Config.Sheet.UploadURL, httputil.NewClient(nil, 0, nil))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "sheet.upload_url")
	}

	journal, err := editor.OpenJournal(ctx, c.Config.Journal.Path)
	if err != nil {
		return err
	}
	defer journal.Close()

	data := family.NewData()
	if load {
		source, err := c.sourceArg([]string{flags.source})
		if err != nil {
			return err
		}
		runner, err := c.newRunner(ctx, flags.noCache)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer runner.Close()

		data, _, err = runner.Load(ctx, pipeline.Options{Source: source, Refresh: flags.refresh, Logger: c.Logger})
		if err != nil {
			return err
		}
	}

	return fn(ctx, editor.NewSession(data, uploader, editor.Options{Journal: journal, Logger: loggerFromContext(ctx)}))
}

// parseFields splits key=value arguments.
func parseFields(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "expected key=value, got %q", arg)
		}
		fields[key] = val
	}
	return fields, nil
}

func journalRows(entries []editor.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		action := e.Payload.Action
		if action == editor.ActionUpdate {
			action = "update"
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.MemberID,
			action,
			strconv.Itoa(e.Payload.Row),
			string(e.Status),
			e.Error,
		})
	}
	return rows
}
