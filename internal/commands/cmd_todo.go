package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/github"
	"github.com/colonyops/tether/internal/tether"
	"github.com/colonyops/tether/pkg/iojson"
	"github.com/urfave/cli/v3"
)

func (cmd *TodoCmd) list() *tether.ListService {
	return cmd.app.List
}

// TodoCmd implements the tether todo command group.
type TodoCmd struct {
	flags *Flags
	app   *tether.App

	// add flags
	addTitle  string
	addDetail string
	addIssue  bool

	// list flags
	listDone bool

	// toggle/delete flags
	reason    string
	localOnly bool
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags, app *tether.App) *TodoCmd {
	return &TodoCmd{flags: flags, app: app}
}

// Register adds the todo command group to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage todo items and their mirrored GitHub issues",
		Description: `Todo commands for the local list and its linked issues.

Items may mirror a GitHub issue. Checking or deleting such an item can
also change the issue's state; when it would, the command asks for a
resolution instead of acting silently.

Examples:
  tether todo list                         # active items
  tether todo list --done                  # done items
  tether todo add --title "Buy milk"       # local-only item
  tether todo add --title "Fix CI" --issue # item with a linked issue
  tether todo toggle <id>                  # check or uncheck an item
  tether todo delete <id> --reason not_planned`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.addCmd(),
			cmd.toggleCmd(),
			cmd.deleteCmd(),
			cmd.linkCmd(),
			cmd.clearCmd(),
		},
	})

	return app
}

func (cmd *TodoCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List todo items",
		UsageText: "tether todo list [--done]",
		Description: `Lists todo items as JSON lines, newest first.

Defaults to active items. Each line carries the item plus the issue
state observed for it ("open", "closed", or empty when unknown or
unlinked).

Examples:
  tether todo list
  tether todo list --done`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "done",
				Usage:       "list done items instead of active ones",
				Destination: &cmd.listDone,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TodoCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a todo item",
		UsageText: "tether todo add --title <title> [--detail <detail>] [--issue]",
		Description: `Adds a todo item to the list.

With --issue, a GitHub issue is created first and linked to the item;
if creating the issue fails, nothing is stored.

Examples:
  tether todo add --title "Buy milk"
  tether todo add --title "Fix CI" --detail "main is red" --issue`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "title for the item",
				Required:    true,
				Destination: &cmd.addTitle,
			},
			&cli.StringFlag{
				Name:        "detail",
				Aliases:     []string{"d"},
				Usage:       "optional detail text",
				Destination: &cmd.addDetail,
			},
			&cli.BoolFlag{
				Name:        "issue",
				Usage:       "create and link a GitHub issue",
				Destination: &cmd.addIssue,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TodoCmd) toggleCmd() *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Check or uncheck a todo item",
		UsageText: "tether todo toggle <id> [--reason <reason>] [--local-only]",
		Description: `Flips an item between active and done.

When the item mirrors an issue and flipping it would change the issue's
state, the command prints a confirmation request and exits non-zero.
Re-run with --reason to also update the issue, or --local-only to flip
just the item.

Examples:
  tether todo toggle abc123
  tether todo toggle abc123 --reason completed
  tether todo toggle abc123 --local-only`,
		Flags:  cmd.resolutionFlags(),
		Action: cmd.runToggle,
	}
}

func (cmd *TodoCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a todo item",
		UsageText: "tether todo delete <id> [--reason <reason>] [--local-only]",
		Description: `Deletes an item from the list.

When the item mirrors an issue that is not already closed, the command
prints a confirmation request and exits non-zero. Re-run with --reason
to also close the issue, or --local-only to delete just the item.

Examples:
  tether todo delete abc123
  tether todo delete abc123 --reason not_planned
  tether todo delete abc123 --local-only`,
		Flags:  cmd.resolutionFlags(),
		Action: cmd.runDelete,
	}
}

func (cmd *TodoCmd) linkCmd() *cli.Command {
	return &cli.Command{
		Name:      "link",
		Usage:     "Create and link a GitHub issue for an existing item",
		UsageText: "tether todo link <id>",
		Description: `Creates a GitHub issue mirroring an existing item and links it.

Examples:
  tether todo link abc123`,
		Action: cmd.runLink,
	}
}

func (cmd *TodoCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Delete all todo items",
		UsageText: "tether todo clear",
		Description: `Deletes every stored item. Linked issues are left untouched.

Examples:
  tether todo clear`,
		Action: cmd.runClear,
	}
}

func (cmd *TodoCmd) resolutionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "reason",
			Aliases:     []string{"r"},
			Usage:       "state reason for the issue update (completed, not_planned, duplicate, reopened)",
			Destination: &cmd.reason,
		},
		&cli.BoolFlag{
			Name:        "local-only",
			Usage:       "apply the change locally without touching the issue",
			Destination: &cmd.localOnly,
		},
	}
}

func (cmd *TodoCmd) runList(ctx context.Context, c *cli.Command) error {
	cmd.list().Load(ctx)

	items := cmd.list().Active()
	if cmd.listDone {
		items = cmd.list().Done()
	}

	for _, item := range items {
		if err := iojson.WriteLine(c.Root().Writer, item); err != nil {
			return fmt.Errorf("encode item: %w", err)
		}
	}

	return nil
}

func (cmd *TodoCmd) runAdd(ctx context.Context, c *cli.Command) error {
	cmd.list().Load(ctx)

	item, err := cmd.list().Add(ctx, cmd.addTitle, cmd.addDetail, cmd.addIssue)
	if err != nil {
		return fmt.Errorf("add todo: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, item)
}

func (cmd *TodoCmd) runToggle(ctx context.Context, c *cli.Command) error {
	item, err := cmd.loadItem(ctx, c)
	if err != nil {
		return err
	}

	// An explicit resolution flag skips the decision protocol entirely.
	if cmd.localOnly {
		return cmd.list().ToggleWithoutIssueUpdate(ctx, item)
	}
	if cmd.reason != "" {
		reason, err := github.ParseStateReason(cmd.reason)
		if err != nil {
			return err
		}
		return cmd.list().ToggleWithIssueUpdate(ctx, item, reason)
	}

	decision, err := cmd.list().Toggle(ctx, item)
	if err != nil {
		return fmt.Errorf("toggle todo: %w", err)
	}

	return cmd.resolve(c, decision)
}

func (cmd *TodoCmd) runDelete(ctx context.Context, c *cli.Command) error {
	item, err := cmd.loadItem(ctx, c)
	if err != nil {
		return err
	}

	if cmd.localOnly {
		return cmd.list().DeleteWithoutClosingIssue(ctx, item)
	}
	if cmd.reason != "" {
		reason, err := github.ParseStateReason(cmd.reason)
		if err != nil {
			return err
		}
		if !slices.Contains(github.CloseReasons(), reason) {
			return fmt.Errorf("reason %q cannot close an issue", reason)
		}
		return cmd.list().DeleteAndCloseIssue(ctx, item, reason)
	}

	decision, err := cmd.list().Delete(ctx, item)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	return cmd.resolve(c, decision)
}

func (cmd *TodoCmd) runLink(ctx context.Context, c *cli.Command) error {
	item, err := cmd.loadItem(ctx, c)
	if err != nil {
		return err
	}

	linked, err := cmd.list().LinkIssue(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("link issue: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, linked)
}

func (cmd *TodoCmd) runClear(ctx context.Context, c *cli.Command) error {
	cmd.list().Load(ctx)

	if err := cmd.list().Clear(ctx); err != nil {
		return fmt.Errorf("clear todos: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "cleared")
	return nil
}

// loadItem loads the list (populating issue states) and resolves the
// positional id argument.
func (cmd *TodoCmd) loadItem(ctx context.Context, c *cli.Command) (todo.Item, error) {
	if c.NArg() < 1 {
		return todo.Item{}, fmt.Errorf("usage: tether todo %s <id>", c.Name)
	}

	cmd.list().Load(ctx)

	item, err := cmd.list().Get(c.Args().Get(0))
	if err != nil {
		return todo.Item{}, fmt.Errorf("get todo %s: %w", c.Args().Get(0), err)
	}

	return item, nil
}

// resolve reports an applied decision, or prints the pending confirmation
// and fails so scripts can react to the exit code.
func (cmd *TodoCmd) resolve(c *cli.Command, decision tether.Decision) error {
	if decision.Applied {
		_, _ = fmt.Fprintln(c.Root().Writer, "applied")
		return nil
	}

	if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, decision.Confirmation); err != nil {
		return err
	}

	return fmt.Errorf("confirmation required: re-run with --reason or --local-only")
}
