package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/printer"
	"github.com/colonyops/vibeplanner/internal/vibe"
	"github.com/colonyops/vibeplanner/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *vibe.App

	// flags
	limit      int
	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command.
func NewNotificationsCmd(flags *Flags, app *vibe.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application.
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif"},
		Usage:   "Show review outcomes from past sessions",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List notifications, newest first",
				UsageText: "vibeplanner notifications list [--limit <n>] [--json]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "maximum notifications to list (0 lists all)",
						Value:       20,
						Destination: &cmd.limit,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:   "clear",
				Usage:  "Delete all notifications",
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) runList(ctx context.Context, c *cli.Command) error {
	list, err := cmd.app.Notifications.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if len(list) == 0 && !cmd.jsonOutput {
		fmt.Fprintf(os.Stderr, "No notifications\n")
		return nil
	}

	for _, n := range list {
		if cmd.jsonOutput {
			if err := iojson.WriteLine(c.Root().Writer, n); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintln(c.Root().Writer, n.String())
	}
	return nil
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Notifications.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	printer.Ctx(ctx).Successf("Notifications cleared")
	return nil
}
