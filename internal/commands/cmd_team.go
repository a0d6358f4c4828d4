package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/printer"
	"github.com/colonyops/vibeplanner/internal/vibe"
	"github.com/colonyops/vibeplanner/pkg/iojson"
)

type TeamCmd struct {
	flags *Flags
	app   *vibe.App

	// flags
	jsonOutput bool
}

// NewTeamCmd creates a new team command.
func NewTeamCmd(flags *Flags, app *vibe.App) *TeamCmd {
	return &TeamCmd{flags: flags, app: app}
}

// Register adds the team command to the application.
func (cmd *TeamCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "team",
		Usage: "Manage membership of the configured team",
		Description: `Only members may confirm proposals or change membership.
The configured user joins automatically when the team has no members.`,
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List team members",
				UsageText: "vibeplanner team list [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add a member",
				UsageText: "vibeplanner team add <user-id>",
				Action:    cmd.runAdd,
			},
			{
				Name:          "remove",
				Aliases:       []string{"rm"},
				Usage:         "Remove a member",
				UsageText:     "vibeplanner team remove <user-id>",
				ShellComplete: MemberCompleter(cmd.app),
				Action:        cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *TeamCmd) runList(ctx context.Context, c *cli.Command) error {
	members, err := cmd.app.Teams.List(ctx, cmd.app.Actor)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, map[string]any{
			"team":    cmd.app.Actor.TeamID,
			"members": members,
		})
	}

	for _, m := range members {
		_, _ = fmt.Fprintln(c.Root().Writer, m)
	}
	return nil
}

func (cmd *TeamCmd) runAdd(ctx context.Context, c *cli.Command) error {
	user := c.Args().First()
	if user == "" {
		return fmt.Errorf("user id is required")
	}

	if err := cmd.app.Teams.Add(ctx, cmd.app.Actor, user); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	printer.Ctx(ctx).Successf("Added %s to %s", user, cmd.app.Actor.TeamID)
	return nil
}

func (cmd *TeamCmd) runRemove(ctx context.Context, c *cli.Command) error {
	user := c.Args().First()
	if user == "" {
		return fmt.Errorf("user id is required")
	}

	if err := cmd.app.Teams.Remove(ctx, cmd.app.Actor, user); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	printer.Ctx(ctx).Successf("Removed %s from %s", user, cmd.app.Actor.TeamID)
	return nil
}
