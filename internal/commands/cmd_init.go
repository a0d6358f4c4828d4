package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	initcmd "github.com/colonyops/vibeplanner/internal/commands/init"
)

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
	user  string
	team  string
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create a vibeplanner configuration with an interactive wizard",
		UsageText: "vibeplanner init [options]",
		Description: `Sets up vibeplanner for first-time use.

The wizard asks for your user and team ids, a theme, and the environment
variable holding your Gemini API key, then writes
~/.config/vibeplanner/config.yaml.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "user id to act as",
				Destination: &cmd.user,
			},
			&cli.StringFlag{
				Name:        "team",
				Usage:       "team id to scope records to",
				Destination: &cmd.team,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, _ *cli.Command) error {
	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		Yes:        cmd.yes,
		Force:      cmd.force,
		UserID:     cmd.user,
		TeamID:     cmd.team,
	})
	return wizard.Run(ctx)
}
