package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/vibe"
)

// completionLimit caps how many record ids are suggested.
const completionLimit = 100

// RecordIDCompleter returns a ShellCompleteFunc that suggests the team's
// record ids with their titles as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func RecordIDCompleter(app *vibe.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if typingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		list, err := app.Records.List(ctx, app.Actor, "", completionLimit)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, r := range list {
			_, _ = fmt.Fprintf(w, "%s:%s %s\n", r.ID, r.Kind, r.Title)
		}
	}
}

// MemberCompleter suggests the members of the configured team.
func MemberCompleter(app *vibe.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if typingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		members, err := app.Teams.List(ctx, app.Actor)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, m := range members {
			_, _ = fmt.Fprintln(w, m)
		}
	}
}

func typingFlag(cmd *cli.Command) bool {
	args := cmd.Args()
	if !args.Present() {
		return false
	}
	last := args.Slice()[args.Len()-1]
	return len(last) > 0 && last[0] == '-'
}
