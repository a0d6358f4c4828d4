package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/vibe"
	"github.com/colonyops/vibeplanner/pkg/iojson"
)

type RecordsCmd struct {
	flags *Flags
	app   *vibe.App

	// flags
	kind       string
	limit      int
	jsonOutput bool
}

// NewRecordsCmd creates a new records command.
func NewRecordsCmd(flags *Flags, app *vibe.App) *RecordsCmd {
	return &RecordsCmd{flags: flags, app: app}
}

// Register adds the records command to the application.
func (cmd *RecordsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "records",
		Usage: "Inspect your team's records",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List records, newest first",
				UsageText: "vibeplanner records list [--kind <kind>] [--limit <n>] [--json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "kind",
						Aliases:     []string{"k"},
						Usage:       "only list one kind (" + kindNames() + ")",
						Destination: &cmd.kind,
					},
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "maximum records to list (0 lists all)",
						Value:       50,
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
				Name:          "show",
				Usage:         "Show one record with all fields",
				UsageText:     "vibeplanner records show <id>",
				ShellComplete: RecordIDCompleter(cmd.app),
				Action:        cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *RecordsCmd) runList(ctx context.Context, c *cli.Command) error {
	kind := records.Kind(cmd.kind)
	if kind != "" && !kind.Valid() {
		return fmt.Errorf("unknown kind %q (want one of %s)", cmd.kind, kindNames())
	}

	list, err := cmd.app.Records.List(ctx, cmd.app.Actor, kind, cmd.limit)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	if cmd.jsonOutput {
		for _, r := range list {
			if err := iojson.WriteLine(c.Root().Writer, r); err != nil {
				return err
			}
		}
		return nil
	}

	if len(list) == 0 {
		fmt.Fprintf(os.Stderr, "No records found\n")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tTITLE\tVERSION\tUPDATED")
	for _, r := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Kind, r.Title, r.Version, r.UpdatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func (cmd *RecordsCmd) runShow(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("record id is required")
	}

	rec, err := cmd.app.Records.Get(ctx, cmd.app.Actor, id)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, rec)
}

func kindNames() string {
	names := make([]string, len(records.Kinds))
	for i, k := range records.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
