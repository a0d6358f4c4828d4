package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/colonyops/vibeplanner/internal/printer"
	"github.com/colonyops/vibeplanner/internal/vibe"
	"github.com/colonyops/vibeplanner/pkg/iojson"
)

type ApplyCmd struct {
	flags *Flags
	app   *vibe.App

	// flags
	input      iojson.GlobReader[proposal.RawProposal]
	yes        bool
	jsonOutput bool
}

// NewApplyCmd creates a new apply command.
func NewApplyCmd(flags *Flags, app *vibe.App) *ApplyCmd {
	return &ApplyCmd{flags: flags, app: app}
}

// Register adds the apply command to the application.
func (cmd *ApplyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "apply",
		Usage:     "Confirm a set of raw proposals without the review workspace",
		UsageText: "vibeplanner apply [--from <glob>] [--yes] [--json]",
		Description: `Reads a JSON array of raw proposals from --from or stdin, classifies
them, and confirms every one after a prompt.

Proposals that cannot be classified are reported and skipped. Failed items
are listed at the end and the command exits non-zero.

Example:
  vibeplanner apply --from 'proposals/*.json' --yes`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type applyResult struct {
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Rejected  int            `json:"rejected"`
	Failures  []applyFailure `json:"failures,omitempty"`
	Remaining []itemView     `json:"remaining,omitempty"`
}

type applyFailure struct {
	ID    proposal.ID `json:"id"`
	Title string      `json:"title,omitempty"`
	Error string      `json:"error"`
}

func (cmd *ApplyCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	raws, err := cmd.input.Read()
	if err != nil {
		return err
	}

	batch, rejected := cmd.app.Review.Classify(ctx, "", raws)
	if !cmd.jsonOutput {
		for _, r := range rejected {
			p.Warnf("skipped proposal %d (%s): %v", r.Index, r.Type, r.Err)
		}
	}

	if batch.Count() == 0 {
		if cmd.jsonOutput {
			return iojson.WriteLine(c.Root().Writer, applyResult{Rejected: len(rejected)})
		}
		p.Infof("Nothing to apply")
		return nil
	}

	if !cmd.yes {
		ok, err := confirmApply(batch)
		if err != nil {
			return err
		}
		if !ok {
			p.Infof("Aborted")
			return nil
		}
	}

	var notifier review.Notifier = p
	if cmd.jsonOutput {
		notifier = nil
	}

	session := cmd.app.NewSession(batch, notifier, 0, 0)
	res, err := session.ConfirmAll(ctx)
	if err != nil {
		return fmt.Errorf("apply proposals: %w", err)
	}

	if cmd.jsonOutput {
		return cmd.writeJSON(c.Root().Writer, session, res, len(rejected))
	}

	p.Printf("")
	if len(res.Failed) == 0 {
		p.Successf("%s", res)
		return nil
	}

	p.Errorf("%s", res)
	for _, f := range res.Failed {
		label := f.Title
		if label == "" {
			label = fmt.Sprintf("#%d", f.ID)
		}
		p.Printf("  %s: %v", label, f.Err)
	}
	return cli.Exit("", 1)
}

func (cmd *ApplyCmd) writeJSON(w io.Writer, session *review.Session, res review.BulkResult, rejected int) error {
	out := applyResult{
		Total:     res.Total,
		Processed: res.Processed,
		Rejected:  rejected,
	}
	for _, f := range res.Failed {
		out.Failures = append(out.Failures, applyFailure{ID: f.ID, Title: f.Title, Error: f.Err.Error()})
	}
	for _, it := range session.Items() {
		out.Remaining = append(out.Remaining, newItemView(session.Turn(), it))
	}

	if err := iojson.WriteLine(w, out); err != nil {
		return err
	}
	if len(out.Failures) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func confirmApply(batch *review.Batch) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Apply %d proposal(s)?", batch.Count())).
		Description(batch.Summarize()).
		Affirmative("Apply").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}
