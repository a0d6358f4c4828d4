package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/vibeplanner/internal/core/eventbus"
	"github.com/colonyops/vibeplanner/internal/core/inbox"
	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/colonyops/vibeplanner/internal/tui"
	tuinotify "github.com/colonyops/vibeplanner/internal/tui/notify"
	"github.com/colonyops/vibeplanner/internal/vibe"
	"github.com/colonyops/vibeplanner/pkg/iojson"
)

type ReviewCmd struct {
	flags *Flags
	app   *vibe.App

	// flags
	jsonOutput bool
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags, app *vibe.App) *ReviewCmd {
	return &ReviewCmd{flags: flags, app: app}
}

// Flags returns the review flags so the root command can share them.
func (cmd *ReviewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the pending proposals as JSON lines instead of opening the workspace",
			Destination: &cmd.jsonOutput,
		},
	}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Review pending AI proposals",
		UsageText: "vibeplanner review [--json]",
		Description: `Opens the review workspace on the newest staged turn.

Each proposal is shown as a card. Confirm applies it to your team's records,
reject discards it. Confirm all applies every card concurrently; cards that
fail stay on screen so they can be retried.

When stdout is not a terminal, or with --json, the pending proposals are
printed as JSON lines and left in the inbox.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})

	return app
}

// Run opens the workspace, or prints the pending turn when not interactive.
func (cmd *ReviewCmd) Run(ctx context.Context, c *cli.Command) error {
	if cmd.jsonOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
		return cmd.printPending(ctx, c)
	}

	batch, rejected, err := cmd.app.Review.Latest(ctx)
	switch {
	case errors.Is(err, inbox.ErrEmpty):
		batch = review.NewBatch("", nil)
	case err != nil:
		return fmt.Errorf("load proposals: %w", err)
	}

	bus := tuinotify.NewBus(cmd.app.Notifications)
	bus.Forward(cmd.app.Bus)

	cfg := cmd.app.Config
	warnings := make([]string, 0, len(rejected))
	if n := len(rejected); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d proposal(s) could not be read and were skipped", n))
	}
	for _, w := range cfg.Warnings() {
		warnings = append(warnings, fmt.Sprintf("%s: %s %s", w.Category, w.Item, w.Message))
	}

	model := tui.New(ctx, tui.Options{
		Session:       cmd.app.NewSession(batch, bus, 0, 0),
		Bus:           bus,
		Load:          cmd.app.Review.Latest,
		CellWidthPx:   cfg.TUI.CellWidthPx,
		CellHeightPx:  cfg.TUI.CellHeightPx,
		MarkdownStyle: cfg.TUI.MarkdownStyle,
		Warnings:      warnings,
		Logger:        log.Logger,
	})

	cmd.app.Bus.PublishTuiStarted(eventbus.TUIStartedPayload{})
	defer cmd.app.Bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run review workspace: %w", err)
	}
	return nil
}

func (cmd *ReviewCmd) printPending(ctx context.Context, c *cli.Command) error {
	batch, rejected, err := cmd.app.Review.Peek(ctx)
	if errors.Is(err, inbox.ErrEmpty) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load proposals: %w", err)
	}

	w := c.Root().Writer
	for _, it := range batch.Items() {
		if err := iojson.WriteLine(w, newItemView(batch.Turn(), it)); err != nil {
			return err
		}
	}
	for _, r := range rejected {
		_ = iojson.WriteError("proposal rejected", map[string]any{
			"index": r.Index,
			"type":  r.Type,
			"error": r.Err.Error(),
		})
	}
	return nil
}

// itemView is the JSON line shape of a pending proposal.
type itemView struct {
	Turn      string                 `json:"turn"`
	ID        proposal.ID            `json:"id"`
	Type      proposal.EntityType    `json:"type"`
	Operation proposal.Operation     `json:"operation"`
	Title     string                 `json:"title"`
	TargetID  string                 `json:"targetId,omitempty"`
	Problem   string                 `json:"problem,omitempty"`
	Changes   []proposal.FieldChange `json:"changes,omitempty"`
}

func newItemView(turn string, it proposal.Item) itemView {
	return itemView{
		Turn:      turn,
		ID:        it.ID,
		Type:      it.Type,
		Operation: it.Operation,
		Title:     it.Headline(),
		TargetID:  it.TargetID,
		Problem:   it.Problem,
		Changes:   it.Diff(),
	}
}
