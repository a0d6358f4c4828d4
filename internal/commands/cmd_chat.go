package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/assistant"
	"github.com/colonyops/vibeplanner/internal/core/logging"
	"github.com/colonyops/vibeplanner/internal/printer"
	"github.com/colonyops/vibeplanner/internal/vibe"
)

type ChatCmd struct {
	flags *Flags
	app   *vibe.App

	// flags
	model      string
	openReview bool
}

// NewChatCmd creates a new chat command.
func NewChatCmd(flags *Flags, app *vibe.App) *ChatCmd {
	return &ChatCmd{flags: flags, app: app}
}

// Register adds the chat command to the application.
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Ask the assistant to plan changes to your team's records",
		UsageText: "vibeplanner chat [--review] [message...]",
		Description: `Sends one message to Gemini with your team's recent records as context.

Every record change the assistant suggests is staged as a proposal in a new
turn. Nothing is written until the proposals are confirmed in review.

Without a message argument an editor prompt is opened.

Examples:
  vibeplanner chat "add pour slab and order rebar to tasks"
  vibeplanner chat --review "rename the shopping sections to match aisles"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "model",
				Usage:       "Gemini model (defaults to assistant.model)",
				Destination: &cmd.model,
			},
			&cli.BoolFlag{
				Name:        "review",
				Aliases:     []string{"r"},
				Usage:       "open the review workspace after staging",
				Destination: &cmd.openReview,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ChatCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	cfg := cmd.app.Config.Assistant

	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if message == "" {
		var err error
		message, err = promptMessage()
		if err != nil {
			return err
		}
		if message == "" {
			return nil
		}
	}

	model := cmd.model
	if model == "" {
		model = cfg.Model
	}

	gemini, err := assistant.NewGemini(ctx, cfg.APIKey(), model, cfg.PromptTemplate, log.Logger)
	if err != nil {
		return fmt.Errorf("%w (set %s)", err, cfg.APIKeyEnv)
	}

	recent, err := cmd.app.Records.List(ctx, cmd.app.Actor, "", cfg.MaxContextRecords)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	reply, err := gemini.Chat(ctx, message, assistant.PromptData{
		TeamID:  cmd.app.Actor.TeamID,
		UserID:  cmd.app.Actor.UserID,
		Records: recent,
		Vars:    cmd.app.Config.PromptVars(),
	})
	if err != nil {
		return err
	}

	if reply.Text != "" {
		p.Printf("%s", reply.Text)
		p.Printf("")
	}
	for _, skipped := range reply.Skipped {
		p.Warnf("ignored tool call: %v", skipped)
	}

	if len(reply.Proposals) == 0 {
		p.Infof("No changes proposed")
		return nil
	}

	turnID := uuid.NewString()
	ctx = logging.WithTurnID(ctx, turnID)
	for _, raw := range reply.Proposals {
		if err := cmd.app.Review.Stage(ctx, turnID, raw); err != nil {
			return fmt.Errorf("stage %s: %w", raw.Type, err)
		}
	}

	p.Successf("%d proposal(s) staged for review", len(reply.Proposals))

	if cmd.openReview {
		return NewReviewCmd(cmd.flags, cmd.app).Run(ctx, c)
	}
	p.Printf("Run 'vibeplanner review' to confirm them.")
	return nil
}

func promptMessage() (string, error) {
	var message string
	err := huh.NewText().
		Title("What should change?").
		Description("Describe the tasks, notes, shopping items, surveys or contacts to add or edit.").
		Value(&message).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}
	return strings.TrimSpace(message), nil
}
