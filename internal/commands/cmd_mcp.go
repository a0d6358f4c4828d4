package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/assistant"
	"github.com/colonyops/vibeplanner/internal/vibe"
)

type MCPCmd struct {
	flags *Flags
	app   *vibe.App
}

// NewMCPCmd creates a new mcp command.
func NewMCPCmd(flags *Flags, app *vibe.App) *MCPCmd {
	return &MCPCmd{flags: flags, app: app}
}

// Register adds the mcp command to the application.
func (cmd *MCPCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "mcp",
		Usage:     "Serve the proposal tools over MCP stdio",
		UsageText: "vibeplanner mcp",
		Description: `Runs an MCP server on stdin and stdout for AI clients.

Each tool call stages one proposal for the configured team. Proposals from
one turn are grouped until the client calls finish_turn, then reviewed with
'vibeplanner review'. The server never writes records directly.

Logs go to the log file; stdout carries only protocol messages.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *MCPCmd) run(_ context.Context, c *cli.Command) error {
	srv := assistant.NewMCPServer(cmd.app.Review, c.Root().Version, log.Logger)
	return srv.ServeStdio()
}
