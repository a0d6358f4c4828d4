package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
)

// Stager records raw proposals for later review.
type Stager interface {
	Stage(ctx context.Context, turnID string, raw proposal.RawProposal) error
}

const serverInstructions = `VibePlanner proposal server.

Every tool here PROPOSES a change to the team's planner. Nothing is saved
until a person reviews and confirms the proposal in VibePlanner.

- Use the create_* tools for new tasks, notes, shopping items, surveys and contacts.
- Use the create_multiple_* tools when proposing several records of one type.
- Use update_record, delete_record and rename_records for existing records.
  Always pass the record id; pass the current record as original so the
  reviewer sees what changes.
- Call finish_turn once you are done proposing so the reviewer can start.`

// MCPServer exposes the proposal catalog over the Model Context Protocol.
// Proposals staged between two finish_turn calls share one turn id.
type MCPServer struct {
	stager  Stager
	version string
	log     zerolog.Logger

	mu     sync.Mutex
	turnID string
	staged int
}

// NewMCPServer creates an MCPServer staging through stager.
func NewMCPServer(stager Stager, version string, log zerolog.Logger) *MCPServer {
	return &MCPServer{
		stager:  stager,
		version: version,
		log:     log.With().Str("component", "mcp").Logger(),
		turnID:  uuid.NewString(),
	}
}

// Server builds the mcp-go server with every catalog tool registered.
func (m *MCPServer) Server() *server.MCPServer {
	s := server.NewMCPServer(
		"vibeplanner",
		m.version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	for _, tool := range Catalog() {
		s.AddTool(mcpTool(tool), m.handler(tool))
	}
	s.AddTool(finishTurnTool(), m.handleFinishTurn)

	return s
}

// ServeStdio serves the MCP protocol over stdin and stdout until the client
// disconnects.
func (m *MCPServer) ServeStdio() error {
	m.log.Info().Str("turn", m.Turn()).Msg("mcp server starting")
	return server.ServeStdio(m.Server())
}

// Turn returns the id proposals are currently staged under.
func (m *MCPServer) Turn() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turnID
}

func (m *MCPServer) handler(tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := tool.Proposal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		m.mu.Lock()
		turn := m.turnID
		m.mu.Unlock()

		if err := m.stager.Stage(ctx, turn, raw); err != nil {
			m.log.Error().Err(err).Str("tool", tool.Name).Msg("stage proposal")
			if errors.Is(err, proposal.ErrEmptyType) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("could not stage proposal: %v", err)), nil
		}

		m.mu.Lock()
		m.staged++
		count := m.staged
		m.mu.Unlock()

		m.log.Debug().Str("tool", tool.Name).Str("turn", turn).Msg("proposal staged")
		return mcp.NewToolResultText(fmt.Sprintf("Proposal staged for review (%d pending in this turn).", count)), nil
	}
}

func (m *MCPServer) handleFinishTurn(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m.mu.Lock()
	count := m.staged
	previous := m.turnID
	m.turnID = uuid.NewString()
	m.staged = 0
	m.mu.Unlock()

	m.log.Info().Str("turn", previous).Int("proposals", count).Msg("turn finished")
	if count == 0 {
		return mcp.NewToolResultText("No proposals were staged in this turn."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d proposal(s) ready for review. Ask the user to run `vibeplanner review`.", count)), nil
}

func finishTurnTool() mcp.Tool {
	return mcp.NewTool("finish_turn",
		mcp.WithDescription("Mark the current set of proposals as complete and ready for review."),
	)
}

// mcpTool converts a catalog entry into an mcp-go tool definition.
func mcpTool(t Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}

	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case ParamString:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		case ParamNumber:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case ParamArray:
			props = append(props, mcp.Items(map[string]any{"type": string(p.Items)}))
			opts = append(opts, mcp.WithArray(p.Name, props...))
		case ParamObject:
			opts = append(opts, mcp.WithObject(p.Name, props...))
		}
	}

	return mcp.NewTool(t.Name, opts...)
}
