package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts team_id and turn_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if teamID := GetTeamID(ctx); teamID != "" {
		e.Str("team_id", teamID)
	}

	if turnID := GetTurnID(ctx); turnID != "" {
		e.Str("turn_id", turnID)
	}
}
