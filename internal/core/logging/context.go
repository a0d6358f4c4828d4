package logging

import "context"

type contextKey string

const (
	teamIDKey contextKey = "team_id"
	turnIDKey contextKey = "turn_id"
)

// WithTeamID adds the acting team ID to the context.
func WithTeamID(ctx context.Context, teamID string) context.Context {
	return context.WithValue(ctx, teamIDKey, teamID)
}

// WithTurnID adds the proposal turn ID to the context.
func WithTurnID(ctx context.Context, turnID string) context.Context {
	return context.WithValue(ctx, turnIDKey, turnID)
}

// GetTeamID retrieves the team ID from the context.
// Returns empty string if not present.
func GetTeamID(ctx context.Context) string {
	if id, ok := ctx.Value(teamIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTurnID retrieves the proposal turn ID from the context.
// Returns empty string if not present.
func GetTurnID(ctx context.Context) string {
	if id, ok := ctx.Value(turnIDKey).(string); ok {
		return id
	}
	return ""
}
