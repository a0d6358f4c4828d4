// Package inbox stages raw AI proposals between the tool-calling surfaces that
// produce them and the review session that consumes them.
package inbox

import (
	"context"
	"errors"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
)

// ErrEmpty is returned when a team has no unconsumed turn.
var ErrEmpty = errors.New("no pending proposals")

// Turn is the set of proposals staged by one AI turn.
type Turn struct {
	ID        string
	TeamID    string
	Proposals []proposal.RawProposal
	CreatedAt time.Time
	// Through is the sequence of the last proposal read. Proposals staged
	// to the same turn afterwards sort above it.
	Through int64
}

// Store persists staged proposals.
type Store interface {
	// Stage appends raw to the turn, creating the turn on first use.
	Stage(ctx context.Context, teamID, turnID string, raw proposal.RawProposal) error
	// Latest returns the most recent unconsumed turn for the team.
	Latest(ctx context.Context, teamID string) (Turn, error)
	// Consume marks the turn's proposals up to and including sequence
	// through as taken for review.
	Consume(ctx context.Context, turnID string, through int64) error
}
