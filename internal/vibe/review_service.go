package vibe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/colonyops/vibeplanner/internal/core/eventbus"
	"github.com/colonyops/vibeplanner/internal/core/inbox"
	"github.com/colonyops/vibeplanner/internal/core/logging"
	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/rs/zerolog"
)

// ReviewService moves raw proposals from the inbox into review batches.
type ReviewService struct {
	inbox inbox.Store
	bus   *eventbus.EventBus
	log   zerolog.Logger
	team  string

	// nextID hands out item ids that stay unique for the process lifetime,
	// so ids from a replaced batch never collide with the new one.
	nextID atomic.Uint64
}

// NewReviewService creates a ReviewService scoped to teamID.
func NewReviewService(store inbox.Store, bus *eventbus.EventBus, teamID string, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		inbox: store,
		bus:   bus,
		log:   log.With().Str("component", "review-service").Logger(),
		team:  teamID,
	}
}

// Stage records one raw proposal under turnID.
func (s *ReviewService) Stage(ctx context.Context, turnID string, raw proposal.RawProposal) error {
	if strings.TrimSpace(raw.Type) == "" {
		return proposal.ErrEmptyType
	}
	if turnID == "" {
		return errors.New("turn id is required")
	}

	if err := s.inbox.Stage(ctx, s.team, turnID, raw); err != nil {
		return fmt.Errorf("stage proposal: %w", err)
	}

	s.bus.PublishProposalStaged(eventbus.ProposalStagedPayload{TeamID: s.team, TurnID: turnID, Type: raw.Type})
	return nil
}

// Latest takes the newest unconsumed turn out of the inbox and classifies it.
// Returns inbox.ErrEmpty when nothing is pending.
func (s *ReviewService) Latest(ctx context.Context) (*review.Batch, []proposal.Rejected, error) {
	turn, err := s.inbox.Latest(ctx, s.team)
	if err != nil {
		return nil, nil, err
	}

	// Only what was read is consumed; a client still staging to this turn
	// leaves its newer proposals for the next call.
	if err := s.inbox.Consume(ctx, turn.ID, turn.Through); err != nil {
		return nil, nil, fmt.Errorf("consume turn %s: %w", turn.ID, err)
	}

	batch, rejected := s.Classify(logging.WithTurnID(ctx, turn.ID), turn.ID, turn.Proposals)
	return batch, rejected, nil
}

// Peek classifies the newest unconsumed turn and leaves it in the inbox.
func (s *ReviewService) Peek(ctx context.Context) (*review.Batch, []proposal.Rejected, error) {
	turn, err := s.inbox.Latest(ctx, s.team)
	if err != nil {
		return nil, nil, err
	}

	batch, rejected := s.Classify(logging.WithTurnID(ctx, turn.ID), turn.ID, turn.Proposals)
	return batch, rejected, nil
}

// Classify turns raw proposals into a batch for turnID. An empty turnID
// gets a fresh one. Rejected proposals are logged and returned.
func (s *ReviewService) Classify(ctx context.Context, turnID string, raws []proposal.RawProposal) (*review.Batch, []proposal.Rejected) {
	items, rejected := proposal.ClassifyAll(raws, s.next)
	for _, r := range rejected {
		s.log.Warn().Ctx(ctx).Err(r.Err).Int("index", r.Index).Str("type", r.Type).Msg("proposal rejected")
	}
	return review.NewBatch(turnID, items), rejected
}

func (s *ReviewService) next() proposal.ID {
	return proposal.ID(s.nextID.Add(1))
}
