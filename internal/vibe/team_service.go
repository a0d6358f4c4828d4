package vibe

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/core/validate"
	"github.com/rs/zerolog"
)

// TeamService manages team membership. Only members may change it, except
// that the first member of an empty team bootstraps it.
type TeamService struct {
	members records.MemberStore
	log     zerolog.Logger
}

// NewTeamService creates a new TeamService.
func NewTeamService(members records.MemberStore, log zerolog.Logger) *TeamService {
	return &TeamService{
		members: members,
		log:     log.With().Str("component", "team-service").Logger(),
	}
}

// Bootstrap adds the actor to its team when the team has no members yet.
// Returns true when the actor was added.
func (s *TeamService) Bootstrap(ctx context.Context, actor Actor) (bool, error) {
	members, err := s.members.ListMembers(ctx, actor.TeamID)
	if err != nil {
		return false, err
	}
	if len(members) > 0 {
		return false, nil
	}

	if err := s.members.AddMember(ctx, actor.TeamID, actor.UserID); err != nil {
		return false, err
	}
	s.log.Info().Str("team", actor.TeamID).Str("user", actor.UserID).Msg("bootstrapped team")
	return true, nil
}

// Add adds userID to the actor's team.
func (s *TeamService) Add(ctx context.Context, actor Actor, userID string) error {
	if err := s.requireMember(ctx, actor); err != nil {
		return err
	}
	if err := validate.Identifier(userID); err != nil {
		return fmt.Errorf("user id %w", err)
	}
	return s.members.AddMember(ctx, actor.TeamID, userID)
}

// Remove removes userID from the actor's team. The last member cannot be
// removed.
func (s *TeamService) Remove(ctx context.Context, actor Actor, userID string) error {
	if err := s.requireMember(ctx, actor); err != nil {
		return err
	}

	members, err := s.members.ListMembers(ctx, actor.TeamID)
	if err != nil {
		return err
	}
	if len(members) == 1 && members[0] == userID {
		return errors.New("cannot remove the last team member")
	}

	if err := s.members.RemoveMember(ctx, actor.TeamID, userID); err != nil {
		return fmt.Errorf("remove %s: %w", userID, err)
	}
	return nil
}

// List returns the members of the actor's team.
func (s *TeamService) List(ctx context.Context, actor Actor) ([]string, error) {
	if err := s.requireMember(ctx, actor); err != nil {
		return nil, err
	}
	return s.members.ListMembers(ctx, actor.TeamID)
}

func (s *TeamService) requireMember(ctx context.Context, actor Actor) error {
	ok, err := s.members.IsMember(ctx, actor.TeamID, actor.UserID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s is not a member of team %s: %w", actor.UserID, actor.TeamID, records.ErrPermissionDenied)
	}
	return nil
}
