package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/data/db"
)

// MemberStore implements records.MemberStore using SQLite.
type MemberStore struct {
	db *db.DB
}

var _ records.MemberStore = (*MemberStore)(nil)

// NewMemberStore creates a new SQLite-backed membership store.
func NewMemberStore(db *db.DB) *MemberStore {
	return &MemberStore{db: db}
}

// AddMember adds userID to teamID. Adding an existing member is a no-op.
func (s *MemberStore) AddMember(ctx context.Context, teamID, userID string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT OR IGNORE INTO team_members (team_id, user_id, created_at) VALUES (?, ?, ?)`,
		teamID, userID, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// RemoveMember removes userID from teamID. Returns records.ErrNotFound if the
// user was not a member.
func (s *MemberStore) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

// IsMember reports whether userID belongs to teamID.
func (s *MemberStore) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	var count int
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check team member: %w", err)
	}
	return count > 0, nil
}

// ListMembers returns the team's user ids in join order.
func (s *MemberStore) ListMembers(ctx context.Context, teamID string) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT user_id FROM team_members WHERE team_id = ? ORDER BY created_at, user_id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
