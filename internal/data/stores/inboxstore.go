package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/inbox"
	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/data/db"
)

// InboxStore implements inbox.Store using SQLite. Each staged proposal is one
// row holding its JSON wire form.
type InboxStore struct {
	db *db.DB
}

var _ inbox.Store = (*InboxStore)(nil)

// NewInboxStore creates a new SQLite-backed proposal inbox.
func NewInboxStore(db *db.DB) *InboxStore {
	return &InboxStore{db: db}
}

// Stage appends a raw proposal to a turn.
func (s *InboxStore) Stage(ctx context.Context, teamID, turnID string, raw proposal.RawProposal) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}

	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO proposal_inbox (turn_id, team_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		turnID, teamID, string(payload), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("stage proposal: %w", err)
	}
	return nil
}

// Latest returns the newest turn with unconsumed proposals for the team.
func (s *InboxStore) Latest(ctx context.Context, teamID string) (inbox.Turn, error) {
	var turnID string
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT turn_id FROM proposal_inbox
		WHERE team_id = ? AND consumed_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, teamID,
	).Scan(&turnID)
	if err != nil {
		if IsNotFoundError(err) {
			return inbox.Turn{}, inbox.ErrEmpty
		}
		return inbox.Turn{}, fmt.Errorf("find latest turn: %w", err)
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, payload, created_at FROM proposal_inbox
		WHERE turn_id = ? AND consumed_at IS NULL
		ORDER BY id`, turnID,
	)
	if err != nil {
		return inbox.Turn{}, fmt.Errorf("load turn %s: %w", turnID, err)
	}
	defer func() { _ = rows.Close() }()

	turn := inbox.Turn{ID: turnID, TeamID: teamID}
	for rows.Next() {
		var (
			seq       int64
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&seq, &payload, &createdAt); err != nil {
			return inbox.Turn{}, fmt.Errorf("scan proposal: %w", err)
		}

		var raw proposal.RawProposal
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return inbox.Turn{}, fmt.Errorf("decode proposal: %w", err)
		}
		turn.Proposals = append(turn.Proposals, raw)
		turn.Through = seq
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = time.Unix(0, createdAt)
		}
	}

	return turn, rows.Err()
}

// Consume marks the turn's proposals up to row through as taken. Rows staged
// after the caller read the turn stay pending.
func (s *InboxStore) Consume(ctx context.Context, turnID string, through int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE proposal_inbox SET consumed_at = ? WHERE turn_id = ? AND id <= ? AND consumed_at IS NULL`,
			time.Now().UnixNano(), turnID, through,
		)
		if err != nil {
			return fmt.Errorf("consume turn: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("consume turn: %w", err)
		}
		if n == 0 {
			return inbox.ErrEmpty
		}
		return nil
	})
}
