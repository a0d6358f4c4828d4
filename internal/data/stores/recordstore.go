package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/data/db"
	"github.com/colonyops/vibeplanner/pkg/randid"
)

const recordColumns = "id, team_id, kind, title, fields, version, created_by, created_at, updated_at"

// RecordStore implements records.Store using SQLite. Fields are stored as a
// JSON document per row.
type RecordStore struct {
	db *db.DB
}

var _ records.Store = (*RecordStore)(nil)

// NewRecordStore creates a new SQLite-backed record store.
func NewRecordStore(db *db.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Create persists a new record. Generates an ID if not set.
func (s *RecordStore) Create(ctx context.Context, r *records.Record) error {
	if r.ID == "" {
		r.ID = randid.Generate(10)
	}

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	if r.Version == 0 {
		r.Version = 1
	}

	fields, err := marshalFields(r.Fields)
	if err != nil {
		return err
	}

	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TeamID, string(r.Kind), r.Title, fields, r.Version, r.CreatedBy,
		r.CreatedAt.UnixNano(), r.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("create record %s: %w", r.ID, records.ErrConflict)
		}
		return fmt.Errorf("create record: %w", err)
	}

	return nil
}

// Get returns a single record by ID.
func (s *RecordStore) Get(ctx context.Context, id string) (records.Record, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)

	r, err := scanRecord(row)
	if err != nil {
		if IsNotFoundError(err) {
			return records.Record{}, records.ErrNotFound
		}
		return records.Record{}, fmt.Errorf("get record: %w", err)
	}

	return r, nil
}

// Update writes Title and Fields with an optimistic version check.
func (s *RecordStore) Update(ctx context.Context, r *records.Record, expectedVersion int64) error {
	fields, err := marshalFields(r.Fields)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM records WHERE id = ?`, r.ID).Scan(&current)
		if err != nil {
			if IsNotFoundError(err) {
				return records.ErrNotFound
			}
			return fmt.Errorf("get record version: %w", err)
		}

		if expectedVersion != 0 && current != expectedVersion {
			return fmt.Errorf("%w: have version %d, proposal made against %d", records.ErrConflict, current, expectedVersion)
		}

		r.Version = current + 1
		r.UpdatedAt = time.Now()

		_, err = tx.ExecContext(ctx,
			`UPDATE records SET title = ?, fields = ?, version = ?, updated_at = ? WHERE id = ?`,
			r.Title, fields, r.Version, r.UpdatedAt.UnixNano(), r.ID,
		)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
}

// Delete removes a record by ID.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return records.ErrNotFound
	}

	return nil
}

// List returns records matching the filter, ordered by updated_at DESC.
func (s *RecordStore) List(ctx context.Context, filter records.ListFilter) ([]records.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE 1 = 1`
	var args []any

	if filter.TeamID != "" {
		query += ` AND team_id = ?`
		args = append(args, filter.TeamID)
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY updated_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []records.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (records.Record, error) {
	var (
		r                    records.Record
		kind, fields         string
		createdAt, updatedAt int64
	)

	err := row.Scan(&r.ID, &r.TeamID, &kind, &r.Title, &fields, &r.Version, &r.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return records.Record{}, err
	}

	r.Kind = records.Kind(kind)
	r.CreatedAt = time.Unix(0, createdAt)
	r.UpdatedAt = time.Unix(0, updatedAt)
	if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
		return records.Record{}, fmt.Errorf("decode fields for %s: %w", r.ID, err)
	}

	return r, nil
}

func marshalFields(fields map[string]any) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal record fields: %w", err)
	}
	return string(data), nil
}
