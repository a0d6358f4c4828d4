// Package records defines the team-owned domain records that confirmed
// proposals are reconciled against, and the persistence contracts for them.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors returned by stores and services.
var (
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("record was modified concurrently")
)

// Kind is the record type. It matches the canonical proposal entity types.
type Kind string

const (
	KindTask            Kind = "task"
	KindNote            Kind = "note"
	KindShopping        Kind = "shopping"
	KindShoppingSection Kind = "shoppingSection"
	KindSurvey          Kind = "survey"
	KindContact         Kind = "contact"
)

// Kinds lists every supported record kind.
var Kinds = []Kind{KindTask, KindNote, KindShopping, KindShoppingSection, KindSurvey, KindContact}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// TitleField returns the field that holds the record's display name.
func (k Kind) TitleField() string {
	switch k {
	case KindShopping, KindShoppingSection, KindContact:
		return "name"
	default:
		return "title"
	}
}

// Record is a persisted team record. Fields holds the kind-specific values;
// Title mirrors the kind's title field for listing.
type Record struct {
	ID        string         `json:"id"`
	TeamID    string         `json:"teamId"`
	Kind      Kind           `json:"kind"`
	Title     string         `json:"title"`
	Fields    map[string]any `json:"fields"`
	Version   int64          `json:"version"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	TeamID string
	Kind   Kind
	Limit  int
}

// Store persists records.
type Store interface {
	// Create inserts r, assigning ID, Version and timestamps when unset.
	Create(ctx context.Context, r *Record) error
	// Get returns ErrNotFound when the record does not exist.
	Get(ctx context.Context, id string) (Record, error)
	// Update replaces Title and Fields when the stored version equals
	// expectedVersion (0 skips the check). Returns ErrConflict on mismatch
	// and ErrNotFound when the record is gone. r.Version is advanced.
	Update(ctx context.Context, r *Record, expectedVersion int64) error
	// Delete returns ErrNotFound when the record does not exist.
	Delete(ctx context.Context, id string) error
	// List returns records newest first.
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

// MemberStore persists team membership.
type MemberStore interface {
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]string, error)
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects field problems for a record payload.
type ValidationError struct {
	Kind   Kind
	Fields []FieldError
}

// Add appends a field problem.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OrNil returns e when it holds problems and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}
