package vibe

import (
	"context"
	"fmt"

	"github.com/colonyops/vibeplanner/internal/core/eventbus"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/rs/zerolog"
)

// Actor is the user performing an operation and the team it is scoped to.
type Actor struct {
	UserID string
	TeamID string
}

// RecordService wraps records.Store with team authorization, per-kind
// validation, and event publishing.
type RecordService struct {
	store   records.Store
	members records.MemberStore
	bus     *eventbus.EventBus
	log     zerolog.Logger
}

// NewRecordService creates a new RecordService.
func NewRecordService(store records.Store, members records.MemberStore, bus *eventbus.EventBus, log zerolog.Logger) *RecordService {
	return &RecordService{
		store:   store,
		members: members,
		bus:     bus,
		log:     log.With().Str("component", "record-service").Logger(),
	}
}

// authorize fails with records.ErrPermissionDenied unless the actor belongs
// to its team.
func (s *RecordService) authorize(ctx context.Context, actor Actor) error {
	ok, err := s.members.IsMember(ctx, actor.TeamID, actor.UserID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s is not a member of team %s: %w", actor.UserID, actor.TeamID, records.ErrPermissionDenied)
	}
	return nil
}

// owned loads id and hides records belonging to other teams. A non-empty
// kind also hides records of a different kind.
func (s *RecordService) owned(ctx context.Context, actor Actor, kind records.Kind, id string) (records.Record, error) {
	if id == "" {
		verr := &records.ValidationError{}
		verr.Add("id", "target record id is missing")
		return records.Record{}, verr
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return records.Record{}, fmt.Errorf("record %s: %w", id, err)
	}
	if rec.TeamID != actor.TeamID {
		return records.Record{}, fmt.Errorf("record %s: %w", id, records.ErrNotFound)
	}
	if kind != "" && rec.Kind != kind {
		return records.Record{}, fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	return rec, nil
}

// Create validates fields and persists a new record of kind.
func (s *RecordService) Create(ctx context.Context, actor Actor, kind records.Kind, fields map[string]any) (records.Record, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return records.Record{}, err
	}

	fields = mergeFields(nil, fields)
	if err := validateFields(kind, fields); err != nil {
		return records.Record{}, err
	}

	rec := records.Record{
		TeamID:    actor.TeamID,
		Kind:      kind,
		Title:     titleOf(kind, fields),
		Fields:    fields,
		CreatedBy: actor.UserID,
	}
	if err := s.store.Create(ctx, &rec); err != nil {
		return records.Record{}, fmt.Errorf("create %s: %w", kind, err)
	}

	s.log.Debug().Ctx(ctx).Str("id", rec.ID).Str("kind", string(kind)).Msg("record created")
	s.bus.PublishRecordCreated(eventbus.RecordCreatedPayload{Record: &rec})

	return rec, nil
}

// Update merges updates into the fields of the kind record id. A non-zero
// expectedVersion must match the stored version or records.ErrConflict is
// returned.
func (s *RecordService) Update(ctx context.Context, actor Actor, kind records.Kind, id string, updates map[string]any, expectedVersion int64) (records.Record, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return records.Record{}, err
	}

	rec, err := s.owned(ctx, actor, kind, id)
	if err != nil {
		return records.Record{}, err
	}
	if expectedVersion != 0 && rec.Version != expectedVersion {
		return records.Record{}, fmt.Errorf("record %s: %w: have version %d, proposal made against %d",
			id, records.ErrConflict, rec.Version, expectedVersion)
	}

	fields := mergeFields(rec.Fields, updates)
	if err := validateFields(rec.Kind, fields); err != nil {
		return records.Record{}, err
	}

	previous := rec.Version
	rec.Fields = fields
	rec.Title = titleOf(rec.Kind, fields)

	// The store re-checks the version inside its transaction.
	if err := s.store.Update(ctx, &rec, previous); err != nil {
		return records.Record{}, fmt.Errorf("update %s: %w", id, err)
	}

	s.log.Debug().Ctx(ctx).Str("id", id).Int64("version", rec.Version).Msg("record updated")
	s.bus.PublishRecordUpdated(eventbus.RecordUpdatedPayload{Record: &rec, PreviousVersion: previous})

	return rec, nil
}

// Delete removes the kind record id owned by the actor's team.
func (s *RecordService) Delete(ctx context.Context, actor Actor, kind records.Kind, id string) (records.Record, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return records.Record{}, err
	}

	rec, err := s.owned(ctx, actor, kind, id)
	if err != nil {
		return records.Record{}, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return records.Record{}, fmt.Errorf("delete %s: %w", id, err)
	}

	s.log.Debug().Ctx(ctx).Str("id", id).Msg("record deleted")
	s.bus.PublishRecordDeleted(eventbus.RecordDeletedPayload{TeamID: rec.TeamID, RecordID: id, Kind: rec.Kind})

	return rec, nil
}

// Get returns a record owned by the actor's team.
func (s *RecordService) Get(ctx context.Context, actor Actor, id string) (records.Record, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return records.Record{}, err
	}
	return s.owned(ctx, actor, "", id)
}

// List returns the team's records, newest first. An empty kind matches all.
func (s *RecordService) List(ctx context.Context, actor Actor, kind records.Kind, limit int) ([]records.Record, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}
	return s.store.List(ctx, records.ListFilter{TeamID: actor.TeamID, Kind: kind, Limit: limit})
}

func titleOf(kind records.Kind, fields map[string]any) string {
	s, _ := fields[kind.TitleField()].(string)
	return s
}
