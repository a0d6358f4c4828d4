package vibe

import (
	"context"
	"testing"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, raw proposal.RawProposal) proposal.Item {
	t.Helper()
	item, err := proposal.Classify(raw, 1)
	require.NoError(t, err)
	require.False(t, item.Flagged(), item.Problem)
	return item
}

func TestApplier_Create(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)
	applier := app.NewApplier()

	item := classify(t, proposal.RawProposal{
		Type: "create_task",
		Data: map[string]any{"title": "Buy lumber", "priority": "medium"},
	})

	res, err := applier.Apply(ctx, item)
	require.NoError(t, err)
	require.Len(t, res.Targets, 1)
	assert.NotEmpty(t, res.Targets[0].RecordID)
	assert.Equal(t, "Buy lumber", res.Targets[0].Title)

	rec, err := app.Records.Get(ctx, app.Actor, res.Targets[0].RecordID)
	require.NoError(t, err)
	assert.Equal(t, records.KindTask, rec.Kind)
}

func TestApplier_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("applies updates against original version", func(t *testing.T) {
		app, _ := newTestApp(t)
		rec := seed(t, app, records.KindTask, map[string]any{"title": "Frame walls"})

		item := classify(t, proposal.RawProposal{
			Type:         "task",
			Operation:    "edit",
			Data:         map[string]any{},
			Updates:      map[string]any{"priority": "high"},
			OriginalItem: map[string]any{"id": rec.ID, "title": rec.Title, "version": float64(rec.Version)},
		})

		_, err := app.NewApplier().Apply(ctx, item)
		require.NoError(t, err)

		got, err := app.Records.Get(ctx, app.Actor, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "high", got.Fields["priority"])
	})

	t.Run("conflict when record moved on", func(t *testing.T) {
		app, _ := newTestApp(t)
		rec := seed(t, app, records.KindNote, map[string]any{"title": "Site visit"})
		_, err := app.Records.Update(ctx, app.Actor, rec.Kind, rec.ID, map[string]any{"content": "edited elsewhere"}, 0)
		require.NoError(t, err)

		item := classify(t, proposal.RawProposal{
			Type:         "note",
			Operation:    "edit",
			Data:         map[string]any{"id": rec.ID, "title": "Site visit summary"},
			OriginalItem: map[string]any{"id": rec.ID, "version": float64(1)},
		})

		_, err = app.NewApplier().Apply(ctx, item)
		require.ErrorIs(t, err, records.ErrConflict)
	})
}

func TestApplier_Delete(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)
	rec := seed(t, app, records.KindContact, map[string]any{"name": "Acme"})

	item := classify(t, proposal.RawProposal{
		Type:         "contact",
		Operation:    "delete",
		OriginalItem: map[string]any{"id": rec.ID, "name": "Acme"},
	})

	res, err := app.NewApplier().Apply(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, res.Targets[0].RecordID)

	_, err = app.NewApplier().Apply(ctx, item)
	require.ErrorIs(t, err, records.ErrNotFound)
}

func TestApplier_CrossKindTarget(t *testing.T) {
	ctx := context.Background()

	t.Run("delete of another kind is not found", func(t *testing.T) {
		app, _ := newTestApp(t)
		contact := seed(t, app, records.KindContact, map[string]any{"name": "Acme"})

		item := classify(t, proposal.RawProposal{
			Type:      "task",
			Operation: "delete",
			Data:      map[string]any{"id": contact.ID},
		})

		_, err := app.NewApplier().Apply(ctx, item)
		require.ErrorIs(t, err, records.ErrNotFound)

		got, err := app.Records.Get(ctx, app.Actor, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, records.KindContact, got.Kind)
	})

	t.Run("edit of another kind leaves the record alone", func(t *testing.T) {
		app, _ := newTestApp(t)
		contact := seed(t, app, records.KindContact, map[string]any{"name": "Acme"})

		item := classify(t, proposal.RawProposal{
			Type:      "note",
			Operation: "edit",
			Data:      map[string]any{"id": contact.ID, "title": "Hijacked", "content": "note body"},
		})

		_, err := app.NewApplier().Apply(ctx, item)
		require.ErrorIs(t, err, records.ErrNotFound)

		got, err := app.Records.Get(ctx, app.Actor, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Title)
		assert.Equal(t, int64(1), got.Version)
		assert.NotContains(t, got.Fields, "content")
	})
}

func TestApplier_UnknownType(t *testing.T) {
	app, _ := newTestApp(t)

	item := classify(t, proposal.RawProposal{Type: "create_widget", Data: map[string]any{"title": "Gizmo"}})

	_, err := app.NewApplier().Apply(context.Background(), item)
	var verr *records.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestApplier_BulkCreatePartial(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)

	item := classify(t, proposal.RawProposal{
		Type: "create_multiple_tasks",
		Data: map[string]any{"items": []any{
			map[string]any{"title": "Order rebar"},
			map[string]any{"title": "Book crane", "priority": "asap"},
			map[string]any{"title": "Pour footing"},
		}},
	})

	res, err := app.NewApplier().Apply(ctx, item)
	require.NoError(t, err)
	require.Len(t, res.Targets, 3)

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "1", failed[0].Key)
	assert.Equal(t, "Book crane", failed[0].Title)

	list, err := app.Records.List(ctx, app.Actor, records.KindTask, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestApplier_BulkRename(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)
	a := seed(t, app, records.KindShopping, map[string]any{"name": "nails"})
	b := seed(t, app, records.KindShopping, map[string]any{"name": "screws"})

	item := classify(t, proposal.RawProposal{
		Type:      "shopping",
		Operation: "bulkEdit",
		TitleChanges: []proposal.TitleChange{
			{ID: a.ID, CurrentTitle: "nails", NewTitle: "Nails (2in)"},
			{ID: b.ID, CurrentTitle: "screws", NewTitle: "Screws (deck)"},
		},
	})

	res, err := app.NewApplier().Apply(ctx, item)
	require.NoError(t, err)
	assert.Empty(t, res.Failed())

	got, err := app.Records.Get(ctx, app.Actor, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Screws (deck)", got.Title)
}

// A single confirm followed by confirm-all drains the batch into records.
func TestSession_ConfirmAgainstStore(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t)

	batch, rejected := app.Review.Classify(ctx, "turn-1", []proposal.RawProposal{
		{Type: "create_task", Data: map[string]any{"title": "Buy lumber"}},
		{Type: "create_note", Data: map[string]any{"title": "Site visit summary"}},
		{Type: "create_multiple_shopping_items", Data: map[string]any{"items": []any{
			map[string]any{"name": "Nails"},
			map[string]any{"name": "Screws"},
		}}},
	})
	require.Empty(t, rejected)
	assert.Equal(t, "1 task to create, 1 note to create, 1 shopping to create", batch.Summarize())

	session := app.NewSession(batch, nil, 1200, 800)
	first := batch.Items()[0]

	require.NoError(t, session.ConfirmItem(ctx, first.ID))
	assert.Equal(t, 2, session.Count())

	res, err := session.ConfirmAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, review.BulkResult{Total: 2, Processed: 2}, res)
	assert.Equal(t, 0, session.Count())

	list, err := app.Records.List(ctx, app.Actor, "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 4)
}
