package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
)

func mustTool(t *testing.T, name string) Tool {
	t.Helper()
	tool, ok := Lookup(name)
	require.True(t, ok, "tool %s not in catalog", name)
	return tool
}

func TestCatalog_NamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range Catalog() {
		assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
}

// Every create tool must classify into its canonical type without an
// explicit operation.
func TestCatalog_CreateToolsClassify(t *testing.T) {
	tests := []struct {
		tool string
		args map[string]any
		want proposal.EntityType
		op   proposal.Operation
	}{
		{tool: "create_task", args: map[string]any{"title": "Order rebar"}, want: proposal.EntityTask, op: proposal.OpCreate},
		{tool: "create_note", args: map[string]any{"title": "Site visit"}, want: proposal.EntityNote, op: proposal.OpCreate},
		{tool: "create_shopping_item", args: map[string]any{"name": "Nails", "quantity": float64(3)}, want: proposal.EntityShopping, op: proposal.OpCreate},
		{tool: "create_survey", args: map[string]any{"title": "Lunch", "questions": []any{"Pizza?"}}, want: proposal.EntitySurvey, op: proposal.OpCreate},
		{tool: "create_contact", args: map[string]any{"name": "Acme"}, want: proposal.EntityContact, op: proposal.OpCreate},
		{tool: "create_multiple_tasks", args: map[string]any{"items": []any{map[string]any{"title": "A"}}}, want: proposal.EntityTask, op: proposal.OpBulkCreate},
		{tool: "create_multiple_shopping_items", args: map[string]any{"items": []any{map[string]any{"name": "A"}}}, want: proposal.EntityShopping, op: proposal.OpBulkCreate},
		{tool: "create_record", args: map[string]any{"type": "shoppingSection", "fields": map[string]any{"name": "Hardware"}}, want: proposal.EntityShoppingSection, op: proposal.OpCreate},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			raw, err := mustTool(t, tt.tool).Proposal(tt.args)
			require.NoError(t, err)

			item, err := proposal.Classify(raw, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Type)
			assert.Equal(t, tt.op, item.Operation)
			assert.False(t, item.Flagged(), item.Problem)
		})
	}
}

func TestTool_UpdateRecord(t *testing.T) {
	raw, err := mustTool(t, "update_record").Proposal(map[string]any{
		"type":     "task",
		"id":       "rec-1",
		"updates":  map[string]any{"priority": "high"},
		"original": map[string]any{"title": "Frame walls", "version": float64(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, "edit", raw.Operation)
	assert.Equal(t, "rec-1", raw.OriginalItem["id"])

	item, err := proposal.Classify(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, proposal.OpEdit, item.Operation)
	assert.Equal(t, int64(2), item.ExpectedVersion())
}

func TestTool_DeleteRecord(t *testing.T) {
	raw, err := mustTool(t, "delete_record").Proposal(map[string]any{"type": "note", "id": "rec-9", "title": "Old"})
	require.NoError(t, err)

	assert.Equal(t, "delete", raw.Operation)
	assert.Equal(t, map[string]any{"id": "rec-9", "title": "Old"}, raw.OriginalItem)
}

func TestTool_RenameRecords(t *testing.T) {
	raw, err := mustTool(t, "rename_records").Proposal(map[string]any{
		"type": "shopping",
		"changes": []any{
			map[string]any{"id": "a", "currentTitle": "nails", "newTitle": "Nails"},
			map[string]any{"id": "b", "currentTitle": "screws", "newTitle": "Screws"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "bulkEdit", raw.Operation)
	require.Len(t, raw.TitleChanges, 2)
	assert.Equal(t, proposal.TitleChange{ID: "b", CurrentTitle: "screws", NewTitle: "Screws"}, raw.TitleChanges[1])
}

func TestTool_ProposalArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{name: "missing required", tool: "create_task", args: map[string]any{}, want: "missing title"},
		{name: "empty required", tool: "create_contact", args: map[string]any{"name": ""}, want: "missing name"},
		{name: "wrong type", tool: "create_shopping_item", args: map[string]any{"name": "Nails", "quantity": "three"}, want: "quantity must be a number"},
		{name: "bad enum", tool: "create_task", args: map[string]any{"title": "x", "priority": "asap"}, want: "priority must be one of"},
		{name: "unknown record type", tool: "delete_record", args: map[string]any{"type": "widget", "id": "1"}, want: "type must be one of"},
		{name: "array expected", tool: "create_multiple_notes", args: map[string]any{"items": "nope"}, want: "items must be an array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mustTool(t, tt.tool).Proposal(tt.args)
			require.ErrorIs(t, err, ErrInvalidArguments)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTool_CreateCopiesArgs(t *testing.T) {
	args := map[string]any{"title": "Order rebar"}
	raw, err := mustTool(t, "create_task").Proposal(args)
	require.NoError(t, err)

	raw.Data["title"] = "changed"
	assert.Equal(t, "Order rebar", args["title"])
}
