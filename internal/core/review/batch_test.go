package review

import (
	"testing"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id proposal.ID, typ proposal.EntityType, op proposal.Operation, title string) proposal.Item {
	it := proposal.Item{ID: id, Type: typ, Operation: op}
	switch typ {
	case proposal.EntityTask:
		it.Payload = proposal.TaskFields{Title: title}
	case proposal.EntityNote:
		it.Payload = proposal.NoteFields{Title: title}
	case proposal.EntityContact:
		it.Payload = proposal.ContactFields{Name: title}
	default:
		it.Payload = proposal.UnknownFields{Type: typ, Raw: map[string]any{"title": title}}
	}
	return it
}

func TestBatch_Summarize(t *testing.T) {
	t.Run("groups by type and verb", func(t *testing.T) {
		b := NewBatch("", []proposal.Item{
			item(1, proposal.EntityTask, proposal.OpCreate, "a"),
			item(2, proposal.EntityTask, proposal.OpCreate, "b"),
			item(3, proposal.EntityNote, proposal.OpEdit, "c"),
		})

		got := b.Summarize()
		assert.Contains(t, got, "2 tasks to create")
		assert.Contains(t, got, "1 note to update")
		assert.Equal(t, "2 tasks to create, 1 note to update", got)
	})

	t.Run("bulk and single operations group apart", func(t *testing.T) {
		b := NewBatch("", []proposal.Item{
			item(1, proposal.EntityTask, proposal.OpBulkCreate, "a"),
			item(2, proposal.EntityTask, proposal.OpCreate, "b"),
			item(3, proposal.EntityContact, proposal.OpDelete, "c"),
			item(4, proposal.EntityTask, proposal.OpBulkEdit, "d"),
			item(5, proposal.EntityTask, proposal.OpBulkCreate, "e"),
		})

		assert.Equal(t, "2 tasks to create, 1 task to create, 1 contact to delete, 1 task to update", b.Summarize())
	})

	t.Run("literal plural suffix", func(t *testing.T) {
		b := NewBatch("", []proposal.Item{
			item(1, proposal.EntityShopping, proposal.OpCreate, "a"),
			item(2, proposal.EntityShopping, proposal.OpCreate, "b"),
		})

		assert.Equal(t, "2 shoppings to create", b.Summarize())
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.Empty(t, NewBatch("", nil).Summarize())
	})
}

func TestBatch_RemoveAt(t *testing.T) {
	b := NewBatch("turn-1", []proposal.Item{
		item(1, proposal.EntityTask, proposal.OpCreate, "a"),
		item(2, proposal.EntityTask, proposal.OpCreate, "b"),
		item(3, proposal.EntityTask, proposal.OpCreate, "c"),
	})

	require.True(t, b.RemoveAt(1))
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, 1, b.IndexOf(3), "later items shift down")

	assert.False(t, b.RemoveAt(2))
	assert.False(t, b.RemoveAt(-1))
	assert.Equal(t, 2, b.Count())
}

func TestBatch_Identity(t *testing.T) {
	b := NewBatch("", []proposal.Item{
		item(10, proposal.EntityNote, proposal.OpCreate, "a"),
		item(11, proposal.EntityNote, proposal.OpCreate, "b"),
	})

	assert.NotEmpty(t, b.Turn())

	got, ok := b.Get(11)
	require.True(t, ok)
	assert.Equal(t, "b", got.Headline())

	got.Problem = "edited"
	require.True(t, b.Replace(got))
	again, _ := b.Get(11)
	assert.Equal(t, "edited", again.Problem)

	assert.True(t, b.Remove(10))
	assert.False(t, b.Remove(10))
	assert.Equal(t, 0, b.IndexOf(11))

	assert.False(t, b.Replace(item(99, proposal.EntityNote, proposal.OpCreate, "x")))

	b.Clear()
	assert.Equal(t, 0, b.Count())
}

func TestBatch_Items_returns_copy(t *testing.T) {
	b := NewBatch("", []proposal.Item{item(1, proposal.EntityTask, proposal.OpCreate, "a")})

	items := b.Items()
	items[0].Problem = "mutated"

	got, _ := b.Get(1)
	assert.Empty(t, got.Problem)
}
