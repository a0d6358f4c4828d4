package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	t.Run("survey questions", func(t *testing.T) {
		p, err := DecodePayload(EntitySurvey, map[string]any{
			"title":     "Site feedback",
			"questions": []any{"How was access?", "Any hazards?"},
		})
		require.NoError(t, err)

		assert.Equal(t, EntitySurvey, p.Kind())
		assert.Equal(t, []any{"How was access?", "Any hazards?"}, p.Fields()["questions"])
		assert.Empty(t, p.Missing())
	})

	t.Run("fields drop empty values and id", func(t *testing.T) {
		p, err := DecodePayload(EntityContact, map[string]any{"id": "c-1", "name": "Acme", "email": ""})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"name": "Acme"}, p.Fields())
		assert.Equal(t, "c-1", payloadID(p))
	})

	t.Run("empty data decodes to zero value", func(t *testing.T) {
		p, err := DecodePayload(EntityNote, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"title"}, p.Missing())
	})

	t.Run("unknown type keeps raw bag", func(t *testing.T) {
		raw := map[string]any{"id": "w-1", "title": "Gizmo", "size": float64(3)}
		p, err := DecodePayload(EntityType("widget"), raw)
		require.NoError(t, err)

		assert.Equal(t, EntityType("widget"), p.Kind())
		assert.Equal(t, map[string]any{"title": "Gizmo", "size": float64(3)}, p.Fields())
		assert.Equal(t, "w-1", payloadID(p))
	})

	t.Run("type mismatch errors", func(t *testing.T) {
		_, err := DecodePayload(EntityTask, map[string]any{"title": 12})
		require.Error(t, err)
	})
}

func TestEntityType_Label(t *testing.T) {
	assert.Equal(t, "shopping item", EntityShopping.Label())
	assert.Equal(t, "shopping section", EntityShoppingSection.Label())
	assert.Equal(t, "gadget", EntityType("gadget").Label())
	assert.True(t, EntityContact.Known())
	assert.False(t, EntityType("gadget").Known())
}
