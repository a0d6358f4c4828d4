package stores

import (
	"context"
	"testing"

	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemberStore(openTestDB(t))

	ok, err := store.IsMember(ctx, "team-1", "ana")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddMember(ctx, "team-1", "ana"))
	require.NoError(t, store.AddMember(ctx, "team-1", "ana"), "adding twice is a no-op")
	require.NoError(t, store.AddMember(ctx, "team-1", "ben"))
	require.NoError(t, store.AddMember(ctx, "team-2", "cy"))

	ok, err = store.IsMember(ctx, "team-1", "ana")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsMember(ctx, "team-2", "ana")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err := store.ListMembers(ctx, "team-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ana", "ben"}, members)

	require.NoError(t, store.RemoveMember(ctx, "team-1", "ana"))
	require.ErrorIs(t, store.RemoveMember(ctx, "team-1", "ana"), records.ErrNotFound)

	ok, err = store.IsMember(ctx, "team-1", "ana")
	require.NoError(t, err)
	assert.False(t, ok)
}
