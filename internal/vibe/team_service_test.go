package vibe

import (
	"context"
	"testing"

	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService(t *testing.T) {
	ctx := context.Background()

	t.Run("bootstrap only applies to empty teams", func(t *testing.T) {
		app, _ := newTestApp(t)

		added, err := app.Teams.Bootstrap(ctx, Actor{UserID: "u-late", TeamID: "crew-1"})
		require.NoError(t, err)
		assert.False(t, added)
	})

	t.Run("members add and remove", func(t *testing.T) {
		app, _ := newTestApp(t)

		require.NoError(t, app.Teams.Add(ctx, app.Actor, "u-helper"))

		members, err := app.Teams.List(ctx, app.Actor)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"u-lead", "u-helper"}, members)

		require.NoError(t, app.Teams.Remove(ctx, app.Actor, "u-helper"))
		require.ErrorIs(t, app.Teams.Remove(ctx, app.Actor, "u-helper"), records.ErrNotFound)
	})

	t.Run("blank user ids are rejected", func(t *testing.T) {
		app, _ := newTestApp(t)

		err := app.Teams.Add(ctx, app.Actor, "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user id is required")
	})

	t.Run("last member stays", func(t *testing.T) {
		app, _ := newTestApp(t)

		err := app.Teams.Remove(ctx, app.Actor, "u-lead")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "last team member")
	})

	t.Run("outsiders cannot change membership", func(t *testing.T) {
		app, _ := newTestApp(t)

		err := app.Teams.Add(ctx, Actor{UserID: "u-stranger", TeamID: "crew-1"}, "u-friend")
		require.ErrorIs(t, err, records.ErrPermissionDenied)
	})
}
