package vibe

import (
	"context"
	"testing"

	"github.com/colonyops/vibeplanner/internal/core/config"
	"github.com/colonyops/vibeplanner/internal/core/eventbus/testbus"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/data/db"
	"github.com/colonyops/vibeplanner/internal/data/stores"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// newTestApp wires an App over a fresh database with the configured actor
// already a member of its team.
func newTestApp(t *testing.T) (*App, *testbus.Bus) {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Actor = config.ActorConfig{UserID: "u-lead", TeamID: "crew-1"}

	tb := testbus.New(t)
	app := NewApp(&cfg, database, Stores{
		Records:       stores.NewRecordStore(database),
		Members:       stores.NewMemberStore(database),
		Inbox:         stores.NewInboxStore(database),
		Notifications: stores.NewNotifyStore(database),
	}, tb.EventBus, zerolog.Nop())

	added, err := app.Teams.Bootstrap(context.Background(), app.Actor)
	require.NoError(t, err)
	require.True(t, added)

	return app, tb
}

// seed creates a record as the app's actor.
func seed(t *testing.T, app *App, kind records.Kind, fields map[string]any) records.Record {
	t.Helper()
	rec, err := app.Records.Create(context.Background(), app.Actor, kind, fields)
	require.NoError(t, err)
	return rec
}
