package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/core/config"
	"github.com/colonyops/vibeplanner/internal/core/eventbus/testbus"
	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/internal/data/db"
	"github.com/colonyops/vibeplanner/internal/data/stores"
	"github.com/colonyops/vibeplanner/internal/printer"
	"github.com/colonyops/vibeplanner/internal/vibe"
)

type harness struct {
	app    *vibe.App
	flags  *Flags
	stdout bytes.Buffer
	status bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Actor = config.ActorConfig{UserID: "u-lead", TeamID: "crew-1"}

	tb := testbus.New(t)
	app := vibe.NewApp(&cfg, database, vibe.Stores{
		Records:       stores.NewRecordStore(database),
		Members:       stores.NewMemberStore(database),
		Inbox:         stores.NewInboxStore(database),
		Notifications: stores.NewNotifyStore(database),
	}, tb.EventBus, zerolog.Nop())

	_, err = app.Teams.Bootstrap(context.Background(), app.Actor)
	require.NoError(t, err)

	return &harness{
		app:   app,
		flags: &Flags{Config: &cfg, ConfigPath: filepath.Join(t.TempDir(), "config.yaml")},
	}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.status.Reset()

	root := &cli.Command{Name: "vibeplanner", Writer: &h.stdout, ErrWriter: &h.status}
	root = NewApplyCmd(h.flags, h.app).Register(root)
	root = NewRecordsCmd(h.flags, h.app).Register(root)
	root = NewTeamCmd(h.flags, h.app).Register(root)
	root = NewNotificationsCmd(h.flags, h.app).Register(root)
	root = NewReviewCmd(h.flags, h.app).Register(root)
	root = NewConfigValidateCmd(h.flags).Register(root)
	root = NewDoctorCmd(h.flags, h.app).Register(root)

	ctx := printer.WithContext(context.Background(), printer.New(&h.status))
	return root.Run(ctx, append([]string{"vibeplanner"}, args...))
}

func writeProposals(t *testing.T, raws ...proposal.RawProposal) string {
	t.Helper()
	data, err := json.Marshal(raws)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "proposals.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestApplyCmd_JSON(t *testing.T) {
	h := newHarness(t)
	path := writeProposals(t,
		proposal.RawProposal{Type: "create_task", Data: map[string]any{"title": "Pour slab"}},
		proposal.RawProposal{Type: "create_multiple_notes", Data: map[string]any{"items": []any{
			map[string]any{"title": "Footings"},
			map[string]any{"title": "Rebar"},
		}}},
		proposal.RawProposal{Type: "update_task", Data: map[string]any{"title": "no id"}},
	)

	require.NoError(t, h.run(t, "apply", "--from", path, "--yes", "--json"))

	var out applyResult
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, 1, out.Rejected)
	assert.Empty(t, out.Failures)
	assert.Empty(t, out.Remaining)

	list, err := h.app.Records.List(context.Background(), h.app.Actor, "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestApplyCmd_TextReportsSkipped(t *testing.T) {
	h := newHarness(t)
	path := writeProposals(t,
		proposal.RawProposal{Type: "create_contact", Data: map[string]any{"name": "Dana"}},
		proposal.RawProposal{Type: " "},
	)

	require.NoError(t, h.run(t, "apply", "--from", path, "--yes"))

	status := h.status.String()
	assert.Contains(t, status, "skipped proposal 1")
	assert.Contains(t, status, "1 of 1 processed")
}

func TestApplyCmd_TextNamesFailures(t *testing.T) {
	h := newHarness(t)
	path := writeProposals(t, proposal.RawProposal{
		Type:         "task",
		Operation:    "delete",
		OriginalItem: map[string]any{"id": "missing", "title": "Tear down shed"},
	})

	require.Error(t, h.run(t, "apply", "--from", path, "--yes"))

	status := h.status.String()
	assert.Contains(t, status, "Tear down shed: ")
	assert.Contains(t, status, "not found")
}

func TestRecordsCmd_List(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Records.Create(ctx, h.app.Actor, records.KindTask, map[string]any{"title": "Order rebar"})
	require.NoError(t, err)
	_, err = h.app.Records.Create(ctx, h.app.Actor, records.KindNote, map[string]any{"title": "Site visit"})
	require.NoError(t, err)

	require.NoError(t, h.run(t, "records", "list"))
	table := h.stdout.String()
	assert.Contains(t, table, "KIND")
	assert.Contains(t, table, "Order rebar")
	assert.Contains(t, table, "Site visit")

	require.NoError(t, h.run(t, "records", "list", "--kind", "note", "--json"))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 1)

	var rec records.Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "Site visit", rec.Title)

	require.Error(t, h.run(t, "records", "list", "--kind", "invoice"))
}

func TestRecordsCmd_Show(t *testing.T) {
	h := newHarness(t)
	rec, err := h.app.Records.Create(context.Background(), h.app.Actor, records.KindContact, map[string]any{"name": "Dana"})
	require.NoError(t, err)

	require.NoError(t, h.run(t, "records", "show", rec.ID))
	assert.Contains(t, h.stdout.String(), `"name": "Dana"`)

	require.Error(t, h.run(t, "records", "show"))
}

func TestTeamCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "team", "add", "u-crew"))
	require.NoError(t, h.run(t, "team", "list"))
	assert.Equal(t, []string{"u-crew", "u-lead"}, sortedLines(h.stdout.String()))

	require.NoError(t, h.run(t, "team", "remove", "u-crew"))
	require.NoError(t, h.run(t, "team", "list", "--json"))
	assert.Contains(t, h.stdout.String(), `"members":["u-lead"]`)

	require.Error(t, h.run(t, "team", "remove", "u-lead"), "last member stays")
}

func TestNotificationsCmd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Notifications.Save(ctx, notify.Notification{Level: notify.LevelInfo, Message: "Created task Pour slab"})
	require.NoError(t, err)

	require.NoError(t, h.run(t, "notifications", "list"))
	assert.Contains(t, h.stdout.String(), "Created task Pour slab")

	require.NoError(t, h.run(t, "notifications", "clear"))
	count, err := h.app.Notifications.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReviewCmd_JSONLeavesTurnPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.app.Review.Stage(ctx, "turn-1", proposal.RawProposal{
		Type: "create_task", Data: map[string]any{"title": "Book crane"},
	}))

	require.NoError(t, h.run(t, "review", "--json"))

	var view itemView
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &view))
	assert.Equal(t, "turn-1", view.Turn)
	assert.Equal(t, "Book crane", view.Title)
	assert.Equal(t, proposal.OpCreate, view.Operation)

	batch, _, err := h.app.Review.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Count())
}

func TestConfigValidateCmd_JSON(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "config", "validate", "--format", "json"))

	var out validateOutput
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	assert.True(t, out.Valid)
}

func TestDoctorCmd_JSON(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Review.Stage(context.Background(), "turn-1", proposal.RawProposal{
		Type: "create_note", Data: map[string]any{"title": "Walkthrough"},
	}))

	require.NoError(t, h.run(t, "doctor", "--format", "json"))

	var out struct {
		Healthy bool `json:"healthy"`
		Checks  []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	assert.True(t, out.Healthy)

	names := make([]string, len(out.Checks))
	for i, c := range out.Checks {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Configuration", "Database", "Team", "Inbox"}, names)
}

func TestDoctorCmd_Text(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "doctor"))
	status := h.status.String()
	assert.Contains(t, status, "VibePlanner Doctor")
	assert.Contains(t, status, "0 failed")
}

func sortedLines(s string) []string {
	lines := strings.Fields(s)
	slices.Sort(lines)
	return lines
}
