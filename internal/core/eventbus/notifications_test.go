package eventbus_test

import (
	"testing"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/eventbus"
	"github.com/colonyops/vibeplanner/internal/core/eventbus/testbus"
	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestNotificationPayload(tb *testbus.Bus, t *testing.T) eventbus.NotificationPublishedPayload {
	t.Helper()
	tb.AssertPublished(t, eventbus.EventNotificationPublished)

	var payload eventbus.NotificationPublishedPayload
	for _, e := range tb.Events() {
		if e.Event != eventbus.EventNotificationPublished {
			continue
		}
		p, ok := e.Payload.(eventbus.NotificationPublishedPayload)
		require.True(t, ok)
		payload = p
	}

	return payload
}

func TestNotificationRouter_ProposalStaged(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishProposalStaged(eventbus.ProposalStagedPayload{TeamID: "team-1", TurnID: "turn-1", Type: "create_task"})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Contains(t, p.Message, "create_task")
}

func TestNotificationRouter_RecordDeleted(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishRecordDeleted(eventbus.RecordDeletedPayload{RecordID: "rec-9", Kind: records.KindContact})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Contains(t, p.Message, "rec-9")
}

func TestNotificationRouter_RecordCreated_is_silent(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishRecordCreated(eventbus.RecordCreatedPayload{Record: &records.Record{ID: "rec-1"}})
	tb.AssertPublished(t, eventbus.EventRecordCreated)
	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 50*time.Millisecond)
}

func TestNotificationRouter_NilBus(t *testing.T) {
	var r *eventbus.NotificationRouter
	assert.NotPanics(t, r.Register)
}

func TestEventBus_subscriber_panic_is_recovered(t *testing.T) {
	tb := testbus.New(t)

	recovered := make(chan eventbus.Event, 1)
	tb.OnPanic(func(e eventbus.Event, _ any, _ any) {
		recovered <- e
	})
	tb.SubscribeTuiStopped(func(eventbus.TUIStoppedPayload) {
		panic("boom")
	})

	tb.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	tb.PublishTuiStarted(eventbus.TUIStartedPayload{})

	tb.AssertPublished(t, eventbus.EventTuiStarted)
	assert.Equal(t, eventbus.EventTuiStopped, <-recovered)
}
