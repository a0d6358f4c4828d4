// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within vibeplanner.
package eventbus

import (
	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/records"
)

// Event names a published event type.
type Event string

// Keep list sorted A-Z.
const (
	EventNotificationPublished Event = "notification.published"
	EventProposalStaged        Event = "proposal.staged"
	EventRecordCreated         Event = "record.created"
	EventRecordDeleted         Event = "record.deleted"
	EventRecordUpdated         Event = "record.updated"
	EventTuiStarted            Event = "tui.started"
	EventTuiStopped            Event = "tui.stopped"
)

// NotificationPublishedPayload is emitted when a user-facing notification is raised.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// ProposalStagedPayload is emitted when an AI surface stages a proposal.
type ProposalStagedPayload struct {
	TeamID string
	TurnID string
	Type   string
}

// RecordCreatedPayload is emitted after a record is persisted.
type RecordCreatedPayload struct {
	Record *records.Record
}

// RecordUpdatedPayload is emitted after a record is updated.
type RecordUpdatedPayload struct {
	Record          *records.Record
	PreviousVersion int64
}

// RecordDeletedPayload is emitted after a record is deleted.
type RecordDeletedPayload struct {
	TeamID   string
	RecordID string
	Kind     records.Kind
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
