package eventbus

import (
	"fmt"

	"github.com/colonyops/vibeplanner/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeProposalStaged(func(p ProposalStagedPayload) {
		r.notifyf(notify.LevelInfo, "new %s proposal staged for review", p.Type)
	})

	r.bus.SubscribeRecordDeleted(func(p RecordDeletedPayload) {
		r.notifyf(notify.LevelInfo, "%s %s deleted", p.Kind, p.RecordID)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
