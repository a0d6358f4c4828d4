package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus is an asynchronous in-process bus. Publish enqueues onto a
// bounded buffer and never blocks; events are dropped when it is full.
// Subscribers run sequentially on the goroutine that called Start.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func subscribeTyped[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribeTyped(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) PublishProposalStaged(p ProposalStagedPayload) {
	bus.send(EventProposalStaged, p)
}

func (bus *EventBus) SubscribeProposalStaged(fn func(ProposalStagedPayload)) {
	subscribeTyped(bus, EventProposalStaged, fn)
}

func (bus *EventBus) PublishRecordCreated(p RecordCreatedPayload) {
	bus.send(EventRecordCreated, p)
}

func (bus *EventBus) SubscribeRecordCreated(fn func(RecordCreatedPayload)) {
	subscribeTyped(bus, EventRecordCreated, fn)
}

func (bus *EventBus) PublishRecordUpdated(p RecordUpdatedPayload) {
	bus.send(EventRecordUpdated, p)
}

func (bus *EventBus) SubscribeRecordUpdated(fn func(RecordUpdatedPayload)) {
	subscribeTyped(bus, EventRecordUpdated, fn)
}

func (bus *EventBus) PublishRecordDeleted(p RecordDeletedPayload) {
	bus.send(EventRecordDeleted, p)
}

func (bus *EventBus) SubscribeRecordDeleted(fn func(RecordDeletedPayload)) {
	subscribeTyped(bus, EventRecordDeleted, fn)
}

func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) {
	bus.send(EventTuiStarted, p)
}

func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	subscribeTyped(bus, EventTuiStarted, fn)
}

func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) {
	bus.send(EventTuiStopped, p)
}

func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	subscribeTyped(bus, EventTuiStopped, fn)
}
