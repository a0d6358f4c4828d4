package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/vibeplanner/internal/core/notify"
)

const notificationBufferLimit = 64

type drainNotificationsMsg struct{}

// NotificationBuffer hands notifications raised on apply goroutines to the
// Bubble Tea loop. Pushes never block; past the limit the oldest entries
// are dropped and counted.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []notify.Notification
	dropped       int
	closed        bool
	signal        chan struct{}
	done          chan struct{}
}

func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends n and wakes the waiting drain command.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.notifications = append(b.notifications, n)
	if over := len(b.notifications) - notificationBufferLimit; over > 0 {
		b.notifications = b.notifications[over:]
		b.dropped += over
	}
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns the buffered notifications and how many were dropped since
// the last drain.
func (b *NotificationBuffer) Drain() ([]notify.Notification, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := b.dropped
	b.dropped = 0
	if len(b.notifications) == 0 {
		return nil, dropped
	}

	out := make([]notify.Notification, len(b.notifications))
	copy(out, b.notifications)
	b.notifications = b.notifications[:0]
	return out, dropped
}

// WaitForSignal blocks until notifications are ready or the buffer closes.
// After Close it returns a nil message so the waiting goroutine exits.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return drainNotificationsMsg{}
		case <-b.done:
			return nil
		}
	}
}

// Close stops further pushes and releases any waiting command.
func (b *NotificationBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}
