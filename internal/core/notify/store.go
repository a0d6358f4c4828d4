// Package notify defines user-facing notifications and their persistence.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n Notification) String() string {
	return fmt.Sprintf("%s [%s] %s", n.CreatedAt.Format(time.DateTime), n.Level, n.Message)
}

// Store persists notifications to durable storage.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	// List returns notifications newest first. A limit of 0 returns all.
	List(ctx context.Context, limit int) ([]Notification, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
