package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/styles"
)

func info(msg string) notify.Notification {
	return notify.Notification{Level: notify.LevelInfo, Message: msg}
}

func TestToastController_Push(t *testing.T) {
	c := NewToastController()

	c.Push(info("hello"))

	require.True(t, c.HasToasts())
	assert.Equal(t, "hello", c.Toasts()[0].notification.Message)
	assert.Equal(t, infoToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_Push_errorsLiveLonger(t *testing.T) {
	c := NewToastController()

	c.Push(notify.Notification{Level: notify.LevelError, Message: "boom"})

	assert.Equal(t, errorToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_Push_foldsRepeats(t *testing.T) {
	c := NewToastController()
	c.Push(info("Rejected task"))
	c.Tick(time.Second)

	c.Push(info("Rejected task"))

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, 1, c.Toasts()[0].repeats)
	assert.Equal(t, infoToastTTL, c.Toasts()[0].remaining, "repeat refreshes ttl")
	assert.Contains(t, renderToasts(c), "×2")
}

func TestToastController_Push_evictsOldest(t *testing.T) {
	c := NewToastController()

	for i := range defaultMaxToasts + 2 {
		c.Push(info(fmt.Sprintf("msg-%d", i)))
	}

	require.Len(t, c.Toasts(), defaultMaxToasts)
	assert.Equal(t, "msg-2", c.Toasts()[0].notification.Message)
}

func TestToastController_Tick_removesExpired(t *testing.T) {
	c := NewToastController()
	c.Push(info("short"))
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "long"})

	c.Tick(infoToastTTL)

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "long", c.Toasts()[0].notification.Message)
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController()
	c.Dismiss()
	assert.False(t, c.HasToasts())

	c.Push(info("first"))
	c.Push(info("second"))
	c.Dismiss()

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "first", c.Toasts()[0].notification.Message)
}

func TestRenderToasts_levels(t *testing.T) {
	tests := []struct {
		level notify.Level
		icon  string
	}{
		{notify.LevelError, styles.IconNotifyError},
		{notify.LevelWarning, styles.IconNotifyWarning},
		{notify.LevelInfo, styles.IconNotifyInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			c := NewToastController()
			c.Push(notify.Notification{Level: tt.level, Message: "test msg"})

			out := renderToasts(c)
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "test msg")
		})
	}
}

func TestWithToasts(t *testing.T) {
	c := NewToastController()
	assert.Equal(t, "body", withToasts("body", c, 80, 24))

	c.Push(info("saved"))
	out := withToasts("body", c, 80, 24)

	assert.True(t, strings.HasPrefix(out, "body\n"))
	assert.Contains(t, out, "saved")
}
