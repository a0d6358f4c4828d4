package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/styles"
)

const (
	infoToastTTL      = 4 * time.Second
	errorToastTTL     = 8 * time.Second
	defaultMaxToasts  = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	// repeats counts identical notifications folded into this toast.
	repeats int
}

func toastTTL(level notify.Level) time.Duration {
	if level == notify.LevelInfo {
		return infoToastTTL
	}
	return errorToastTTL
}

// ToastController tracks the toast stack shown over the review grid.
// Warnings and errors outlive info toasts so failures stay readable.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds n to the stack. A repeat of the newest toast refreshes it
// instead of stacking. The oldest toast is evicted past defaultMaxToasts.
func (c *ToastController) Push(n notify.Notification) {
	if last := len(c.toasts) - 1; last >= 0 {
		top := &c.toasts[last]
		if top.notification.Level == n.Level && top.notification.Message == n.Message {
			top.repeats++
			top.remaining = toastTTL(n.Level)
			return
		}
	}

	c.toasts = append(c.toasts, toast{notification: n, remaining: toastTTL(n.Level)})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick ages every toast by d and drops expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

func (c *ToastController) Toasts() []toast {
	return c.toasts
}

func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// renderToasts stacks the toasts oldest first.
func renderToasts(c *ToastController) string {
	toasts := c.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(t toast) string {
	var (
		icon  string
		style lipgloss.Style
	)

	switch t.notification.Level {
	case notify.LevelError:
		icon = styles.IconNotifyError
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		icon = styles.IconNotifyWarning
		style = styles.ToastWarningStyle
	default:
		icon = styles.IconNotifyInfo
		style = styles.ToastInfoStyle
	}

	content := icon + " " + t.notification.Message
	if t.repeats > 0 {
		content += fmt.Sprintf(" (×%d)", t.repeats+1)
	}
	return style.Width(toastWidth).Render(content)
}

// withToasts places the toast stack right-aligned beneath body, padded to
// the terminal height so toasts sit at the bottom of the screen.
func withToasts(body string, c *ToastController, width, height int) string {
	stack := renderToasts(c)
	if stack == "" {
		return body
	}

	stack = lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	gap := height - lipgloss.Height(body) - lipgloss.Height(stack)
	if gap < 1 {
		gap = 1
	}
	return body + strings.Repeat("\n", gap) + stack
}
