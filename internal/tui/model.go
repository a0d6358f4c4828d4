// Package tui implements the terminal review workspace: a paginated card
// grid over a review session where each AI proposal is confirmed or
// rejected.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/vibeplanner/internal/core/inbox"
	"github.com/colonyops/vibeplanner/internal/core/notify"
	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/review"
	"github.com/colonyops/vibeplanner/internal/core/styles"
	tuinotify "github.com/colonyops/vibeplanner/internal/tui/notify"
)

// Loader fetches the newest staged batch.
type Loader func(ctx context.Context) (*review.Batch, []proposal.Rejected, error)

// Options configures the review workspace.
type Options struct {
	Session *review.Session
	// Bus receives the session's outcome notifications. Its subscribers
	// feed the toast stack.
	Bus *tuinotify.Bus
	// Load is optional; without it the reload key is inert.
	Load Loader

	CellWidthPx   int
	CellHeightPx  int
	MarkdownStyle string

	// Warnings are shown as toasts on start.
	Warnings []string
	Logger   zerolog.Logger
}

type (
	confirmResultMsg struct {
		id  proposal.ID
		err error
	}
	confirmAllResultMsg struct {
		res review.BulkResult
		err error
	}
	batchLoadedMsg struct {
		batch    *review.Batch
		rejected []proposal.Rejected
		err      error
	}
)

// Model is the Bubble Tea model for the review workspace.
type Model struct {
	ctx     context.Context
	session *review.Session
	load    Loader
	log     zerolog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	pager   paginator.Model

	toasts   *ToastController
	buffer   *NotificationBuffer
	markdown *markdownRenderer
	prompt   *confirmPrompt
	warnings []string

	cellW, cellH  int
	width, height int
	cursor        int
	pending       int
	spinning      bool
	loading       bool
	showDetail    bool
	quitting      bool
}

// New creates the review workspace model. ctx bounds every apply started
// from the UI.
func New(ctx context.Context, opts Options) *Model {
	buffer := NewNotificationBuffer()
	if opts.Bus != nil {
		opts.Bus.Subscribe(buffer.Push)
	}

	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.ActiveDot = styles.DotActiveStyle.Render(styles.IconDotActive)
	pager.InactiveDot = styles.DotInactiveStyle.Render(styles.IconDotInactive)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.CardBusyStyle

	return &Model{
		ctx:      ctx,
		session:  opts.Session,
		load:     opts.Load,
		log:      opts.Logger.With().Str("component", "tui").Logger(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		pager:    pager,
		toasts:   NewToastController(),
		buffer:   buffer,
		markdown: newMarkdownRenderer(opts.MarkdownStyle),
		warnings: opts.Warnings,
		cellW:    max(opts.CellWidthPx, 1),
		cellH:    max(opts.CellHeightPx, 1),
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.buffer.WaitForSignal()}

	for _, w := range m.warnings {
		m.toasts.Push(notify.Notification{Level: notify.LevelWarning, Message: w})
	}
	if cmd := m.startToastTick(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	if m.session.Count() == 0 && m.load != nil {
		m.loading = true
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.session.Resize(msg.Width*m.cellW, msg.Height*m.cellH)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case confirmResultMsg:
		m.pending--
		if errors.Is(msg.err, review.ErrProcessing) {
			m.toasts.Push(notify.Notification{Level: notify.LevelWarning, Message: "Confirm all is still running"})
			return m, m.startToastTick()
		}
		m.clampCursor()
		return m, nil

	case confirmAllResultMsg:
		m.pending--
		if msg.err != nil && !errors.Is(msg.err, review.ErrProcessing) {
			m.log.Error().Err(msg.err).Msg("confirm all")
		}
		m.clampCursor()
		return m, nil

	case batchLoadedMsg:
		return m, m.handleLoaded(msg)

	case drainNotificationsMsg:
		items, dropped := m.buffer.Drain()
		for _, n := range items {
			m.toasts.Push(n)
		}
		if dropped > 0 {
			m.toasts.Push(notify.Notification{
				Level:   notify.LevelWarning,
				Message: fmt.Sprintf("%d notifications dropped", dropped),
			})
		}
		return m, tea.Batch(m.buffer.WaitForSignal(), m.startToastTick())

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.prompt != nil {
		cmd := m.prompt.Update(msg)
		if m.prompt.Done() {
			m.prompt = nil
		}
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.buffer.Close()
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Dismiss):
		switch {
		case m.help.ShowAll:
			m.help.ShowAll = false
		case m.showDetail:
			m.showDetail = false
		default:
			m.toasts.Dismiss()
		}

	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail

	case key.Matches(msg, m.keys.Up):
		if m.cursor-m.columns() >= 0 {
			m.cursor -= m.columns()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor+m.columns() < len(m.session.Visible()) {
			m.cursor += m.columns()
		}

	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		} else if m.session.PrevPage() {
			m.cursor = len(m.session.Visible()) - 1
		}

	case key.Matches(msg, m.keys.Right):
		if m.cursor+1 < len(m.session.Visible()) {
			m.cursor++
		} else if m.session.NextPage() {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.session.NextPage() {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.session.PrevPage() {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Confirm):
		card, ok := m.selected()
		if !ok || card.InFlight {
			return nil
		}
		return m.confirmCmd(card.Item.ID)

	case key.Matches(msg, m.keys.Reject):
		if card, ok := m.selected(); ok {
			m.session.RejectID(card.Item.ID)
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.ConfirmAll):
		if m.session.Count() == 0 || m.session.IsProcessing() {
			return nil
		}
		return m.confirmAllCmd()

	case key.Matches(msg, m.keys.RejectAll):
		n := m.session.Count()
		if n == 0 {
			return nil
		}
		m.prompt = newConfirmPrompt(fmt.Sprintf("Reject all %d pending proposals?", n), func() tea.Cmd {
			m.session.RejectAll()
			m.clampCursor()
			return nil
		})

	case key.Matches(msg, m.keys.Reload):
		if m.load == nil || m.loading {
			return nil
		}
		m.loading = true
		return tea.Batch(m.loadCmd(), m.startSpinner())
	}

	return nil
}

func (m *Model) handleLoaded(msg batchLoadedMsg) tea.Cmd {
	m.loading = false

	switch {
	case errors.Is(msg.err, inbox.ErrEmpty):
		m.toasts.Push(notify.Notification{Level: notify.LevelInfo, Message: "No new proposals"})
		return m.startToastTick()
	case msg.err != nil:
		m.log.Error().Err(msg.err).Msg("load proposals")
		m.toasts.Push(notify.Notification{Level: notify.LevelError, Message: "Could not load proposals: " + msg.err.Error()})
		return m.startToastTick()
	}

	// Applies still running against the old batch finish; Load discards
	// their effect on the new one.
	m.session.Load(msg.batch)
	m.cursor = 0
	m.showDetail = false

	if n := len(msg.rejected); n > 0 {
		m.toasts.Push(notify.Notification{
			Level:   notify.LevelWarning,
			Message: fmt.Sprintf("%d proposal(s) could not be read and were skipped", n),
		})
		return m.startToastTick()
	}
	return nil
}

func (m *Model) confirmCmd(id proposal.ID) tea.Cmd {
	m.pending++
	ctx := m.ctx
	return tea.Batch(func() tea.Msg {
		return confirmResultMsg{id: id, err: m.session.ConfirmItem(ctx, id)}
	}, m.startSpinner())
}

func (m *Model) confirmAllCmd() tea.Cmd {
	m.pending++
	ctx := m.ctx
	return tea.Batch(func() tea.Msg {
		res, err := m.session.ConfirmAll(ctx)
		return confirmAllResultMsg{res: res, err: err}
	}, m.startSpinner())
}

func (m *Model) loadCmd() tea.Cmd {
	load, ctx := m.load, m.ctx
	return func() tea.Msg {
		batch, rejected, err := load(ctx)
		return batchLoadedMsg{batch: batch, rejected: rejected, err: err}
	}
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) startToastTick() tea.Cmd {
	if m.toasts.Ticking() || !m.toasts.HasToasts() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

func (m *Model) busy() bool {
	return m.pending > 0 || m.loading
}

func (m *Model) selected() (review.Card, bool) {
	cards := m.session.Visible()
	if m.cursor < 0 || m.cursor >= len(cards) {
		return review.Card{}, false
	}
	return cards[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.session.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
