package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPermissionDenied = errors.New("permission denied")

type applyFunc func(ctx context.Context, item proposal.Item) (Result, error)

func (f applyFunc) Apply(ctx context.Context, item proposal.Item) (Result, error) {
	return f(ctx, item)
}

func succeed(_ context.Context, item proposal.Item) (Result, error) {
	var res Result
	for _, t := range item.Targets() {
		res.Targets = append(res.Targets, TargetResult{Key: t.Key, Title: t.Title, RecordID: "rec-" + t.Key})
	}
	return res, nil
}

type message struct {
	level string
	text  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []message
}

func (n *recordingNotifier) add(level, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, message{level: level, text: fmt.Sprintf(format, args...)})
}

func (n *recordingNotifier) Infof(format string, args ...any)  { n.add("info", format, args...) }
func (n *recordingNotifier) Warnf(format string, args ...any)  { n.add("warn", format, args...) }
func (n *recordingNotifier) Errorf(format string, args ...any) { n.add("error", format, args...) }

func (n *recordingNotifier) level(level string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.msgs {
		if m.level == level {
			out = append(out, m.text)
		}
	}
	return out
}

func newTestSession(items []proposal.Item, applier Applier) (*Session, *recordingNotifier) {
	n := &recordingNotifier{}
	s := NewSession(NewBatch("turn-1", items), applier, n, zerolog.Nop(), Options{Concurrency: 2})
	return s, n
}

func manyItems(n int) []proposal.Item {
	items := make([]proposal.Item, n)
	for i := range items {
		items[i] = item(proposal.ID(i+1), proposal.EntityTask, proposal.OpCreate, fmt.Sprintf("task %d", i+1))
	}
	return items
}

func TestSession_ConfirmAll_partial_failure(t *testing.T) {
	ctx := context.Background()
	items := []proposal.Item{
		item(1, proposal.EntityTask, proposal.OpCreate, "Buy lumber"),
		item(2, proposal.EntityNote, proposal.OpCreate, "Site visit summary"),
	}

	applier := applyFunc(func(ctx context.Context, it proposal.Item) (Result, error) {
		if it.Type == proposal.EntityNote {
			return Result{}, errPermissionDenied
		}
		return succeed(ctx, it)
	})
	s, n := newTestSession(items, applier)

	res, err := s.ConfirmAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, "1 of 2 processed", res.String())
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err, errPermissionDenied)

	remaining := s.Items()
	require.Len(t, remaining, 1)
	assert.Equal(t, proposal.EntityNote, remaining[0].Type)
	assert.Equal(t, proposal.OpCreate, remaining[0].Operation)
	assert.Equal(t, "Site visit summary", remaining[0].Headline())

	assert.Contains(t, n.level("info"), `Created task "Buy lumber"`)
	errs := n.level("error")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Site visit summary")
	assert.Contains(t, errs[0], "permission denied")
	assert.Contains(t, n.level("warn"), "1 of 2 processed")

	assert.False(t, s.IsProcessing())
	assert.False(t, s.InFlight(2))
}

func TestSession_ConfirmItem_last_item_hides_pagination(t *testing.T) {
	s, n := newTestSession([]proposal.Item{
		item(1, proposal.EntityContact, proposal.OpCreate, "Acme Supplies"),
	}, applyFunc(succeed))

	require.NoError(t, s.ConfirmItem(context.Background(), 1))

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.TotalPages())
	assert.False(t, s.ShowPagination())
	assert.Empty(t, s.Visible())
	assert.Equal(t, []string{`Created contact "Acme Supplies"`}, n.level("info"))
}

func TestSession_ConfirmItem_failure_keeps_item(t *testing.T) {
	s, n := newTestSession(manyItems(2), applyFunc(func(context.Context, proposal.Item) (Result, error) {
		return Result{}, errPermissionDenied
	}))

	err := s.ConfirmItem(context.Background(), 1)
	require.ErrorIs(t, err, errPermissionDenied)

	assert.Equal(t, 2, s.Count())
	assert.False(t, s.InFlight(1))
	assert.Len(t, n.level("error"), 1)
}

func TestSession_ConfirmItem_guards(t *testing.T) {
	t.Run("stale id", func(t *testing.T) {
		s, _ := newTestSession(manyItems(1), applyFunc(succeed))
		require.ErrorIs(t, s.ConfirmItem(context.Background(), 42), ErrNotFound)
	})

	t.Run("second confirm while in flight is a no-op", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var calls int
		var mu sync.Mutex

		applier := applyFunc(func(ctx context.Context, it proposal.Item) (Result, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			close(started)
			<-release
			return succeed(ctx, it)
		})
		s, _ := newTestSession(manyItems(1), applier)

		done := make(chan error, 1)
		go func() { done <- s.ConfirmItem(context.Background(), 1) }()
		<-started

		assert.True(t, s.InFlight(1))
		assert.ErrorIs(t, s.ConfirmItem(context.Background(), 1), ErrInFlight)
		assert.False(t, s.RejectID(1), "in-flight card rejects no action")

		visible := s.Visible()
		require.Len(t, visible, 1)
		assert.True(t, visible[0].InFlight)

		close(release)
		require.NoError(t, <-done)

		mu.Lock()
		assert.Equal(t, 1, calls)
		mu.Unlock()
		assert.Equal(t, 0, s.Count())
	})

	t.Run("flagged item never reaches the applier", func(t *testing.T) {
		flagged := item(1, proposal.EntityContact, proposal.OpCreate, "")
		flagged.Problem = "missing required field: name"

		s, n := newTestSession([]proposal.Item{flagged}, applyFunc(func(context.Context, proposal.Item) (Result, error) {
			t.Fatal("applier called for flagged item")
			return Result{}, nil
		}))

		err := s.ConfirmItem(context.Background(), 1)
		require.ErrorIs(t, err, ErrFlagged)
		assert.Equal(t, 1, s.Count())
		assert.Len(t, n.level("error"), 1)

		assert.True(t, s.RejectID(1))
	})
}

func TestSession_ConfirmItem_bulk_partial_narrows_item(t *testing.T) {
	bulk := proposal.Item{
		ID:        1,
		Type:      proposal.EntityTask,
		Operation: proposal.OpBulkEdit,
		Selection: []string{"t-1", "t-2", "t-3"},
		Updates:   map[string]any{"status": "done"},
	}

	applier := applyFunc(func(_ context.Context, it proposal.Item) (Result, error) {
		var res Result
		for _, tg := range it.Targets() {
			tr := TargetResult{Key: tg.Key, Title: tg.Title, RecordID: tg.ID}
			if tg.ID == "t-2" {
				tr.Err = errors.New("record not found")
			}
			res.Targets = append(res.Targets, tr)
		}
		return res, nil
	})
	s, n := newTestSession([]proposal.Item{bulk}, applier)

	err := s.ConfirmItem(context.Background(), 1)
	require.ErrorIs(t, err, ErrPartial)

	remaining := s.Items()
	require.Len(t, remaining, 1)
	assert.Equal(t, []string{"t-2"}, remaining[0].Selection)
	assert.Len(t, n.level("warn"), 1)

	// Retrying fails on the only remaining target; the item is kept as is.
	err = s.ConfirmItem(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPartial)
	require.Equal(t, 1, s.Count())
	assert.Equal(t, []string{"t-2"}, s.Items()[0].Selection)
}

func TestSession_RejectItem_stale_index_is_noop(t *testing.T) {
	s, _ := newTestSession(manyItems(3), applyFunc(succeed))

	require.True(t, s.RejectItem(2))
	assert.False(t, s.RejectItem(2))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, proposal.ID(1), items[0].ID)
	assert.Equal(t, proposal.ID(2), items[1].ID)
}

func TestSession_RejectAll(t *testing.T) {
	s, n := newTestSession(manyItems(5), applyFunc(succeed))

	assert.Equal(t, 5, s.RejectAll())
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, []string{"Rejected 5 items"}, n.level("info"))
	assert.Equal(t, 0, s.RejectAll())
}

func TestSession_page_clamps_after_removal(t *testing.T) {
	// 1920x700 shows 12 per page; 25 items make 3 pages.
	s := NewSession(NewBatch("", manyItems(25)), applyFunc(succeed), nil, zerolog.Nop(), Options{Width: 1920, Height: 700})
	require.Equal(t, 3, s.TotalPages())

	require.True(t, s.NextPage())
	require.True(t, s.NextPage())
	assert.False(t, s.NextPage())
	assert.Equal(t, 2, s.Page())
	assert.Len(t, s.Visible(), 1)

	for range 20 {
		require.True(t, s.RejectItem(0))
	}

	assert.Equal(t, 1, s.TotalPages())
	assert.Equal(t, 0, s.Page())
	assert.False(t, s.ShowPagination())
	assert.Len(t, s.Visible(), 5)
	assert.False(t, s.PrevPage())
}

func TestSession_Resize_reclamps(t *testing.T) {
	s := NewSession(NewBatch("", manyItems(10)), applyFunc(succeed), nil, zerolog.Nop(), Options{Width: 600, Height: 700})
	require.Equal(t, 3, s.TotalPages())
	s.NextPage()
	s.NextPage()

	s.Resize(1920, 1000)
	assert.Equal(t, 16, s.PerPage())
	assert.Equal(t, 0, s.Page())

	cards := s.Visible()
	require.Len(t, cards, 10)
	assert.Equal(t, 9, cards[9].Index)
}

func TestSession_ConfirmAt_uses_current_position(t *testing.T) {
	s, _ := newTestSession(manyItems(3), applyFunc(succeed))

	require.True(t, s.RejectItem(0))
	require.NoError(t, s.ConfirmAt(context.Background(), 0))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, proposal.ID(3), items[0].ID)
	assert.ErrorIs(t, s.ConfirmAt(context.Background(), 5), ErrNotFound)
}

func TestSession_ConfirmAll_blocks_individual_actions(t *testing.T) {
	started := make(chan struct{}, 4)
	release := make(chan struct{})

	applier := applyFunc(func(ctx context.Context, it proposal.Item) (Result, error) {
		started <- struct{}{}
		<-release
		return succeed(ctx, it)
	})
	s, _ := newTestSession(manyItems(4), applier)

	done := make(chan BulkResult, 1)
	go func() {
		res, _ := s.ConfirmAll(context.Background())
		done <- res
	}()
	<-started

	assert.True(t, s.IsProcessing())
	assert.ErrorIs(t, s.ConfirmItem(context.Background(), 1), ErrProcessing)
	assert.False(t, s.RejectItem(0))
	assert.Equal(t, 0, s.RejectAll())
	_, err := s.ConfirmAll(context.Background())
	assert.ErrorIs(t, err, ErrProcessing)

	close(release)
	res := <-done

	assert.Equal(t, 4, res.Processed)
	assert.False(t, s.IsProcessing())
	assert.Equal(t, 0, s.Count())
}

func TestSession_Load_discards_old_turn_results(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	applier := applyFunc(func(ctx context.Context, it proposal.Item) (Result, error) {
		close(started)
		<-release
		return succeed(ctx, it)
	})
	s, _ := newTestSession(manyItems(1), applier)

	done := make(chan error, 1)
	go func() { done <- s.ConfirmItem(context.Background(), 1) }()
	<-started

	next := NewBatch("turn-2", []proposal.Item{item(1, proposal.EntityNote, proposal.OpCreate, "fresh")})
	s.Load(next)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "turn-2", s.Turn())
	require.Equal(t, 1, s.Count(), "same id in the new turn is untouched")
	assert.Equal(t, "fresh", s.Items()[0].Headline())
}
