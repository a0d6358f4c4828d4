package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/colonyops/vibeplanner/internal/core/logging"
	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound is returned when an id or position no longer refers to an
	// item in the batch.
	ErrNotFound = errors.New("item not in batch")
	// ErrInFlight is returned when an item already has a confirm outstanding.
	// Callers treat it as a no-op.
	ErrInFlight = errors.New("item is already being processed")
	// ErrProcessing is returned while a confirm-all run owns the batch.
	ErrProcessing = errors.New("batch is being processed")
	// ErrFlagged is returned when confirming an item whose payload failed
	// classification.
	ErrFlagged = errors.New("item payload is invalid")
	// ErrPartial is returned when some targets of a bulk item failed.
	ErrPartial = errors.New("bulk item partially applied")
)

const defaultConcurrency = 4

// Applier reconciles one confirmed item against persisted records. An error
// means nothing was applied; per-target failures of bulk items are reported
// in the Result instead.
type Applier interface {
	Apply(ctx context.Context, item proposal.Item) (Result, error)
}

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// TargetResult is the outcome of one record-level call.
type TargetResult struct {
	Key      string
	Title    string
	RecordID string
	Err      error
}

// Result aggregates the record-level calls made for one item.
type Result struct {
	Targets []TargetResult
}

// Failed returns the targets whose call failed.
func (r Result) Failed() []TargetResult {
	var out []TargetResult
	for _, t := range r.Targets {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Err joins the target failures, naming each target.
func (r Result) Err() error {
	var errs []error
	for _, t := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", t.Title, t.Err))
	}
	return errors.Join(errs...)
}

// Failure names an item that failed during ConfirmAll.
type Failure struct {
	ID    proposal.ID
	Title string
	Err   error
}

// BulkResult summarizes a ConfirmAll run.
type BulkResult struct {
	Total     int
	Processed int
	Failed    []Failure
}

func (r BulkResult) String() string {
	return fmt.Sprintf("%d of %d processed", r.Processed, r.Total)
}

// Card is one visible item on the current page. Index is the item's
// position in the whole batch at the time Visible was called.
type Card struct {
	Index    int
	Item     proposal.Item
	InFlight bool
}

// Options tunes a Session.
type Options struct {
	// Concurrency bounds parallel applies during ConfirmAll.
	Concurrency int
	// Width and Height are the initial viewport in pixels.
	Width  int
	Height int
}

// Session exclusively owns one pending batch together with its in-flight set
// and pagination state. All methods are safe for concurrent use; applier
// calls run without holding the lock.
type Session struct {
	applier     Applier
	notifier    Notifier
	logger      zerolog.Logger
	concurrency int

	mu         sync.Mutex
	batch      *Batch
	inFlight   map[proposal.ID]struct{}
	processing bool
	page       int
	perPage    int
}

// NewSession creates a session over batch. A nil notifier discards messages.
func NewSession(batch *Batch, applier Applier, notifier Notifier, logger zerolog.Logger, opts Options) *Session {
	if batch == nil {
		batch = NewBatch("", nil)
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}

	return &Session{
		applier:     applier,
		notifier:    notifier,
		logger:      logger,
		concurrency: opts.Concurrency,
		batch:       batch,
		inFlight:    make(map[proposal.ID]struct{}),
		perPage:     ItemsPerPage(opts.Width, opts.Height),
	}
}

// Load replaces the batch with one from a new turn. Outstanding applies for
// the old turn complete but their results are discarded.
func (s *Session) Load(batch *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = batch
	s.inFlight = make(map[proposal.ID]struct{})
	s.processing = false
	s.page = 0
}

// Turn returns the turn id of the current batch.
func (s *Session) Turn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Turn()
}

// Count returns the number of pending items.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Count()
}

// Summary returns the batch summary line.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Summarize()
}

// Items returns a copy of the pending items.
func (s *Session) Items() []proposal.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Items()
}

// IsProcessing reports whether a ConfirmAll run is active.
func (s *Session) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// InFlight reports whether id has a confirm outstanding.
func (s *Session) InFlight(id proposal.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

// ConfirmItem applies the item with the given id. On success the item is
// removed; on failure it stays pending. A bulk item with some failed targets
// is narrowed to those targets and kept.
func (s *Session) ConfirmItem(ctx context.Context, id proposal.ID) error {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return ErrProcessing
	}
	item, ok := s.batch.Get(id)
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return ErrInFlight
	}
	s.inFlight[id] = struct{}{}
	turn := s.batch.Turn()
	s.mu.Unlock()

	return s.apply(ctx, turn, item)
}

// ConfirmAt confirms the item currently at position index in the batch.
func (s *Session) ConfirmAt(ctx context.Context, index int) error {
	s.mu.Lock()
	item, ok := s.batch.At(index)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return s.ConfirmItem(ctx, item.ID)
}

// ConfirmAll applies every pending item that is not already in flight.
// Individual failures never stop the run; failed items stay in the batch.
func (s *Session) ConfirmAll(ctx context.Context) (BulkResult, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return BulkResult{}, ErrProcessing
	}

	var items []proposal.Item
	for _, it := range s.batch.Items() {
		if _, busy := s.inFlight[it.ID]; busy {
			continue
		}
		s.inFlight[it.ID] = struct{}{}
		items = append(items, it)
	}
	if len(items) == 0 {
		s.mu.Unlock()
		return BulkResult{}, nil
	}
	s.processing = true
	turn := s.batch.Turn()
	s.mu.Unlock()

	var (
		mu     sync.Mutex
		result = BulkResult{Total: len(items)}
		g      errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, it := range items {
		g.Go(func() error {
			err := s.apply(ctx, turn, it)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, Failure{ID: it.ID, Title: it.Headline(), Err: err})
			} else {
				result.Processed++
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].ID < result.Failed[j].ID })

	s.mu.Lock()
	if s.batch.Turn() == turn {
		s.processing = false
		s.clampLocked()
	}
	s.mu.Unlock()

	if len(result.Failed) == 0 {
		s.notifier.Infof("%s", result)
	} else {
		s.notifier.Warnf("%s", result)
	}
	return result, nil
}

// RejectItem removes the item at position index without applying it. Stale
// positions, in-flight items and calls during ConfirmAll are no-ops.
func (s *Session) RejectItem(index int) bool {
	s.mu.Lock()
	item, ok := s.batch.At(index)
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.RejectID(item.ID)
}

// RejectID removes the item with the given id without applying it.
func (s *Session) RejectID(id proposal.ID) bool {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return false
	}
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return false
	}
	item, ok := s.batch.Get(id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.batch.Remove(id)
	s.clampLocked()
	s.mu.Unlock()

	s.notifier.Infof("Rejected %s", describe(item))
	return true
}

// RejectAll clears every item that is not in flight and returns how many
// were removed.
func (s *Session) RejectAll() int {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return 0
	}

	removed := 0
	if len(s.inFlight) == 0 {
		removed = s.batch.Count()
		s.batch.Clear()
	} else {
		for _, it := range s.batch.Items() {
			if _, busy := s.inFlight[it.ID]; !busy {
				s.batch.Remove(it.ID)
				removed++
			}
		}
	}
	s.clampLocked()
	s.mu.Unlock()

	if removed > 0 {
		s.notifier.Infof("Rejected %d %s", removed, plural("item", removed))
	}
	return removed
}

// Resize recomputes the page size for a viewport in pixels.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perPage = ItemsPerPage(width, height)
	s.clampLocked()
}

// NextPage advances one page and reports whether the page changed.
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page+1 >= TotalPages(s.batch.Count(), s.perPage) {
		return false
	}
	s.page++
	return true
}

// PrevPage moves back one page and reports whether the page changed.
func (s *Session) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == 0 {
		return false
	}
	s.page--
	return true
}

// Page returns the zero-based current page.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// PerPage returns the current page size.
func (s *Session) PerPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perPage
}

// TotalPages returns the page count for the current batch.
func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalPages(s.batch.Count(), s.perPage)
}

// ShowPagination reports whether pagination controls should render.
func (s *Session) ShowPagination() bool {
	return s.TotalPages() > 1
}

// Visible returns the cards on the current page.
func (s *Session) Visible() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.page * s.perPage
	page := PageItems(s.batch.items, s.page, s.perPage)
	cards := make([]Card, len(page))
	for i, it := range page {
		_, busy := s.inFlight[it.ID]
		cards[i] = Card{Index: start + i, Item: it, InFlight: busy}
	}
	return cards
}

func (s *Session) clampLocked() {
	s.page = ClampPage(s.page, TotalPages(s.batch.Count(), s.perPage))
}

func (s *Session) apply(ctx context.Context, turn string, item proposal.Item) error {
	ctx = logging.WithTurnID(ctx, turn)
	s.logger.Debug().Ctx(ctx).
		Uint64("item", uint64(item.ID)).
		Str("type", string(item.Type)).
		Str("operation", string(item.Operation)).
		Msg("applying item")

	var (
		res Result
		err error
	)
	if item.Flagged() {
		err = fmt.Errorf("%w: %s", ErrFlagged, item.Problem)
	} else {
		res, err = s.applier.Apply(ctx, item)
	}

	return s.settle(ctx, turn, item, res, err)
}

// settle records the outcome of an apply. Results for a replaced batch are
// dropped.
func (s *Session) settle(ctx context.Context, turn string, item proposal.Item, res Result, err error) error {
	verb := item.Operation.Verb()

	s.mu.Lock()
	if s.batch.Turn() != turn {
		s.mu.Unlock()
		s.logger.Debug().Ctx(ctx).Uint64("item", uint64(item.ID)).Msg("discarding result for replaced batch")
		if err != nil {
			return err
		}
		return res.Err()
	}
	delete(s.inFlight, item.ID)

	failed := res.Failed()
	switch {
	case err != nil:
	case len(failed) == 0:
		s.batch.Remove(item.ID)
	case len(failed) < len(res.Targets):
		keys := make([]string, len(failed))
		for i, t := range failed {
			keys[i] = t.Key
		}
		s.batch.Replace(item.Retain(keys))
	}
	s.clampLocked()
	s.mu.Unlock()

	switch {
	case err != nil:
		s.logger.Warn().Ctx(ctx).Err(err).Uint64("item", uint64(item.ID)).Msg("apply failed")
		s.notifier.Errorf("Failed to %s %s: %v", verb, describe(item), err)
		return err

	case len(failed) == 0:
		s.notifier.Infof("%s %s", pastTense(verb), describe(item))
		return nil

	case len(failed) < len(res.Targets):
		ferr := fmt.Errorf("%w: %d of %d failed: %w", ErrPartial, len(failed), len(res.Targets), res.Err())
		s.logger.Warn().Ctx(ctx).Err(ferr).Uint64("item", uint64(item.ID)).Msg("apply partially failed")
		s.notifier.Warnf("%s %d of %d %s; %d kept for retry",
			pastTense(verb), len(res.Targets)-len(failed), len(res.Targets), plural(item.Type.Label(), len(res.Targets)), len(failed))
		return ferr

	default:
		ferr := res.Err()
		s.logger.Warn().Ctx(ctx).Err(ferr).Uint64("item", uint64(item.ID)).Msg("apply failed")
		s.notifier.Errorf("Failed to %s %s: %v", verb, describe(item), ferr)
		return ferr
	}
}

func describe(it proposal.Item) string {
	if it.Operation.IsBulk() {
		return it.Headline()
	}
	return fmt.Sprintf("%s %q", it.Type.Label(), it.Headline())
}

func pastTense(verb string) string {
	if verb == "" {
		return ""
	}
	return strings.ToUpper(verb[:1]) + verb[1:] + "d"
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

type nopNotifier struct{}

func (nopNotifier) Infof(string, ...any)  {}
func (nopNotifier) Warnf(string, ...any)  {}
func (nopNotifier) Errorf(string, ...any) {}
