// Package review holds the pending batch of AI proposals for one turn, the
// paginator that slices it for display, and the Session controller that
// confirms and rejects items.
package review

import (
	"fmt"
	"strings"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/google/uuid"
)

// Batch is the ordered set of pending items produced by one AI turn.
// Positions are dense and zero-based; a position captured before a removal
// is stale afterwards, so callers hold item IDs instead. Batch is not safe
// for concurrent use; Session serializes access.
type Batch struct {
	turn  string
	items []proposal.Item
}

// NewBatch creates a batch for the given turn. An empty turn gets a fresh
// random identifier.
func NewBatch(turn string, items []proposal.Item) *Batch {
	if turn == "" {
		turn = uuid.NewString()
	}
	return &Batch{
		turn:  turn,
		items: append([]proposal.Item(nil), items...),
	}
}

// Turn returns the identifier of the AI turn that produced the batch.
func (b *Batch) Turn() string {
	return b.turn
}

// Count returns the number of pending items.
func (b *Batch) Count() int {
	return len(b.items)
}

// Items returns a copy of the pending items in order.
func (b *Batch) Items() []proposal.Item {
	return append([]proposal.Item(nil), b.items...)
}

// At returns the item at position i.
func (b *Batch) At(i int) (proposal.Item, bool) {
	if i < 0 || i >= len(b.items) {
		return proposal.Item{}, false
	}
	return b.items[i], true
}

// Get returns the item with the given id.
func (b *Batch) Get(id proposal.ID) (proposal.Item, bool) {
	i := b.IndexOf(id)
	if i < 0 {
		return proposal.Item{}, false
	}
	return b.items[i], true
}

// IndexOf returns the current position of id, or -1.
func (b *Batch) IndexOf(id proposal.ID) int {
	for i, it := range b.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// RemoveAt removes the item at position i and shifts later items down.
// Out of range positions are a no-op and report false.
func (b *Batch) RemoveAt(i int) bool {
	if i < 0 || i >= len(b.items) {
		return false
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	return true
}

// Remove removes the item with the given id.
func (b *Batch) Remove(id proposal.ID) bool {
	return b.RemoveAt(b.IndexOf(id))
}

// Replace swaps in an updated item with the same id, keeping its position.
func (b *Batch) Replace(item proposal.Item) bool {
	i := b.IndexOf(item.ID)
	if i < 0 {
		return false
	}
	b.items[i] = item
	return true
}

// Clear empties the batch.
func (b *Batch) Clear() {
	b.items = nil
}

type summaryKey struct {
	typ proposal.EntityType
	op  proposal.Operation
}

// Summarize renders "<count> <type>s to <verb>" groups in first-seen order,
// joined by ", ". Groups are per (type, operation), so a bulk and a single
// create of the same type are counted apart. Plurals are a literal "s" suffix.
func (b *Batch) Summarize() string {
	var order []summaryKey
	counts := map[summaryKey]int{}

	for _, it := range b.items {
		k := summaryKey{typ: it.Type, op: it.Operation}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	parts := make([]string, 0, len(order))
	for _, k := range order {
		n := counts[k]
		noun := string(k.typ)
		if n != 1 {
			noun += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s to %s", n, noun, k.op.Verb()))
	}
	return strings.Join(parts, ", ")
}
