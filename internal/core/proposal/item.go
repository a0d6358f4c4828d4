package proposal

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
)

// ID is the stable synthetic identifier assigned to an item at
// classification time. It never changes while the item is pending, unlike
// the item's display position.
type ID uint64

// Item is one classified operation awaiting human confirmation.
type Item struct {
	ID        ID
	RawType   string
	Type      EntityType
	Operation Operation

	// Payload holds typed fields for create and edit operations.
	Payload Payload
	// Entries holds one payload per record for bulk creates.
	Entries []Payload
	// TargetID identifies the existing record for edit and delete.
	TargetID string

	Updates      map[string]any
	OriginalItem map[string]any
	Selection    []string
	TitleChanges []TitleChange
	Display      *Display

	// Problem is set when the payload is unusable. Flagged items can be
	// rejected but confirming them fails without touching persistence.
	Problem string
}

// Flagged reports whether the item failed payload validation.
func (it Item) Flagged() bool {
	return it.Problem != ""
}

// Target is a single record-level call derived from an item. Single
// operations have one target; bulk operations have one per record.
type Target struct {
	// Key is stable within the item and is used to narrow it after a
	// partial failure.
	Key     string
	ID      string
	Title   string
	Fields  map[string]any
	Version int64
}

// Targets expands the item into record-level calls.
func (it Item) Targets() []Target {
	switch it.Operation {
	case OpCreate:
		if it.Payload == nil {
			return nil
		}
		return []Target{{Key: "0", Title: it.Payload.Headline(), Fields: it.Payload.Fields()}}

	case OpEdit:
		fields := it.Updates
		if len(fields) == 0 && it.Payload != nil {
			fields = it.Payload.Fields()
		}
		return []Target{{
			Key:     it.TargetID,
			ID:      it.TargetID,
			Title:   it.Headline(),
			Fields:  fields,
			Version: it.ExpectedVersion(),
		}}

	case OpDelete:
		return []Target{{Key: it.TargetID, ID: it.TargetID, Title: it.Headline()}}

	case OpBulkCreate:
		out := make([]Target, len(it.Entries))
		for i, p := range it.Entries {
			out[i] = Target{Key: strconv.Itoa(i), Title: p.Headline(), Fields: p.Fields()}
		}
		return out

	case OpBulkEdit:
		if len(it.TitleChanges) > 0 {
			out := make([]Target, len(it.TitleChanges))
			for i, tc := range it.TitleChanges {
				out[i] = Target{
					Key:    tc.ID,
					ID:     tc.ID,
					Title:  tc.NewTitle,
					Fields: map[string]any{titleField(it.Type): tc.NewTitle},
				}
			}
			return out
		}
		out := make([]Target, len(it.Selection))
		for i, id := range it.Selection {
			out[i] = Target{Key: id, ID: id, Title: id, Fields: it.Updates}
		}
		return out
	}

	return nil
}

// Retain returns a copy of the item narrowed to the targets whose keys are
// listed. Single-target items are returned unchanged.
func (it Item) Retain(keys []string) Item {
	if !it.Operation.IsBulk() {
		return it
	}

	out := it
	switch {
	case it.Operation == OpBulkCreate:
		out.Entries = nil
		for i, p := range it.Entries {
			if slices.Contains(keys, strconv.Itoa(i)) {
				out.Entries = append(out.Entries, p)
			}
		}
	case len(it.TitleChanges) > 0:
		out.TitleChanges = nil
		for _, tc := range it.TitleChanges {
			if slices.Contains(keys, tc.ID) {
				out.TitleChanges = append(out.TitleChanges, tc)
			}
		}
	default:
		out.Selection = nil
		for _, id := range it.Selection {
			if slices.Contains(keys, id) {
				out.Selection = append(out.Selection, id)
			}
		}
	}
	return out
}

// Headline returns the card title for the item.
func (it Item) Headline() string {
	if it.Display != nil && it.Display.Title != "" {
		return it.Display.Title
	}

	switch it.Operation {
	case OpBulkCreate:
		return fmt.Sprintf("%d %s", len(it.Entries), plural(it.Type.Label(), len(it.Entries)))
	case OpBulkEdit:
		n := len(it.Selection)
		if len(it.TitleChanges) > 0 {
			n = len(it.TitleChanges)
		}
		return fmt.Sprintf("%d %s", n, plural(it.Type.Label(), n))
	}

	if it.Payload != nil {
		if h := it.Payload.Headline(); h != "" {
			return h
		}
	}
	for _, key := range []string{"title", "name"} {
		if s, ok := it.OriginalItem[key].(string); ok && s != "" {
			return s
		}
	}
	if it.TargetID != "" {
		return it.TargetID
	}
	return it.Type.Label()
}

// Icon returns the display override icon or the entity glyph.
func (it Item) Icon() string {
	if it.Display != nil && it.Display.Icon != "" {
		return it.Display.Icon
	}
	return it.Type.Icon()
}

// ExpectedVersion returns the record version the proposal was made
// against, or 0 when the snapshot carries none.
func (it Item) ExpectedVersion() int64 {
	switch v := it.OriginalItem["version"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Diff returns field-level changes for edits. Display overrides win.
func (it Item) Diff() []FieldChange {
	if it.Display != nil && len(it.Display.Diff) > 0 {
		return it.Display.Diff
	}

	switch it.Operation {
	case OpEdit:
		fields := it.Updates
		if len(fields) == 0 && it.Payload != nil {
			fields = it.Payload.Fields()
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]FieldChange, 0, len(keys))
		for _, k := range keys {
			out = append(out, FieldChange{Field: k, Before: it.OriginalItem[k], After: fields[k]})
		}
		return out

	case OpBulkEdit:
		out := make([]FieldChange, 0, len(it.TitleChanges))
		for _, tc := range it.TitleChanges {
			before := tc.CurrentTitle
			if before == "" {
				before = tc.OriginalTitle
			}
			out = append(out, FieldChange{Field: titleField(it.Type), Before: before, After: tc.NewTitle})
		}
		return out
	}

	return nil
}

func titleField(t EntityType) string {
	switch t {
	case EntityShopping, EntityShoppingSection, EntityContact:
		return "name"
	}
	return "title"
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
