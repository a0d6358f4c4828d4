// Package proposal defines AI-proposed record operations and the classifier
// that turns raw tool-call output into typed, reviewable items.
package proposal

// EntityType is the canonical kind of record an operation targets.
type EntityType string

const (
	EntityTask            EntityType = "task"
	EntityNote            EntityType = "note"
	EntityShopping        EntityType = "shopping"
	EntityShoppingSection EntityType = "shoppingSection"
	EntitySurvey          EntityType = "survey"
	EntityContact         EntityType = "contact"
)

// EntityTypes lists every canonical entity type.
var EntityTypes = []EntityType{
	EntityTask,
	EntityNote,
	EntityShopping,
	EntityShoppingSection,
	EntitySurvey,
	EntityContact,
}

// Known reports whether e is one of the canonical entity types.
func (e EntityType) Known() bool {
	for _, k := range EntityTypes {
		if e == k {
			return true
		}
	}
	return false
}

// Label returns the singular human name used in summaries and cards.
// Unknown types fall back to their literal tag.
func (e EntityType) Label() string {
	switch e {
	case EntityTask:
		return "task"
	case EntityNote:
		return "note"
	case EntityShopping:
		return "shopping item"
	case EntityShoppingSection:
		return "shopping section"
	case EntitySurvey:
		return "survey"
	case EntityContact:
		return "contact"
	default:
		return string(e)
	}
}

// Icon returns the card glyph for the type. Unknown types share a generic
// marker.
func (e EntityType) Icon() string {
	switch e {
	case EntityTask:
		return "☐"
	case EntityNote:
		return "✎"
	case EntityShopping:
		return "🛒"
	case EntityShoppingSection:
		return "▤"
	case EntitySurvey:
		return "?"
	case EntityContact:
		return "@"
	default:
		return "•"
	}
}

// Operation is the kind of change an item proposes.
type Operation string

const (
	OpCreate     Operation = "create"
	OpEdit       Operation = "edit"
	OpDelete     Operation = "delete"
	OpBulkCreate Operation = "bulkCreate"
	OpBulkEdit   Operation = "bulkEdit"
)

// Valid reports whether o is a supported operation.
func (o Operation) Valid() bool {
	switch o {
	case OpCreate, OpEdit, OpDelete, OpBulkCreate, OpBulkEdit:
		return true
	}
	return false
}

// Verb maps an operation onto the verb used in batch summaries.
func (o Operation) Verb() string {
	switch o {
	case OpEdit, OpBulkEdit:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "create"
	}
}

// IsBulk reports whether the operation fans out over several targets.
func (o Operation) IsBulk() bool {
	return o == OpBulkCreate || o == OpBulkEdit
}

// TitleChange describes one record rename inside a bulk edit.
type TitleChange struct {
	ID            string `json:"id,omitempty"`
	CurrentTitle  string `json:"currentTitle,omitempty"`
	OriginalTitle string `json:"originalTitle,omitempty"`
	NewTitle      string `json:"newTitle"`
}

// FieldChange is one line of a before/after diff.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// Display carries presentation overrides supplied by the AI layer.
type Display struct {
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	Details     []string      `json:"details,omitempty"`
	Diff        []FieldChange `json:"diff,omitempty"`
	Footer      string        `json:"footer,omitempty"`
}

// RawProposal is the wire shape emitted by the AI tool-calling layer.
type RawProposal struct {
	Type         string         `json:"type"`
	Operation    string         `json:"operation,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	Updates      map[string]any `json:"updates,omitempty"`
	OriginalItem map[string]any `json:"originalItem,omitempty"`
	Selection    []string       `json:"selection,omitempty"`
	TitleChanges []TitleChange  `json:"titleChanges,omitempty"`
	Display      *Display       `json:"display,omitempty"`
}
