package proposal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyType is returned when a raw proposal carries no type tag.
	ErrEmptyType = errors.New("proposal has no type")
	// ErrUnknownOperation is returned when an explicit operation is not supported.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrAmbiguousOperation is returned for edit or delete style tags that
	// do not carry an explicit operation.
	ErrAmbiguousOperation = errors.New("operation must be explicit for non-create tags")
)

const (
	prefixCreateMultiple = "create_multiple_"
	prefixCreate         = "create_"
)

// canonicalTypes maps AI tool tags onto entity types.
var canonicalTypes = map[string]EntityType{
	"create_task":                    EntityTask,
	"create_multiple_tasks":          EntityTask,
	"create_note":                    EntityNote,
	"create_multiple_notes":          EntityNote,
	"create_shopping_item":           EntityShopping,
	"create_multiple_shopping_items": EntityShopping,
	"create_survey":                  EntitySurvey,
	"create_multiple_surveys":        EntitySurvey,
	"create_contact":                 EntityContact,
}

// tags that would silently become creates under the default fallback
var explicitOnlyPrefixes = []string{"update_", "edit_", "delete_", "remove_", "rename_"}

// CanonicalType maps a raw tag to its entity type. Unrecognized tags are
// returned verbatim.
func CanonicalType(tag string) EntityType {
	if t, ok := canonicalTypes[tag]; ok {
		return t
	}
	return EntityType(tag)
}

// DeriveOperation returns the explicit operation when present, otherwise
// derives one from the tag prefix. Tags that are neither create_multiple_
// nor create_ default to OpCreate, except edit/delete style tags which
// return ErrAmbiguousOperation.
func DeriveOperation(tag, explicit string) (Operation, error) {
	if explicit != "" {
		op := Operation(explicit)
		if !op.Valid() {
			return "", fmt.Errorf("%w: %q", ErrUnknownOperation, explicit)
		}
		return op, nil
	}

	switch {
	case strings.HasPrefix(tag, prefixCreateMultiple):
		return OpBulkCreate, nil
	case strings.HasPrefix(tag, prefixCreate):
		return OpCreate, nil
	}

	for _, p := range explicitOnlyPrefixes {
		if strings.HasPrefix(tag, p) {
			return "", fmt.Errorf("%w: %q", ErrAmbiguousOperation, tag)
		}
	}

	return OpCreate, nil
}

// Classify normalizes a raw proposal into a typed Item carrying the given
// stable identifier. Structural problems return an error; payloads that are
// merely incomplete produce an Item with Problem set.
func Classify(raw RawProposal, id ID) (Item, error) {
	tag := strings.TrimSpace(raw.Type)
	if tag == "" {
		return Item{}, ErrEmptyType
	}

	op, err := DeriveOperation(tag, raw.Operation)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ID:           id,
		RawType:      tag,
		Type:         CanonicalType(tag),
		Operation:    op,
		Updates:      withoutID(raw.Updates),
		OriginalItem: raw.OriginalItem,
		Selection:    raw.Selection,
		TitleChanges: raw.TitleChanges,
		Display:      raw.Display,
	}

	switch op {
	case OpCreate:
		classifyCreate(&item, raw.Data)
	case OpEdit:
		classifyEdit(&item, raw)
	case OpDelete:
		item.TargetID = resolveTargetID(raw, nil)
		if item.TargetID == "" {
			item.Problem = "missing target id"
		}
	case OpBulkCreate:
		classifyBulkCreate(&item, raw.Data)
	case OpBulkEdit:
		classifyBulkEdit(&item)
	}

	return item, nil
}

// ClassifyAll classifies a batch, assigning identifiers from next. Raw
// proposals that fail classification are returned separately with their
// position so callers can report them.
func ClassifyAll(raws []RawProposal, next func() ID) ([]Item, []Rejected) {
	items := make([]Item, 0, len(raws))
	var rejected []Rejected
	for i, raw := range raws {
		item, err := Classify(raw, next())
		if err != nil {
			rejected = append(rejected, Rejected{Index: i, Type: raw.Type, Err: err})
			continue
		}
		items = append(items, item)
	}
	return items, rejected
}

// Rejected records a raw proposal the classifier refused.
type Rejected struct {
	Index int
	Type  string
	Err   error
}

func classifyCreate(item *Item, data map[string]any) {
	p, err := DecodePayload(item.Type, data)
	if err != nil {
		item.Problem = "invalid payload: " + err.Error()
		return
	}
	item.Payload = p
	if missing := p.Missing(); len(missing) > 0 {
		item.Problem = "missing required field: " + strings.Join(missing, ", ")
	}
}

func classifyEdit(item *Item, raw RawProposal) {
	p, err := DecodePayload(item.Type, raw.Data)
	if err != nil {
		item.Problem = "invalid payload: " + err.Error()
		return
	}
	item.Payload = p
	item.TargetID = resolveTargetID(raw, p)

	switch {
	case item.TargetID == "":
		item.Problem = "missing target id"
	case len(item.Updates) == 0 && len(p.Fields()) == 0:
		item.Problem = "nothing to update"
	}
}

func classifyBulkCreate(item *Item, data map[string]any) {
	rows := bulkRows(data)
	if len(rows) == 0 {
		item.Problem = "no items to create"
		return
	}

	var problems []string
	for i, row := range rows {
		p, err := DecodePayload(item.Type, row)
		if err != nil {
			problems = append(problems, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		if missing := p.Missing(); len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("item %d: missing %s", i+1, strings.Join(missing, ", ")))
		}
		item.Entries = append(item.Entries, p)
	}

	if len(problems) > 0 {
		item.Problem = strings.Join(problems, "; ")
	}
}

func classifyBulkEdit(item *Item) {
	switch {
	case len(item.TitleChanges) > 0:
		for i, tc := range item.TitleChanges {
			if tc.ID == "" {
				item.Problem = fmt.Sprintf("title change %d: missing id", i+1)
				return
			}
			if strings.TrimSpace(tc.NewTitle) == "" {
				item.Problem = fmt.Sprintf("title change %d: empty title", i+1)
				return
			}
		}
	case len(item.Selection) == 0:
		item.Problem = "no records selected"
	case len(item.Updates) == 0:
		item.Problem = "nothing to update"
	}
}

// bulkRows finds the list of row objects in a bulk create payload. The
// list is read from "items" or, failing that, any list-valued key
// (tools name it after the entity, e.g. "tasks").
func bulkRows(data map[string]any) []map[string]any {
	list, ok := data["items"].([]any)
	if !ok {
		for _, v := range data {
			if l, isList := v.([]any); isList {
				list = l
				break
			}
		}
	}

	rows := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

func resolveTargetID(raw RawProposal, p Payload) string {
	if id, ok := raw.OriginalItem["id"].(string); ok && id != "" {
		return id
	}
	if p != nil {
		if id := payloadID(p); id != "" {
			return id
		}
	} else if id, ok := raw.Data["id"].(string); ok && id != "" {
		return id
	}
	if id, ok := raw.Updates["id"].(string); ok {
		return id
	}
	return ""
}

func withoutID(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}
