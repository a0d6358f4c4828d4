package proposal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is the typed field set of a proposed record. There is one
// implementation per entity type plus UnknownFields for pass-through tags.
type Payload interface {
	Kind() EntityType
	// Headline is the record's display name (title or name depending on kind).
	Headline() string
	// Fields returns the record fields without identity.
	Fields() map[string]any
	// Missing lists required fields that are empty.
	Missing() []string
}

type TaskFields struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Status      string `json:"status,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
}

func (p TaskFields) Kind() EntityType { return EntityTask }
func (p TaskFields) Headline() string { return p.Title }

func (p TaskFields) Fields() map[string]any {
	return compact(map[string]any{
		"title":       p.Title,
		"description": p.Description,
		"priority":    p.Priority,
		"dueDate":     p.DueDate,
		"status":      p.Status,
		"projectId":   p.ProjectID,
	})
}

func (p TaskFields) Missing() []string { return required("title", p.Title) }

type NoteFields struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

func (p NoteFields) Kind() EntityType { return EntityNote }
func (p NoteFields) Headline() string { return p.Title }

func (p NoteFields) Fields() map[string]any {
	return compact(map[string]any{"title": p.Title, "content": p.Content})
}

func (p NoteFields) Missing() []string { return required("title", p.Title) }

type ShoppingItemFields struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	SectionID string  `json:"sectionId,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

func (p ShoppingItemFields) Kind() EntityType { return EntityShopping }
func (p ShoppingItemFields) Headline() string { return p.Name }

func (p ShoppingItemFields) Fields() map[string]any {
	f := compact(map[string]any{
		"name":      p.Name,
		"unit":      p.Unit,
		"sectionId": p.SectionID,
		"notes":     p.Notes,
	})
	if p.Quantity != 0 {
		f["quantity"] = p.Quantity
	}
	return f
}

func (p ShoppingItemFields) Missing() []string { return required("name", p.Name) }

type ShoppingSectionFields struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (p ShoppingSectionFields) Kind() EntityType { return EntityShoppingSection }
func (p ShoppingSectionFields) Headline() string { return p.Name }

func (p ShoppingSectionFields) Fields() map[string]any {
	return compact(map[string]any{"name": p.Name})
}

func (p ShoppingSectionFields) Missing() []string { return required("name", p.Name) }

type SurveyFields struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Questions   []string `json:"questions,omitempty"`
}

func (p SurveyFields) Kind() EntityType { return EntitySurvey }
func (p SurveyFields) Headline() string { return p.Title }

func (p SurveyFields) Fields() map[string]any {
	f := compact(map[string]any{"title": p.Title, "description": p.Description})
	if len(p.Questions) > 0 {
		qs := make([]any, len(p.Questions))
		for i, q := range p.Questions {
			qs[i] = q
		}
		f["questions"] = qs
	}
	return f
}

func (p SurveyFields) Missing() []string { return required("title", p.Title) }

type ContactFields struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (p ContactFields) Kind() EntityType { return EntityContact }
func (p ContactFields) Headline() string { return p.Name }

func (p ContactFields) Fields() map[string]any {
	return compact(map[string]any{
		"name":    p.Name,
		"email":   p.Email,
		"phone":   p.Phone,
		"company": p.Company,
		"notes":   p.Notes,
	})
}

func (p ContactFields) Missing() []string { return required("name", p.Name) }

// UnknownFields keeps the untyped bag for tags outside the canonical table.
type UnknownFields struct {
	Type EntityType
	Raw  map[string]any
}

func (p UnknownFields) Kind() EntityType { return p.Type }

func (p UnknownFields) Headline() string {
	for _, key := range []string{"title", "name"} {
		if s, ok := p.Raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (p UnknownFields) Fields() map[string]any {
	out := make(map[string]any, len(p.Raw))
	for k, v := range p.Raw {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}

func (p UnknownFields) Missing() []string { return nil }

// DecodePayload converts an untyped data bag into the payload variant for
// the entity type. Decode failures (wrong value types) are returned; missing
// fields are not errors and are reported by Payload.Missing.
func DecodePayload(entity EntityType, data map[string]any) (Payload, error) {
	switch entity {
	case EntityTask:
		return decodeInto[TaskFields](data)
	case EntityNote:
		return decodeInto[NoteFields](data)
	case EntityShopping:
		return decodeInto[ShoppingItemFields](data)
	case EntityShoppingSection:
		return decodeInto[ShoppingSectionFields](data)
	case EntitySurvey:
		return decodeInto[SurveyFields](data)
	case EntityContact:
		return decodeInto[ContactFields](data)
	default:
		return UnknownFields{Type: entity, Raw: data}, nil
	}
}

func decodeInto[T Payload](data map[string]any) (Payload, error) {
	var out T
	if len(data) == 0 {
		return out, nil
	}

	bits, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(bits, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", out.Kind(), err)
	}
	return out, nil
}

func required(field, value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{field}
	}
	return nil
}

// compact drops empty string values.
func compact(m map[string]any) map[string]any {
	for k, v := range m {
		if s, ok := v.(string); ok && s == "" {
			delete(m, k)
		}
	}
	return m
}

// payloadID extracts the id a payload variant carries, if any.
func payloadID(p Payload) string {
	switch v := p.(type) {
	case TaskFields:
		return v.ID
	case NoteFields:
		return v.ID
	case ShoppingItemFields:
		return v.ID
	case ShoppingSectionFields:
		return v.ID
	case SurveyFields:
		return v.ID
	case ContactFields:
		return v.ID
	case UnknownFields:
		s, _ := v.Raw["id"].(string)
		return s
	}
	return ""
}
