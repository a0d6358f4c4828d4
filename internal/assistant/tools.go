// Package assistant exposes the proposal tool catalog to AI surfaces: an MCP
// server for external clients and a Gemini function-calling client. Every
// tool call becomes a proposal.RawProposal; nothing is written to records
// until a human confirms it.
package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
)

// ErrInvalidArguments is returned when a tool call is missing required
// arguments or carries values of the wrong shape.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ParamType is the JSON schema type of a tool parameter.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
	ParamArray  ParamType = "array"
	ParamObject ParamType = "object"
)

// Param describes one tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []string
	// Items is the element type for arrays.
	Items ParamType
}

// Tool is one entry of the catalog shared by every AI surface.
type Tool struct {
	Name        string
	Description string
	Params      []Param

	build func(args map[string]any) proposal.RawProposal
}

// Proposal validates args and converts the call into a raw proposal.
func (t Tool) Proposal(args map[string]any) (proposal.RawProposal, error) {
	var missing []string
	for _, p := range t.Params {
		v, ok := args[p.Name]
		if !ok || v == nil || v == "" {
			if p.Required {
				missing = append(missing, p.Name)
			}
			continue
		}
		if err := checkParam(p, v); err != nil {
			return proposal.RawProposal{}, fmt.Errorf("%w: %s: %w", ErrInvalidArguments, t.Name, err)
		}
	}
	if len(missing) > 0 {
		return proposal.RawProposal{}, fmt.Errorf("%w: %s: missing %s", ErrInvalidArguments, t.Name, strings.Join(missing, ", "))
	}
	return t.build(args), nil
}

func checkParam(p Param, v any) error {
	switch p.Type {
	case ParamString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", p.Name)
		}
		if len(p.Enum) > 0 && !contains(p.Enum, s) {
			return fmt.Errorf("%s must be one of %s", p.Name, strings.Join(p.Enum, ", "))
		}
	case ParamNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s must be a number", p.Name)
		}
	case ParamArray:
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("%s must be an array", p.Name)
		}
	case ParamObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%s must be an object", p.Name)
		}
	}
	return nil
}

// Lookup returns the catalog tool with name.
func Lookup(name string) (Tool, bool) {
	for _, t := range Catalog() {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

var entityNames = func() []string {
	out := make([]string, len(proposal.EntityTypes))
	for i, e := range proposal.EntityTypes {
		out[i] = string(e)
	}
	return out
}()

var taskParams = []Param{
	{Name: "title", Type: ParamString, Description: "Short task title", Required: true},
	{Name: "description", Type: ParamString, Description: "Longer details"},
	{Name: "priority", Type: ParamString, Description: "Task priority", Enum: []string{"low", "medium", "high", "urgent"}},
	{Name: "dueDate", Type: ParamString, Description: "Due date as YYYY-MM-DD or RFC 3339"},
}

var noteParams = []Param{
	{Name: "title", Type: ParamString, Description: "Note title", Required: true},
	{Name: "content", Type: ParamString, Description: "Markdown body"},
}

var shoppingParams = []Param{
	{Name: "name", Type: ParamString, Description: "Item name", Required: true},
	{Name: "quantity", Type: ParamNumber, Description: "How many to buy"},
	{Name: "unit", Type: ParamString, Description: "Unit such as box or kg"},
	{Name: "sectionId", Type: ParamString, Description: "Shopping section id"},
}

var surveyParams = []Param{
	{Name: "title", Type: ParamString, Description: "Survey title", Required: true},
	{Name: "description", Type: ParamString, Description: "What the survey is for"},
	{Name: "questions", Type: ParamArray, Items: ParamString, Description: "Questions to ask"},
}

var contactParams = []Param{
	{Name: "name", Type: ParamString, Description: "Person or company name", Required: true},
	{Name: "email", Type: ParamString, Description: "Email address"},
	{Name: "phone", Type: ParamString, Description: "Phone number"},
	{Name: "company", Type: ParamString, Description: "Company"},
}

// Catalog returns every proposal tool. Create tools use the tag conventions
// the classifier understands; edit, delete and rename tools carry explicit
// operations.
func Catalog() []Tool {
	return []Tool{
		createTool("create_task", "Propose a new task.", taskParams),
		createTool("create_note", "Propose a new note.", noteParams),
		createTool("create_shopping_item", "Propose a new shopping list item.", shoppingParams),
		createTool("create_survey", "Propose a new survey.", surveyParams),
		createTool("create_contact", "Propose a new contact.", contactParams),
		bulkCreateTool("create_multiple_tasks", "Propose several tasks at once.", "task"),
		bulkCreateTool("create_multiple_notes", "Propose several notes at once.", "note"),
		bulkCreateTool("create_multiple_shopping_items", "Propose several shopping items at once.", "shopping item"),
		bulkCreateTool("create_multiple_surveys", "Propose several surveys at once.", "survey"),
		{
			Name:        "create_record",
			Description: "Propose a new record of any type, including shopping sections.",
			Params: []Param{
				{Name: "type", Type: ParamString, Description: "Record type", Required: true, Enum: entityNames},
				{Name: "fields", Type: ParamObject, Description: "Record fields", Required: true},
			},
			build: func(args map[string]any) proposal.RawProposal {
				return proposal.RawProposal{
					Type:      str(args, "type"),
					Operation: string(proposal.OpCreate),
					Data:      obj(args, "fields"),
				}
			},
		},
		{
			Name:        "update_record",
			Description: "Propose changes to an existing record. Include the current record as original so the reviewer sees a diff.",
			Params: []Param{
				{Name: "type", Type: ParamString, Description: "Record type", Required: true, Enum: entityNames},
				{Name: "id", Type: ParamString, Description: "Record id", Required: true},
				{Name: "updates", Type: ParamObject, Description: "Fields to change", Required: true},
				{Name: "original", Type: ParamObject, Description: "Current record snapshot including version"},
			},
			build: func(args map[string]any) proposal.RawProposal {
				original := obj(args, "original")
				if original == nil {
					original = map[string]any{}
				}
				original["id"] = str(args, "id")
				return proposal.RawProposal{
					Type:         str(args, "type"),
					Operation:    string(proposal.OpEdit),
					Data:         map[string]any{},
					Updates:      obj(args, "updates"),
					OriginalItem: original,
				}
			},
		},
		{
			Name:        "delete_record",
			Description: "Propose deleting a record.",
			Params: []Param{
				{Name: "type", Type: ParamString, Description: "Record type", Required: true, Enum: entityNames},
				{Name: "id", Type: ParamString, Description: "Record id", Required: true},
				{Name: "title", Type: ParamString, Description: "Record title, shown to the reviewer"},
			},
			build: func(args map[string]any) proposal.RawProposal {
				original := map[string]any{"id": str(args, "id")}
				if title := str(args, "title"); title != "" {
					original["title"] = title
				}
				return proposal.RawProposal{
					Type:         str(args, "type"),
					Operation:    string(proposal.OpDelete),
					OriginalItem: original,
				}
			},
		},
		{
			Name:        "rename_records",
			Description: "Propose renaming several records of one type.",
			Params: []Param{
				{Name: "type", Type: ParamString, Description: "Record type", Required: true, Enum: entityNames},
				{Name: "changes", Type: ParamArray, Items: ParamObject, Description: "Objects with id, currentTitle and newTitle", Required: true},
			},
			build: func(args map[string]any) proposal.RawProposal {
				var changes []proposal.TitleChange
				for _, v := range list(args, "changes") {
					m, _ := v.(map[string]any)
					changes = append(changes, proposal.TitleChange{
						ID:           str(m, "id"),
						CurrentTitle: str(m, "currentTitle"),
						NewTitle:     str(m, "newTitle"),
					})
				}
				return proposal.RawProposal{
					Type:         str(args, "type"),
					Operation:    string(proposal.OpBulkEdit),
					TitleChanges: changes,
				}
			},
		},
	}
}

func createTool(name, description string, params []Param) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Params:      params,
		build: func(args map[string]any) proposal.RawProposal {
			return proposal.RawProposal{Type: name, Data: copyArgs(args)}
		},
	}
}

func bulkCreateTool(name, description, noun string) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Params: []Param{
			{Name: "items", Type: ParamArray, Items: ParamObject, Description: "One object per " + noun, Required: true},
		},
		build: func(args map[string]any) proposal.RawProposal {
			return proposal.RawProposal{Type: name, Data: map[string]any{"items": list(args, "items")}}
		},
	}
}

func copyArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func obj(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

func list(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
