package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/colonyops/vibeplanner/internal/core/proposal"
	"github.com/colonyops/vibeplanner/internal/core/records"
	"github.com/colonyops/vibeplanner/pkg/tmpl"
)

// DefaultPrompt is the system prompt used when no override is configured.
const DefaultPrompt = `You are the planning assistant for team {{ .TeamID }} in VibePlanner.
Today is {{ .Today }}. You are talking to {{ .UserID }}.

You never change records directly. Use the provided tools to PROPOSE
changes; a person reviews every proposal before it is saved. When a
request touches an existing record, pass its id and the version shown
below so stale edits are detected.
{{ with index .Vars "site" }}
Site: {{ . }}{{ end }}

Current records:
{{- range .Records }}
- [{{ .Kind }}] {{ quote .Title }} id={{ .ID }} version={{ .Version }}
{{- else }}
(none)
{{- end }}
`

// PromptData is rendered into the system prompt.
type PromptData struct {
	TeamID  string
	UserID  string
	Today   string
	Records []records.Record
	Vars    map[string]any
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Text      string
	Proposals []proposal.RawProposal
	// Skipped holds function calls that could not become proposals.
	Skipped []error
}

// contentGenerator is the slice of the genai client Gemini depends on.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini turns chat messages into raw proposals through Gemini function
// calling.
type Gemini struct {
	models contentGenerator
	model  string
	prompt string
	log    zerolog.Logger
}

// NewGemini creates a Gemini client. An empty prompt uses DefaultPrompt.
func NewGemini(ctx context.Context, apiKey, model, prompt string, log zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}

	return newGemini(client.Models, model, prompt, log), nil
}

func newGemini(models contentGenerator, model, prompt string, log zerolog.Logger) *Gemini {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Gemini{
		models: models,
		model:  model,
		prompt: prompt,
		log:    log.With().Str("component", "gemini").Logger(),
	}
}

// SystemPrompt renders the prompt template with data.
func (g *Gemini) SystemPrompt(data PromptData) (string, error) {
	if data.Today == "" {
		data.Today = time.Now().Format(time.DateOnly)
	}
	if data.Vars == nil {
		data.Vars = map[string]any{}
	}
	out, err := tmpl.Render(g.prompt, data)
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return out, nil
}

// Chat sends message to the model and collects the proposals it calls for.
func (g *Gemini) Chat(ctx context.Context, message string, data PromptData) (Reply, error) {
	system, err := g.SystemPrompt(data)
	if err != nil {
		return Reply{}, err
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(message, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Tools:             []*genai.Tool{{FunctionDeclarations: FunctionDeclarations()}},
		},
	)
	if err != nil {
		return Reply{}, fmt.Errorf("GenAI generate content failed: %w", err)
	}

	reply := ProposalsFromResponse(resp)
	g.log.Debug().
		Dur("took", time.Since(start)).
		Int("proposals", len(reply.Proposals)).
		Int("skipped", len(reply.Skipped)).
		Msg("chat turn complete")

	return reply, nil
}

// ProposalsFromResponse converts the function calls of resp into raw
// proposals. Calls to unknown tools or with bad arguments are skipped.
func ProposalsFromResponse(resp *genai.GenerateContentResponse) Reply {
	var reply Reply
	if resp == nil {
		return reply
	}

	for _, call := range resp.FunctionCalls() {
		tool, ok := Lookup(call.Name)
		if !ok {
			reply.Skipped = append(reply.Skipped, fmt.Errorf("%w: unknown tool %q", ErrInvalidArguments, call.Name))
			continue
		}
		raw, err := tool.Proposal(normalizeArgs(call.Args))
		if err != nil {
			reply.Skipped = append(reply.Skipped, err)
			continue
		}
		reply.Proposals = append(reply.Proposals, raw)
	}

	reply.Text = responseText(resp)
	return reply
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// normalizeArgs coerces integer values to float64 so Gemini arguments match
// the JSON decoding the MCP surface sees.
func normalizeArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case map[string]any:
		return normalizeArgs(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// FunctionDeclarations converts the catalog into Gemini function
// declarations.
func FunctionDeclarations() []*genai.FunctionDeclaration {
	catalog := Catalog()
	decls := make([]*genai.FunctionDeclaration, 0, len(catalog))
	for _, t := range catalog {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaFor(t.Params),
		})
	}
	return decls
}

func schemaFor(params []Param) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(params)),
	}
	for _, p := range params {
		prop := &genai.Schema{Type: schemaType(p.Type), Description: p.Description, Enum: p.Enum}
		if p.Type == ParamArray {
			prop.Items = &genai.Schema{Type: schemaType(p.Items)}
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func schemaType(t ParamType) genai.Type {
	switch t {
	case ParamNumber:
		return genai.TypeNumber
	case ParamArray:
		return genai.TypeArray
	case ParamObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
