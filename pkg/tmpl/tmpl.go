// Package tmpl provides template rendering utilities for assistant prompts.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// quote wraps s in double quotes, escaping embedded quotes so values can be
// dropped into prompt text without breaking the surrounding sentence.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(n int, s string) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

func stringOrDefault(def, s string) string {
	if s != "" {
		return s
	}
	return def
}

var funcs = template.FuncMap{
	"quote":    quote,
	"join":     strings.Join,
	"truncate": truncate,
	"default":  stringOrDefault,
	"upper":    strings.ToUpper,
	"lower":    strings.ToLower,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - quote: Double-quote a string for inline use in prose
//   - join: Join string slice with separator (e.g., join .Kinds ", ")
//   - truncate: Cut a string to N runes (e.g., truncate 40 .Title)
//   - default: Fallback for empty strings (e.g., default "none" .Name)
//   - upper, lower: Case conversion
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// Check parses tmpl without executing it. Used by config validation where no
// realistic data is available.
func Check(tmpl string) error {
	if _, err := template.New("").Funcs(funcs).Parse(tmpl); err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	return nil
}
