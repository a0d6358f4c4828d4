package vibe

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/colonyops/vibeplanner/internal/core/records"
)

var priorities = []string{"low", "medium", "high", "urgent"}

// reservedFields are owned by the store and never written from a payload.
var reservedFields = []string{"id", "version", "teamId", "createdBy", "createdAt", "updatedAt"}

// validateFields checks a complete field set for kind.
func validateFields(kind records.Kind, fields map[string]any) error {
	verr := &records.ValidationError{Kind: kind}

	if !kind.Valid() {
		verr.Add("type", "unsupported record type %q", string(kind))
		return verr
	}

	titleField := kind.TitleField()
	if s, _ := fields[titleField].(string); strings.TrimSpace(s) == "" {
		verr.Add(titleField, "is required")
	}

	switch kind {
	case records.KindTask:
		if v, ok := fields["priority"]; ok {
			if s, _ := v.(string); !slices.Contains(priorities, s) {
				verr.Add("priority", "must be one of %s", strings.Join(priorities, ", "))
			}
		}
		if v, ok := fields["dueDate"]; ok {
			if s, _ := v.(string); !validDate(s) {
				verr.Add("dueDate", "must be RFC 3339 or YYYY-MM-DD")
			}
		}

	case records.KindShopping:
		if v, ok := fields["quantity"]; ok {
			if n, isNum := number(v); !isNum || n < 0 {
				verr.Add("quantity", "must be a number of at least 0")
			}
		}

	case records.KindSurvey:
		if v, ok := fields["questions"]; ok {
			if !stringList(v) {
				verr.Add("questions", "must be a list of strings")
			}
		}

	case records.KindContact:
		if v, ok := fields["email"]; ok {
			s, _ := v.(string)
			if _, err := mail.ParseAddress(s); err != nil || strings.Contains(s, "<") {
				verr.Add("email", "is not a valid address")
			}
		}
	}

	return verr.OrNil()
}

func validDate(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func stringList(v any) bool {
	switch list := v.(type) {
	case []string:
		return true
	case []any:
		for _, q := range list {
			if _, ok := q.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// mergeFields overlays updates onto base. A nil update value removes the
// field. Reserved fields are ignored.
func mergeFields(base, updates map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(updates))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range updates {
		if slices.Contains(reservedFields, k) {
			continue
		}
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
