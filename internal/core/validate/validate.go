// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// maxIdentifierLen bounds user and team ids.
const maxIdentifierLen = 128

// Identifier validates a user or team id: non-blank, no whitespace, and at
// most maxIdentifierLen bytes.
func Identifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("is required")
	}
	if len(id) > maxIdentifierLen {
		return fmt.Errorf("must be at most %d characters", maxIdentifierLen)
	}
	if strings.ContainsFunc(id, unicode.IsSpace) {
		return fmt.Errorf("must not contain whitespace")
	}
	return nil
}

// IdentifierField returns a criterio validator for identifiers.
func IdentifierField(field, id string) error {
	return criterio.Run(field, id, Identifier)
}

// EnvVarName validates a POSIX environment variable name.
func EnvVarName(name string) error {
	if name == "" {
		return fmt.Errorf("is required")
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("%q is not a valid environment variable name", name)
		}
	}
	return nil
}
