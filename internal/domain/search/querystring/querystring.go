// Package querystring builds expressions in the engine's query-string mini-language.
package querystring

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

// Operator joins query-string clauses.
type Operator string

// Supported operators.
const (
	And Operator = "AND"
	Or  Operator = "OR"
)

// ParseOperator normalizes s to an Operator. Empty means AND.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(And):
		return And, nil
	case string(Or):
		return Or, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidOperator, s)
	}
}

// Backslash and quote go first so later replacements are not double-escaped.
var reserved = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`:`, `\:`,
	`/`, `\/`,
	`[`, `\[`,
	`]`, `\]`,
	`-`, `\-`,
)

// Escape backslash-escapes reserved characters in a literal value.
func Escape(value string) string {
	return reserved.Replace(value)
}

// FieldEquals returns a phrase clause scoping value to field: field:"value".
func FieldEquals(field, value string) string {
	return field + `:"` + Escape(value) + `"`
}

// Group wraps free text in parentheses so it binds as one clause.
func Group(text string) string {
	return "(" + text + ")"
}

// Join combines clauses with op. Empty clauses are skipped.
func Join(op Operator, clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " "+string(op)+" ")
}
