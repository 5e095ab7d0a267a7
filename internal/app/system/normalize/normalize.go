// Package normalize provides canonical forms for user-supplied strings
// before they are stored or compared.
//
// Email addresses are the identity key for role resolution, so every
// lookup and every stored copy must agree on case and whitespace.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email case-folds and trims an email address.
func Email(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lower-cases and trims a verification status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FlagType lower-cases and trims a flag type value.
func FlagType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
