// Package textutil provides text canonicalization for fuzzy matching
// between capture-time and resolution-time content.
package textutil

import "strings"

// Normalize trims leading and trailing whitespace and collapses internal
// runs of whitespace (including newlines) to a single space. Matching
// normalized forms makes text comparison resilient to the incidental
// whitespace differences introduced by re-serialized pages.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
