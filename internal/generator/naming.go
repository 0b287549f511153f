package generator

import (
	"regexp"
	"strings"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize converts a display name into the identifier used both as the
// exported variable and as the table name: camelCase boundaries and
// whitespace runs become "_" and the result is lower-cased.
//
// Punctuation is passed through untouched, so "Order-Item" stays
// "order-item".
func Normalize(name string) string {
	s := camelBoundary.ReplaceAllString(name, "${1}_${2}")
	s = whitespaceRun.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}
