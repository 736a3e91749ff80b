package extract

import "strings"

// Normalize collapses all whitespace runs in raw to single spaces and
// trims leading and trailing whitespace. It is pure, total, and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
