package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var unsafeSearchChars = regexp.MustCompile(`[^a-zA-Z0-9.\-\s]+`)

// SearchTerm is a sanitized free-text query with the typed readings the
// numeric and boolean clauses depend on.
type SearchTerm struct {
	Query string
	// Number is set when the trimmed query is a finite number.
	Number *float64
	// Bool is set when the query is exactly "true" or "false".
	Bool *bool
}

// Sanitize drops every character outside letters, digits, '.', '-' and
// whitespace.
func Sanitize(q string) string {
	return unsafeSearchChars.ReplaceAllString(q, "")
}

// ParseSearch sanitizes q and derives its numeric and boolean readings.
func ParseSearch(q string) SearchTerm {
	t := SearchTerm{Query: Sanitize(q)}

	if trimmed := strings.TrimSpace(t.Query); trimmed != "" && !strings.ContainsAny(trimmed, "xX") {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			t.Number = &n
		}
	}

	switch t.Query {
	case "true", "false":
		b := t.Query == "true"
		t.Bool = &b
	}
	return t
}

// Lower returns the query lowercased for case-insensitive matching.
func (t SearchTerm) Lower() string {
	return strings.ToLower(t.Query)
}
