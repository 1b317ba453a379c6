package search

import (
	"strings"
	"unicode/utf8"
)

// MaxQueryTerms caps the number of OR-ed tokens in a normalized expression.
const MaxQueryTerms = 10

// EmptyExpression is the normalized form of a query with no usable tokens.
// Searching it matches nothing.
const EmptyExpression = ""

// syntaxStripper replaces characters FTS5 treats as query syntax.
var syntaxStripper = strings.NewReplacer(
	"*", " ", `"`, " ", "(", " ", ")", " ", "-", " ",
	"+", " ", ":", " ", "^", " ", "~", " ", "'", " ",
)

var stopwords = map[string]struct{}{
	"or": {}, "and": {}, "not": {}, "the": {}, "a": {},
	"an": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

// Normalize turns raw query text into an any-term token expression safe to
// hand to the full-text engine.
func Normalize(raw string) string {
	fields := strings.Fields(syntaxStripper.Replace(raw))

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, MaxQueryTerms)
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[strings.ToLower(tok)]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
		if len(tokens) == MaxQueryTerms {
			break
		}
	}

	if len(tokens) == 0 {
		return EmptyExpression
	}
	return strings.Join(tokens, " OR ")
}

// expandTerms quotes each term and ORs them together.
func expandTerms(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}
