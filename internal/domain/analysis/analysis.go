package analysis

import (
	"fmt"
	"strings"
)

// DefaultIntent labels queries whose intent could not be detected.
const DefaultIntent = "general_search"

// QueryAnalysis is the per-request output of the query enhancement collaborator.
type QueryAnalysis struct {
	EnhancedQuery         string         `json:"enhanced_query,omitempty"`
	Intent                string         `json:"intent,omitempty"`
	Keywords              []string       `json:"keywords,omitempty"`
	ExpandedTerms         []string       `json:"expanded_terms,omitempty"`
	Filters               map[string]any `json:"filters,omitempty"`
	ClarificationNeeded   bool           `json:"clarification_needed"`
	ClarificationQuestion *string        `json:"clarification_question,omitempty"`
	// Error is set when enhancement degraded.
	Error string `json:"error,omitempty"`
}

// Degraded returns the analysis recorded when enhancement of query failed:
// the query itself, its whitespace-separated words and the default intent.
func Degraded(query string, err error) QueryAnalysis {
	return QueryAnalysis{
		EnhancedQuery: query,
		Intent:        DefaultIntent,
		Keywords:      strings.Fields(query),
		Filters:       map[string]any{},
		Error:         err.Error(),
	}
}

// IsDegraded reports whether enhancement failed for this request.
func (a *QueryAnalysis) IsDegraded() bool { return a.Error != "" }

// Terms returns the enhanced query followed by keywords and expanded terms,
// skipping blanks.
func (a *QueryAnalysis) Terms() []string {
	terms := make([]string, 0, 1+len(a.Keywords)+len(a.ExpandedTerms))
	if a.EnhancedQuery != "" {
		terms = append(terms, a.EnhancedQuery)
	}
	for _, group := range [][]string{a.Keywords, a.ExpandedTerms} {
		for _, t := range group {
			if t != "" {
				terms = append(terms, t)
			}
		}
	}
	return terms
}

// Summary is the summarization collaborator's digest of a result page.
type Summary struct {
	Summary          string   `json:"summary"`
	KeyInsights      []string `json:"key_insights"`
	Themes           []string `json:"themes"`
	NotablePosts     []int    `json:"notable_posts"`
	SuggestedQueries []string `json:"suggested_queries"`
	// Error is set when summarization degraded.
	Error string `json:"error,omitempty"`
}

// DegradedSummary is returned in place of a summary when summarization fails.
func DegradedSummary(resultCount int, err error) Summary {
	return Summary{
		Summary:          fmt.Sprintf("Found %d posts matching your query.", resultCount),
		KeyInsights:      []string{},
		Themes:           []string{},
		NotablePosts:     []int{},
		SuggestedQueries: []string{},
		Error:            err.Error(),
	}
}
