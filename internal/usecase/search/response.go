package search

import (
	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/search/result"
)

// Response is the outcome of one search.
type Response struct {
	Query string
	// EnhancedQuery is the executed expression, nil when enhancement was skipped.
	EnhancedQuery *string
	Analysis      *analysis.QueryAnalysis
	Results       []result.Result
	TotalCount    int
	Limit         int
	Offset        int
	Summary       *analysis.Summary
}

// Answer is the outcome of question answering.
type Answer struct {
	Question string
	Answer   string
	Sources  []result.Result
	Analysis *analysis.QueryAnalysis
}
