package request

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/search/filter"
	"github.com/derekjytan/xai/internal/domain/search/mode"
	"github.com/derekjytan/xai/internal/domain/search/ordering"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum search query length in characters.
	MaxQueryLength    = 500
	MaxQuestionLength = 1000
	DefaultLimit      = 20
	MaxLimit          = 100
)

// Params is the unvalidated caller input of a search.
type Params struct {
	Query          string
	Limit          int
	Offset         int
	SortBy         string
	SortOrder      string
	Author         string
	Sentiment      string
	DateFrom       *time.Time
	DateTo         *time.Time
	IncludeSummary bool
	EnhanceQuery   bool
	Mode           string
}

// Request is a validated search query.
type Request struct {
	query          string
	limit          int
	offset         int
	sort           ordering.Sort
	filters        filter.Filter
	includeSummary bool
	enhance        bool
	searchMode     mode.Mode
}

// New validates search parameters. Limit must be within [1, MaxLimit]; callers
// that want the default pass DefaultLimit explicitly.
func New(p Params) (Request, error) {
	if err := validateText("query", p.Query, MaxQueryLength); err != nil {
		return Request{}, err
	}
	return build(p)
}

// ForQuestion builds the hybrid, summary-less, enhanced search that backs
// question answering.
func ForQuestion(question string, limit int) (Request, error) {
	if err := validateText("question", question, MaxQuestionLength); err != nil {
		return Request{}, err
	}
	return build(Params{
		Query:        question,
		Limit:        limit,
		EnhanceQuery: true,
		Mode:         string(mode.Hybrid),
	})
}

func build(p Params) (Request, error) {
	if p.Limit < 1 || p.Limit > MaxLimit {
		return Request{}, domain.NewValidationError("limit", "must be between 1 and %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset < 0 {
		return Request{}, domain.NewValidationError("offset", "must be non-negative, got %d", p.Offset)
	}

	field, err := ordering.ParseField(p.SortBy)
	if err != nil {
		return Request{}, err
	}
	dir, err := ordering.ParseDirection(p.SortOrder)
	if err != nil {
		return Request{}, err
	}
	m, err := mode.Parse(p.Mode)
	if err != nil {
		return Request{}, err
	}
	sentiment, err := post.ParseSentiment(p.Sentiment)
	if err != nil {
		return Request{}, err
	}
	filters, err := filter.New(p.Author, sentiment, p.DateFrom, p.DateTo)
	if err != nil {
		return Request{}, err
	}

	return Request{
		query:          p.Query,
		limit:          p.Limit,
		offset:         p.Offset,
		sort:           ordering.Sort{Field: field, Direction: dir},
		filters:        filters,
		includeSummary: p.IncludeSummary,
		enhance:        p.EnhanceQuery,
		searchMode:     m,
	}, nil
}

func validateText(field, s string, maxLen int) error {
	if strings.TrimSpace(s) == "" {
		return domain.NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(s) > maxLen {
		return domain.NewValidationError(field, "too long (max %d chars)", maxLen)
	}
	return nil
}

// Query returns the raw search text.
func (r *Request) Query() string { return r.query }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the page start.
func (r *Request) Offset() int { return r.offset }

// Sort returns the requested ordering.
func (r *Request) Sort() ordering.Sort { return r.sort }

// Filters returns the author, sentiment and date restrictions.
func (r *Request) Filters() filter.Filter { return r.filters }

// IncludeSummary reports whether the summarization step runs.
func (r *Request) IncludeSummary() bool { return r.includeSummary }

// EnhanceQuery reports whether the enhancement step runs.
func (r *Request) EnhanceQuery() bool { return r.enhance }

// Mode returns the retrieval strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }
