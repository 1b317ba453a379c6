package filter

import (
	"time"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/post"
)

// Filter restricts retrieval to posts by one author, with one sentiment and
// posted within an inclusive time range. Zero values mean "unrestricted".
type Filter struct {
	author    string
	sentiment post.Sentiment
	from      *time.Time
	to        *time.Time
}

// New validates and creates a Filter.
func New(author string, sentiment post.Sentiment, from, to *time.Time) (Filter, error) {
	if len(author) > post.MaxAuthorLength {
		return Filter{}, domain.NewValidationError("author", "too long (max %d)", post.MaxAuthorLength)
	}
	if sentiment != "" && !sentiment.IsValid() {
		return Filter{}, domain.NewValidationError("sentiment", "unknown label %q", sentiment)
	}
	if from != nil && to != nil && from.After(*to) {
		return Filter{}, domain.NewValidationError("date_from", "must not be after date_to")
	}
	return Filter{author: author, sentiment: sentiment, from: from, to: to}, nil
}

// ByAuthor returns a filter restricted to one author.
func ByAuthor(author string) Filter {
	return Filter{author: author}
}

// Author returns the exact author handle, or "".
func (f Filter) Author() string { return f.author }

// Sentiment returns the exact sentiment label, or "".
func (f Filter) Sentiment() post.Sentiment { return f.sentiment }

// From returns the inclusive lower posted-at bound.
func (f Filter) From() *time.Time { return f.from }

// To returns the inclusive upper posted-at bound.
func (f Filter) To() *time.Time { return f.to }

// IsEmpty reports whether the filter restricts nothing.
func (f Filter) IsEmpty() bool {
	return f.author == "" && f.sentiment == "" && f.from == nil && f.to == nil
}

// WithoutDates drops the date range. Vector retrieval only honors author and
// sentiment.
func (f Filter) WithoutDates() Filter {
	return Filter{author: f.author, sentiment: f.sentiment}
}
