package ordering

import (
	"strings"

	"github.com/derekjytan/xai/internal/domain"
)

// Field is the attribute a result page is ordered by.
type Field string

// Sort fields.
const (
	Relevance Field = "relevance"
	Date      Field = "date"
	Likes     Field = "likes"
	Reshares  Field = "reshares"
	Views     Field = "views"
)

// Direction is ascending or descending.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseField validates a sort field. Empty selects Relevance; "retweets" is
// accepted as an alias of Reshares.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(s) {
	case "":
		return Relevance, nil
	case "retweets":
		return Reshares, nil
	}
	f := Field(strings.ToLower(s))
	switch f {
	case Relevance, Date, Likes, Reshares, Views:
		return f, nil
	default:
		return "", domain.NewValidationError("sort_by",
			"must be one of relevance, date, likes, reshares, views, got %q", s)
	}
}

// ParseDirection validates a sort direction. Empty selects Desc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case "", Desc:
		return Desc, nil
	case Asc:
		return Asc, nil
	default:
		return "", domain.NewValidationError("sort_order", "must be asc or desc, got %q", s)
	}
}

// Sort pairs a field with a direction.
type Sort struct {
	Field     Field
	Direction Direction
}

// Default orders by relevance.
func Default() Sort {
	return Sort{Field: Relevance, Direction: Desc}
}
