package chi

import (
	"net/url"
	"strconv"
	"time"

	"github.com/derekjytan/xai/internal/domain"
)

// dateOnly is accepted alongside RFC 3339 for date filters.
const dateOnly = "2006-01-02"

// parseTime reads an optional timestamp. A bare date means midnight UTC.
func parseTime(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateOnly} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.NewValidationError(field, "must be an ISO 8601 date or timestamp, got %q", *s)
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(q url.Values, name string, def int) (int, bool) {
	raw := q.Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryBool reads a boolean query parameter, returning def when absent.
func queryBool(q url.Values, name string, def bool) (bool, bool) {
	raw := q.Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
