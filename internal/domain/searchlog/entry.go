package searchlog

import "time"

// Entry is one append-only record of a completed search.
type Entry struct {
	ID            int64
	OriginalQuery string
	ExecutedQuery string
	// Intent is empty when enhancement was skipped or degraded.
	Intent      string
	ResultCount int
	CreatedAt   time.Time
}
