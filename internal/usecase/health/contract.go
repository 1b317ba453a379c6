package health

import "context"

// Pinger checks store availability. Both the SQLite corpus and the redis
// cache satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
