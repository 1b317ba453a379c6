package ingest

import (
	"context"

	"github.com/derekjytan/xai/internal/domain"
	"github.com/derekjytan/xai/internal/domain/post"
)

// Repository stores new posts.
type Repository interface {
	Insert(ctx context.Context, p *post.Post) error
}

// MetadataGenerator derives AI metadata from post text.
type MetadataGenerator interface {
	GenerateMetadata(ctx context.Context, content, author string) (post.Metadata, error)
}

// Embedder vectorizes post content. Implementations may also satisfy
// domain.BatchEmbedder.
type Embedder interface {
	domain.Embedder
}
