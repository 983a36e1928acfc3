package port

import "context"

// Embedder turns text into fixed-dimension vectors. The same instance must
// encode both the catalog and incoming queries so that all vectors share one
// metric space.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// QueryEncoder encodes a single query string. Implementations may cache.
type QueryEncoder interface {
	EncodeQuery(ctx context.Context, text string) ([]float32, error)
}
