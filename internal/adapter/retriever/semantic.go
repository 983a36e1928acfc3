package retriever

import (
	"context"
	"fmt"
	"time"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// EncodeRecorder receives encode latencies; observability.Metrics satisfies it.
type EncodeRecorder interface {
	RecordEncode(ctx context.Context, kind string, duration time.Duration)
}

// embedderQueryEncoder adapts an Embedder to the single-text QueryEncoder.
type embedderQueryEncoder struct {
	embedder port.Embedder
}

// NewQueryEncoder encodes queries straight through the embedder, uncached.
func NewQueryEncoder(embedder port.Embedder) port.QueryEncoder {
	return embedderQueryEncoder{embedder: embedder}
}

func (e embedderQueryEncoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for 1 text", domain.ErrModelUnavailable, len(vecs))
	}
	return vecs[0], nil
}

// SemanticRetriever encodes query text and looks it up in the index. The
// encoder must be backed by the same model that built the index.
type SemanticRetriever struct {
	index    *Index
	encoder  port.QueryEncoder
	recorder EncodeRecorder
}

var _ port.Retriever = (*SemanticRetriever)(nil)

func NewSemanticRetriever(index *Index, encoder port.QueryEncoder, recorder EncodeRecorder) *SemanticRetriever {
	return &SemanticRetriever{
		index:    index,
		encoder:  encoder,
		recorder: recorder,
	}
}

// Search returns up to k+1 items most similar to text. Any text is
// encoded, including the empty string; callers validate user input.
func (r *SemanticRetriever) Search(ctx context.Context, text string, k int) ([]domain.ScoredFoodItem, error) {
	if r.index == nil || r.encoder == nil {
		return nil, fmt.Errorf("%w: semantic search not initialized", domain.ErrModelUnavailable)
	}
	start := time.Now()
	vec, err := r.encoder.EncodeQuery(ctx, text)
	if r.recorder != nil {
		r.recorder.RecordEncode(ctx, "query", time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	results, err := r.index.TopK(vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}

func (r *SemanticRetriever) Index() *Index {
	return r.index
}
