package embedding

import (
	"context"
	"hash/fnv"

	"foodrec/internal/adapter/analyzer"
)

// HashingEmbedder maps text to a fixed-size vector by feature hashing its
// stemmed words and character trigrams. It needs no model files or network,
// so it is the default backend. Whole words weigh more than trigrams, which
// only rescue near-miss spellings.
type HashingEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

const (
	wordWeight    = 1.0
	trigramWeight = 0.35
)

func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashingEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(true),
	}
}

func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *HashingEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	for _, tok := range e.tokenizer.Tokenize(text) {
		e.add(vec, "w:"+tok, wordWeight)
	}
	for _, g := range analyzer.Trigrams(text) {
		e.add(vec, "g:"+g, trigramWeight)
	}
	return Normalize(vec)
}

// add uses one hash for the bucket and another bit for the sign, so
// colliding features tend to cancel instead of piling up.
func (e *HashingEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return "foodrec-hashing-v1"
}
