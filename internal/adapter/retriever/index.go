package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// Index holds one label vector per catalog item and answers nearest-neighbor
// queries by brute-force cosine similarity. It is immutable once built.
type Index struct {
	entries   []domain.CatalogEntry
	norms     []float64
	dimension int
}

// BuildOptions tunes BuildIndex.
type BuildOptions struct {
	BatchSize int
	// Progress is called after each batch with the number of labels encoded so far.
	Progress func(done, total int)
}

// BuildIndex encodes every item label once. Repeated URIs keep their first
// position. An encoder that returns the wrong number of vectors or mixed
// dimensions fails the build with ErrModelUnavailable.
func BuildIndex(ctx context.Context, items []domain.FoodItem, encoder port.Embedder, opts BuildOptions) (*Index, error) {
	items = dedupeByURI(items)

	batch := opts.BatchSize
	if batch <= 0 {
		batch = 64
	}

	dimension := encoder.Dimension()
	entries := make([]domain.CatalogEntry, 0, len(items))
	norms := make([]float64, 0, len(items))

	for start := 0; start < len(items); start += batch {
		end := start + batch
		if end > len(items) {
			end = len(items)
		}

		labels := make([]string, end-start)
		for i, it := range items[start:end] {
			labels[i] = it.Label
		}

		vecs, err := encoder.Embed(ctx, labels)
		if err != nil {
			return nil, fmt.Errorf("encode catalog labels: %w", err)
		}
		if len(vecs) != len(labels) {
			return nil, fmt.Errorf("%w: encoder returned %d vectors for %d labels", domain.ErrModelUnavailable, len(vecs), len(labels))
		}

		for i, vec := range vecs {
			if len(vec) != dimension {
				return nil, fmt.Errorf("%w: label %q encoded with dimension %d, want %d", domain.ErrModelUnavailable, labels[i], len(vec), dimension)
			}
			entries = append(entries, domain.CatalogEntry{Item: items[start+i], Vector: vec})
			norms = append(norms, norm(vec))
		}

		if opts.Progress != nil {
			opts.Progress(end, len(items))
		}
	}

	return &Index{entries: entries, norms: norms, dimension: dimension}, nil
}

// NewIndexFromEntries wraps already-encoded entries. Duplicate URIs keep the
// first entry.
func NewIndexFromEntries(entries []domain.CatalogEntry) (*Index, error) {
	idx := &Index{}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Item.URI]; dup {
			continue
		}
		seen[e.Item.URI] = struct{}{}
		if idx.dimension == 0 {
			idx.dimension = len(e.Vector)
		}
		if len(e.Vector) != idx.dimension {
			return nil, fmt.Errorf("%w: entry %s has dimension %d, want %d", domain.ErrModelUnavailable, e.Item.URI, len(e.Vector), idx.dimension)
		}
		idx.entries = append(idx.entries, e)
		idx.norms = append(idx.norms, norm(e.Vector))
	}
	return idx, nil
}

// TopK returns the k+1 entries most similar to query, most similar first.
// Ties keep catalog order. A negative k is treated as 0.
func (idx *Index) TopK(query []float32, k int) ([]domain.ScoredFoodItem, error) {
	if len(query) != idx.dimension {
		return nil, domain.NewInvalidArgumentError("query",
			fmt.Sprintf("query dimension mismatch: expected %d, got %d", idx.dimension, len(query)))
	}
	if k < 0 {
		k = 0
	}

	qn := norm(query)
	scored := make([]domain.ScoredFoodItem, len(idx.entries))
	for i, e := range idx.entries {
		scored[i] = domain.ScoredFoodItem{
			Item:       e.Item,
			Similarity: cosine(query, e.Vector, qn, idx.norms[i]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	n := k + 1
	if n > len(scored) {
		n = len(scored)
	}
	return scored[:n], nil
}

func (idx *Index) Len() int {
	return len(idx.entries)
}

func (idx *Index) Dimension() int {
	return idx.dimension
}

// Entries returns the indexed items in catalog order.
func (idx *Index) Entries() []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

func dedupeByURI(items []domain.FoodItem) []domain.FoodItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.FoodItem, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.URI]; dup {
			continue
		}
		seen[it.URI] = struct{}{}
		out = append(out, it)
	}
	return out
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine uses precomputed norms. Zero-norm vectors score 0.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	s := dot / (na * nb)
	if math.IsNaN(s) {
		return 0
	}
	return s
}
