package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"foodrec/internal/adapter/scoring"
	"foodrec/internal/domain"
)

type stubRetriever struct {
	results []domain.ScoredFoodItem
	err     error
	gotK    int
	gotText string
	calls   int
}

func (r *stubRetriever) Search(_ context.Context, text string, k int) ([]domain.ScoredFoodItem, error) {
	r.calls++
	r.gotText = text
	r.gotK = k
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}

type countingFallbacks struct{ n int }

func (c *countingFallbacks) RecordRecommendFallback(context.Context) { c.n++ }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scored(uris ...string) []domain.ScoredFoodItem {
	out := make([]domain.ScoredFoodItem, len(uris))
	for i, u := range uris {
		out[i] = domain.ScoredFoodItem{
			Item:       domain.FoodItem{URI: u, Label: u},
			Similarity: 1 - float64(i)*0.1,
		}
	}
	return out
}

func uris(items []domain.FoodItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.URI
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecommendAlternative_FiltersStrictlyHealthier(t *testing.T) {
	ret := &stubRetriever{results: scored("potato", "fries", "baked", "sweet", "same")}
	scores := scoring.NewScoreTableFromMap(map[string]float64{
		"potato": 0.4,
		"fries":  0.2,
		"baked":  0.6,
		"sweet":  0.7,
		"same":   0.4,
	})
	uc := NewRecommendUseCase(ret, scores, RecommendOptions{}, nil, quietLogger())

	got, err := uc.RecommendAlternative(context.Background(), domain.FoodItem{URI: "potato", Label: "Potato"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"baked", "sweet"}
	if !equalStrings(uris(got), want) {
		t.Errorf("got %v, want %v (similarity order, equal score excluded)", uris(got), want)
	}
	if ret.gotK != 10 {
		t.Errorf("expected default k=10, got %d", ret.gotK)
	}
	if ret.gotText != "Potato" {
		t.Errorf("expected label to be encoded, got %q", ret.gotText)
	}
}

func TestRecommendAlternative_FallbackReturnsItem(t *testing.T) {
	ret := &stubRetriever{results: scored("apple", "pie")}
	scores := scoring.NewScoreTableFromMap(map[string]float64{"apple": 0.9, "pie": 0.1})
	fallbacks := &countingFallbacks{}
	uc := NewRecommendUseCase(ret, scores, RecommendOptions{}, fallbacks, quietLogger())

	item := domain.FoodItem{URI: "apple", Label: "Apple"}
	got, err := uc.RecommendAlternative(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != item {
		t.Errorf("expected [item] fallback, got %v", got)
	}
	if fallbacks.n != 1 {
		t.Errorf("expected one fallback recorded, got %d", fallbacks.n)
	}
}

func TestRecommendAlternative_EmptyNeighbors(t *testing.T) {
	uc := NewRecommendUseCase(&stubRetriever{}, scoring.NewScoreTableFromMap(nil), RecommendOptions{}, nil, quietLogger())

	item := domain.FoodItem{URI: "x", Label: "X"}
	got, err := uc.RecommendAlternative(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != item {
		t.Errorf("expected [item], got %v", got)
	}
}

func TestRecommendAlternative_UnknownSourceUsesDefault(t *testing.T) {
	ret := &stubRetriever{results: scored("a", "b")}
	scores := scoring.NewScoreTableFromMap(map[string]float64{"a": 0.3, "b": 0.6})

	cases := []struct {
		name    string
		unknown float64
		want    []string
	}{
		{"zero_default", 0, []string{"a", "b"}},
		{"neutral_default", 0.5, []string{"b"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewRecommendUseCase(ret, scores, RecommendOptions{UnknownScore: tc.unknown}, nil, quietLogger())
			got, err := uc.RecommendAlternative(context.Background(), domain.FoodItem{URI: "missing", Label: "Missing"})
			if err != nil {
				t.Fatal(err)
			}
			if !equalStrings(uris(got), tc.want) {
				t.Errorf("got %v, want %v", uris(got), tc.want)
			}
		})
	}
}

func TestRecommendAlternative_PropagatesRetrieverError(t *testing.T) {
	ret := &stubRetriever{err: domain.ErrModelUnavailable}
	uc := NewRecommendUseCase(ret, scoring.NewScoreTableFromMap(nil), RecommendOptions{}, nil, quietLogger())

	_, err := uc.RecommendAlternative(context.Background(), domain.FoodItem{URI: "x", Label: "X"})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestRecommendAlternative_Idempotent(t *testing.T) {
	ret := &stubRetriever{results: scored("s", "a", "b", "c")}
	scores := scoring.NewScoreTableFromMap(map[string]float64{"s": 0.5, "a": 0.6, "b": 0.4, "c": 0.9})
	uc := NewRecommendUseCase(ret, scores, RecommendOptions{}, nil, quietLogger())

	item := domain.FoodItem{URI: "s", Label: "S"}
	first, err := uc.RecommendAlternative(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	second, err := uc.RecommendAlternative(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(uris(first), uris(second)) {
		t.Errorf("results differ: %v vs %v", uris(first), uris(second))
	}
}

func TestBestAlternative(t *testing.T) {
	ret := &stubRetriever{results: scored("s", "a", "b", "c", "d")}
	scores := scoring.NewScoreTableFromMap(map[string]float64{
		"s": 0.5,
		"a": 0.6,
		"b": 0.8,
		"c": 0.8,
		"d": 0.4,
	})
	uc := NewRecommendUseCase(ret, scores, RecommendOptions{}, nil, quietLogger())

	best, err := uc.BestAlternative(context.Background(), domain.FoodItem{URI: "s", Label: "S"})
	if err != nil {
		t.Fatal(err)
	}
	if best.URI != "b" {
		t.Errorf("expected b (healthiest, earlier of a tie), got %s", best.URI)
	}

	fallbacks := &countingFallbacks{}
	uc = NewRecommendUseCase(ret, scores, RecommendOptions{}, fallbacks, quietLogger())
	item := domain.FoodItem{URI: "c", Label: "C"}
	best, err = uc.BestAlternative(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	if best != item || fallbacks.n != 1 {
		t.Errorf("expected fallback to item, got %v (fallbacks=%d)", best, fallbacks.n)
	}
}
