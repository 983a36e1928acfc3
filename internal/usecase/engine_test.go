package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"foodrec/internal/adapter/cache"
	"foodrec/internal/adapter/catalog"
	"foodrec/internal/adapter/embedding"
	"foodrec/internal/adapter/store"
	"foodrec/internal/domain"
)

func nutrient(uri, label string, value float64) domain.NutrientAmount {
	return domain.NutrientAmount{
		FoodItemURI:   uri,
		NutrientURI:   "urn:nutrient:" + label,
		NutrientLabel: label,
		Unit:          "g",
		Value:         value,
	}
}

// potatoStore builds a small catalog where the potato has several healthier
// label neighbors and some very healthy but unrelated items.
func potatoStore() *catalog.MemoryStore {
	st := catalog.NewMemoryStore()
	add := func(uri, label string, protein, fat float64) {
		st.PutFoodItem(domain.FoodItem{URI: uri, Label: label})
		st.PutNutrients(uri, []domain.NutrientAmount{
			nutrient(uri, "protein, total", protein),
			nutrient(uri, "fat, total", fat),
		})
	}

	add("urn:food:potato", "Potato, raw", 2, 10)
	add("urn:food:potato-baked", "Potato, baked", 30, 5)
	add("urn:food:sweet-potato", "Sweet potato, raw", 40, 1)
	add("urn:food:potato-chips", "Potato chips", 5, 35)
	add("urn:food:potato-mashed", "Potato, mashed", 8, 12)
	add("urn:food:salmon", "Salmon fillet", 90, 10)
	add("urn:food:lentils", "Lentils, boiled", 80, 1)
	add("urn:food:tofu", "Tofu, firm", 70, 5)
	add("urn:food:egg", "Egg, whole", 60, 10)
	add("urn:food:yogurt", "Greek yogurt", 50, 4)
	add("urn:food:chicken", "Chicken breast", 85, 3)
	add("urn:food:tuna", "Tuna, canned", 75, 2)
	add("urn:food:beans", "Black beans", 65, 1)
	add("urn:food:quinoa", "Quinoa, cooked", 45, 2)
	add("urn:food:butter", "Butter", 1, 80)

	st.PutFoodItem(domain.FoodItem{URI: "urn:food:mystery", Label: "Mystery stew"})
	return st
}

var testWeights = domain.NutrientWeights{
	"protein, total": 1,
	"fat, total":     -1,
}

func newTestEngine(t *testing.T, st *catalog.MemoryStore, opts EngineOptions) *Engine {
	t.Helper()
	opts.Weights = testWeights
	eng, err := NewEngine(context.Background(), st, embedding.NewHashingEmbedder(256), opts, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return eng
}

func TestEngine_PotatoScenario(t *testing.T) {
	st := potatoStore()
	eng := newTestEngine(t, st, EngineOptions{})
	ctx := context.Background()

	potato, err := eng.Catalog.FoodItem("urn:food:potato")
	if err != nil {
		t.Fatal(err)
	}

	got, err := eng.Recommend.RecommendAlternative(ctx, potato)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("recommendation must never be empty")
	}

	vecs, err := embedding.NewHashingEmbedder(256).Embed(ctx, []string{potato.Label})
	if err != nil {
		t.Fatal(err)
	}
	neighbors, err := eng.Index().TopK(vecs[0], 10)
	if err != nil {
		t.Fatal(err)
	}
	allowed := make(map[string]bool, len(neighbors))
	for _, n := range neighbors {
		allowed[n.Item.URI] = true
	}

	source, _ := eng.Scores().Lookup(potato.URI)
	seen := make(map[string]bool)
	for _, item := range got {
		if item.URI == potato.URI {
			t.Errorf("result must exclude the source item")
		}
		if !allowed[item.URI] {
			t.Errorf("%s is not among the 10 most similar items", item.URI)
		}
		if s, _ := eng.Scores().Lookup(item.URI); s <= source {
			t.Errorf("%s scores %f, not healthier than %f", item.URI, s, source)
		}
		if seen[item.URI] {
			t.Errorf("duplicate %s", item.URI)
		}
		seen[item.URI] = true
	}
	if !seen["urn:food:potato-baked"] || !seen["urn:food:sweet-potato"] {
		t.Errorf("expected the healthier potato variants, got %v", uris(got))
	}
}

func TestEngine_SearchPotato(t *testing.T) {
	eng := newTestEngine(t, potatoStore(), EngineOptions{QueryCacheSize: 16})

	got, err := eng.Search.Search(context.Background(), "potato", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || len(got) > 6 {
		t.Fatalf("expected 1..6 results, got %d", len(got))
	}
	seen := make(map[string]bool)
	for _, it := range got {
		if seen[it.URI] {
			t.Errorf("duplicate %s", it.URI)
		}
		seen[it.URI] = true
	}

	again, err := eng.Search.Search(context.Background(), "potato", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(uris(got), uris(again)) {
		t.Errorf("search is not idempotent: %v vs %v", uris(got), uris(again))
	}
}

func TestEngine_ItemWithoutNutrientsIsNeutral(t *testing.T) {
	eng := newTestEngine(t, potatoStore(), EngineOptions{})

	detail, err := eng.Catalog.Detail("urn:food:mystery")
	if err != nil {
		t.Fatal(err)
	}
	if detail.HealthScore != 0.5 {
		t.Errorf("expected neutral 0.5, got %f", detail.HealthScore)
	}
	if len(detail.NutrientAmounts) != 0 {
		t.Errorf("expected no nutrients, got %d", len(detail.NutrientAmounts))
	}
}

func TestEngine_BlankLabelStillRecommends(t *testing.T) {
	st := potatoStore()
	st.PutFoodItem(domain.FoodItem{URI: "urn:food:blank", Label: ""})
	eng := newTestEngine(t, st, EngineOptions{})

	blank, err := eng.Catalog.FoodItem("urn:food:blank")
	if err != nil {
		t.Fatal(err)
	}
	got, err := eng.Recommend.RecommendAlternative(context.Background(), blank)
	if err != nil {
		t.Fatalf("recommend for blank label failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("recommendation must never be empty")
	}
	source, _ := eng.Scores().Lookup(blank.URI)
	for _, item := range got {
		if item.URI == blank.URI {
			t.Errorf("result must exclude the source item")
		}
		if s, _ := eng.Scores().Lookup(item.URI); s <= source {
			t.Errorf("%s scores %f, not healthier than %f", item.URI, s, source)
		}
	}
}

func TestEngine_QueriesSkipCatalogCache(t *testing.T) {
	db, err := store.OpenEmbeddingCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	base := embedding.NewHashingEmbedder(64)
	persistent, err := cache.NewPersistentEmbedder(base, db, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	st := potatoStore()
	eng, err := NewEngine(context.Background(), st, persistent, EngineOptions{
		Weights:        testWeights,
		QueryCacheSize: 4,
		QueryEmbedder:  base,
	}, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	before, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if before != len(st.ListFoodItems()) {
		t.Fatalf("expected %d catalog vectors, got %d", len(st.ListFoodItems()), before)
	}

	for _, q := range []string{"baked potato", "salmon", "greek yogurt", "tofu stir fry", "black beans", "butter"} {
		if _, err := eng.Search.Search(context.Background(), q, 3); err != nil {
			t.Fatal(err)
		}
	}
	potato, _ := eng.Catalog.FoodItem("urn:food:potato")
	if _, err := eng.Recommend.RecommendAlternative(context.Background(), potato); err != nil {
		t.Fatal(err)
	}

	after, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("queries grew the catalog cache from %d to %d vectors", before, after)
	}
}

func TestNewEngine_QueryEmbedderDimensionMismatch(t *testing.T) {
	_, err := NewEngine(context.Background(), potatoStore(), embedding.NewHashingEmbedder(64), EngineOptions{
		Weights:       testWeights,
		QueryEmbedder: embedding.NewHashingEmbedder(32),
	}, nil, quietLogger())
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestEngineOnce_BuildsOnce(t *testing.T) {
	var builds int32
	boom := errors.New("model missing")
	once := NewEngineOnce(func(ctx context.Context) (*Engine, error) {
		atomic.AddInt32(&builds, 1)
		return nil, boom
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := once.Get(context.Background()); !errors.Is(err, boom) {
				t.Errorf("expected build error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("expected exactly one build, got %d", builds)
	}
}

func TestEngineOnce_SharesEngine(t *testing.T) {
	st := potatoStore()
	once := NewEngineOnce(func(ctx context.Context) (*Engine, error) {
		return NewEngine(ctx, st, embedding.NewHashingEmbedder(64), EngineOptions{Weights: testWeights}, nil, quietLogger())
	})

	a, err := once.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := once.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the same engine instance")
	}
}

func TestEval_Run(t *testing.T) {
	eng := newTestEngine(t, potatoStore(), EngineOptions{})

	path := filepath.Join(t.TempDir(), "cases.yaml")
	fixture := `cases:
  - food_item_uri: urn:food:potato
    expected_uris:
      - urn:food:potato-baked
      - urn:food:sweet-potato
  - food_item_uri: urn:food:salmon
    label: Salmon fillet
    expected_uris:
      - urn:food:salmon
`
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadEvalCases(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}

	report, err := NewEvalUseCase(eng.Recommend, eng.Catalog).Run(context.Background(), cases)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Cases) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Cases))
	}
	if report.Cases[0].Recall != 1 {
		t.Errorf("expected both potato variants recalled, got %+v", report.Cases[0])
	}
	if report.MRR <= 0 || report.MRR > 1 {
		t.Errorf("MRR out of range: %f", report.MRR)
	}
}

func TestLoadEvalCases_RequiresURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	if err := os.WriteFile(path, []byte("cases:\n  - label: Potato\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEvalCases(path); err == nil {
		t.Error("expected error for case without food_item_uri")
	}
}
