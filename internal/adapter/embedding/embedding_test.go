package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"foodrec/config"
	"foodrec/internal/domain"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(128)
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"potato, boiled"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, []string{"potato, boiled"})

	if len(a[0]) != 128 {
		t.Fatalf("expected dimension 128, got %d", len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("same text should embed identically")
		}
	}

	var norm float64
	for _, v := range a[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit vector, got squared norm %v", norm)
	}
}

func TestHashingEmbedder_SimilarLabelsCloser(t *testing.T) {
	e := NewHashingEmbedder(384)
	vecs, err := e.Embed(context.Background(), []string{
		"potatoes, boiled",
		"potato, baked",
		"chocolate milk",
	})
	if err != nil {
		t.Fatal(err)
	}

	near := cosine(vecs[0], vecs[1])
	far := cosine(vecs[0], vecs[2])
	if near <= far {
		t.Errorf("potato variants (%v) should be closer than potato/chocolate (%v)", near, far)
	}
}

func TestHashingEmbedder_EmptyText(t *testing.T) {
	e := NewHashingEmbedder(16)
	vecs, err := e.Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vecs[0] {
		if v != 0 {
			t.Fatal("empty text should give the zero vector")
		}
	}
}

type embeddingsRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

// fakeEmbeddingsServer answers with vector [len(text), index, 0...] and
// returns the data entries in reverse order.
func fakeEmbeddingsServer(t *testing.T, dim int, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req embeddingsRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := make([]float64, dim)
			vec[0] = float64(len(req.Input[i]))
			if dim > 1 {
				vec[1] = float64(i)
			}
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": vec,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestOpenAICompatibleEmbedder_BatchesAndOrders(t *testing.T) {
	var calls int32
	srv := fakeEmbeddingsServer(t, 4, &calls)
	defer srv.Close()

	e, err := NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:    "test",
		BaseURL:   srv.URL + "/v1",
		Model:     "test-model",
		Dimension: 4,
		BatchSize: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vecs))
	}
	for i, v := range vecs {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("vector %d belongs to wrong text: %v", i, v)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 batched requests, got %d", got)
	}
}

func TestOpenAICompatibleEmbedder_DimensionMismatch(t *testing.T) {
	var calls int32
	srv := fakeEmbeddingsServer(t, 3, &calls)
	defer srv.Close()

	e, err := NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:    "test",
		BaseURL:   srv.URL + "/v1/",
		Model:     "test-model",
		Dimension: 8,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Embed(context.Background(), []string{"potato"})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenAICompatibleEmbedder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	e, err := NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:    "test",
		BaseURL:   srv.URL + "/v1/",
		Model:     "nope",
		Dimension: 4,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Embed(context.Background(), []string{"x"}); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenAICompatibleEmbedder_FixedDimensionModel(t *testing.T) {
	e, err := NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:    "test",
		BaseURL:   "http://localhost:11434/v1/",
		Model:     "nomic-embed-text",
		Dimension: 384,
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimension() != 768 {
		t.Errorf("expected fixed dimension 768, got %d", e.Dimension())
	}
}

func TestNew_Providers(t *testing.T) {
	cfg := config.DefaultConfig().Embedding

	emb, err := New(cfg)
	if err != nil {
		t.Fatalf("hashing provider: %v", err)
	}
	if emb.Dimension() != cfg.Dimension {
		t.Errorf("expected dimension %d, got %d", cfg.Dimension, emb.Dimension())
	}

	cfg.Provider = "openai"
	cfg.APIKeyEnv = "FOODREC_TEST_KEY_THAT_IS_NOT_SET"
	if _, err := New(cfg); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("missing API key should be ErrModelUnavailable, got %v", err)
	}

	cfg.Provider = "onnx"
	if _, err := New(cfg); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("onnx without model paths should be ErrModelUnavailable, got %v", err)
	}

	cfg.Provider = "word2vec"
	if _, err := New(cfg); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("unknown provider should be ErrModelUnavailable, got %v", err)
	}
}

func TestMeanPool(t *testing.T) {
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	got := MeanPool(hidden, []int64{1, 1, 0}, 3, 2)
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("expected [2 3], got %v", got)
	}
}
