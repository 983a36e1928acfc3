package store

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *EmbeddingCache {
	t.Helper()
	c, err := OpenEmbeddingCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestEmbeddingCache_PutGet(t *testing.T) {
	c := openTestCache(t)

	err := c.PutMany(map[string][]float32{
		"a": {1, 2, 3},
		"b": {-0.5, 0, 0.25},
	})
	if err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany([]string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if got["b"][0] != -0.5 || got["b"][2] != 0.25 {
		t.Errorf("vector round trip failed: %v", got["b"])
	}

	n, err := c.Count()
	if err != nil || n != 2 {
		t.Errorf("expected count 2, got %d (%v)", n, err)
	}
}

func TestEmbeddingCache_PrepareClearsOnModelChange(t *testing.T) {
	c := openTestCache(t)

	reason, err := c.Prepare("model-a", 4)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if reason != "" {
		t.Errorf("fresh cache should not report a clear, got %q", reason)
	}
	if err := c.PutMany(map[string][]float32{"k": {1, 0, 0, 0}}); err != nil {
		t.Fatal(err)
	}

	reason, err = c.Prepare("model-a", 4)
	if err != nil {
		t.Fatal(err)
	}
	if reason != "" {
		t.Errorf("same model should keep cache, got %q", reason)
	}
	if n, _ := c.Count(); n != 1 {
		t.Errorf("expected cache kept, count=%d", n)
	}

	reason, err = c.Prepare("model-b", 4)
	if err != nil {
		t.Fatal(err)
	}
	if reason == "" {
		t.Error("model change should clear the cache")
	}
	if n, _ := c.Count(); n != 0 {
		t.Errorf("expected empty cache after model change, count=%d", n)
	}
}

func TestComputeModelHash(t *testing.T) {
	if ComputeModelHash("m", 384) == ComputeModelHash("m", 768) {
		t.Error("dimension must change the hash")
	}
	if ComputeModelHash("m", 384) != ComputeModelHash("m", 384) {
		t.Error("hash must be stable")
	}
}

func TestDecodeVector_Corrupt(t *testing.T) {
	if _, err := decodeVector([]byte{1, 0}); err == nil {
		t.Error("expected error for short entry")
	}
	if _, err := decodeVector([]byte{2, 0, 0, 0, 1, 2, 3, 4}); err == nil {
		t.Error("expected error for length mismatch")
	}
}
