package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"food_item_labels_2.json", "food_item_labels_10.json", true},
		{"food_item_labels_10.json", "food_item_labels_2.json", false},
		{"food_item_labels_02.json", "food_item_labels_3.json", true},
		{"a.json", "b.json", true},
		{"same", "same", false},
		{"abc", "abcd", true},
	}

	for _, tt := range tests {
		if got := NaturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("NaturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWalker_WalkNaturalOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"food_item_labels_10.json",
		"food_item_labels_2.json",
		"food_item_labels_1.json",
		"nutrient_amounts_for_food_items.json",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, ".foodrec"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".foodrec", "food_item_labels_0.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewWalker([]string{"**/food_item_labels_*.json"}, []string{".foodrec/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{"food_item_labels_1.json", "food_item_labels_2.json", "food_item_labels_10.json"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(files), files)
	}
	for i, f := range files {
		if f.RelPath != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.RelPath, want[i])
		}
	}
}
