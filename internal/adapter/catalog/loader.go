package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"foodrec/internal/adapter/fs"
	"foodrec/internal/domain"
)

type labelFile struct {
	Data []labelRecord `json:"data"`
}

type labelRecord struct {
	URI        string `json:"uri"`
	PrefLabels []struct {
		Label string `json:"label"`
	} `json:"prefLabels"`
}

type nutrientFile struct {
	Data []struct {
		FoodItemsWithNutrients []nutrientRecord `json:"foodItemsWithNutrients"`
	} `json:"data"`
}

type nutrientRecord struct {
	FoodItemURI string `json:"foodItemUri"`
	Nutrients   []struct {
		FoodItemURI string      `json:"foodItemUri"`
		URI         string      `json:"uri"`
		LabelEn     string      `json:"labelEn"`
		Unit        string      `json:"unit"`
		Value       json.Number `json:"value"`
	} `json:"nutrients"`
}

// Options locates catalog files under a directory.
type Options struct {
	Dir             string
	LabelPatterns   []string
	ExcludePatterns []string
	NutrientsFile   string
	Logger          *slog.Logger
}

// Load reads every label file matching the patterns, in natural filename
// order, plus the nutrient file, and returns a ready MemoryStore.
func Load(opts Options) (*MemoryStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	walker := fs.NewWalker(opts.LabelPatterns, opts.ExcludePatterns)
	files, err := walker.Walk(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("scan catalog dir %s: %w", opts.Dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no label files match %v in %s", opts.LabelPatterns, opts.Dir)
	}

	store := NewMemoryStore()
	for _, f := range files {
		records, err := readLabelFile(f.Path)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.URI == "" || len(rec.PrefLabels) == 0 {
				logger.Warn("skipping label record without uri or prefLabel", "file", f.RelPath, "uri", rec.URI)
				continue
			}
			store.PutFoodItem(domain.FoodItem{URI: rec.URI, Label: rec.PrefLabels[0].Label})
		}
		logger.Debug("loaded label file", "file", f.RelPath, "records", len(records))
	}

	if opts.NutrientsFile != "" {
		path := opts.NutrientsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Dir, path)
		}
		records, err := readNutrientFile(path)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			amounts, err := toAmounts(rec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			store.PutNutrients(rec.FoodItemURI, amounts)
		}
	}

	logger.Info("catalog loaded",
		"dir", opts.Dir,
		"label_files", len(files),
		"food_items", store.Len(),
		"with_nutrients", len(store.FoodItemURIsWithNutrients()),
	)
	return store, nil
}

func readLabelFile(path string) ([]labelRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label file: %w", err)
	}
	var lf labelFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse label file %s: %w", path, err)
	}
	return lf.Data, nil
}

func readNutrientFile(path string) ([]nutrientRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nutrient file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var nf nutrientFile
	if err := dec.Decode(&nf); err != nil {
		return nil, fmt.Errorf("parse nutrient file %s: %w", path, err)
	}

	var records []nutrientRecord
	for _, block := range nf.Data {
		records = append(records, block.FoodItemsWithNutrients...)
	}
	return records, nil
}

func toAmounts(rec nutrientRecord) ([]domain.NutrientAmount, error) {
	amounts := make([]domain.NutrientAmount, 0, len(rec.Nutrients))
	for _, n := range rec.Nutrients {
		value, err := parseValue(n.Value)
		if err != nil {
			return nil, fmt.Errorf("food item %s nutrient %s: %w", rec.FoodItemURI, n.URI, err)
		}
		itemURI := n.FoodItemURI
		if itemURI == "" {
			itemURI = rec.FoodItemURI
		}
		amounts = append(amounts, domain.NutrientAmount{
			FoodItemURI:   itemURI,
			NutrientURI:   n.URI,
			NutrientLabel: n.LabelEn,
			Unit:          n.Unit,
			Value:         value,
		})
	}
	return amounts, nil
}

// parseValue accepts JSON numbers and numeric strings; json.Number already
// holds the unquoted text of either.
func parseValue(n json.Number) (float64, error) {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid nutrient value %q", string(n))
	}
	return v, nil
}
