package usecase

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"foodrec/internal/adapter/retriever"
	"foodrec/internal/domain"
)

// EvalCase is one expected recommendation. Label may be omitted, in which
// case it is taken from the catalog.
type EvalCase struct {
	FoodItemURI  string   `yaml:"food_item_uri"`
	Label        string   `yaml:"label,omitempty"`
	ExpectedURIs []string `yaml:"expected_uris"`
}

type evalFile struct {
	Cases []EvalCase `yaml:"cases"`
}

// LoadEvalCases reads a YAML file with a top-level "cases" list.
func LoadEvalCases(path string) ([]EvalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read eval cases: %w", err)
	}
	var f evalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse eval cases: %w", err)
	}
	for i, c := range f.Cases {
		if c.FoodItemURI == "" {
			return nil, fmt.Errorf("eval case %d: food_item_uri is required", i)
		}
	}
	return f.Cases, nil
}

type EvalCaseResult struct {
	FoodItemURI    string   `json:"food_item_uri"`
	Returned       []string `json:"returned"`
	Precision      float64  `json:"precision"`
	Recall         float64  `json:"recall"`
	ReciprocalRank float64  `json:"reciprocal_rank"`
	ExactMatch     bool     `json:"exact_match"`
}

type EvalReport struct {
	Cases         []EvalCaseResult `json:"cases"`
	MeanPrecision float64          `json:"mean_precision"`
	MeanRecall    float64          `json:"mean_recall"`
	MRR           float64          `json:"mrr"`
	ExactMatches  int              `json:"exact_matches"`
}

// EvalUseCase scores RecommendAlternative against expected results.
type EvalUseCase struct {
	recommend *RecommendUseCase
	catalog   *CatalogUseCase
}

func NewEvalUseCase(recommend *RecommendUseCase, catalog *CatalogUseCase) *EvalUseCase {
	return &EvalUseCase{recommend: recommend, catalog: catalog}
}

func (u *EvalUseCase) Run(ctx context.Context, cases []EvalCase) (*EvalReport, error) {
	report := &EvalReport{Cases: make([]EvalCaseResult, 0, len(cases))}

	for _, c := range cases {
		item := domain.FoodItem{URI: c.FoodItemURI, Label: c.Label}
		if item.Label == "" {
			found, err := u.catalog.FoodItem(c.FoodItemURI)
			if err != nil {
				return nil, fmt.Errorf("eval case %s: %w", c.FoodItemURI, err)
			}
			item = found
		}

		items, err := u.recommend.RecommendAlternative(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("eval case %s: %w", c.FoodItemURI, err)
		}

		returned := make([]string, len(items))
		for i, it := range items {
			returned[i] = it.URI
		}

		res := EvalCaseResult{
			FoodItemURI:    c.FoodItemURI,
			Returned:       returned,
			Precision:      retriever.PrecisionAtK(returned, c.ExpectedURIs),
			Recall:         retriever.RecallAtK(returned, c.ExpectedURIs),
			ReciprocalRank: retriever.ReciprocalRank(returned, c.ExpectedURIs),
			ExactMatch:     sameSet(returned, c.ExpectedURIs),
		}
		report.Cases = append(report.Cases, res)

		report.MeanPrecision += res.Precision
		report.MeanRecall += res.Recall
		report.MRR += res.ReciprocalRank
		if res.ExactMatch {
			report.ExactMatches++
		}
	}

	if n := float64(len(report.Cases)); n > 0 {
		report.MeanPrecision /= n
		report.MeanRecall /= n
		report.MRR /= n
	}
	return report, nil
}

func sameSet(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}
	if len(setA) != len(setB) {
		return false
	}
	for v := range setA {
		if _, ok := setB[v]; !ok {
			return false
		}
	}
	return true
}
