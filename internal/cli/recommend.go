package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"foodrec/internal/domain"
)

var (
	recommendURI  string
	recommendBest bool
	recommendJSON bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend healthier alternatives for a food item",
	Long: `List label-similar items with a strictly better health score, most
similar first. When none qualifies, the item itself is returned.

Examples:
  foodrec recommend -u "urn:food:potato"
  foodrec recommend -u "urn:food:potato" --best --json`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().StringVarP(&recommendURI, "uri", "u", "", "food item URI (required)")
	recommendCmd.Flags().BoolVar(&recommendBest, "best", false, "return only the healthiest alternative")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output as JSON")
	_ = recommendCmd.MarkFlagRequired("uri")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	eng, rt, err := buildEngine(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	item, err := eng.Catalog.FoodItem(recommendURI)
	if err != nil {
		return err
	}

	var items []domain.FoodItem
	if recommendBest {
		best, err := eng.Recommend.BestAlternative(cmd.Context(), item)
		if err != nil {
			return fmt.Errorf("recommendation failed: %w", err)
		}
		items = []domain.FoodItem{best}
	} else {
		items, err = eng.Recommend.RecommendAlternative(cmd.Context(), item)
		if err != nil {
			return fmt.Errorf("recommendation failed: %w", err)
		}
	}

	if recommendJSON {
		output, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	sourceScore, _ := eng.Scores().Lookup(item.URI)
	fmt.Printf("Alternatives for %s (health score %.4f):\n\n", item.Label, sourceScore)
	if len(items) == 1 && items[0].URI == item.URI {
		fmt.Println("No healthier alternative found among similar items.")
		return nil
	}
	for i, it := range items {
		score, _ := eng.Scores().Lookup(it.URI)
		fmt.Printf("[%d] %s (health score %.4f)\n    %s\n", i+1, it.Label, score, it.URI)
	}
	return nil
}
