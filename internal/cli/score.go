package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	scoreURI  string
	scoreJSON bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show a food item's nutrients and health score",
	Long: `Print the nutrient amounts of one catalog item and the health score
derived from them.

Examples:
  foodrec score -u "urn:food:potato"`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scoreURI, "uri", "u", "", "food item URI (required)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output as JSON")
	_ = scoreCmd.MarkFlagRequired("uri")
}

func runScore(cmd *cobra.Command, args []string) error {
	eng, rt, err := buildEngine(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	detail, err := eng.Catalog.Detail(scoreURI)
	if err != nil {
		return err
	}

	if scoreJSON {
		output, _ := json.MarshalIndent(detail, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s\n%s\nHealth score: %.4f\n\n", detail.FoodItem.Label, detail.FoodItem.URI, detail.HealthScore)
	if len(detail.NutrientAmounts) == 0 {
		fmt.Println("No nutrient data.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUTRIENT\tVALUE\tUNIT")
	for _, n := range detail.NutrientAmounts {
		fmt.Fprintf(tw, "%s\t%g\t%s\n", n.NutrientLabel, n.Value, n.Unit)
	}
	return tw.Flush()
}
