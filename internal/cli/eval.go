package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"foodrec/internal/usecase"
)

var (
	evalFile string
	evalJSON bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate recommendations against expected results",
	Long: `Run recommendation cases from a YAML file and report precision, recall,
reciprocal rank and exact matches.

The file looks like:
  cases:
    - food_item_uri: urn:food:potato
      expected_uris: [urn:food:sweet-potato]

Examples:
  foodrec eval -f cases.yaml`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalFile, "file", "f", "", "YAML file with eval cases (required)")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output as JSON")
	_ = evalCmd.MarkFlagRequired("file")
}

func runEval(cmd *cobra.Command, args []string) error {
	cases, err := usecase.LoadEvalCases(evalFile)
	if err != nil {
		return err
	}

	eng, rt, err := buildEngine(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := usecase.NewEvalUseCase(eng.Recommend, eng.Catalog).Run(cmd.Context(), cases)
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}

	if evalJSON {
		output, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%-40s %9s %7s %6s %5s\n", "FOOD ITEM", "PRECISION", "RECALL", "RR", "EXACT")
	fmt.Println(strings.Repeat("-", 71))
	for _, c := range report.Cases {
		exact := "no"
		if c.ExactMatch {
			exact = "yes"
		}
		fmt.Printf("%-40s %9.3f %7.3f %6.3f %5s\n", truncate(c.FoodItemURI, 40), c.Precision, c.Recall, c.ReciprocalRank, exact)
	}
	fmt.Println(strings.Repeat("-", 71))
	fmt.Printf("%-40s %9.3f %7.3f %6.3f %2d/%-2d\n", "MEAN", report.MeanPrecision, report.MeanRecall, report.MRR,
		report.ExactMatches, len(report.Cases))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}
