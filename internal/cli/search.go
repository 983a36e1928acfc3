package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchText string
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Semantic search over food labels",
	Long: `Find the catalog items whose labels are most similar to the query.
Up to k+1 items are returned, most similar first.

Examples:
  foodrec search -q "potato"
  foodrec search -q "whole grain bread" -k 5 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search text (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "neighbor count (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	_ = searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, rt, err := buildEngine(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rt.Close()

	k := eng.Search.DefaultK()
	if cmd.Flags().Changed("top-k") {
		k = searchTopK
	}

	items, err := eng.Search.Search(cmd.Context(), searchText, k)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(items), searchText)
	for i, it := range items {
		fmt.Printf("[%d] %s\n    %s\n", i+1, it.Label, it.URI)
	}
	return nil
}
