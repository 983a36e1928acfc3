package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"foodrec/config"
	"foodrec/internal/adapter/retriever"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Pre-encode the catalog into the on-disk encode cache",
	Long: `Encode every catalog label and store the vectors in .foodrec/cache.db,
so later starts with cache.enabled only encode labels that changed. The cache
is cleared automatically when the embedding model or dimension changes.

Examples:
  foodrec warm
  foodrec warm --dir /srv/foodrec`,
	RunE: runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rt, err := openRuntime(cfg, GetRootDir(), nil, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	items := rt.catalog.ListFoodItems()
	fmt.Printf("Encoding %d labels with %s...\n", len(items), rt.embedder.ModelName())

	start := time.Now()
	idx, err := retriever.BuildIndex(cmd.Context(), items, rt.embedder, retriever.BuildOptions{
		BatchSize: cfg.Embedding.BatchSize,
		Progress:  newProgress("Warming cache"),
	})
	if err != nil {
		return fmt.Errorf("warm failed: %w", err)
	}

	fmt.Printf("\nWarm complete:\n")
	fmt.Printf("  Labels encoded: %d\n", idx.Len())
	fmt.Printf("  Dimension:      %d\n", idx.Dimension())
	fmt.Printf("  Duration:       %s\n", formatDuration(time.Since(start)))
	fmt.Printf("\nCache stored at: %s\n", config.CacheDBPath(GetRootDir()))
	return nil
}
