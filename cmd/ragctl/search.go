package main

import (
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ragcore/internal/search"
)

var (
	searchTopK      int
	searchThreshold float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a vector search against the ingested collections",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	result, err := engine.Search(cmd.Context(), search.Request{
		Query:     args[0],
		TopK:      searchTopK,
		Threshold: searchThreshold,
	})
	if err != nil {
		return err
	}

	cmd.Printf("search_id: %s\n", result.SearchID)
	for i, hit := range result.Results {
		cmd.Printf("%d. [%.4f] %s (%s / %s)\n", i+1, hit.Score, hit.Document, hit.Collection, hit.ChunkID)
		cmd.Printf("   %s\n", truncate(hit.Content, 160))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
