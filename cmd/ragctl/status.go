package main

import (
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-collection chunk counts and inventory size",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cmd.Printf("documents: %d\n", len(reg.List()))
	for _, collection := range models.AllCollections {
		count, err := store.Count(ctx, collection, vectorstore.Where{})
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d chunks\n", collection, count)
	}
	return nil
}
