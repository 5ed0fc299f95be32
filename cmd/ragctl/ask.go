package main

import (
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ragcore/internal/qa"
)

var askSearchID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question, answered from the ingested documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSearchID, "search-id", "", "reuse a prior search's context instead of searching fresh")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	response, err := orchestrator.Ask(cmd.Context(), qa.Request{
		Question: args[0],
		SearchID: askSearchID,
	})
	if err != nil {
		return err
	}

	cmd.Println(response.Answer)
	if len(response.Sources) > 0 {
		cmd.Printf("\nsources: %v\n", response.Sources)
	}
	return nil
}
