// Package main implements ragctl, a small CLI front-end over the RAG
// core, grounded on the sercha-cli cobra command tree: one root command,
// one subcommand file per operation, package-level service singletons
// wired by the root command's PersistentPreRunE before any subcommand runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/qa"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/search"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

var (
	store        vectorstore.VectorStore
	embedder     *embedding.Client
	gateway      llm.Gateway
	reg          *registry.Registry
	cache        *searchcache.Cache
	engine       *search.Engine
	pipeline     *ingest.Pipeline
	orchestrator *qa.Orchestrator
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Command-line front-end for the RAG core",
	Long:  `Upload documents, run searches, and ask questions against the RAG core without going through HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return wireServices(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeForCLIError(err))
	}
}

// exitCodeForCLIError unwraps a cobra-returned error back to the
// apperror sentinel it carries, if any, and maps it to spec.md §6's
// process exit codes.
func exitCodeForCLIError(err error) int {
	return apperror.ExitCode(err)
}
