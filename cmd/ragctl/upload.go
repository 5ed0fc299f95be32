package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ragcore/internal/document"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
)

var uploadForce bool

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document into the raw chunk collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadForce, "force", false, "overwrite an existing document with the same name")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	text, err := document.ExtractText(data, contentTypeFor(path))
	if err != nil {
		return fmt.Errorf("extract text from %q: %w", path, err)
	}

	result, err := pipeline.Upload(cmd.Context(), ingest.UploadParams{
		Filename: filenameOf(path),
		Text:     text,
		Force:    uploadForce,
	})
	if err != nil {
		return err
	}

	cmd.Printf("uploaded %s: %d chunks (hash %s)\n", result.Filename, result.ChunkCount, result.ContentHash)
	return nil
}

func filenameOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func contentTypeFor(path string) string {
	if len(path) > 4 && path[len(path)-4:] == ".pdf" {
		return "application/pdf"
	}
	return "text/plain"
}
