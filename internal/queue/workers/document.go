// Package workers holds the asynq task handlers run by cmd/worker. Each
// handler unmarshals its payload and calls straight into the same
// synchronous ingest.Pipeline the HTTP handlers call directly, so the
// queue path and the inline path share all ingestion semantics.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/queue"
)

type DocumentWorker struct {
	pipeline *ingest.Pipeline
}

func NewDocumentWorker(pipeline *ingest.Pipeline) *DocumentWorker {
	return &DocumentWorker{pipeline: pipeline}
}

func (w *DocumentWorker) ProcessUpload(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentUploadPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal upload payload: %w", err)
	}

	slog.Info("worker processing upload", "filename", payload.Filename)
	_, err := w.pipeline.Upload(ctx, ingest.UploadParams{
		Filename: payload.Filename,
		Text:     payload.Text,
		Force:    payload.Force,
	})
	if err != nil {
		slog.Error("worker upload failed", "filename", payload.Filename, "error", err)
		return err
	}
	return nil
}

func (w *DocumentWorker) ProcessSummaries(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentSummariesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal summaries payload: %w", err)
	}

	slog.Info("worker processing logical summaries", "filename", payload.Filename)
	_, err := w.pipeline.Summaries(ctx, payload.Filename)
	if err != nil {
		slog.Error("worker summaries failed", "filename", payload.Filename, "error", err)
		return err
	}
	return nil
}

func (w *DocumentWorker) ProcessParagraphs(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentParagraphsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal paragraphs payload: %w", err)
	}

	slog.Info("worker processing paragraph summaries", "filename", payload.Filename)
	_, err := w.pipeline.Paragraphs(ctx, payload.Filename)
	if err != nil {
		slog.Error("worker paragraphs failed", "filename", payload.Filename, "error", err)
		return err
	}
	return nil
}
