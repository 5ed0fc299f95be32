// Package queue implements C11: asynchronous ingestion via asynq, mirroring
// the teacher's queue client/task split: Client enqueues tasks and a
// separate worker process (cmd/worker) does the actual (synchronous) ingest
// work. The HTTP upload handler does not enqueue; it runs ingestion inline.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/ragcore/internal/config"
)

const (
	TypeDocumentUpload     = "document:upload"
	TypeDocumentSummaries  = "document:summaries"
	TypeDocumentParagraphs = "document:paragraphs"
)

type DocumentUploadPayload struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
	Force    bool   `json:"force"`
}

type DocumentSummariesPayload struct {
	Filename string `json:"filename"`
}

type DocumentParagraphsPayload struct {
	Filename string `json:"filename"`
}

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) EnqueueUpload(payload DocumentUploadPayload) error {
	return c.enqueue(TypeDocumentUpload, payload, asynq.MaxRetry(2), asynq.Timeout(5*time.Minute))
}

func (c *Client) EnqueueSummaries(payload DocumentSummariesPayload) error {
	return c.enqueue(TypeDocumentSummaries, payload, asynq.MaxRetry(2), asynq.Timeout(10*time.Minute))
}

func (c *Client) EnqueueParagraphs(payload DocumentParagraphsPayload) error {
	return c.enqueue(TypeDocumentParagraphs, payload, asynq.MaxRetry(2), asynq.Timeout(10*time.Minute))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := c.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
