// Package storage implements C12: an optional S3-compatible mirror of
// uploaded raw files, keyed by documents/<filename>. Grounded on the
// teacher's internal/storage.SupabaseStorage — same HTTP-based object
// API, generalized to a Store interface so callers get a no-op when no
// object store is configured, which is the spec's default (not required
// for correctness).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const documentKeyPrefix = "documents/"

type Store interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) error
	Download(ctx context.Context, filename string) ([]byte, error)
	Delete(ctx context.Context, filename string) error
	PublicURL(filename string) string
	Enabled() bool
}

// noopStore is used when OBJECT_STORE_URL is unset; the mirror is optional
// per spec.md §6, so ingestion must succeed without one configured.
type noopStore struct{}

func NewNoop() Store { return noopStore{} }

func (noopStore) Upload(context.Context, string, []byte, string) error { return nil }
func (noopStore) Download(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("object store not configured")
}
func (noopStore) Delete(context.Context, string) error { return nil }
func (noopStore) PublicURL(string) string               { return "" }
func (noopStore) Enabled() bool                         { return false }

// HTTPStore mirrors files to an S3-compatible object store over its HTTP
// object API, the same request shape as the teacher's SupabaseStorage.
type HTTPStore struct {
	baseURL    string
	accessKey  string
	secretKey  string
	bucket     string
	httpClient *http.Client
}

func NewHTTPStore(baseURL, accessKey, secretKey, bucket string) *HTTPStore {
	return &HTTPStore{
		baseURL:    baseURL,
		accessKey:  accessKey,
		secretKey:  secretKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *HTTPStore) Enabled() bool { return s.baseURL != "" }

func (s *HTTPStore) objectURL(filename string) string {
	return fmt.Sprintf("%s/object/%s/%s%s", s.baseURL, s.bucket, documentKeyPrefix, filename)
}

func (s *HTTPStore) Upload(ctx context.Context, filename string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(filename), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(s.accessKey, s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %q: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload %q failed (%d): %s", filename, resp.StatusCode, string(body))
	}
	return nil
}

func (s *HTTPStore) Download(ctx context.Context, filename string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	req.SetBasicAuth(s.accessKey, s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download %q failed (%d)", filename, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPStore) Delete(ctx context.Context, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(filename), nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.SetBasicAuth(s.accessKey, s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %q: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("delete %q failed (%d)", filename, resp.StatusCode)
	}
	return nil
}

func (s *HTTPStore) PublicURL(filename string) string {
	return fmt.Sprintf("%s/object/public/%s/%s%s", s.baseURL, s.bucket, documentKeyPrefix, filename)
}
