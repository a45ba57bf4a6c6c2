// Blob storage client for user-uploaded files.
package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// StorageClient implements [BlobStore] against an object-storage endpoint
// that serves uploads at /object/{bucket}/{path} and public reads at
// /object/public/{bucket}/{path}.
type StorageClient struct {
	baseURL    string
	apiKey     string
	token      func() string
	httpClient *http.Client
}

// NewStorageClient creates a StorageClient. token supplies the current bearer
// token per request and may be nil for anonymous access.
func NewStorageClient(baseURL, apiKey string, token func() string, client *http.Client) *StorageClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &StorageClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		token:      token,
		httpClient: client,
	}
}

// Upload stores data under bucket/path, replacing any existing object.
func (s *StorageClient) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	endpoint := fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	// Overwrite instead of failing on re-upload of the same path.
	req.Header.Set("x-upsert", "true")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}
	if s.token != nil {
		if token := s.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: upload status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// PublicURL returns the world-readable URL for an object.
func (s *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, bucket, path)
}
