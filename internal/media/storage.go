package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StorageClient wraps interactions with the object storage service.
type StorageClient struct {
	baseURL    string
	bucket     string
	token      string
	httpClient *http.Client
}

// NewStorageClient constructs a new client for the given bucket.
func NewStorageClient(baseURL, bucket, token string) *StorageClient {
	return &StorageClient{
		baseURL: baseURL,
		bucket:  bucket,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote storage service is available.
func (c *StorageClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("storage returned status %d", resp.StatusCode)
	}
	return nil
}

// Upload stores the object under path and returns its public URL.
func (c *StorageClient) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	target := fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(c.bucket), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, url.PathEscape(c.bucket), path), nil
}
