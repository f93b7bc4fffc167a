package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client handles media storage uploads for course thumbnails.
type Client struct {
	zoneName   string
	apiKey     string
	baseURL    string
	cdnURL     string
	httpClient *http.Client
}

// NewClient creates a new media storage client.
func NewClient(zoneName, apiKey, baseURL, cdnURL string) *Client {
	return &Client{
		zoneName: zoneName,
		apiKey:   apiKey,
		baseURL:  baseURL,
		cdnURL:   cdnURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// UploadImage streams an image to storage under thumbnails/ and returns the
// public CDN URL. The remote name is randomized; the original extension is
// preserved.
func (c *Client) UploadImage(ctx context.Context, body io.Reader, filename, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ext := strings.ToLower(path.Ext(filename))
	remotePath := fmt.Sprintf("thumbnails/%s%s", uuid.New().String(), ext)

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.zoneName, remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("AccessKey", c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "Edumart-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("media storage error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return fmt.Sprintf("https://%s/%s", c.cdnURL, remotePath), nil
}

// DeleteImage removes a previously uploaded image given its public URL.
// Failures are non-fatal for callers; thumbnails are replaced, not reused.
func (c *Client) DeleteImage(ctx context.Context, publicURL string) error {
	prefix := fmt.Sprintf("https://%s/", c.cdnURL)
	if !strings.HasPrefix(publicURL, prefix) {
		return fmt.Errorf("url %q does not belong to this storage zone", publicURL)
	}
	remotePath := strings.TrimPrefix(publicURL, prefix)

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.zoneName, remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("AccessKey", c.apiKey)
	req.Header.Set("User-Agent", "Edumart-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("media storage error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
