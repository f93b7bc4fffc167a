package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edumart/edumart-server-go/pkg/cache"
)

// ErrProviderUnavailable marks transport or API failures from the identity
// provider.
var ErrProviderUnavailable = errors.New("identity provider unavailable")

const roleCacheKeyPrefix = "identity:role:"

// Client handles identity provider API operations. Token issuance and
// validation live entirely with the provider; this client only reads and
// writes the role claim used by the educator gate.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	roleCacheTTL  time.Duration
	cache         cache.Client
	httpClient    *http.Client
}

// NewClient creates a new identity provider client.
func NewClient(baseURL, apiKey, webhookSecret string, roleCacheTTL time.Duration, cacheClient cache.Client) *Client {
	if cacheClient == nil {
		cacheClient = cache.NewMemoryCache()
	}
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		roleCacheTTL:  roleCacheTTL,
		cache:         cacheClient,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetUserRole returns the role claim for the given user. Results are cached
// for a short TTL so the gate does not hit the provider on every request.
func (c *Client) GetUserRole(ctx context.Context, userID string) (string, error) {
	cacheKey := roleCacheKeyPrefix + userID
	if cached, err := c.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		return cached, nil
	}

	url := fmt.Sprintf("%s/v1/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "Edumart-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status=%d, body=%s", ErrProviderUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var payload struct {
		PublicMetadata struct {
			Role string `json:"role"`
		} `json:"publicMetadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrProviderUnavailable, err)
	}

	role := payload.PublicMetadata.Role
	if role != "" {
		_ = c.cache.Set(ctx, cacheKey, role, c.roleCacheTTL)
	}

	return role, nil
}

// SetUserRole updates the role claim on the identity provider and drops the
// cached value so the next gate check sees the new role.
func (c *Client) SetUserRole(ctx context.Context, userID, role string) error {
	body, err := json.Marshal(map[string]interface{}{
		"publicMetadata": map[string]string{"role": role},
	})
	if err != nil {
		return fmt.Errorf("marshal role payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/users/%s/metadata", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Edumart-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status=%d, body=%s", ErrProviderUnavailable, resp.StatusCode, string(bodyBytes))
	}

	_ = c.cache.Delete(ctx, roleCacheKeyPrefix+userID)

	return nil
}
