package ecommerce

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// maxErrorSnippet limits how much of an error response body ends up in error text
const maxErrorSnippet = 256

// apiClient performs outbound calls for one platform adapter
type apiClient struct {
	platform   integration.PlatformCode
	config     ClientConfig
	httpClient *http.Client
}

func newAPIClient(platform integration.PlatformCode, config ClientConfig) (*apiClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &apiClient{
		platform: platform,
		config:   config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// newRequest builds a request bound to ctx with the common headers set
func (c *apiClient) newRequest(ctx context.Context, method, rawURL, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", c.platform, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// doRequest executes req and returns the (size-limited) response body.
// Transport failures wrap ErrPlatformUnavailable, HTTP errors wrap ErrPlatformRequestFailed
// or ErrPlatformAuthFailed.
func (c *apiClient) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", c.platform, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d%s", integration.ErrPlatformAuthFailed, resp.StatusCode, snippet(body))
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d%s", integration.ErrPlatformRequestFailed, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return ""
	}
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	return ": " + s
}
