package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout  = 30 * time.Second
	bodySnippetSize = 500
)

// apiClient wraps authenticated JSON calls against one vendor's base
// URL. Non-2xx and non-JSON bodies surface as errors carrying the
// endpoint and a snippet of the raw vendor message, so an operator can
// diagnose without retrying blindly.
type apiClient struct {
	vendor  string
	baseURL string
	auth    func(*http.Request)
	http    *http.Client
}

func newAPIClient(vendor, baseURL string, auth func(*http.Request)) *apiClient {
	return &apiClient{
		vendor:  vendor,
		baseURL: baseURL,
		auth:    auth,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding %s payload: %w", c.vendor, endpoint, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: building request for %s: %w", c.vendor, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: calling %s: %w", c.vendor, endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s: reading %s response: %w", c.vendor, endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s: %s returned %s: %s", c.vendor, endpoint, res.Status, snippet(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: %s returned invalid JSON (%s): %s", c.vendor, endpoint, res.Status, snippet(raw))
		}
	}
	return nil
}

func snippet(raw []byte) string {
	if len(raw) > bodySnippetSize {
		raw = raw[:bodySnippetSize]
	}
	return string(raw)
}
