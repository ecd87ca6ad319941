package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CatalogClient fetches node-type metadata from the catalog endpoint.
type CatalogClient interface {
	Fetch(ctx context.Context) (*Registry, error)
}

// HTTPCatalogClient retrieves the catalog over HTTP. The catalog is fetched
// fresh for every editor session and never cached across reloads.
type HTTPCatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPCatalogClient returns a client with a 10-second timeout.
func NewHTTPCatalogClient(baseURL string) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// catalogResponse is the wire shape of the catalog endpoint.
type catalogResponse struct {
	Types []NodeType `json:"types"`
}

// Fetch retrieves and validates the node-type catalog.
func (c *HTTPCatalogClient) Fetch(ctx context.Context) (*Registry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nodes", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var result catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	return NewRegistry(result.Types)
}
