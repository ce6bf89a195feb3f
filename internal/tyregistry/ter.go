package tyregistry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const terBaseURL = "https://extensions.typo3.org/api/v1"

// TERClient queries the TYPO3 Extension Repository for an extension's
// published versions: a *http.Client field, a baseURL const, and a
// GetVersions method returning a flat list.
type TERClient struct {
	guarded *guardedClient
}

// NewTERClient constructs a TER client.
func NewTERClient() *TERClient {
	return &TERClient{guarded: newGuardedClient("ter", terBaseURL)}
}

// terExtensionResponse is TER's per-extension version listing shape.
type terExtensionResponse struct {
	Versions []struct {
		Number string `json:"number"`
	} `json:"versions"`
}

// GetVersions returns every published version number for extensionKey. A
// 404 from TER means the extension isn't listed there; it reports as an
// empty list rather than an error.
func (c *TERClient) GetVersions(ctx context.Context, extensionKey string) ([]string, error) {
	url := fmt.Sprintf("%s/extension/%s/versions", c.guarded.baseURL, extensionKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.guarded.do(ctx, req)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch TER versions for %s: %w", extensionKey, err)
	}

	var parsed terExtensionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse TER response: %w", err)
	}

	versions := make([]string, 0, len(parsed.Versions))
	for _, v := range parsed.Versions {
		versions = append(versions, v.Number)
	}
	return versions, nil
}
