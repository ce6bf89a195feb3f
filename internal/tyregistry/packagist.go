package tyregistry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const packagistBaseURL = "https://repo.packagist.org"

// PackagistClient queries Packagist for a composer package's published
// versions, the registry path extensions installed via composer resolve
// against rather than TER directly.
type PackagistClient struct {
	guarded *guardedClient
}

// NewPackagistClient constructs a Packagist client.
func NewPackagistClient() *PackagistClient {
	return &PackagistClient{guarded: newGuardedClient("packagist", packagistBaseURL)}
}

// packagistResponse is Packagist's p2 package metadata shape, keyed by
// "vendor/name" to a list of per-version records.
type packagistResponse struct {
	Packages map[string][]struct {
		Version string `json:"version"`
	} `json:"packages"`
}

// GetVersions returns every published version for a "vendor/name" package.
// A 404 from Packagist means the package isn't listed there; it reports
// as an empty list rather than an error.
func (c *PackagistClient) GetVersions(ctx context.Context, vendor, name string) ([]string, error) {
	url := fmt.Sprintf("%s/p2/%s/%s.json", c.guarded.baseURL, vendor, name)

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
		return nil, fmt.Errorf("fetch packagist versions for %s/%s: %w", vendor, name, err)
	}

	var parsed packagistResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse packagist response: %w", err)
	}

	records := parsed.Packages[vendor+"/"+name]
	versions := make([]string, 0, len(records))
	for _, r := range records {
		versions = append(versions, r.Version)
	}
	return versions, nil
}
