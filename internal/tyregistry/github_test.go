package tyregistry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitHubClientRepositoryHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"repository":{"isArchived":true,"pushedAt":"2020-01-01T00:00:00Z","releases":{"nodes":[{"tagName":"v1.0.0"}]}}}}`))
	}))
	defer server.Close()

	client := NewGitHubClient("")
	client.guarded.baseURL = server.URL

	archived, days, err := client.RepositoryHealth(context.Background(), "owner", "repo")
	if err != nil {
		t.Fatalf("RepositoryHealth failed: %v", err)
	}
	if !archived {
		t.Error("expected archived=true")
	}
	if days <= 0 {
		t.Errorf("expected positive days since push, got %d", days)
	}
}

func TestGitHubClientGetReleaseTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"repository":{"isArchived":false,"pushedAt":"2024-01-01T00:00:00Z","releases":{"nodes":[{"tagName":"v1.0.0"},{"tagName":"v1.1.0"}]}}}}`))
	}))
	defer server.Close()

	client := NewGitHubClient("token")
	client.guarded.baseURL = server.URL

	tags, err := client.GetReleaseTags(context.Background(), "owner", "repo")
	if err != nil {
		t.Fatalf("GetReleaseTags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("expected 2 tags, got %v", tags)
	}
}
