package tyregistry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTERClientGetVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"versions":[{"number":"11.5.20"},{"number":"11.5.21"}]}`))
	}))
	defer server.Close()

	client := NewTERClient()
	client.guarded.baseURL = server.URL

	versions, err := client.GetVersions(context.Background(), "news")
	if err != nil {
		t.Fatalf("GetVersions failed: %v", err)
	}
	if len(versions) != 2 || versions[0] != "11.5.20" {
		t.Errorf("unexpected versions: %v", versions)
	}
}

func TestTERClientNotFoundReportsNoVersionsWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewTERClient()
	client.guarded.baseURL = server.URL

	versions, err := client.GetVersions(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error for a 404, got %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("expected no versions, got %v", versions)
	}
}
