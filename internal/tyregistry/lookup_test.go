package tyregistry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cpsit/tycore/internal/tymodel"
)

func TestSourceRepoForExtractsOwnerAndRepo(t *testing.T) {
	ext := &tymodel.Extension{
		EMConfiguration: map[string]any{"source": "https://github.com/georgringer/news.git"},
	}
	owner, repo, ok := sourceRepoFor(ext)
	if !ok {
		t.Fatal("expected source repo to be found")
	}
	if owner != "georgringer" || repo != "news" {
		t.Errorf("got owner=%q repo=%q", owner, repo)
	}
}

func TestSourceRepoForMissingSource(t *testing.T) {
	ext := &tymodel.Extension{}
	if _, _, ok := sourceRepoFor(ext); ok {
		t.Fatal("expected no source repo")
	}
}

func newsExtension(t *testing.T, version string) *tymodel.Extension {
	t.Helper()
	v, err := tymodel.ParseVersion(version)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", version, err)
	}
	return &tymodel.Extension{Key: "news", PackageName: "georgringer/news", Version: v}
}

func TestLookupReportsPackagistAvailableWhenTERHasNone(t *testing.T) {
	ter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ter.Close()

	packagist := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"packages":{"georgringer/news":[{"version":"8.0.0"},{"version":"9.0.0"}]}}`))
	}))
	defer packagist.Close()

	l := NewLookup("")
	l.TER.guarded.baseURL = ter.URL
	l.Packagist.guarded.baseURL = packagist.URL

	ext := newsExtension(t, "8.0.0")

	terVersions, err := l.TERVersions(context.Background(), ext)
	if err != nil {
		t.Fatalf("TERVersions: %v", err)
	}
	if len(terVersions) != 0 {
		t.Errorf("expected no TER versions, got %v", terVersions)
	}

	packagistVersions, err := l.PackagistVersions(context.Background(), ext)
	if err != nil {
		t.Fatalf("PackagistVersions: %v", err)
	}
	if len(packagistVersions) != 2 {
		t.Errorf("expected 2 packagist versions, got %v", packagistVersions)
	}
}

func TestLookupRepositoryStatusReportsHealthAndURL(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"repository":{"isArchived":false,"pushedAt":"2024-01-01T00:00:00Z","releases":{"nodes":[{"tagName":"9.0.0"}]}}}}`))
	}))
	defer gh.Close()

	l := NewLookup("")
	l.GitHub.guarded.baseURL = gh.URL

	ext := newsExtension(t, "8.0.0")
	ext.EMConfiguration = map[string]any{"source": "https://github.com/georgringer/news.git"}

	status, err := l.RepositoryStatus(context.Background(), ext)
	if err != nil {
		t.Fatalf("RepositoryStatus: %v", err)
	}
	if !status.HealthKnown {
		t.Fatal("expected health to be known")
	}
	if status.URL != "https://github.com/georgringer/news" {
		t.Errorf("unexpected URL: %q", status.URL)
	}

	tags, err := l.RepositoryTags(context.Background(), ext)
	if err != nil {
		t.Fatalf("RepositoryTags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "9.0.0" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

func TestRepositoryHealthScore(t *testing.T) {
	if got := repositoryHealthScore(true, 0); got != 0 {
		t.Errorf("expected archived repository to score 0, got %v", got)
	}
	if got := repositoryHealthScore(false, 0); got != 1 {
		t.Errorf("expected a just-pushed repository to score 1, got %v", got)
	}
	if got := repositoryHealthScore(false, 365*3); got != 0 {
		t.Errorf("expected a very stale repository to score 0, got %v", got)
	}
}
