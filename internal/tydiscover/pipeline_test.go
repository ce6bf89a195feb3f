package tydiscover

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpsit/tycore/internal/tymodel"
	"github.com/cpsit/tycore/internal/typath"
	"github.com/cpsit/tycore/internal/typath/strategies"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func buildComposerFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "composer.json"), []byte(`{"require":{"typo3/cms-core":"^11.5"}}`))
	writeFile(t, filepath.Join(root, "public"), nil) // placeholder, replaced below
	_ = os.RemoveAll(filepath.Join(root, "public"))
	if err := os.MkdirAll(filepath.Join(root, "public"), 0o755); err != nil {
		t.Fatalf("mkdir public: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "vendor"), 0o755); err != nil {
		t.Fatalf("mkdir vendor: %v", err)
	}

	lock := map[string]any{
		"packages": []map[string]any{
			{"name": "typo3/cms-core", "version": "11.5.20", "type": "typo3-cms-framework"},
			{"name": "georgringer/news", "version": "9.2.0", "type": "typo3-cms-extension"},
		},
	}
	data, err := json.Marshal(lock)
	if err != nil {
		t.Fatalf("marshal lock: %v", err)
	}
	writeFile(t, filepath.Join(root, "composer.lock"), data)

	return root
}

func TestPipelineDiscoversComposerInstallation(t *testing.T) {
	root := buildComposerFixture(t)

	resolver := typath.NewResolver(strategies.NewDefaultRegistry(), nil)
	pipeline := &Pipeline{
		Detection:  NewDetectionRegistry(),
		Versions:   NewVersionRegistry(),
		Extensions: NewExtensionSourceRegistry(),
	}
	pipeline.Detection.Register(NewComposerDetection(resolver))
	pipeline.Detection.Register(NewLegacyDetection())
	pipeline.Versions.Register(NewComposerLockVersion())
	pipeline.Versions.Register(NewComposerManifestVersion())
	pipeline.Extensions.Register(NewComposerLockExtensions())

	inst, err := pipeline.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if inst.Mode != tymodel.ModeComposerStandard {
		t.Fatalf("expected composer-standard mode, got %s", inst.Mode)
	}
	if inst.Version.String() != "11.5.20" {
		t.Fatalf("expected version 11.5.20, got %s", inst.Version.String())
	}
	if len(inst.Extensions()) != 1 {
		t.Fatalf("expected 1 extension, got %d", len(inst.Extensions()))
	}
	if inst.Extensions()[0].Key != "news" {
		t.Fatalf("expected extension key 'news', got %s", inst.Extensions()[0].Key)
	}
}

func TestPipelineReturnsNotFoundForUnrecognizedPath(t *testing.T) {
	root := t.TempDir()
	pipeline := &Pipeline{
		Detection:  NewDetectionRegistry(),
		Versions:   NewVersionRegistry(),
		Extensions: NewExtensionSourceRegistry(),
	}
	pipeline.Detection.Register(NewLegacyDetection())

	if _, err := pipeline.Discover(context.Background(), root); err == nil {
		t.Fatalf("expected error for a path no strategy recognizes")
	}
}
