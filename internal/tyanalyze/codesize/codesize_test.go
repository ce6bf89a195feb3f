package codesize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpsit/tycore/internal/tymodel"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyzeCountsClassesAndMethods(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Classes/Foo.php", "<?php\nclass Foo {\n    public function bar() {\n        return 1;\n    }\n}\n")
	writeFixture(t, dir, "Classes/Baz.php", "<?php\nclass Baz {\n}\n")
	writeFixture(t, dir, "README.md", "ignored, wrong extension\n")

	a := New()
	ext := &tymodel.Extension{Key: "ext", Path: dir}
	result := a.Analyze(context.Background(), ext, nil)

	if !result.Successful {
		t.Fatalf("expected success, got error: %s", result.ErrorMessage)
	}
	if result.Metrics["file_count"] != 2 {
		t.Errorf("expected 2 php files, got %v", result.Metrics["file_count"])
	}
	if result.Metrics["class_count"] != 2 {
		t.Errorf("expected 2 classes, got %v", result.Metrics["class_count"])
	}
	if result.Metrics["method_count"] != 1 {
		t.Errorf("expected 1 method, got %v", result.Metrics["method_count"])
	}
}

func TestScoreCodeSizeCapsAtTen(t *testing.T) {
	if got := scoreCodeSize(500, 100000, 5000); got != 10 {
		t.Errorf("expected score capped at 10, got %v", got)
	}
	if got := scoreCodeSize(0, 0, 0); got != 0 {
		t.Errorf("expected zero score for empty extension, got %v", got)
	}
}
