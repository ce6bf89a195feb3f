package transform

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/cpsit/tycore/internal/tymodel"
)

func newExtension(key, path string) *tymodel.Extension {
	return &tymodel.Extension{Key: key, Path: path}
}

func marshalOutput(t *testing.T, files ...struct {
	File           string
	AppliedRectors []rectorFinding
}) []byte {
	t.Helper()
	out := toolOutput{}
	for _, f := range files {
		out.ChangedFiles = append(out.ChangedFiles, struct {
			File           string          `json:"file"`
			AppliedRectors []rectorFinding `json:"applied_rectors"`
		}{File: f.File, AppliedRectors: f.AppliedRectors})
	}
	payload, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal toolOutput: %v", err)
	}
	return payload
}

// One deprecated call in a single file, no other findings: matches the
// documented S5 scenario.
func TestAnalyzeOneDeprecationMatchesExpectedSeverityAndFlags(t *testing.T) {
	a := New("rector", "rector-fixture", nil, time.Second)
	a.runner = func(_ context.Context, name string, args []string, _ time.Duration) ([]byte, error) {
		if name != "rector-fixture" {
			t.Fatalf("unexpected binary: %s", name)
		}
		return marshalOutput(t, struct {
			File           string
			AppliedRectors []rectorFinding
		}{
			File: "Classes/Controller/NewsController.php",
			AppliedRectors: []rectorFinding{
				{Class: "Rector\\Deprecation\\DeprecatedMethodCallRector", Line: 42,
					Message: "Method getPageRenderer() is deprecated, use PageRenderer::getInstance() instead.",
					Old:     "$this->getPageRenderer();\n", New: "PageRenderer::getInstance();\n"},
			},
		})
	}

	result := a.Analyze(context.Background(), newExtension("news", "/ext/news"), nil)
	if !result.Successful {
		t.Fatalf("expected success, got error: %s", result.ErrorMessage)
	}

	bySeverity, ok := result.Metrics["findings_by_severity"].(map[string]int)
	if !ok {
		t.Fatalf("expected findings_by_severity metric, got %T", result.Metrics["findings_by_severity"])
	}
	if bySeverity["warning"] != 1 {
		t.Errorf("expected findings_by_severity.warning=1, got %v", bySeverity["warning"])
	}
	if bySeverity["critical"] != 0 {
		t.Errorf("expected findings_by_severity.critical=0, got %v", bySeverity["critical"])
	}
	if result.Metrics["has_breaking_changes"] != false {
		t.Errorf("expected has_breaking_changes=false, got %v", result.Metrics["has_breaking_changes"])
	}
	if result.Metrics["has_deprecations"] != true {
		t.Errorf("expected has_deprecations=true, got %v", result.Metrics["has_deprecations"])
	}

	diffs, ok := result.Metrics["diffs"].(map[string]string)
	if !ok {
		t.Fatalf("expected diffs metric, got %T", result.Metrics["diffs"])
	}
	if _, ok := diffs["Classes/Controller/NewsController.php:42"]; !ok {
		t.Errorf("expected a diff keyed by file:line, got %v", diffs)
	}
}

func TestAnalyzeBreakingChangeIsCriticalAndRecommended(t *testing.T) {
	a := New("rector", "rector-fixture", nil, time.Second)
	a.runner = func(context.Context, string, []string, time.Duration) ([]byte, error) {
		return marshalOutput(t, struct {
			File           string
			AppliedRectors []rectorFinding
		}{
			File: "Classes/Domain/Repository/NewsRepository.php",
			AppliedRectors: []rectorFinding{
				{Class: "Rector\\Removed\\RemovedMethodCallRector", Line: 10,
					Message: "Method findByUid() was removed, this is a breaking change."},
			},
		})
	}

	result := a.Analyze(context.Background(), newExtension("news", "/ext/news"), nil)
	if !result.Successful {
		t.Fatalf("expected success, got error: %s", result.ErrorMessage)
	}

	bySeverity := result.Metrics["findings_by_severity"].(map[string]int)
	if bySeverity["critical"] != 1 {
		t.Errorf("expected findings_by_severity.critical=1, got %v", bySeverity["critical"])
	}
	if result.Metrics["has_breaking_changes"] != true {
		t.Errorf("expected has_breaking_changes=true, got %v", result.Metrics["has_breaking_changes"])
	}

	found := false
	for _, r := range result.Recommendations {
		if r == "1 breaking change(s) require manual review before upgrading" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a breaking-change recommendation, got %v", result.Recommendations)
	}
}

func TestAnalyzeSurfacesRunnerError(t *testing.T) {
	a := New("rector", "rector-fixture", nil, time.Second)
	a.runner = func(context.Context, string, []string, time.Duration) ([]byte, error) {
		return nil, errExec{}
	}

	result := a.Analyze(context.Background(), newExtension("ext", "/ext"), nil)
	if result.Successful {
		t.Fatal("expected failure")
	}
	if result.RiskScore != 10 {
		t.Errorf("expected max risk on tool failure, got %v", result.RiskScore)
	}
}

type errExec struct{}

func (errExec) Error() string { return "exec failed" }

func TestClassifyFindingDistinguishesBreakingFromDeprecation(t *testing.T) {
	sev, ct := classifyFinding(rectorFinding{Class: "Rector\\Deprecation\\Foo", Message: "is deprecated, use Bar instead"})
	if sev != severityWarning || ct != changeDeprecation {
		t.Errorf("expected warning/deprecation, got %v/%v", sev, ct)
	}

	sev, ct = classifyFinding(rectorFinding{Class: "Rector\\Removed\\Foo", Message: "was removed, breaking change"})
	if sev != severityCritical || ct != changeBreaking {
		t.Errorf("expected critical/breaking, got %v/%v", sev, ct)
	}

	sev, ct = classifyFinding(rectorFinding{Class: "Rector\\Renaming\\Foo", Message: "renamed to Bar"})
	if sev != severityInfo || ct != changeModernization {
		t.Errorf("expected info/modernization, got %v/%v", sev, ct)
	}

	sev, ct = classifyFinding(rectorFinding{Class: "Rector\\CodingStyle\\Foo", Message: "normalized spacing"})
	if sev != severitySuggestion || ct != changeStyle {
		t.Errorf("expected suggestion/style, got %v/%v", sev, ct)
	}
}

func TestScoreTransformClampsToTenWithBaselineOfOne(t *testing.T) {
	heavy := map[severity]int{severityCritical: 100, severityWarning: 100}
	if got := scoreTransform(heavy, 100, 100, 10, 20); got != 10 {
		t.Errorf("expected score capped at 10, got %v", got)
	}
	if got := scoreTransform(map[severity]int{}, 0, 0, 0, 0); got != 1 {
		t.Errorf("expected baseline score of 1 for no findings, got %v", got)
	}
}

func TestScoreTransformRisesWithFixHours(t *testing.T) {
	base := scoreTransform(map[severity]int{severityWarning: 1}, 1, 10, 1, 0)
	withFixTime := scoreTransform(map[severity]int{severityWarning: 1}, 1, 10, 1, 9)
	if withFixTime <= base {
		t.Errorf("expected a long estimated fix time to raise the score: base=%v withFixTime=%v", base, withFixTime)
	}
}

func TestCountSourceFilesCountsOnlyMatchingSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/Foo.php", "<?php\n")
	writeFile(t, dir+"/README.md", "# readme\n")

	count, err := countSourceFiles(dir, []string{".php"})
	if err != nil {
		t.Fatalf("countSourceFiles: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 matching file, got %d", count)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
