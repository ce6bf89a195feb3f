package tyrisk

import (
	"testing"
	"time"

	"github.com/cpsit/tycore/internal/tymodel"
)

func buildInstallation(t *testing.T, keys ...string) *tymodel.Installation {
	t.Helper()
	inst := &tymodel.Installation{Path: "/fx/install"}
	for _, key := range keys {
		if err := inst.AddExtension(&tymodel.Extension{Key: key, Title: key}); err != nil {
			t.Fatal(err)
		}
	}
	return inst
}

func TestBuildEmptyExtensionListProducesZeroAggregates(t *testing.T) {
	inst := buildInstallation(t)
	ctx := Build(inst, nil, time.Unix(0, 0))

	if ctx.Summary.TotalExtensions != 0 {
		t.Errorf("expected 0 extensions, got %d", ctx.Summary.TotalExtensions)
	}
	if ctx.Summary.AverageRisk != 0 {
		t.Errorf("expected zero average risk, got %v", ctx.Summary.AverageRisk)
	}
}

func TestBuildAllAnalyzersFailingYieldsCriticalRisk(t *testing.T) {
	inst := buildInstallation(t, "news")
	ext := inst.Extensions()[0]

	results := []*tymodel.AnalysisResult{
		{AnalyzerName: "availability", Extension: ext, Successful: false, RiskScore: 0},
		{AnalyzerName: "codesize", Extension: ext, Successful: false, RiskScore: 0},
	}

	ctx := Build(inst, results, time.Unix(0, 0))
	if len(ctx.Extensions) != 1 {
		t.Fatalf("expected 1 extension report, got %d", len(ctx.Extensions))
	}
	report := ctx.Extensions[0]
	if report.OverallRisk != 10 || report.RiskLevel != tymodel.RiskCritical {
		t.Errorf("expected overall risk 10/critical, got %v/%v", report.OverallRisk, report.RiskLevel)
	}
	if ctx.Summary.RiskDistribution.Critical != 1 {
		t.Errorf("expected 1 critical in distribution, got %+v", ctx.Summary.RiskDistribution)
	}
}

func TestBuildMeansSuccessfulScoresAndTracksMaxSeparately(t *testing.T) {
	inst := buildInstallation(t, "news")
	ext := inst.Extensions()[0]

	results := []*tymodel.AnalysisResult{
		{AnalyzerName: "availability", Extension: ext, Successful: true, RiskScore: 2},
		{AnalyzerName: "codesize", Extension: ext, Successful: true, RiskScore: 7},
	}

	ctx := Build(inst, results, time.Unix(0, 0))
	report := ctx.Extensions[0]
	if report.OverallRisk != 4.5 {
		t.Errorf("expected overall risk 4.5 (mean of 2 and 7), got %v", report.OverallRisk)
	}
	if report.MaxRisk != 7 {
		t.Errorf("expected max risk 7, got %v", report.MaxRisk)
	}
	if report.RiskLevel != tymodel.RiskMedium {
		t.Errorf("expected medium risk level (banded off the mean), got %v", report.RiskLevel)
	}
}

func TestBuildExcludesFailedScoresFromMeanButNotFromMax(t *testing.T) {
	inst := buildInstallation(t, "news")
	ext := inst.Extensions()[0]

	results := []*tymodel.AnalysisResult{
		{AnalyzerName: "availability", Extension: ext, Successful: true, RiskScore: 1},
		{AnalyzerName: "transform", Extension: ext, Successful: false, RiskScore: 10},
	}

	ctx := Build(inst, results, time.Unix(0, 0))
	report := ctx.Extensions[0]
	if report.OverallRisk != 1 {
		t.Errorf("expected overall risk 1 (mean of only the successful score), got %v", report.OverallRisk)
	}
	if report.MaxRisk != 10 {
		t.Errorf("expected max risk 10 (includes the failed analyzer's score), got %v", report.MaxRisk)
	}
	if report.RiskLevel != tymodel.RiskLow {
		t.Errorf("expected low risk level (banded off the mean, not the max), got %v", report.RiskLevel)
	}
}
