// Package tyrisk aggregates per-analyzer AnalysisResults into a
// per-extension and installation-wide risk picture, and builds the
// ReportContext a renderer (out of scope here) turns into bytes.
//
// ReportContext's shape follows a common
// internal/reporter.ComplexityReport: a Summary/Results/Metadata split
// with json+yaml struct tags on every field, since ReportContext is
// itself serialized directly for the JSON report format.
package tyrisk

import (
	"sort"
	"time"

	"github.com/cpsit/tycore/internal/tymodel"
)

// ExtensionReport is one extension's aggregated analysis outcome.
type ExtensionReport struct {
	Results         []tymodel.AnalysisResult `json:"results" yaml:"results"`
	Recommendations []string                 `json:"recommendations" yaml:"recommendations"`
	Key             string                   `json:"key" yaml:"key"`
	Title           string                   `json:"title" yaml:"title"`
	Version         string                   `json:"version" yaml:"version"`
	RiskLevel       tymodel.RiskLevel        `json:"risk_level" yaml:"risk_level"`
	OverallRisk     float64                  `json:"overall_risk" yaml:"overall_risk"`
	MaxRisk         float64                  `json:"max_risk" yaml:"max_risk"`
}

// RiskDistribution counts extensions by risk level.
type RiskDistribution struct {
	Low      int `json:"low" yaml:"low"`
	Medium   int `json:"medium" yaml:"medium"`
	High     int `json:"high" yaml:"high"`
	Critical int `json:"critical" yaml:"critical"`
}

// ReportSummary holds installation-wide aggregate statistics.
type ReportSummary struct {
	RiskDistribution RiskDistribution `json:"risk_distribution" yaml:"risk_distribution"`
	AverageRisk      float64          `json:"average_risk" yaml:"average_risk"`
	TotalExtensions  int              `json:"total_extensions" yaml:"total_extensions"`
	BlockingIssues   int              `json:"blocking_issues" yaml:"blocking_issues"`
	AnalyzerFailures int              `json:"analyzer_failures" yaml:"analyzer_failures"`
}

// ReportMetadata carries report-generation provenance.
type ReportMetadata struct {
	GeneratedAt         time.Time `json:"generated_at" yaml:"generated_at"`
	InstallationPath    string    `json:"installation_path" yaml:"installation_path"`
	InstallationVersion string    `json:"installation_version" yaml:"installation_version"`
}

// ReportContext is the complete, pure-data aggregate a renderer turns
// into html/json/markdown output. Building it performs no I/O.
type ReportContext struct {
	Summary          ReportSummary             `json:"summary" yaml:"summary"`
	Extensions       []ExtensionReport         `json:"extensions" yaml:"extensions"`
	ValidationIssues []tymodel.ValidationIssue `json:"validation_issues" yaml:"validation_issues"`
	Metadata         ReportMetadata            `json:"metadata" yaml:"metadata"`
}

// Build aggregates results (from any number of analyzers, any number of
// extensions) against installation into a ReportContext. Build is a pure
// function: it performs no I/O and depends only on its arguments, per
// a "byte-identical output for identical input" guarantee.
func Build(installation *tymodel.Installation, results []*tymodel.AnalysisResult, now time.Time) *ReportContext {
	byExtension := make(map[string][]*tymodel.AnalysisResult)
	for _, r := range results {
		if r == nil || r.Extension == nil {
			continue
		}
		byExtension[r.Extension.Key] = append(byExtension[r.Extension.Key], r)
	}

	extensions := append([]*tymodel.Extension(nil), installation.Extensions()...)
	sort.Slice(extensions, func(i, j int) bool { return extensions[i].Key < extensions[j].Key })

	var reports []ExtensionReport
	var distribution RiskDistribution
	var riskSum float64
	var analyzerFailures int

	for _, ext := range extensions {
		extResults := byExtension[ext.Key]
		report := buildExtensionReport(ext, extResults)
		reports = append(reports, report)

		riskSum += report.OverallRisk
		switch report.RiskLevel {
		case tymodel.RiskLow:
			distribution.Low++
		case tymodel.RiskMedium:
			distribution.Medium++
		case tymodel.RiskHigh:
			distribution.High++
		case tymodel.RiskCritical:
			distribution.Critical++
		}
		for _, r := range extResults {
			if !r.Successful {
				analyzerFailures++
			}
		}
	}

	var averageRisk float64
	if len(reports) > 0 {
		averageRisk = riskSum / float64(len(reports))
	}

	blocking := 0
	for _, issue := range installation.ValidationIssues {
		if issue.IsBlocking() {
			blocking++
		}
	}

	return &ReportContext{
		Summary: ReportSummary{
			TotalExtensions:  len(reports),
			AverageRisk:      averageRisk,
			RiskDistribution: distribution,
			BlockingIssues:   blocking,
			AnalyzerFailures: analyzerFailures,
		},
		Extensions:       reports,
		ValidationIssues: installation.ValidationIssues,
		Metadata: ReportMetadata{
			GeneratedAt:         now,
			InstallationPath:    installation.Path,
			InstallationVersion: installation.Version.String(),
		},
	}
}

// buildExtensionReport aggregates one extension's results: overallRisk is
// the mean of successful analyzer scores, maxRisk the maximum across all
// of them. An extension with results where every analyzer failed (no
// successful results, at least one attempted) always bands to critical,
// regardless of what a mean of only-failed scores would say.
func buildExtensionReport(ext *tymodel.Extension, results []*tymodel.AnalysisResult) ExtensionReport {
	report := ExtensionReport{
		Key:     ext.Key,
		Title:   ext.Title,
		Version: ext.Version.String(),
	}

	if len(results) == 0 {
		report.RiskLevel = tymodel.RiskLow
		return report
	}

	var max, successfulSum float64
	var successfulCount int
	for _, r := range results {
		report.Results = append(report.Results, *r)
		report.Recommendations = append(report.Recommendations, r.Recommendations...)
		if r.RiskScore > max {
			max = r.RiskScore
		}
		if r.Successful {
			successfulSum += r.RiskScore
			successfulCount++
		}
	}
	report.MaxRisk = max

	if successfulCount == 0 {
		report.OverallRisk = 10
		report.RiskLevel = tymodel.RiskCritical
		return report
	}

	report.OverallRisk = successfulSum / float64(successfulCount)
	report.RiskLevel = tymodel.RiskLevelFor(report.OverallRisk)
	return report
}
