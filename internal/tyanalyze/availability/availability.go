// Package availability implements the availability analyzer: whether a
// compatible replacement version of an extension exists in the TYPO3
// Extension Repository, on Packagist, or as a tagged release in its
// source repository.
package availability

import (
	"context"

	"github.com/cpsit/tycore/internal/tyanalyze"
	"github.com/cpsit/tycore/internal/tymodel"
	"github.com/cpsit/tycore/internal/tyresolve"
)

// RepositoryStatus describes the source repository's health when one is
// discoverable for an extension: a health score in [0,1] derived from
// archive/activity signals, and the repository's URL for recommendation
// text. Whether a compatible tag exists is determined separately, from
// RepositoryTags.
type RepositoryStatus struct {
	Health      float64
	HealthKnown bool
	URL         string
}

// Lookup resolves an extension's availability across the TYPO3 Extension
// Repository, Packagist, and its source repository. Concrete
// implementations live in internal/tyregistry; this package only depends
// on the narrow interface it needs.
type Lookup interface {
	TERVersions(ctx context.Context, ext *tymodel.Extension) ([]string, error)
	PackagistVersions(ctx context.Context, ext *tymodel.Extension) ([]string, error)
	RepositoryTags(ctx context.Context, ext *tymodel.Extension) ([]string, error)
	RepositoryStatus(ctx context.Context, ext *tymodel.Extension) (RepositoryStatus, error)
}

// Analyzer scores an extension's upgrade availability across its three
// evidence sources, and flags signs of source-repository abandonment.
type Analyzer struct {
	Lookup Lookup
}

// New constructs the availability analyzer.
func New(lookup Lookup) *Analyzer { return &Analyzer{Lookup: lookup} }

func (*Analyzer) Name() string { return "availability" }

func (*Analyzer) Supports(ext *tymodel.Extension) bool {
	return ext.Key != "" || ext.ComposerNameOK()
}

func (*Analyzer) RequiredExternalTools() []string { return nil }

func (a *Analyzer) Analyze(ctx context.Context, ext *tymodel.Extension, _ *tyanalyze.Context) *tymodel.AnalysisResult {
	result := &tymodel.AnalysisResult{AnalyzerName: "availability", Extension: ext}

	if ext.Type == tymodel.ExtensionSystem {
		result.Successful = true
		result.RiskScore = 1.0
		result.Metrics = map[string]any{
			"ter_available":       false,
			"packagist_available": false,
			"git_available":       false,
		}
		return result
	}

	constraint := tyresolve.ParseConstraint(ext.EMConfigConstraint())
	current := ext.Version.String()

	terVersions, err := a.Lookup.TERVersions(ctx, ext)
	if err != nil {
		result.Successful = false
		result.ErrorMessage = "fetching TER versions: " + err.Error()
		result.RiskScore = 10
		return result
	}
	terAvailable := hasCompatibleMatch(current, constraint, terVersions)

	packagistVersions, err := a.Lookup.PackagistVersions(ctx, ext)
	if err != nil {
		result.Successful = false
		result.ErrorMessage = "fetching packagist versions: " + err.Error()
		result.RiskScore = 10
		return result
	}
	packagistAvailable := hasCompatibleMatch(current, constraint, packagistVersions)

	repoTags, err := a.Lookup.RepositoryTags(ctx, ext)
	if err != nil {
		result.Successful = false
		result.ErrorMessage = "fetching repository tags: " + err.Error()
		result.RiskScore = 10
		return result
	}
	gitAvailable := hasCompatibleMatch(current, constraint, repoTags)

	status, err := a.Lookup.RepositoryStatus(ctx, ext)
	if err != nil {
		status = RepositoryStatus{}
	}

	score := scoreAvailability(packagistAvailable, terAvailable, gitAvailable, status)

	result.Successful = true
	result.RiskScore = score
	result.Metrics = map[string]any{
		"ter_available":       terAvailable,
		"packagist_available": packagistAvailable,
		"git_available":       gitAvailable,
	}
	if status.HealthKnown {
		result.Metrics["git_repository_health"] = status.Health
	}

	if !terAvailable && !packagistAvailable && !gitAvailable {
		result.Recommendations = append(result.Recommendations,
			"no compatible newer version was found in any registry or source repository")
	}
	if gitAvailable && status.URL != "" {
		result.Recommendations = append(result.Recommendations,
			"a compatible release is tagged in the source repository at "+status.URL)
	}
	return result
}

// hasCompatibleMatch reports whether any version in available satisfies
// constraint and is newer than current.
func hasCompatibleMatch(current string, constraint *tyresolve.ParsedConstraint, available []string) bool {
	best, _, err := tyresolve.BestMatch(current, constraint, available)
	return err == nil && best != ""
}

// scoreAvailability implements the availability risk formula: a weighted
// sum of which sources carry a compatible version, banded into the
// [0,10] scale. Packagist carries the heavier weight of the two
// registries since it is the source composer-managed installations
// actually resolve against; TER is the secondary, legacy catalog.
// A found repository tag contributes proportionally to repository
// health, defaulting to a neutral 0.5 when health couldn't be derived.
func scoreAvailability(packagistAvailable, terAvailable, gitAvailable bool, status RepositoryStatus) float64 {
	var a float64
	if packagistAvailable {
		a += 4
	}
	if terAvailable {
		a += 3
	}
	if gitAvailable {
		h := 0.5
		if status.HealthKnown {
			h = status.Health
		}
		a += 1 + 2*h
	}

	switch {
	case a >= 6:
		return 1.5
	case a >= 4:
		return 2.5
	case a >= 2:
		return 5.0
	default:
		return 9.0
	}
}
