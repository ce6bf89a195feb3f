package tyregistry

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cpsit/tycore/internal/tyanalyze/availability"
	"github.com/cpsit/tycore/internal/tymodel"
)

// githubRepoPattern extracts an owner/repo pair from a composer package's
// source URL, when present in EMConfiguration metadata.
var githubRepoPattern = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/.]+)`)

// Lookup satisfies availability.Lookup by querying TER, Packagist, and
// GitHub independently for every extension, regardless of which (if any)
// composer coordinate the extension carries.
type Lookup struct {
	TER       *TERClient
	Packagist *PackagistClient
	GitHub    *GitHubClient
}

// NewLookup constructs a Lookup wiring the three default registry
// clients together. token is passed to the GitHub client; empty is fine
// but subject to a far tighter unauthenticated rate limit.
func NewLookup(token string) *Lookup {
	return &Lookup{
		TER:       NewTERClient(),
		Packagist: NewPackagistClient(),
		GitHub:    NewGitHubClient(token),
	}
}

// TERVersions returns ext's published versions in the TYPO3 Extension
// Repository, keyed by its extension key. Extensions without a key
// report no versions rather than erroring.
func (l *Lookup) TERVersions(ctx context.Context, ext *tymodel.Extension) ([]string, error) {
	if ext.Key == "" {
		return nil, nil
	}
	return l.TER.GetVersions(ctx, ext.Key)
}

// PackagistVersions returns ext's published versions on Packagist, keyed
// by its composer vendor/name coordinate. Extensions without one report
// no versions rather than erroring.
func (l *Lookup) PackagistVersions(ctx context.Context, ext *tymodel.Extension) ([]string, error) {
	vendor, name, ok := ext.ComposerName()
	if !ok {
		return nil, nil
	}
	return l.Packagist.GetVersions(ctx, vendor, name)
}

// RepositoryTags returns the release tag names found in ext's source
// repository, when one is discoverable from its metadata.
func (l *Lookup) RepositoryTags(ctx context.Context, ext *tymodel.Extension) ([]string, error) {
	owner, repo, ok := sourceRepoFor(ext)
	if !ok {
		return nil, nil
	}
	return l.GitHub.GetReleaseTags(ctx, owner, repo)
}

// RepositoryStatus reports source-repository health for ext, when one can
// be determined from its metadata. An extension with no discoverable
// GitHub source reports an empty, unknown-health status rather than
// erroring, since repository health is advisory.
func (l *Lookup) RepositoryStatus(ctx context.Context, ext *tymodel.Extension) (availability.RepositoryStatus, error) {
	owner, repo, ok := sourceRepoFor(ext)
	if !ok {
		return availability.RepositoryStatus{}, nil
	}

	archived, lastActivityDays, err := l.GitHub.RepositoryHealth(ctx, owner, repo)
	if err != nil {
		return availability.RepositoryStatus{}, err
	}

	return availability.RepositoryStatus{
		Health:      repositoryHealthScore(archived, lastActivityDays),
		HealthKnown: true,
		URL:         fmt.Sprintf("https://github.com/%s/%s", owner, repo),
	}, nil
}

// repositoryHealthScore derives a [0,1] health score from archive status
// and days since the last push: archived repositories score 0, active
// ones decay linearly to 0 over two years of inactivity.
func repositoryHealthScore(archived bool, lastActivityDays int) float64 {
	if archived {
		return 0
	}
	const staleAfterDays = 365 * 2
	if lastActivityDays <= 0 {
		return 1
	}
	if lastActivityDays >= staleAfterDays {
		return 0
	}
	return 1 - float64(lastActivityDays)/float64(staleAfterDays)
}

func sourceRepoFor(ext *tymodel.Extension) (owner, repo string, ok bool) {
	source, _ := ext.EMConfiguration["source"].(string)
	if source == "" {
		return "", "", false
	}
	matches := githubRepoPattern.FindStringSubmatch(source)
	if len(matches) != 3 {
		return "", "", false
	}
	return matches[1], matches[2], true
}
