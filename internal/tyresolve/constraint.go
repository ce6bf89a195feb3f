// Copyright (c) 2024 santosr2
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package tyresolve provides Composer-style version constraint parsing and
// matching, used by the availability analyzer to decide whether a
// compatible replacement version exists for an extension.
//
// Unlike the policy engine this package is descended from, tycore never
// applies an update: there is no CLI-flag/org-policy precedence chain to
// resolve here, only "does version X satisfy constraint C" and "what is
// the best available match".
package tyresolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ConstraintType names the syntax family a constraint string was parsed
// from.
type ConstraintType string

const (
	// ConstraintExact matches only the exact version (e.g., "1.2.3" or "= 1.2.3").
	ConstraintExact ConstraintType = "exact"

	// ConstraintPessimistic allows patch or minor updates depending on
	// specificity for the Terraform-style "~>" ("~> 5.0" allows 5.x,
	// "~> 5.0.0" allows 5.0.x). A bare "~" uses semver tilde rules and
	// allows patch updates only ("~5.0" and "~5.0.0" both allow 5.0.x).
	ConstraintPessimistic ConstraintType = "pessimistic"

	// ConstraintCaret allows minor and patch updates (e.g., "^1.2.3" allows 1.x.x).
	ConstraintCaret ConstraintType = "caret"

	// ConstraintMinimum allows any version >= the specified version (e.g., ">= 1.0").
	ConstraintMinimum ConstraintType = "minimum"
)

// Impact classifies how large a version jump is, used for availability
// scoring (a candidate reachable only via a major bump scores lower than
// one reachable via a patch).
type Impact string

// Recognized impact levels, ordered None < Patch < Minor < Major.
const (
	ImpactNone  Impact = "none"
	ImpactPatch Impact = "patch"
	ImpactMinor Impact = "minor"
	ImpactMajor Impact = "major"
)

var impactOrder = map[Impact]int{
	ImpactNone:  0,
	ImpactPatch: 1,
	ImpactMinor: 2,
	ImpactMajor: 3,
}

// ParsedConstraint is a parsed version constraint, as found in a
// composer.json "require" entry or an extension's EM_CONF dependency.
type ParsedConstraint struct {
	Constraint       *semver.Constraints
	Original         string
	BaseVersion      string
	Type             ConstraintType
	MaxAllowedImpact Impact
}

// ParseConstraint parses a version constraint string (Composer caret/tilde,
// Terraform-style pessimistic, or a bare minimum/exact version) into a
// structured representation.
func ParseConstraint(constraint string) *ParsedConstraint {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return &ParsedConstraint{Original: constraint, Type: ConstraintExact, MaxAllowedImpact: ImpactMajor}
	}

	result := &ParsedConstraint{Original: constraint}

	switch {
	case strings.HasPrefix(constraint, "~>"):
		result.Type = ConstraintPessimistic
		result.BaseVersion = strings.TrimSpace(strings.TrimPrefix(constraint, "~>"))
		result.MaxAllowedImpact = computePessimisticImpact(result.BaseVersion)
		result.Constraint = buildPessimisticConstraint(result.BaseVersion)

	case strings.HasPrefix(constraint, "^"):
		result.Type = ConstraintCaret
		result.BaseVersion = strings.TrimPrefix(constraint, "^")
		result.MaxAllowedImpact = ImpactMinor
		result.Constraint, _ = semver.NewConstraint("^" + result.BaseVersion) //nolint:errcheck // nil constraint handled by callers

	case strings.HasPrefix(constraint, "~") && !strings.HasPrefix(constraint, "~>"):
		result.Type = ConstraintPessimistic
		result.BaseVersion = strings.TrimPrefix(constraint, "~")
		result.MaxAllowedImpact = ImpactPatch
		result.Constraint, _ = semver.NewConstraint("~" + result.BaseVersion) //nolint:errcheck // nil constraint handled by callers

	case strings.HasPrefix(constraint, ">="):
		result.Type = ConstraintMinimum
		result.BaseVersion = strings.TrimSpace(strings.TrimPrefix(constraint, ">="))
		result.MaxAllowedImpact = ImpactMajor
		result.Constraint, _ = semver.NewConstraint(constraint) //nolint:errcheck // nil constraint handled by callers

	case strings.HasPrefix(constraint, ">"):
		result.Type = ConstraintMinimum
		result.BaseVersion = strings.TrimSpace(strings.TrimPrefix(constraint, ">"))
		result.MaxAllowedImpact = ImpactMajor
		result.Constraint, _ = semver.NewConstraint(constraint) //nolint:errcheck // nil constraint handled by callers

	case strings.HasPrefix(constraint, "="):
		result.Type = ConstraintExact
		result.BaseVersion = strings.TrimSpace(strings.TrimPrefix(constraint, "="))
		result.MaxAllowedImpact = ImpactNone
		result.Constraint, _ = semver.NewConstraint("= " + result.BaseVersion) //nolint:errcheck // nil constraint handled by callers

	default:
		result.Type = ConstraintExact
		result.BaseVersion = constraint
		result.MaxAllowedImpact = ImpactNone
		result.Constraint, _ = semver.NewConstraint("= " + constraint) //nolint:errcheck // nil constraint handled by callers
	}

	return result
}

func computePessimisticImpact(baseVersion string) Impact {
	if len(strings.Split(baseVersion, ".")) >= 3 {
		return ImpactPatch
	}
	return ImpactMinor
}

func buildPessimisticConstraint(baseVersion string) *semver.Constraints {
	parts := strings.Split(baseVersion, ".")

	var constraintStr string
	switch {
	case len(parts) >= 3:
		constraintStr = fmt.Sprintf(">= %s, < %s.%d.0", baseVersion, parts[0], mustParseInt(parts[1])+1)
	case len(parts) == 2:
		constraintStr = fmt.Sprintf(">= %s.0, < %d.0.0", baseVersion, mustParseInt(parts[0])+1)
	default:
		constraintStr = fmt.Sprintf(">= %s.0.0, < %d.0.0", baseVersion, mustParseInt(baseVersion)+1)
	}

	c, _ := semver.NewConstraint(constraintStr) //nolint:errcheck // nil constraint handled by callers
	return c
}

func mustParseInt(s string) int {
	var result int
	_, _ = fmt.Sscanf(s, "%d", &result) //nolint:errcheck // best-effort parsing
	return result
}

// Allows reports whether the constraint admits targetVersion. A nil or
// unparsable constraint allows everything.
func (pc *ParsedConstraint) Allows(targetVersion string) bool {
	if pc == nil || pc.Constraint == nil {
		return true
	}
	v, err := normalizeAndParse(targetVersion)
	if err != nil {
		return false
	}
	return pc.Constraint.Check(v)
}

// AllowsImpact reports whether impact is within the constraint's maximum
// allowed impact band.
func (pc *ParsedConstraint) AllowsImpact(impact Impact) bool {
	if pc == nil {
		return true
	}
	return impactOrder[impact] <= impactOrder[pc.MaxAllowedImpact]
}

// BestMatch returns the highest available version newer than
// currentVersion that satisfies constraint (or any newer version, if
// constraint is nil), along with the impact of
// moving from currentVersion to it. An empty string result means no
// candidate satisfies the constraint.
func BestMatch(currentVersion string, constraint *ParsedConstraint, availableVersions []string) (string, Impact, error) {
	if len(availableVersions) == 0 {
		return "", ImpactNone, fmt.Errorf("no available versions")
	}

	current, err := normalizeAndParse(currentVersion)
	if err != nil {
		return "", ImpactNone, fmt.Errorf("parse current version %q: %w", currentVersion, err)
	}

	candidates := make([]*semver.Version, 0, len(availableVersions))
	for _, v := range availableVersions {
		parsed, err := normalizeAndParse(v)
		if err != nil {
			continue
		}
		if !parsed.GreaterThan(current) {
			continue
		}
		if constraint != nil && constraint.Constraint != nil && !constraint.Constraint.Check(parsed) {
			continue
		}
		candidates = append(candidates, parsed)
	}

	if len(candidates) == 0 {
		return "", ImpactNone, nil
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].GreaterThan(candidates[j]) })
	best := candidates[0]
	return best.Original(), determineImpact(current, best), nil
}

func determineImpact(current, newVer *semver.Version) Impact {
	if newVer.Major() > current.Major() {
		return ImpactMajor
	}
	if newVer.Minor() > current.Minor() {
		return ImpactMinor
	}
	return ImpactPatch
}

// normalizeAndParse parses a version string leniently, tolerating an
// optional "v" prefix either way.
func normalizeAndParse(version string) (*semver.Version, error) {
	if v, err := semver.NewVersion(version); err == nil {
		return v, nil
	}
	if !strings.HasPrefix(version, "v") {
		if v, err := semver.NewVersion("v" + version); err == nil {
			return v, nil
		}
	} else if v, err := semver.NewVersion(strings.TrimPrefix(version, "v")); err == nil {
		return v, nil
	}
	return nil, fmt.Errorf("invalid version: %s", version)
}

// IsValidSemver reports whether version parses as a semantic version.
func IsValidSemver(version string) bool {
	_, err := normalizeAndParse(version)
	return err == nil
}

// CompareVersions returns -1 if v1 < v2, 0 if equal, 1 if v1 > v2.
func CompareVersions(v1, v2 string) (int, error) {
	ver1, err := normalizeAndParse(v1)
	if err != nil {
		return 0, fmt.Errorf("parse v1 %q: %w", v1, err)
	}
	ver2, err := normalizeAndParse(v2)
	if err != nil {
		return 0, fmt.Errorf("parse v2 %q: %w", v2, err)
	}
	return ver1.Compare(ver2), nil
}
