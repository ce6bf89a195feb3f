// Package tymodel defines the core data types shared across tycore:
// Version, Installation, Extension, path-resolution requests/responses,
// analysis results, and validation issues.
package tymodel

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a total-ordered, immutable representation of a dependency
// version string of the form "N.N[.N][-suffix]". A leading "v" is
// stripped during parsing.
type Version struct {
	Suffix string
	Major  int
	Minor  int
	Patch  int
}

// ParseVersion parses a version string matching N.N[.N][-suffix].
func ParseVersion(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Version{}, fmt.Errorf("tymodel: empty version string")
	}

	var suffix string
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		suffix = s[idx+1:]
		s = s[:idx]
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("tymodel: invalid version %q", raw)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("tymodel: invalid version component %q in %q: %w", p, raw, err)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Suffix: suffix}, nil
}

// String renders the version back to its canonical "N.N.N[-suffix]" form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix != "" {
		s += "-" + v.Suffix
	}
	return s
}

// IsZero reports whether v is the zero Version (no version parsed).
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater than
// other. Numeric components compare first; at equal (major, minor, patch)
// any non-empty suffix orders strictly before the empty suffix (a
// pre-release such as "-rc1" is "less than" its final release).
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	if v.Patch != other.Patch {
		return cmpInt(v.Patch, other.Patch)
	}
	if v.Suffix == other.Suffix {
		return 0
	}
	if v.Suffix == "" {
		return 1
	}
	if other.Suffix == "" {
		return -1
	}
	return strings.Compare(v.Suffix, other.Suffix)
}

// LessThan reports whether v orders strictly before other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// GreaterThan reports whether v orders strictly after other.
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
