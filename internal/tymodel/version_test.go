package tymodel

import "testing"

func TestParseVersionRoundTrip(t *testing.T) {
	cases := []string{"12.4.10", "v12.4.10", "1.0", "9.0.0-dev", "2.3.4-rc1"}
	for _, raw := range cases {
		v, err := ParseVersion(raw)
		if err != nil {
			t.Fatalf("ParseVersion(%q) failed: %v", raw, err)
		}
		v2, err := ParseVersion(v.String())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", v.String(), err)
		}
		if v2 != v {
			t.Fatalf("round trip mismatch: %q -> %v -> %q -> %v", raw, v, v.String(), v2)
		}
	}
}

func TestParseVersionInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.2.3.4", "1"} {
		if _, err := ParseVersion(raw); err == nil {
			t.Fatalf("expected error parsing %q", raw)
		}
	}
}

func TestVersionCompareSuffixOrdering(t *testing.T) {
	stable := Version{Major: 12, Minor: 4, Patch: 0}
	rc := Version{Major: 12, Minor: 4, Patch: 0, Suffix: "rc1"}

	if !rc.LessThan(stable) {
		t.Fatalf("expected suffixed version to order before stable release")
	}
	if stable.Compare(stable) != 0 {
		t.Fatalf("expected equal versions to compare 0")
	}
}

func TestVersionCompareNumeric(t *testing.T) {
	v1 := Version{Major: 1, Minor: 2, Patch: 3}
	v2 := Version{Major: 1, Minor: 3, Patch: 0}
	if !v1.LessThan(v2) {
		t.Fatalf("expected %v < %v", v1, v2)
	}
	if !v2.GreaterThan(v1) {
		t.Fatalf("expected %v > %v", v2, v1)
	}
}
