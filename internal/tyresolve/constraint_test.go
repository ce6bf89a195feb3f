package tyresolve

import "testing"

func TestParseConstraintCaret(t *testing.T) {
	pc := ParseConstraint("^1.2.3")
	if pc.Type != ConstraintCaret {
		t.Fatalf("expected caret type, got %s", pc.Type)
	}
	if !pc.Allows("1.9.0") {
		t.Fatalf("expected ^1.2.3 to allow 1.9.0")
	}
	if pc.Allows("2.0.0") {
		t.Fatalf("expected ^1.2.3 to reject 2.0.0")
	}
}

func TestParseConstraintTilde(t *testing.T) {
	pc := ParseConstraint("~1.2.3")
	if pc.MaxAllowedImpact != ImpactPatch {
		t.Fatalf("expected patch-only impact, got %s", pc.MaxAllowedImpact)
	}
	if !pc.Allows("1.2.9") {
		t.Fatalf("expected ~1.2.3 to allow 1.2.9")
	}
	if pc.Allows("1.3.0") {
		t.Fatalf("expected ~1.2.3 to reject 1.3.0")
	}
}

func TestParseConstraintPessimistic(t *testing.T) {
	pc := ParseConstraint("~> 11.5")
	if pc.MaxAllowedImpact != ImpactMinor {
		t.Fatalf("expected minor impact for 2-part pessimistic, got %s", pc.MaxAllowedImpact)
	}
	if !pc.Allows("11.9.3") {
		t.Fatalf("expected ~> 11.5 to allow 11.9.3")
	}
	if pc.Allows("12.0.0") {
		t.Fatalf("expected ~> 11.5 to reject 12.0.0")
	}
}

func TestParseConstraintExact(t *testing.T) {
	pc := ParseConstraint("= 11.5.0")
	if !pc.Allows("11.5.0") {
		t.Fatalf("expected exact constraint to allow its own version")
	}
	if pc.Allows("11.5.1") {
		t.Fatalf("expected exact constraint to reject any other version")
	}
}

func TestBestMatchPicksHighestSatisfying(t *testing.T) {
	pc := ParseConstraint("^11.0.0")
	best, impact, err := BestMatch("11.0.0", pc, []string{"11.1.0", "11.5.2", "12.0.0"})
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if best != "11.5.2" {
		t.Fatalf("expected 11.5.2 to be the best caret-compatible match, got %s", best)
	}
	if impact != ImpactMinor {
		t.Fatalf("expected minor impact, got %s", impact)
	}
}

func TestBestMatchNoSatisfyingCandidate(t *testing.T) {
	pc := ParseConstraint("^11.0.0")
	best, impact, err := BestMatch("11.0.0", pc, []string{"12.0.0", "13.0.0"})
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if best != "" || impact != ImpactNone {
		t.Fatalf("expected no match, got %s/%s", best, impact)
	}
}

func TestCompareVersions(t *testing.T) {
	cmp, err := CompareVersions("11.5.0", "11.5.1")
	if err != nil {
		t.Fatalf("CompareVersions: %v", err)
	}
	if cmp != -1 {
		t.Fatalf("expected -1, got %d", cmp)
	}
}

func TestIsValidSemver(t *testing.T) {
	if !IsValidSemver("11.5.0") {
		t.Fatalf("expected 11.5.0 to be valid")
	}
	if IsValidSemver("not-a-version") {
		t.Fatalf("expected not-a-version to be invalid")
	}
}
