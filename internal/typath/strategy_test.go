package typath

import (
	"context"
	"testing"

	"github.com/cpsit/tycore/internal/tymodel"
)

type fakeStrategy struct {
	id       string
	priority int
	status   tymodel.ResolutionStatus
	path     string
}

func (f fakeStrategy) Identifier() string { return f.id }
func (f fakeStrategy) Supports(tymodel.PathType, tymodel.InstallationType) bool { return true }
func (f fakeStrategy) Priority(tymodel.PathType, tymodel.InstallationType) int  { return f.priority }
func (f fakeStrategy) Resolve(context.Context, tymodel.PathResolutionRequest) (tymodel.PathResolutionResponse, error) {
	return tymodel.PathResolutionResponse{Status: f.status, ResolvedPath: f.path}, nil
}

func TestRegistryOrdersByPriorityThenRegistration(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeStrategy{id: "b", priority: 50, status: tymodel.StatusNotFound})
	r.Register(fakeStrategy{id: "a", priority: 10, status: tymodel.StatusSuccess, path: "/a"})
	r.Register(fakeStrategy{id: "c", priority: 10, status: tymodel.StatusSuccess, path: "/c"})

	candidates := r.candidatesFor(tymodel.PathTypeWebDir, tymodel.InstallComposerStandard)
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].Identifier() != "a" || candidates[1].Identifier() != "c" || candidates[2].Identifier() != "b" {
		t.Fatalf("unexpected order: %v", candidateIDs(candidates))
	}
}

func candidateIDs(s []Strategy) []string {
	ids := make([]string, len(s))
	for i, c := range s {
		ids[i] = c.Identifier()
	}
	return ids
}

func TestRegistryDetectsConflict(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeStrategy{id: "dup", priority: 10, status: tymodel.StatusSuccess})
	r.Register(fakeStrategy{id: "dup", priority: 10, status: tymodel.StatusSuccess})

	if len(r.Validate()) == 0 {
		t.Fatalf("expected a conflict to be recorded for duplicate identifier at equal priority")
	}
}

func TestSupportsPathTypeAndAvailablePathTypesFor(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeStrategy{id: "a", priority: 10, status: tymodel.StatusSuccess})

	if !r.SupportsPathType(tymodel.PathTypeWebDir, tymodel.InstallComposerStandard) {
		t.Fatalf("expected web-dir to be supported")
	}
	types := r.AvailablePathTypesFor(tymodel.InstallComposerStandard)
	if len(types) == 0 {
		t.Fatalf("expected at least one available path type")
	}
}
