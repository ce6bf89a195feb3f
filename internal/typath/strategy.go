package typath

import (
	"context"
	"sort"
	"sync"

	"github.com/cpsit/tycore/internal/tyerrors"
	"github.com/cpsit/tycore/internal/tymodel"
)

// Strategy resolves a single PathResolutionRequest into a response. A
// strategy may decline a request it cannot handle by returning
// StatusNotFound with no error, letting the registry fall through to the
// next candidate.
//
// This mirrors the constructor-registry idiom used for update-source
// integrations elsewhere in this codebase's ancestry, generalized to a
// (pathType, installationType) priority lookup instead of a flat name
// lookup.
type Strategy interface {
	// Identifier names the strategy for diagnostics and for
	// PathResolutionRequest.FallbackStrategies matching.
	Identifier() string
	// Supports reports whether this strategy can attempt the given
	// (pathType, installationType) pair at all.
	Supports(pathType tymodel.PathType, installationType tymodel.InstallationType) bool
	// Priority returns this strategy's priority band for the given pair;
	// lower values are tried first. Only called when Supports is true.
	Priority(pathType tymodel.PathType, installationType tymodel.InstallationType) int
	// Resolve attempts the resolution. A declined attempt returns a
	// StatusNotFound response and a nil error.
	Resolve(ctx context.Context, req tymodel.PathResolutionRequest) (tymodel.PathResolutionResponse, error)
}

type registration struct {
	strategy Strategy
	order    int
}

// Registry holds the set of registered strategies and resolves requests by
// trying them in ascending priority order, breaking ties by registration
// order.
type Registry struct {
	mu          sync.RWMutex
	strategies  []registration
	nextOrder   int
	conflicts   []error
}

// NewRegistry returns an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a strategy. Registration order is preserved for priority
// tie-breaking. A conflict (the same identifier registered twice for an
// overlapping pair at the same priority) is recorded, not panicked on, and
// is visible only through Validate; registration itself never fails.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.strategies {
		if existing.strategy.Identifier() != s.Identifier() {
			continue
		}
		for _, pt := range allPathTypes {
			for _, it := range allInstallationTypes {
				if !s.Supports(pt, it) || !existing.strategy.Supports(pt, it) {
					continue
				}
				if s.Priority(pt, it) == existing.strategy.Priority(pt, it) {
					r.conflicts = append(r.conflicts, tyerrors.StrategyConflict(s.Identifier(), s.Priority(pt, it)))
				}
			}
		}
	}

	r.strategies = append(r.strategies, registration{strategy: s, order: r.nextOrder})
	r.nextOrder++
}

// Validate returns every registration conflict recorded so far. Resolution
// does not consult it: a conflicting strategy registered later is simply
// tried after the earlier one.
func (r *Registry) Validate() []error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]error(nil), r.conflicts...)
}

// candidatesFor returns the strategies supporting (pathType, installType),
// sorted by ascending priority then registration order.
func (r *Registry) candidatesFor(pathType tymodel.PathType, installType tymodel.InstallationType) []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		strategy Strategy
		priority int
		order    int
	}
	var matches []scored
	for _, reg := range r.strategies {
		if !reg.strategy.Supports(pathType, installType) {
			continue
		}
		matches = append(matches, scored{
			strategy: reg.strategy,
			priority: reg.strategy.Priority(pathType, installType),
			order:    reg.order,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].priority != matches[j].priority {
			return matches[i].priority < matches[j].priority
		}
		return matches[i].order < matches[j].order
	})

	out := make([]Strategy, len(matches))
	for i, m := range matches {
		out[i] = m.strategy
	}
	return out
}

// SupportsPathType reports whether any registered strategy can attempt
// pathType for installType.
func (r *Registry) SupportsPathType(pathType tymodel.PathType, installType tymodel.InstallationType) bool {
	return len(r.candidatesFor(pathType, installType)) > 0
}

// AvailablePathTypesFor returns every path type at least one registered
// strategy supports for installType.
func (r *Registry) AvailablePathTypesFor(installType tymodel.InstallationType) []tymodel.PathType {
	var out []tymodel.PathType
	for _, pt := range allPathTypes {
		if r.SupportsPathType(pt, installType) {
			out = append(out, pt)
		}
	}
	return out
}

var allPathTypes = []tymodel.PathType{
	tymodel.PathTypeWebDir,
	tymodel.PathTypeVendorDir,
	tymodel.PathTypeComposerInstalled,
	tymodel.PathTypeConfigDir,
	tymodel.PathTypeExtension,
	tymodel.PathTypeSystemExtension,
}

var allInstallationTypes = []tymodel.InstallationType{
	tymodel.InstallComposerStandard,
	tymodel.InstallComposerCustom,
	tymodel.InstallLegacy,
	tymodel.InstallDocker,
	tymodel.InstallCustom,
}
