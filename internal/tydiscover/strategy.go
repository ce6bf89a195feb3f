// Package tydiscover implements DiscoveryPipeline:
// detecting an installation's layout, extracting its TYPO3 version, and
// enumerating its extensions.
package tydiscover

import (
	"context"
	"sort"
	"sync"

	"github.com/cpsit/tycore/internal/tymodel"
)

// DetectionStrategy probes an installation path for a specific layout
// family (Composer standard/custom, legacy, Docker). Every registered
// strategy is probed in ascending Priority order; among those whose
// indicators are present, the one reporting the highest confidence wins,
// with ties going to the strategy probed first.
type DetectionStrategy interface {
	Identifier() string
	// Priority orders strategies; lower runs first.
	Priority() int
	// Detect returns the installation mode it identifies and a
	// confidence score in [0,1], or ok=false if its indicators are absent.
	Detect(ctx context.Context, installationPath string) (mode tymodel.InstallationMode, confidence float64, ok bool)
}

// VersionStrategy extracts the TYPO3 core version from a detected
// installation. Strategies are tried in descending reliability order:
// lock file, manifest, source file, legacy fallback.
type VersionStrategy interface {
	Identifier() string
	Reliability() int // higher is tried first
	ExtractVersion(ctx context.Context, installationPath string, mode tymodel.InstallationMode) (tymodel.Version, bool, error)
}

// ExtensionSource enumerates extensions from one evidence source (lock
// file, package-state file, directory scan). Sources are merge-ordered:
// lock file entries win over package-state entries, which win over a
// directory scan's inferred entries, for the same extension key.
type ExtensionSource interface {
	Identifier() string
	// Priority orders sources for the merge; lower wins ties.
	Priority() int
	Enumerate(ctx context.Context, installationPath string, mode tymodel.InstallationMode) ([]*tymodel.Extension, error)
}

type detectionReg struct {
	mu         sync.RWMutex
	strategies []DetectionStrategy
}

// DetectionRegistry holds the registered DetectionStrategy set.
type DetectionRegistry struct{ detectionReg }

// NewDetectionRegistry returns an empty detection-strategy registry.
func NewDetectionRegistry() *DetectionRegistry { return &DetectionRegistry{} }

// Register adds a detection strategy.
func (r *DetectionRegistry) Register(s DetectionStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
}

// Ordered returns every registered strategy sorted by ascending priority.
func (r *DetectionRegistry) Ordered() []DetectionStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]DetectionStrategy(nil), r.strategies...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

type versionReg struct {
	mu         sync.RWMutex
	strategies []VersionStrategy
}

// VersionRegistry holds the registered VersionStrategy set.
type VersionRegistry struct{ versionReg }

// NewVersionRegistry returns an empty version-strategy registry.
func NewVersionRegistry() *VersionRegistry { return &VersionRegistry{} }

// Register adds a version-extraction strategy.
func (r *VersionRegistry) Register(s VersionStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
}

// Ordered returns every registered strategy sorted by descending
// reliability (most reliable first).
func (r *VersionRegistry) Ordered() []VersionStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]VersionStrategy(nil), r.strategies...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Reliability() > out[j].Reliability() })
	return out
}

type sourceReg struct {
	mu      sync.RWMutex
	sources []ExtensionSource
}

// ExtensionSourceRegistry holds the registered ExtensionSource set.
type ExtensionSourceRegistry struct{ sourceReg }

// NewExtensionSourceRegistry returns an empty extension-source registry.
func NewExtensionSourceRegistry() *ExtensionSourceRegistry { return &ExtensionSourceRegistry{} }

// Register adds an extension enumeration source.
func (r *ExtensionSourceRegistry) Register(s ExtensionSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

// Ordered returns every registered source sorted by ascending priority
// (lock file before package-state before directory scan, by convention).
func (r *ExtensionSourceRegistry) Ordered() []ExtensionSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]ExtensionSource(nil), r.sources...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}
