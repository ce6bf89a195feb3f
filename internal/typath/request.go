package typath

import (
	"fmt"
	"time"

	"github.com/cpsit/tycore/internal/tyerrors"
	"github.com/cpsit/tycore/internal/tymodel"
)

// compatibility is the static pathType -> installationType incompatibility
// table. A pathType absent from this map, or an installationType absent
// from its inner set, is compatible.
var compatibility = map[tymodel.PathType]map[tymodel.InstallationType]bool{
	tymodel.PathTypeVendorDir: {
		tymodel.InstallLegacy: true,
	},
	tymodel.PathTypeComposerInstalled: {
		tymodel.InstallLegacy: true,
	},
	tymodel.PathTypeSystemExtension: {
		tymodel.InstallDocker: true,
	},
}

// IsCompatible reports whether pathType is meaningful for installType.
func IsCompatible(pathType tymodel.PathType, installType tymodel.InstallationType) bool {
	incompatible, ok := compatibility[pathType]
	if !ok {
		return true
	}
	return !incompatible[installType]
}

// RequestBuilder constructs a validated, immutable PathResolutionRequest.
// Validation lives entirely in Build rather than in ad hoc accessors
// scattered across the request's lifetime.
type RequestBuilder struct {
	req tymodel.PathResolutionRequest
	set struct {
		pathType         bool
		installationPath bool
		installationType bool
	}
}

// NewRequestBuilder starts a new builder with sensible defaults
// (symlinks followed, no fallback strategies, caching enabled with no
// explicit TTL override).
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		req: tymodel.PathResolutionRequest{
			FollowSymlinks: true,
			PathConfiguration: map[string]string{},
		},
	}
}

// WithPathType sets the abstract path role being requested.
func (b *RequestBuilder) WithPathType(pt tymodel.PathType) *RequestBuilder {
	b.req.PathType = pt
	b.set.pathType = true
	return b
}

// WithInstallationPath sets the absolute installation root.
func (b *RequestBuilder) WithInstallationPath(path string) *RequestBuilder {
	b.req.InstallationPath = path
	b.set.installationPath = true
	return b
}

// WithInstallationType sets the installation layout family.
func (b *RequestBuilder) WithInstallationType(it tymodel.InstallationType) *RequestBuilder {
	b.req.InstallationType = it
	b.set.installationType = true
	return b
}

// WithPathConfiguration merges custom path overrides (e.g. from
// Installation.CustomPaths) into the request.
func (b *RequestBuilder) WithPathConfiguration(cfg map[string]string) *RequestBuilder {
	for k, v := range cfg {
		b.req.PathConfiguration[k] = v
	}
	return b
}

// WithExtensionIdentifier scopes the request to one extension (required
// for PathTypeExtension / PathTypeSystemExtension).
func (b *RequestBuilder) WithExtensionIdentifier(key string) *RequestBuilder {
	b.req.ExtensionIdentifier = key
	return b
}

// WithValidationRules attaches validation-rule identifiers a strategy may
// consult.
func (b *RequestBuilder) WithValidationRules(rules ...string) *RequestBuilder {
	b.req.ValidationRules = append(b.req.ValidationRules, rules...)
	return b
}

// WithFallbackStrategies names additional strategy identifiers to try
// beyond the registry's default ordering.
func (b *RequestBuilder) WithFallbackStrategies(ids ...string) *RequestBuilder {
	b.req.FallbackStrategies = append(b.req.FallbackStrategies, ids...)
	return b
}

// WithCacheOptions sets the request's cache behavior.
func (b *RequestBuilder) WithCacheOptions(opts tymodel.CacheOptions) *RequestBuilder {
	b.req.CacheOptions = opts
	return b
}

// WithoutSymlinks disables symlink-following during candidate probing.
func (b *RequestBuilder) WithoutSymlinks() *RequestBuilder {
	b.req.FollowSymlinks = false
	return b
}

// WithCacheTTL is a convenience for WithCacheOptions when only the TTL
// needs overriding.
func (b *RequestBuilder) WithCacheTTL(ttl time.Duration) *RequestBuilder {
	b.req.CacheOptions.TTL = ttl
	return b
}

// Build validates and returns the immutable request, or a tyerrors.TyError
// (CodeInvalidRequest / CodeNoCompatibleStrategy) if validation fails.
// Incompatible-pair requests fail here, before any strategy is invoked
//.
func (b *RequestBuilder) Build() (tymodel.PathResolutionRequest, error) {
	if !b.set.pathType {
		return tymodel.PathResolutionRequest{}, tyerrors.InvalidRequest("pathType is required")
	}
	if !b.set.installationPath {
		return tymodel.PathResolutionRequest{}, tyerrors.InvalidRequest("installationPath is required")
	}
	if !b.set.installationType {
		return tymodel.PathResolutionRequest{}, tyerrors.InvalidRequest("installationType is required")
	}

	switch b.req.PathType {
	case tymodel.PathTypeExtension, tymodel.PathTypeSystemExtension:
		if b.req.ExtensionIdentifier == "" {
			return tymodel.PathResolutionRequest{}, tyerrors.InvalidRequest(
				fmt.Sprintf("extensionIdentifier is required for path type %q", b.req.PathType))
		}
	}

	if !IsCompatible(b.req.PathType, b.req.InstallationType) {
		return tymodel.PathResolutionRequest{}, tyerrors.NoCompatibleStrategy(
			string(b.req.PathType), string(b.req.InstallationType))
	}

	// Return a copy: the map fields are shared with the builder otherwise,
	// which would let later builder mutation leak into an already-built
	// "immutable" request.
	out := b.req
	out.PathConfiguration = make(map[string]string, len(b.req.PathConfiguration))
	for k, v := range b.req.PathConfiguration {
		out.PathConfiguration[k] = v
	}
	out.ValidationRules = append([]string(nil), b.req.ValidationRules...)
	out.FallbackStrategies = append([]string(nil), b.req.FallbackStrategies...)

	return out, nil
}
