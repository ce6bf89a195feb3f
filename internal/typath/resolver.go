// Package typath implements PathResolver: translating an
// abstract path request (role + installation context) into a concrete
// filesystem path, via a priority-ordered set of pluggable strategies.
package typath

import (
	"context"
	"time"

	"github.com/cpsit/tycore/internal/tyerrors"
	"github.com/cpsit/tycore/internal/tymodel"
	"github.com/cpsit/tycore/internal/tycache"
)

// defaultTTL is used when a request does not override CacheOptions.TTL.
const defaultTTL = 15 * time.Minute

// Resolver resolves PathResolutionRequest values against a Registry of
// strategies, caching successful and not-found results alike (a cached
// not_found still short-circuits repeated probing of a known-absent path).
type Resolver struct {
	Registry *Registry
	Cache    *tycache.MultiLayer
}

// NewResolver builds a Resolver backed by registry and an optional cache
// (nil disables caching entirely, regardless of request CacheOptions).
func NewResolver(registry *Registry, cache *tycache.MultiLayer) *Resolver {
	return &Resolver{Registry: registry, Cache: cache}
}

func cacheKeyFor(req tymodel.PathResolutionRequest) string {
	return tycache.Key(
		string(req.PathType),
		req.InstallationPath,
		string(req.InstallationType),
		req.ExtensionIdentifier,
	)
}

// Resolve runs req through the registry's candidate strategies in priority
// order, returning the first success or partial result. Any other status,
// including an error status, moves on to the next candidate; when none
// succeeds the last response is returned with status not_found. FallbackStrategies named
// on the request are tried first, in the order given, ahead of the
// registry's normal priority ordering.
func (r *Resolver) Resolve(ctx context.Context, req tymodel.PathResolutionRequest) (tymodel.PathResolutionResponse, error) {
	start := time.Now()
	key := cacheKeyFor(req)

	if r.Cache != nil && !req.CacheOptions.Disabled && !req.CacheOptions.InvalidateOnCall {
		if entry, ok := r.Cache.Get(key); ok {
			resp, err := decodeResponse(entry)
			if err == nil {
				resp.WasFromCache = true
				resp.CacheKey = key
				return resp, nil
			}
		}
	}

	candidates := r.orderedCandidates(req)
	if len(candidates) == 0 {
		return tymodel.PathResolutionResponse{}, tyerrors.NoCompatibleStrategy(
			string(req.PathType), string(req.InstallationType))
	}

	var last tymodel.PathResolutionResponse
	for _, strat := range candidates {
		resp, err := strat.Resolve(ctx, req)
		if err != nil {
			return tymodel.PathResolutionResponse{}, err
		}
		resp.PathType = req.PathType
		resp.CacheKey = key
		resp.ResolutionTime = time.Since(start)

		if resp.Status == tymodel.StatusSuccess || resp.Status == tymodel.StatusPartial {
			r.store(key, resp, req.CacheOptions)
			return resp, nil
		}
		last = resp
	}

	last.PathType = req.PathType
	last.CacheKey = key
	last.Status = tymodel.StatusNotFound
	last.ResolutionTime = time.Since(start)
	r.store(key, last, req.CacheOptions)
	return last, nil
}

// ResolveMany resolves every request independently, preserving input order
// in the returned slice. A single request's error does not abort the
// others; it is captured in the corresponding errs slot.
func (r *Resolver) ResolveMany(ctx context.Context, reqs []tymodel.PathResolutionRequest) ([]tymodel.PathResolutionResponse, []error) {
	responses := make([]tymodel.PathResolutionResponse, len(reqs))
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		responses[i], errs[i] = r.Resolve(ctx, req)
	}
	return responses, errs
}

// SupportsPathType delegates to the registry.
func (r *Resolver) SupportsPathType(pathType tymodel.PathType, installType tymodel.InstallationType) bool {
	return r.Registry.SupportsPathType(pathType, installType)
}

// AvailablePathTypesFor delegates to the registry.
func (r *Resolver) AvailablePathTypesFor(installType tymodel.InstallationType) []tymodel.PathType {
	return r.Registry.AvailablePathTypesFor(installType)
}

func (r *Resolver) orderedCandidates(req tymodel.PathResolutionRequest) []Strategy {
	all := r.Registry.candidatesFor(req.PathType, req.InstallationType)
	if len(req.FallbackStrategies) == 0 {
		return all
	}

	byID := make(map[string]Strategy, len(all))
	for _, s := range all {
		byID[s.Identifier()] = s
	}

	seen := make(map[string]bool, len(all))
	ordered := make([]Strategy, 0, len(all))
	for _, id := range req.FallbackStrategies {
		if s, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, s)
			seen[id] = true
		}
	}
	for _, s := range all {
		if !seen[s.Identifier()] {
			ordered = append(ordered, s)
			seen[s.Identifier()] = true
		}
	}
	return ordered
}

func (r *Resolver) store(key string, resp tymodel.PathResolutionResponse, opts tymodel.CacheOptions) {
	if r.Cache == nil || opts.Disabled {
		return
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	payload, err := encodeResponse(resp)
	if err != nil {
		return
	}
	_ = r.Cache.Set(key, payload, ttl)
}
