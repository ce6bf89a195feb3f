package tyanalyze

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cpsit/tycore/internal/tycache"
	"github.com/cpsit/tycore/internal/tymodel"
)

// Cached wraps any Analyzer with a tycache-backed result cache. Two
// concurrent Analyze calls for the same (analyzer, extension, fingerprint)
// key collapse into a single underlying call via singleflight, giving
// at-most-one-concurrent-compute-per-key for expensive analyzers invoked
// across a worker pool.
type Cached struct {
	Inner Analyzer
	Cache *tycache.MultiLayer
	TTL   time.Duration

	group singleflight.Group
}

// NewCached wraps inner with a cache layer. ttl of 0 uses a 1-hour
// default, matching the conservative defaults used elsewhere in this
// codebase's cache configuration.
func NewCached(inner Analyzer, cache *tycache.MultiLayer, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cached{Inner: inner, Cache: cache, TTL: ttl}
}

func (c *Cached) Name() string                         { return c.Inner.Name() }
func (c *Cached) Supports(ext *tymodel.Extension) bool  { return c.Inner.Supports(ext) }
func (c *Cached) RequiredExternalTools() []string       { return c.Inner.RequiredExternalTools() }

// Analyze serves a cached result when available, otherwise runs Inner
// through singleflight so concurrent callers for the same key share one
// execution instead of duplicating analyzer work.
func (c *Cached) Analyze(ctx context.Context, ext *tymodel.Extension, analysisCtx *Context) *tymodel.AnalysisResult {
	key := tycache.Key("tyanalyze", c.Inner.Name(), ext.Key, ext.Version.String(), ext.Installation().Fingerprint())

	if c.Cache != nil {
		if entry, ok := c.Cache.Get(key); ok {
			if result, source, err := tymodel.DeserializeAnalysisResult(entry.Payload); err == nil {
				result.Extension = ext
				_ = source
				return &result
			}
		}
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		result := c.Inner.Analyze(ctx, ext, analysisCtx)
		if c.Cache != nil && result != nil {
			if payload, err := result.Serialize(); err == nil {
				_ = c.Cache.Set(key, payload, c.TTL)
			}
		}
		return result, nil
	})

	result, _ := v.(*tymodel.AnalysisResult)
	return result
}
