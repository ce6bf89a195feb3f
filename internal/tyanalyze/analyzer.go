// Package tyanalyze implements AnalyzerRegistry and the Cached decorator:
// a small analyzer interface, an orchestrator that fans the registered
// analyzers out across an installation's extensions with bounded
// concurrency, and a cross-cutting cache wrapper any analyzer can be
// composed with.
package tyanalyze

import (
	"context"

	"github.com/cpsit/tycore/internal/tymodel"
)

// Context carries the shared, read-only state analyzers need: the
// installation they're analyzing and a scratch area for analyzer-specific
// options.
type Context struct {
	Installation *tymodel.Installation
	Options      map[string]any
}

// Option reads a string-keyed option with a typed default.
func Option[T any](c *Context, key string, fallback T) T {
	if c == nil || c.Options == nil {
		return fallback
	}
	v, ok := c.Options[key]
	if !ok {
		return fallback
	}
	typed, ok := v.(T)
	if !ok {
		return fallback
	}
	return typed
}

// Analyzer is the minimal interface every concrete analyzer implements.
// Caching is composed externally via Cached rather than built into every
// implementation, so a new analyzer only has to deal with its own domain
// logic.
type Analyzer interface {
	Name() string
	Supports(ext *tymodel.Extension) bool
	// RequiredExternalTools names binaries this analyzer shells out to
	// (e.g. a static-analysis CLI); empty for pure-Go analyzers.
	RequiredExternalTools() []string
	Analyze(ctx context.Context, ext *tymodel.Extension, analysisCtx *Context) *tymodel.AnalysisResult
}

// HasRequiredTools reports whether every tool a.RequiredExternalTools
// names is resolvable on PATH, using lookupFn (normally exec.LookPath).
func HasRequiredTools(a Analyzer, lookupFn func(string) (string, error)) bool {
	for _, tool := range a.RequiredExternalTools() {
		if _, err := lookupFn(tool); err != nil {
			return false
		}
	}
	return true
}
