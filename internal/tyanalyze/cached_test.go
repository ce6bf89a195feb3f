package tyanalyze

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cpsit/tycore/internal/tycache"
	"github.com/cpsit/tycore/internal/tymodel"
)

type countingAnalyzer struct {
	calls atomic.Int32
}

func (*countingAnalyzer) Name() string                        { return "counting" }
func (*countingAnalyzer) Supports(*tymodel.Extension) bool     { return true }
func (*countingAnalyzer) RequiredExternalTools() []string      { return nil }
func (c *countingAnalyzer) Analyze(context.Context, *tymodel.Extension, *Context) *tymodel.AnalysisResult {
	c.calls.Add(1)
	return &tymodel.AnalysisResult{AnalyzerName: "counting", Successful: true, RiskScore: 3}
}

func newInstallation(t *testing.T, extKey string) (*tymodel.Installation, *tymodel.Extension) {
	t.Helper()
	v, err := tymodel.ParseVersion("1.0.0")
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	inst := &tymodel.Installation{Path: "/var/www", Version: v}
	ext := &tymodel.Extension{Key: extKey, Version: v}
	if err := inst.AddExtension(ext); err != nil {
		t.Fatalf("AddExtension: %v", err)
	}
	return inst, ext
}

func TestCachedServesSecondCallFromCache(t *testing.T) {
	inner := &countingAnalyzer{}
	cache := tycache.New(nil)
	cached := NewCached(inner, cache, time.Minute)

	_, ext := newInstallation(t, "news")

	first := cached.Analyze(context.Background(), ext, nil)
	second := cached.Analyze(context.Background(), ext, nil)

	if inner.calls.Load() != 1 {
		t.Errorf("expected inner analyzer to run once, ran %d times", inner.calls.Load())
	}
	if !first.Successful || !second.Successful {
		t.Fatalf("expected both results to be successful")
	}
	if second.Extension != ext {
		t.Errorf("expected cached result to be re-attached to the requesting extension")
	}
}

func TestCachedDefaultsZeroTTL(t *testing.T) {
	cached := NewCached(&countingAnalyzer{}, tycache.New(nil), 0)
	if cached.TTL != time.Hour {
		t.Errorf("expected a 0 ttl to default to 1 hour, got %v", cached.TTL)
	}
}
