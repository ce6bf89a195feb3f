package tyanalyze

import (
	"context"
	"os/exec"
	"sort"
	"sync"

	"github.com/cpsit/tycore/internal/tymodel"
)

// Registry holds the set of analyzers to run, in registration order —
// that order is also the deterministic tie-break order used when
// emitting results.
type Registry struct {
	mu        sync.RWMutex
	analyzers []Analyzer
}

// NewRegistry returns an empty analyzer registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds an analyzer.
func (r *Registry) Register(a Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers = append(r.analyzers, a)
}

// List returns every registered analyzer in registration order.
func (r *Registry) List() []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Analyzer(nil), r.analyzers...)
}

// Orchestrator fans the registry's analyzers out across an installation's
// extensions with bounded concurrency, mirroring the manual
// sync.WaitGroup + buffered-channel-semaphore pattern this codebase's
// scan/plan/update loops use rather than reaching for errgroup.
type Orchestrator struct {
	Registry    *Registry
	Concurrency int
}

// NewOrchestrator builds an Orchestrator. concurrency <= 0 defaults to 4.
func NewOrchestrator(registry *Registry, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Orchestrator{Registry: registry, Concurrency: concurrency}
}

// Run analyzes every (extension, analyzer) pair whose analyzer supports
// the extension, returning results in deterministic order: extensions
// sorted by key, then analyzers in registration order. A pair whose
// analyzer's required tools are not on PATH is not run; it gets a failed
// result with risk score 10 instead.
func (o *Orchestrator) Run(ctx context.Context, inst *tymodel.Installation, analysisCtx *Context) []*tymodel.AnalysisResult {
	extensions := append([]*tymodel.Extension(nil), inst.Extensions()...)
	sort.Slice(extensions, func(i, j int) bool { return extensions[i].Key < extensions[j].Key })

	analyzers := o.Registry.List()

	type job struct {
		ext      *tymodel.Extension
		analyzer Analyzer
		slot     int
	}

	var jobs []job
	slot := 0
	for _, ext := range extensions {
		for _, a := range analyzers {
			if !a.Supports(ext) {
				continue
			}
			jobs = append(jobs, job{ext: ext, analyzer: a, slot: slot})
			slot++
		}
	}

	results := make([]*tymodel.AnalysisResult, len(jobs))
	sem := make(chan struct{}, o.Concurrency)
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()

			if !HasRequiredTools(j.analyzer, exec.LookPath) {
				results[j.slot] = &tymodel.AnalysisResult{
					AnalyzerName: j.analyzer.Name(),
					Extension:    j.ext,
					Successful:   false,
					ErrorMessage: "required external tool not found on PATH",
					RiskScore:    10,
				}
				return
			}

			results[j.slot] = j.analyzer.Analyze(ctx, j.ext, analysisCtx)
		}(j)
	}

	wg.Wait()

	out := make([]*tymodel.AnalysisResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
