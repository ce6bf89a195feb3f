package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpsit/tycore/internal/tyanalyze"
	"github.com/cpsit/tycore/internal/tyanalyze/availability"
	"github.com/cpsit/tycore/internal/tyanalyze/codesize"
	"github.com/cpsit/tycore/internal/tyanalyze/transform"
	"github.com/cpsit/tycore/internal/tycache"
	"github.com/cpsit/tycore/internal/tyconfigfile"
	"github.com/cpsit/tycore/internal/tyregistry"
	"github.com/cpsit/tycore/internal/tyreport"
	"github.com/cpsit/tycore/internal/tyrisk"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Discover an installation and analyze its extensions",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	installationPath, err := filepath.Abs(args[0])
	if err != nil {
		return &exitError{err: fmt.Errorf("resolve path: %w", err), code: exitInvalidInvocation}
	}
	if _, err := os.Stat(installationPath); err != nil {
		return &exitError{err: fmt.Errorf("installation path: %w", err), code: exitInvalidInvocation}
	}

	log := logger()

	config := loadConfigOrDefault(log)

	cacheDir := config.Cache.Dir
	if cacheDir == "" {
		cacheDir = "./.tycore-cache"
	}
	disk, err := tycache.NewDiskStore(filepath.Join(cacheDir, "analysis"))
	if err != nil {
		return &exitError{err: fmt.Errorf("open cache: %w", err), code: exitInvalidInvocation}
	}
	cache := tycache.New(disk)

	pipeline := buildDiscoveryPipeline(cache)

	ctx := context.Background()
	installation, err := pipeline.Discover(ctx, installationPath)
	if err != nil {
		return &exitError{err: fmt.Errorf("discover installation: %w", err), code: exitInvalidInvocation}
	}

	registry := buildAnalyzerRegistry(config, cache)
	orchestrator := tyanalyze.NewOrchestrator(registry, 4)
	analysisCtx := &tyanalyze.Context{Installation: installation}
	results := orchestrator.Run(ctx, installation, analysisCtx)

	reportCtx := tyrisk.Build(installation, results, time.Now())

	if err := writeReport(config, reportCtx); err != nil {
		log.Warn("failed to write report", "error", err)
	}

	if installation.HasBlockingIssues() {
		lastExitCode = exitBlockingIssues
		return nil
	}
	if reportCtx.Summary.AnalyzerFailures > 0 {
		lastExitCode = exitAnalyzerErrors
		return nil
	}
	lastExitCode = exitSuccess
	return nil
}

func loadConfigOrDefault(log interface{ Warn(string, ...any) }) *tyconfigfile.Config {
	const configPath = "./tycore.yaml"
	if _, err := os.Stat(configPath); err != nil {
		return tyconfigfile.DefaultConfig()
	}
	config, warnings, err := tyconfigfile.Load(configPath)
	if err != nil {
		log.Warn("failed to load tycore.yaml, using defaults", "error", err)
		return tyconfigfile.DefaultConfig()
	}
	for _, w := range warnings {
		log.Warn(w)
	}
	return config
}

func buildAnalyzerRegistry(config *tyconfigfile.Config, cache *tycache.MultiLayer) *tyanalyze.Registry {
	registry := tyanalyze.NewRegistry()

	if a, ok := config.Analyzers["availability"]; !ok || a.Enabled {
		lookup := tyregistry.NewLookup(config.Git.GitHub.Token)
		ttl := config.Analyzers["availability"].CacheTTL(time.Hour)
		registry.Register(tyanalyze.NewCached(availability.New(lookup), cache, ttl))
	}

	if a, ok := config.Analyzers["codesize"]; !ok || a.Enabled {
		ttl := config.Analyzers["codesize"].CacheTTL(time.Hour)
		registry.Register(tyanalyze.NewCached(codesize.New(), cache, ttl))
	}

	if a, ok := config.Analyzers["transform"]; !ok || a.Enabled {
		ttl := config.Analyzers["transform"].CacheTTL(time.Hour)
		binary := config.Rector.BinaryPath
		if binary == "" {
			binary = "rector"
		}
		timeout := config.Rector.Timeout(2 * time.Minute)
		registry.Register(tyanalyze.NewCached(transform.New("rector", binary, nil, timeout), cache, ttl))
	}

	return registry
}

func writeReport(config *tyconfigfile.Config, reportCtx *tyrisk.ReportContext) error {
	formats := make([]tyreport.Format, 0, len(config.Reporting.Formats))
	for _, f := range config.Reporting.Formats {
		formats = append(formats, tyreport.Format(f))
	}
	if len(formats) == 0 {
		formats = []tyreport.Format{tyreport.FormatJSON}
	}

	outputDir := config.Reporting.OutputDir
	if outputDir == "" {
		outputDir = "./tycore-report"
	}

	return tyreport.Write(outputDir, formats, reportCtx, jsonRenderer{})
}

// jsonRenderer is the one renderer tyanalyze ships: it marshals
// ReportContext straight to JSON, embedding detail data inline.
// html/markdown rendering is an external template concern and is left
// for an operator-supplied Renderer.
type jsonRenderer struct{}

func (jsonRenderer) RenderMain(ctx *tyrisk.ReportContext, _ tyreport.Format) ([]byte, error) {
	return json.MarshalIndent(ctx, "", "  ")
}

func (jsonRenderer) RenderExtension(_ *tyrisk.ReportContext, ext tyrisk.ExtensionReport, _ tyreport.Format) ([]byte, error) {
	return json.MarshalIndent(ext, "", "  ")
}

func (jsonRenderer) RenderFindingsDetail(_ *tyrisk.ReportContext, ext tyrisk.ExtensionReport, _ tyreport.Format) ([]byte, error) {
	return json.MarshalIndent(ext.Results, "", "  ")
}

func (jsonRenderer) HasFindingsDetail(ext tyrisk.ExtensionReport) bool {
	return len(ext.Results) > 0
}
