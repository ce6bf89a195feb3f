// Package codesize implements the code-size analyzer: a
// pure filesystem walk over an extension's PHP sources counting lines,
// files, classes and methods as a proxy for migration effort when no
// external transformation tool is configured for a given file type.
//
// No library in this codebase's dependency set does line/class counting;
// a directory walk plus a few regexes is the idiomatic stdlib answer and
// needs no justification beyond that absence.
package codesize

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cpsit/tycore/internal/tyanalyze"
	"github.com/cpsit/tycore/internal/tymodel"
)

var (
	classPattern  = regexp.MustCompile(`(?i)\bclass\s+\w+`)
	methodPattern = regexp.MustCompile(`(?i)\bfunction\s+\w+\s*\(`)
)

// fileMetrics holds the per-file counts rolled up into the analyzer's
// aggregate result.
type fileMetrics struct {
	path    string
	lines   int
	classes int
	methods int
}

// Analyzer walks an extension's PHP sources and reports size metrics.
type Analyzer struct {
	// Extensions lists the file suffixes counted as source files.
	// Defaults to {".php"} when nil.
	Extensions []string
}

// New constructs the code-size analyzer.
func New() *Analyzer { return &Analyzer{Extensions: []string{".php"}} }

func (*Analyzer) Name() string { return "codesize" }

func (*Analyzer) Supports(ext *tymodel.Extension) bool { return ext.Path != "" }

func (*Analyzer) RequiredExternalTools() []string { return nil }

func (a *Analyzer) Analyze(_ context.Context, ext *tymodel.Extension, _ *tyanalyze.Context) *tymodel.AnalysisResult {
	result := &tymodel.AnalysisResult{AnalyzerName: "codesize", Extension: ext}

	extensions := a.Extensions
	if len(extensions) == 0 {
		extensions = []string{".php"}
	}

	var files []fileMetrics
	err := filepath.WalkDir(ext.Path, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !hasAnySuffix(path, extensions) {
			return nil
		}
		m, err := measureFile(path)
		if err != nil {
			return nil // unreadable file is skipped, not fatal to the whole walk
		}
		files = append(files, m)
		return nil
	})
	if err != nil {
		result.Successful = false
		result.ErrorMessage = err.Error()
		result.RiskScore = 10
		return result
	}

	totalLines, totalClasses, totalMethods := 0, 0, 0
	var largest fileMetrics
	for _, f := range files {
		totalLines += f.lines
		totalClasses += f.classes
		totalMethods += f.methods
		if f.lines > largest.lines {
			largest = f
		}
	}

	result.Successful = true
	result.RiskScore = scoreCodeSize(len(files), totalLines, largest.lines)
	result.Metrics = map[string]any{
		"file_count":        len(files),
		"total_lines":       totalLines,
		"class_count":       totalClasses,
		"method_count":      totalMethods,
		"largest_file":      largest.path,
		"largest_file_lines": largest.lines,
	}
	return result
}

// scoreCodeSize implements the code-size risk formula: larger
// extensions and disproportionately large single files both raise risk,
// reflecting that bigger surfaces take longer to review and migrate.
func scoreCodeSize(fileCount, totalLines, largestFileLines int) float64 {
	score := float64(totalLines) / 2000
	if largestFileLines > 1000 {
		score += 2
	}
	if fileCount > 200 {
		score += 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

func measureFile(path string) (fileMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileMetrics{}, err
	}
	defer f.Close()

	m := fileMetrics{path: path}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m.lines++
		line := scanner.Text()
		if classPattern.MatchString(line) {
			m.classes++
		}
		if methodPattern.MatchString(line) {
			m.methods++
		}
	}
	return m, scanner.Err()
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}
