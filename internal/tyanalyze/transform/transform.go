// Package transform implements the source-transformation analyzer:
// running an external rewrite/rector-style tool against an extension's
// source tree in dry-run mode, classifying the changes it would apply,
// and scoring the result as a proxy for migration effort.
package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/cpsit/tycore/internal/tyanalyze"
	"github.com/cpsit/tycore/internal/tymodel"
)

// severity classifies one applied rector finding. It is distinct from
// tymodel.Severity (which grades validation issues, not analyzer
// findings) because findings also carry a "suggestion" grade below info.
type severity string

const (
	severityCritical   severity = "critical"
	severityWarning    severity = "warning"
	severityInfo       severity = "info"
	severitySuggestion severity = "suggestion"
)

// changeType buckets a finding by what kind of migration work it
// represents, independent of its severity.
const (
	changeBreaking      = "breaking"
	changeDeprecation   = "deprecation"
	changeModernization = "modernization"
	changeStyle         = "style"
)

// topListSize bounds how many files/rules are surfaced in the "busiest"
// summaries, so a run touching thousands of files doesn't dump all of
// them into the report.
const topListSize = 5

// rectorFinding is one entry of a changed file's applied_rectors array:
// the record of a single rule firing against a single line.
type rectorFinding struct {
	Class   string `json:"class"`
	Line    int    `json:"line"`
	Message string `json:"message"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

// toolOutput is the JSON shape external transform tools report on stdout
// in dry-run mode.
type toolOutput struct {
	ChangedFiles []struct {
		File           string          `json:"file"`
		AppliedRectors []rectorFinding `json:"applied_rectors"`
	} `json:"changed_files"`
}

// finding is a rectorFinding enriched with its derived severity and
// change type, scoped to the file it was found in.
type finding struct {
	file       string
	class      string
	line       int
	message    string
	old        string
	new        string
	severity   severity
	changeType string
}

// Analyzer runs one external transformation tool (named by Binary)
// against an extension's path and scores the result by the severity and
// volume of changes it would apply. tycore instantiates this analyzer
// once per supported tool, each under its own Name().
type Analyzer struct {
	ToolName string
	Binary   string
	Args     []string
	Timeout  time.Duration
	// SourceExtensions lists the file suffixes counted when sizing the
	// total-files denominator. Defaults to {".php"} when nil.
	SourceExtensions []string
	runner           func(ctx context.Context, name string, args []string, timeout time.Duration) ([]byte, error)
}

// New constructs a transform analyzer wrapping the given external binary.
// args is appended after a fixed "--dry-run --format=json <extensionPath>"
// prefix the analyzer assembles per run.
func New(toolName, binary string, args []string, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Analyzer{ToolName: toolName, Binary: binary, Args: args, Timeout: timeout, runner: runCommand}
}

func (a *Analyzer) Name() string { return "transform:" + a.ToolName }

func (*Analyzer) Supports(ext *tymodel.Extension) bool { return ext.Path != "" }

func (a *Analyzer) RequiredExternalTools() []string { return []string{a.Binary} }

func (a *Analyzer) Analyze(ctx context.Context, ext *tymodel.Extension, _ *tyanalyze.Context) *tymodel.AnalysisResult {
	result := &tymodel.AnalysisResult{AnalyzerName: a.Name(), Extension: ext}

	args := append([]string{"--dry-run", "--format=json", ext.Path}, a.Args...)
	stdout, err := a.runner(ctx, a.Binary, args, a.Timeout)
	if err != nil {
		result.Successful = false
		result.ErrorMessage = fmt.Sprintf("running %s: %v", a.Binary, err)
		result.RiskScore = 10
		return result
	}

	var parsed toolOutput
	if err := json.Unmarshal(stdout, &parsed); err != nil {
		result.Successful = false
		result.ErrorMessage = fmt.Sprintf("parsing %s output: %v", a.Binary, err)
		result.RiskScore = 10
		return result
	}

	findings := flattenFindings(parsed)

	extensions := a.SourceExtensions
	if len(extensions) == 0 {
		extensions = []string{".php"}
	}
	totalFiles, err := countSourceFiles(ext.Path, extensions)
	if err != nil {
		result.Successful = false
		result.ErrorMessage = err.Error()
		result.RiskScore = 10
		return result
	}

	affectedFiles := len(parsed.ChangedFiles)
	bySeverity := countBySeverity(findings)
	byChangeType := countByChangeType(findings)
	distinctRules := distinctClasses(findings)
	complexity := complexityScore(distinctRules)
	fixMinutes := estimatedFixMinutes(bySeverity)

	result.Successful = true
	result.RiskScore = scoreTransform(bySeverity, affectedFiles, totalFiles, complexity, float64(fixMinutes)/60)
	result.Metrics = map[string]any{
		"affected_files":          affectedFiles,
		"total_files":             totalFiles,
		"distinct_rule_count":     len(distinctRules),
		"findings_by_severity":    severityCounts(bySeverity),
		"findings_by_change_type": byChangeType,
		"complexity_score":        complexity,
		"estimated_fix_minutes":   fixMinutes,
		"has_breaking_changes":    byChangeType[changeBreaking] > 0,
		"has_deprecations":        byChangeType[changeDeprecation] > 0,
		"top_files":               topN(fileCounts(findings), topListSize),
		"top_rules":               topN(ruleCounts(findings), topListSize),
	}
	if diffs := unifiedDiffs(findings); len(diffs) > 0 {
		result.Metrics["diffs"] = diffs
	}
	if affectedFiles > 0 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("%s would touch %d file(s) across %d rule(s)", a.ToolName, affectedFiles, len(distinctRules)))
	}
	if byChangeType[changeBreaking] > 0 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("%d breaking change(s) require manual review before upgrading", byChangeType[changeBreaking]))
	}
	return result
}

// flattenFindings classifies every applied rector into a finding scoped
// to its file.
func flattenFindings(out toolOutput) []finding {
	var findings []finding
	for _, f := range out.ChangedFiles {
		for _, r := range f.AppliedRectors {
			sev, ct := classifyFinding(r)
			findings = append(findings, finding{
				file: f.File, class: r.Class, line: r.Line, message: r.Message,
				old: r.Old, new: r.New, severity: sev, changeType: ct,
			})
		}
	}
	return findings
}

// classifyFinding derives a severity and change type from a rector's
// class name and message. The tool contract carries neither field
// explicitly, so this reads the same signal a human reviewer would:
// the rule's own name and description. Breaking/removal wording is
// checked before deprecation wording, since a rector retiring a
// deprecated API often mentions both.
func classifyFinding(f rectorFinding) (severity, string) {
	text := strings.ToLower(f.Class + " " + f.Message)
	switch {
	case containsAny(text, "breaking", "bc break", "removed", "incompatible"):
		return severityCritical, changeBreaking
	case containsAny(text, "deprecat"):
		return severityWarning, changeDeprecation
	case containsAny(text, "rename", "migrat", "replace", "upgrade"):
		return severityInfo, changeModernization
	default:
		return severitySuggestion, changeStyle
	}
}

func containsAny(text string, substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func countBySeverity(findings []finding) map[severity]int {
	counts := map[severity]int{}
	for _, f := range findings {
		counts[f.severity]++
	}
	return counts
}

func severityCounts(counts map[severity]int) map[string]int {
	return map[string]int{
		"critical":   counts[severityCritical],
		"warning":    counts[severityWarning],
		"info":       counts[severityInfo],
		"suggestion": counts[severitySuggestion],
	}
}

func countByChangeType(findings []finding) map[string]int {
	counts := map[string]int{changeBreaking: 0, changeDeprecation: 0, changeModernization: 0, changeStyle: 0}
	for _, f := range findings {
		counts[f.changeType]++
	}
	return counts
}

func distinctClasses(findings []finding) map[string]bool {
	classes := map[string]bool{}
	for _, f := range findings {
		classes[f.class] = true
	}
	return classes
}

// complexityScore grows with how many distinct rule categories fired:
// a change touching many different kinds of rules takes longer to
// review than the same number of findings from a single rule.
func complexityScore(distinctRules map[string]bool) float64 {
	score := float64(len(distinctRules))
	if score > 10 {
		score = 10
	}
	return score
}

// estimatedFixMinutes weights each finding by how long a reviewer
// typically spends resolving that grade of change: a breaking-change
// rewrite takes much longer to verify than a style suggestion.
func estimatedFixMinutes(counts map[severity]int) int {
	return counts[severityCritical]*90 + counts[severityWarning]*30 + counts[severityInfo]*10 + counts[severitySuggestion]*5
}

// scoreTransform implements the transformation-counter risk formula:
// a baseline driven by breaking/warning density and the affected-file
// ratio, scaled up by rule complexity, then bumped further when the
// estimated fix time is substantial.
func scoreTransform(bySeverity map[severity]int, affectedFiles, totalFiles int, complexity, fixHours float64) float64 {
	var fileRatio float64
	if totalFiles > 0 {
		fileRatio = float64(affectedFiles) / float64(totalFiles)
	}

	base := 1 + 0.8*float64(bySeverity[severityCritical]) + 0.3*float64(bySeverity[severityWarning]) + 2*fileRatio
	base *= 1 + complexity/10

	switch {
	case fixHours > 8:
		base += 1.0
	case fixHours > 4:
		base += 0.5
	}

	if base < 0 {
		base = 0
	}
	if base > 10 {
		base = 10
	}
	return base
}

type countedName struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func fileCounts(findings []finding) map[string]int {
	counts := map[string]int{}
	for _, f := range findings {
		counts[f.file]++
	}
	return counts
}

func ruleCounts(findings []finding) map[string]int {
	counts := map[string]int{}
	for _, f := range findings {
		counts[f.class]++
	}
	return counts
}

// topN sorts counts descending (ties broken alphabetically for
// deterministic output) and returns at most n entries.
func topN(counts map[string]int, n int) []countedName {
	entries := make([]countedName, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, countedName{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// countSourceFiles walks path counting files with one of the given
// suffixes, to size the affected/total-files ratio in the risk formula.
func countSourceFiles(path string, extensions []string) (int, error) {
	total := 0
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		for _, ext := range extensions {
			if strings.HasSuffix(p, ext) {
				total++
				break
			}
		}
		return nil
	})
	return total, err
}

// unifiedDiffs renders a unified diff per finding that reported both old
// and new content, for display in the html/markdown findings-detail
// report. Findings without content are skipped rather than producing an
// empty, useless diff.
func unifiedDiffs(findings []finding) map[string]string {
	diffs := make(map[string]string)
	for _, f := range findings {
		if f.old == "" && f.new == "" {
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(f.old),
			B:        difflib.SplitLines(f.new),
			FromFile: f.file,
			ToFile:   f.file,
			Context:  3,
			Eol:      "\n",
		})
		if err != nil {
			continue
		}
		diffs[fmt.Sprintf("%s:%d", f.file, f.line)] = diff
	}
	return diffs
}

func runCommand(ctx context.Context, name string, args []string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 - binary and args are operator-configured, not derived from untrusted input
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
