// Package tyconfigfile handles tycore.yaml, the operator-facing
// configuration file that controls which analyzers run, where reports
// and caches land, and how the external registry and rewrite-tool
// clients are configured.
//
// Unlike internal/tyconfig (which parses configuration files discovered
// inside an analyzed installation), tycore.yaml is tycore's own
// configuration — parsed once at startup, against a closed set of
// recognized keys. An unrecognized key is a warning, not a parse
// failure, so operators can upgrade tycore without a stale key in an
// existing file breaking the run.
package tyconfigfile

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cpsit/tycore/internal/secureio"
)

// AnalyzerConfig configures one named analyzer.
type AnalyzerConfig struct {
	Options       map[string]any `yaml:"options"`
	Enabled       bool           `yaml:"enabled"`
	CacheTTLSeconds int          `yaml:"cache_ttl"`
}

// CacheTTL returns CacheTTLSeconds as a time.Duration, or fallback if unset.
func (a AnalyzerConfig) CacheTTL(fallback time.Duration) time.Duration {
	if a.CacheTTLSeconds <= 0 {
		return fallback
	}
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

// ReportingConfig controls report generation.
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats"`
}

// CacheConfig controls the on-disk cache layer.
type CacheConfig struct {
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

// GitHubConfig configures tyregistry.GitHubClient.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// GitConfig configures source-hosting lookups.
type GitConfig struct {
	GitHub         GitHubConfig `yaml:"github"`
	TimeoutSeconds int          `yaml:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a time.Duration, or fallback if unset.
func (g GitConfig) Timeout(fallback time.Duration) time.Duration {
	if g.TimeoutSeconds <= 0 {
		return fallback
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// RectorConfig configures the external source-transformation tool
// invocation (named "rector" after the rewrite-rule engine tycore
// shells out to).
type RectorConfig struct {
	BinaryPath     string `yaml:"binary_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a time.Duration, or fallback if unset.
func (r RectorConfig) Timeout(fallback time.Duration) time.Duration {
	if r.TimeoutSeconds <= 0 {
		return fallback
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Config is the parsed form of tycore.yaml.
type Config struct {
	Analyzers map[string]AnalyzerConfig `yaml:"analyzers"`
	Reporting ReportingConfig           `yaml:"reporting"`
	Cache     CacheConfig               `yaml:"cache"`
	Git       GitConfig                 `yaml:"git"`
	Rector    RectorConfig              `yaml:"rector"`
}

// recognizedTopLevel and recognizedNested mirror the closed key
// set; anything else surfaces as a warning rather than a parse failure.
var recognizedTopLevel = map[string]bool{
	"analyzers": true,
	"reporting": true,
	"cache":     true,
	"git":       true,
	"rector":    true,
}

var recognizedNested = map[string]map[string]bool{
	"reporting": {"formats": true, "output_dir": true},
	"cache":     {"enabled": true, "dir": true},
	"git":       {"github": true, "timeout_seconds": true},
	"rector":    {"binary_path": true, "timeout_seconds": true},
}

var recognizedAnalyzerKeys = map[string]bool{
	"enabled": true, "cache_ttl": true, "options": true,
}

// Load reads and parses path, returning the config along with warnings
// for every unrecognized key encountered. A warning never prevents the
// rest of the file from loading.
func Load(path string) (*Config, []string, error) {
	data, err := secureio.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses raw YAML bytes into a Config, collecting warnings for
// unrecognized keys along the way.
func Parse(data []byte) (*Config, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}

	var warnings []string
	if len(root.Content) > 0 {
		warnings = collectUnrecognizedKeys(root.Content[0])
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}

	return &config, warnings, nil
}

// collectUnrecognizedKeys walks the document's top-level mapping and its
// known nested mappings, reporting any key outside the closed set.
func collectUnrecognizedKeys(doc *yaml.Node) []string {
	if doc.Kind != yaml.MappingNode {
		return nil
	}

	var warnings []string
	for i := 0; i < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		value := doc.Content[i+1]

		if !recognizedTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unrecognized configuration key %q", key))
			continue
		}

		if key == "analyzers" {
			warnings = append(warnings, collectAnalyzerWarnings(value)...)
			continue
		}

		if nested, ok := recognizedNested[key]; ok {
			warnings = append(warnings, collectNestedWarnings(key, value, nested)...)
		}
	}
	return warnings
}

func collectAnalyzerWarnings(analyzers *yaml.Node) []string {
	if analyzers.Kind != yaml.MappingNode {
		return nil
	}
	var warnings []string
	for i := 0; i < len(analyzers.Content); i += 2 {
		name := analyzers.Content[i].Value
		entry := analyzers.Content[i+1]
		if entry.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j < len(entry.Content); j += 2 {
			field := entry.Content[j].Value
			if !recognizedAnalyzerKeys[field] {
				warnings = append(warnings, fmt.Sprintf("unrecognized key \"analyzers.%s.%s\"", name, field))
			}
		}
	}
	return warnings
}

func collectNestedWarnings(prefix string, node *yaml.Node, recognized map[string]bool) []string {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	var warnings []string
	for i := 0; i < len(node.Content); i += 2 {
		field := node.Content[i].Value
		if !recognized[field] {
			warnings = append(warnings, fmt.Sprintf("unrecognized key %q", prefix+"."+field))
		}
	}
	return warnings
}

// DefaultConfig returns tycore's built-in configuration, used when no
// tycore.yaml is present.
func DefaultConfig() *Config {
	return &Config{
		Analyzers: map[string]AnalyzerConfig{
			"availability": {Enabled: true, CacheTTLSeconds: 3600},
			"transform":    {Enabled: true, CacheTTLSeconds: 3600},
			"codesize":     {Enabled: true, CacheTTLSeconds: 3600},
		},
		Reporting: ReportingConfig{
			Formats:   []string{"json"},
			OutputDir: "./tycore-report",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "./.tycore-cache",
		},
		Git: GitConfig{
			TimeoutSeconds: 30,
		},
		Rector: RectorConfig{
			TimeoutSeconds: 120,
		},
	}
}
