package tyconfig

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TabularFormat parses the YAML-like tabular configuration dialect
// (TYPO3's TypoScript-adjacent Services.yaml / Configuration.yaml
// documents), with ${VAR} environment substitution and multi-document
// support (only the first document is returned; later documents are
// ignored, matching how TYPO3 itself treats stray `---` separators in
// these files).
type TabularFormat struct{}

// NewTabularFormat constructs the tabular (YAML) format handler.
func NewTabularFormat() Format { return TabularFormat{} }

func (TabularFormat) Identifier() string { return "tabular" }

var tabularExt = regexp.MustCompile(`(?i)\.(ya?ml)$`)

func (TabularFormat) Supports(path string, _ []byte) bool {
	return tabularExt.MatchString(path)
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func substituteEnv(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		if v, ok := os.LookupEnv(string(name)); ok {
			return []byte(v)
		}
		return match
	})
}

func (TabularFormat) Parse(_ string, content []byte) (map[string]any, error) {
	substituted := substituteEnv(content)

	dec := yaml.NewDecoder(strings.NewReader(string(substituted)))
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tabular document: %w", err)
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	return normalizeYAML(doc).(map[string]any), nil
}

// normalizeYAML recursively converts yaml.v3's map[string]interface{} /
// []interface{} / map[interface{}]interface{} shapes into a consistent
// map[string]any / []any tree, so downstream code never has to special-
// case yaml.v3's decoding quirks.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeYAML(vv)
		}
		return out
	default:
		return val
	}
}
