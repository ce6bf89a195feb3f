// Package tyconfig implements ConfigParser: a
// format-dispatch registry over the three configuration dialects a TYPO3
// installation can carry — PHP array literals, YAML-like tabular
// documents, and XML-like tree documents — each lowered to a common
// map[string]any shape.
package tyconfig

import (
	"sync"

	"github.com/cpsit/tycore/internal/tyerrors"
)

// Format parses one configuration dialect into the common map[string]any
// representation ConfigParser returns.
type Format interface {
	// Identifier names the format for diagnostics.
	Identifier() string
	// Supports reports whether this format can attempt to parse path,
	// typically by extension or a cheap content sniff.
	Supports(path string, content []byte) bool
	// Parse lowers content to a nested map[string]any. Array/slice values
	// are represented as []any.
	Parse(path string, content []byte) (map[string]any, error)
}

type registration struct {
	format Format
	order  int
}

// Registry dispatches parse requests to the first registered Format that
// supports the given path/content, in registration order.
type Registry struct {
	mu      sync.RWMutex
	formats []registration
	next    int
}

// NewRegistry returns an empty format registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds a format. Registration order is the dispatch order used
// when more than one format claims to support a given input.
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, registration{format: f, order: r.next})
	r.next++
}

// List returns the identifiers of every registered format, in
// registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.formats))
	for i, reg := range r.formats {
		out[i] = reg.format.Identifier()
	}
	return out
}

// Parse dispatches to the first matching format. An unrecognized
// path/content pair returns tyerrors.CodeUnsupportedFormat.
func (r *Registry) Parse(path string, content []byte) (map[string]any, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.formats {
		if !reg.format.Supports(path, content) {
			continue
		}
		data, err := reg.format.Parse(path, content)
		if err != nil {
			return nil, reg.format.Identifier(), tyerrors.New(
				tyerrors.CodeParseFailure, tyerrors.SeverityError, false,
				"parsing %s as %s: %v", path, reg.format.Identifier(), err)
		}
		return data, reg.format.Identifier(), nil
	}

	return nil, "", tyerrors.New(
		tyerrors.CodeUnsupportedFormat, tyerrors.SeverityWarning, false,
		"no registered format supports %s", path)
}
