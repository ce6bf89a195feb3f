package tyanalyze

import (
	"errors"
	"testing"
)

func TestOptionReturnsTypedValueOrFallback(t *testing.T) {
	ctx := &Context{Options: map[string]any{"threshold": 5, "label": "x"}}

	if got := Option(ctx, "threshold", 0); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
	if got := Option(ctx, "missing", 9); got != 9 {
		t.Errorf("expected fallback 9, got %v", got)
	}
	if got := Option(ctx, "label", 0); got != 0 {
		t.Errorf("expected fallback on type mismatch, got %v", got)
	}
	if got := Option((*Context)(nil), "threshold", 7); got != 7 {
		t.Errorf("expected fallback for nil context, got %v", got)
	}
}

func TestHasRequiredTools(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/tool", nil }
	notFound := func(string) (string, error) { return "", errors.New("not found") }

	a := &recordingAnalyzer{name: "needs-tool"}
	if !HasRequiredTools(a, found) {
		t.Errorf("expected true when RequiredExternalTools is empty")
	}

	withTools := &toolRequiringAnalyzer{recordingAnalyzer: recordingAnalyzer{name: "with-tool"}, tools: []string{"rector"}}
	if !HasRequiredTools(withTools, found) {
		t.Errorf("expected true when the tool resolves")
	}
	if HasRequiredTools(withTools, notFound) {
		t.Errorf("expected false when the tool does not resolve")
	}
}

type toolRequiringAnalyzer struct {
	recordingAnalyzer
	tools []string
}

func (a *toolRequiringAnalyzer) RequiredExternalTools() []string { return a.tools }
