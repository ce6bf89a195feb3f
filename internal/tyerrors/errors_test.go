package tyerrors

import (
	"errors"
	"testing"
)

func TestTyErrorWraps(t *testing.T) {
	e := New(CodePathNotFound, SeverityWarning, true, "missing %s", "web-dir")
	var target *TyError
	if !errors.As(e, &target) {
		t.Fatalf("expected errors.As to match *TyError")
	}
	if target.Code != CodePathNotFound {
		t.Fatalf("expected code %q, got %q", CodePathNotFound, target.Code)
	}
}

func TestWithContext(t *testing.T) {
	e := InvalidRequest("missing pathType").WithContext("field", "pathType")
	if e.Context["field"] != "pathType" {
		t.Fatalf("expected context to be attached")
	}
}
