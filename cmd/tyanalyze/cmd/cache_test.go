package cmd

import "testing"

func TestIsKnownCacheType(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want bool
	}{
		{name: "analysis is known", typ: "analysis", want: true},
		{name: "path-resolution is known", typ: "path-resolution", want: true},
		{name: "version is known", typ: "version", want: true},
		{name: "extension-discovery is known", typ: "extension-discovery", want: true},
		{name: "installation-discovery is known", typ: "installation-discovery", want: true},
		{name: "unknown type rejected", typ: "bogus", want: false},
		{name: "empty string rejected", typ: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isKnownCacheType(tt.typ); got != tt.want {
				t.Errorf("isKnownCacheType(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestClearCacheTypeReportsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	count, bytes, err := clearCacheType(dir, "analysis", true)
	if err != nil {
		t.Fatalf("clearCacheType: %v", err)
	}
	if count != 0 || bytes != 0 {
		t.Errorf("expected an empty new cache dir to report 0/0, got %d/%d", count, bytes)
	}
}
