package tycache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStoreExpiry(t *testing.T) {
	m := NewMemoryStore()
	_ = m.Set("k", Entry{Payload: []byte(`"v"`), CachedAt: time.Now().Add(-10 * time.Second).Unix(), TTLSeconds: 1})
	if _, ok := m.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestDiskStoreAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDiskStore(filepath.Join(dir, "analysis"))
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	entry := Entry{Payload: []byte(`{"risk_score":2.5}`), CachedAt: time.Now().Unix(), TTLSeconds: 0}
	if err := d.Set("abc123", entry); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := d.Get("abc123")
	if !ok {
		t.Fatalf("expected cache hit after Set")
	}
	if string(got.Payload) != string(entry.Payload) {
		t.Fatalf("payload mismatch: got %s want %s", got.Payload, entry.Payload)
	}
}

func TestCacheClearDryRun(t *testing.T) {
	dir := t.TempDir()
	d, _ := NewDiskStore(dir)
	_ = d.Set("a", Entry{Payload: []byte(`1`)})
	_ = d.Set("b", Entry{Payload: []byte(`22`)})

	count, _, err := d.Clear(true)
	if err != nil {
		t.Fatalf("Clear dry-run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entries reported, got %d", count)
	}

	if _, ok := d.Get("a"); !ok {
		t.Fatalf("dry-run must not remove entries")
	}

	count, _, err = d.Clear(false)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 entries removed, got %d", count)
	}
	if _, ok := d.Get("a"); ok {
		t.Fatalf("expected entries removed after real clear")
	}
}

func TestMultiLayerHitRatio(t *testing.T) {
	c := New(nil)
	_ = c.Set("k", []byte(`1`), time.Minute)

	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit")
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
	if ratio := c.Stats.HitRatio(); ratio != 0.5 {
		t.Fatalf("expected hit ratio 0.5, got %v", ratio)
	}
}
