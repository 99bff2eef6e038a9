package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	c := Disabled()
	defer c.Close()

	if err := c.Set(ctx, "hierarchy:42", []byte("{}"), TTLHierarchy); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "hierarchy:42")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%q, %v, %v), want a clean miss", data, hit, err)
	}
	if err := c.Delete(ctx, "hierarchy:42"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v; want hit", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get(k) = %q, want %q", data, "payload")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero TTL entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("ReadDir after Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries after Clear = %d, want 0", len(entries))
	}
}

func TestRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("NewRedisCache with invalid URL should fail")
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("layout"), []byte("tree"))
	if a != Digest([]byte("layout"), []byte("tree")) {
		t.Error("Digest should be deterministic")
	}
	if a == Digest([]byte("layou"), []byte("ttree")) {
		t.Error("part boundaries should change the digest")
	}
	if len(a) != 64 {
		t.Errorf("Digest length = %d, want 64", len(a))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	hk := k.HierarchyKey("42", "business")
	if !strings.HasPrefix(hk, "hierarchy:") {
		t.Errorf("HierarchyKey = %q, want hierarchy: prefix", hk)
	}
	if hk == k.HierarchyKey("42", "legal") {
		t.Error("view modes should produce different hierarchy keys")
	}
	if hk != k.HierarchyKey("42", "business") {
		t.Error("HierarchyKey should be deterministic")
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{DetailLevel: 1})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{DetailLevel: 2})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	c1 := k.LayoutKey("h", LayoutKeyOpts{Collapse: map[string]bool{"a": true, "b": false}})
	c2 := k.LayoutKey("h", LayoutKeyOpts{Collapse: map[string]bool{"b": false, "a": true}})
	if c1 != c2 {
		t.Error("collapse map order should not affect the key")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Theme: "light"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Theme: "light"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestNamespaced(t *testing.T) {
	inner := NewDefaultKeyer()
	tests := []struct {
		namespace string
		want      string
	}{
		{"staging", "staging:"},
		{"staging:", "staging:"},
		{"", ""},
	}
	for _, tt := range tests {
		k := Namespaced(inner, tt.namespace)
		if got, want := k.HierarchyKey("42", "legal"), tt.want+inner.HierarchyKey("42", "legal"); got != want {
			t.Errorf("Namespaced(%q).HierarchyKey = %q, want %q", tt.namespace, got, want)
		}
		if got := k.LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(got, tt.want+"layout:") {
			t.Errorf("Namespaced(%q).LayoutKey = %q", tt.namespace, got)
		}
		if got := k.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(got, tt.want+"artifact:") {
			t.Errorf("Namespaced(%q).ArtifactKey = %q", tt.namespace, got)
		}
	}

	if got, want := Namespaced(nil, "p").HierarchyKey("o", "business"), "p:"+inner.HierarchyKey("o", "business"); got != want {
		t.Errorf("nil inner = %q, want %q", got, want)
	}
}
