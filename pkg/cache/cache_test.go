package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("erDiagram"))
	h2 := Hash([]byte("erDiagram"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("flowchart"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	mk := k.ModelKey("abc123")
	if mk != "model:abc123" {
		t.Errorf("ModelKey unexpected: %s", mk)
	}

	// DiagramKey should include options in hash
	dk1 := k.DiagramKey("abc123", DiagramKeyOpts{Direction: "TB", FontSize: 12})
	dk2 := k.DiagramKey("abc123", DiagramKeyOpts{Direction: "LR", FontSize: 12})
	if dk1 == dk2 {
		t.Error("Different DiagramKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(dk1, "diagram:") {
		t.Errorf("DiagramKey prefix unexpected: %s", dk1)
	}

	ak1 := k.ArtifactKey("abc123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("abc123", ArtifactKeyOpts{Format: "png", Scale: 2})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "client:123:")

	if got := scoped.ModelKey("abc"); got != "client:123:model:abc" {
		t.Errorf("ModelKey unexpected: %s", got)
	}
	if !strings.HasPrefix(scoped.DiagramKey("abc", DiagramKeyOpts{}), "client:123:diagram:") {
		t.Error("DiagramKey should carry the scope prefix")
	}
	if !strings.HasPrefix(scoped.ArtifactKey("abc", ArtifactKeyOpts{}), "client:123:artifact:") {
		t.Error("ArtifactKey should carry the scope prefix")
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if got := fallback.ModelKey("x"); got != "p:model:x" {
		t.Errorf("fallback ModelKey unexpected: %s", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before set
	_, hit, err := c.Get(ctx, "key")
	if err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("svg bytes"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if string(data) != "svg bytes" {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("deleting absent key should not error: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheClearAndSize(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte("data"), 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	count, bytes, err := c.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if count != 3 || bytes == 0 {
		t.Errorf("Size = %d entries, %d bytes", count, bytes)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	count, _, err = c.Size()
	if err != nil {
		t.Fatalf("Size after Clear: %v", err)
	}
	if count != 0 {
		t.Errorf("count after Clear = %d", count)
	}
	_, hit, _ := c.Get(ctx, "a")
	if hit {
		t.Error("cleared entry should be a miss")
	}
}
