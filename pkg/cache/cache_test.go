package cache

import (
	"context"
	"errors"
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
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "sheet:abc", []byte("gen,name\n1,Ahmet"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "sheet:abc")
	if err != nil || !hit {
		t.Fatalf("Get = (%v, %v), want hit", hit, err)
	}
	if string(data) != "gen,name\n1,Ahmet" {
		t.Errorf("Get data = %q", data)
	}

	if err := c.Delete(ctx, "sheet:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "sheet:abc"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s should be cleared", k)
		}
	}
	if err := c.Set(ctx, "c", []byte("3"), 0); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.DataKey("abc"); got != "data:abc" {
		t.Errorf("DataKey = %q", got)
	}
	if got := k.ShareKey("id-1"); got != "share:id-1" {
		t.Errorf("ShareKey = %q", got)
	}
	if !strings.HasPrefix(k.SheetKey("https://x"), "sheet:") {
		t.Errorf("SheetKey should be namespaced")
	}

	fk1 := k.FrameKey("h", FrameKeyOpts{Focus: "mem_0", DX: 80, DY: 140})
	fk2 := k.FrameKey("h", FrameKeyOpts{Focus: "mem_1", DX: 80, DY: 140})
	if fk1 == fk2 {
		t.Error("Different FrameKeyOpts should produce different keys")
	}
	if fk1 != k.FrameKey("h", FrameKeyOpts{Focus: "mem_0", DX: 80, DY: 140}) {
		t.Error("FrameKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tree:1:")

	if got := scoped.ShareKey("x"); got != "tree:1:share:x" {
		t.Errorf("ShareKey = %q", got)
	}
	if got := scoped.DataKey("h"); got != "tree:1:data:h" {
		t.Errorf("DataKey = %q", got)
	}
	if !strings.HasPrefix(scoped.FrameKey("h", FrameKeyOpts{}), "tree:1:frame:") {
		t.Error("FrameKey should be prefixed")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.ShareKey("k"); got != "prefix:share:k" {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRequire(t *testing.T) {
	if _, err := Require(nil, false, nil); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("miss err = %v, want ErrCacheMiss", err)
	}
	boom := errors.New("boom")
	if _, err := Require(nil, false, boom); err != boom {
		t.Errorf("backend err = %v, want boom", err)
	}
	if data, err := Require([]byte("x"), true, nil); err != nil || string(data) != "x" {
		t.Errorf("hit = (%q, %v)", data, err)
	}
}
