package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func init() {
	retryBaseDelay = time.Millisecond
}

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
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "option:abc"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "option:abc", []byte(`{"series":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "option:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"series":[]}` {
		t.Errorf("Get = %s", data)
	}

	if err := c.Delete(ctx, "option:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "option:abc"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "option:abc"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "graph:1", []byte("g"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "graph:forever", []byte("g"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "graph:1"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("graph:1")); !os.IsNotExist(err) {
		t.Error("expired entry not removed from disk")
	}
	if _, hit, _ := c.Get(ctx, "graph:forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files in the cache root are left alone.
	if err := os.WriteFile(filepath.Join(dir, "README"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(filepath.Join(dir, "README")); err != nil {
		t.Error("Clear removed an unrelated file")
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
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

	gk1 := k.GraphKey("default", GraphKeyOpts{IDs: []string{"2", "1", "1"}})
	gk2 := k.GraphKey("default", GraphKeyOpts{IDs: []string{"1", "2"}})
	if gk1 != gk2 {
		t.Error("GraphKey should ignore id order and duplicates")
	}
	if !strings.HasPrefix(gk1, KeyTypeGraph+":") {
		t.Errorf("GraphKey prefix: %s", gk1)
	}
	if gk1 == k.GraphKey("other", GraphKeyOpts{IDs: []string{"1", "2"}}) {
		t.Error("different projects should produce different graph keys")
	}

	ok1 := k.OptionKey("hash123", OptionKeyOpts{Focus: "1", ShowLabels: true, Locale: "en"})
	ok2 := k.OptionKey("hash123", OptionKeyOpts{Focus: "1", ShowLabels: false, Locale: "en"})
	if ok1 == ok2 {
		t.Error("different OptionKeyOpts should produce different keys")
	}
	if ok1 != k.OptionKey("hash123", OptionKeyOpts{Focus: "1", ShowLabels: true, Locale: "EN"}) {
		t.Error("OptionKey should be case-insensitive in the locale")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if key := scoped.GraphKey("default", GraphKeyOpts{IDs: []string{"1"}}); !strings.HasPrefix(key, "staging:graph:") {
		t.Errorf("GraphKey should be prefixed: %s", key)
	}
	if key := scoped.OptionKey("h", OptionKeyOpts{}); !strings.HasPrefix(key, "staging:option:") {
		t.Errorf("OptionKey should be prefixed: %s", key)
	}
	if key := scoped.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(key, "staging:artifact:") {
		t.Errorf("ArtifactKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().OptionKey("h", OptionKeyOpts{})
	if key := scoped.OptionKey("h", OptionKeyOpts{}); key != want {
		t.Errorf("OptionKey with nil inner = %s, want %s", key, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	errWrongType := errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return errWrongType
	})
	if err != errWrongType || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	buf := []byte("v1")
	if err := c.Set(ctx, "k", buf, time.Minute); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}
	data[0] = 'Y'
	if again, _, _ := c.Get(ctx, "k"); string(again) != "v1" {
		t.Error("cache returned a shared buffer")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", c.Len())
	}

	_ = c.Set(ctx, "a", []byte("a"), 0)
	_ = c.Delete(ctx, "a")
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Delete")
	}
}
