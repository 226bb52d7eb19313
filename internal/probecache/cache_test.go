package probecache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeMedia(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

func TestCacheStoreAndLookup(t *testing.T) {
	tmpDir := t.TempDir()
	media := writeMedia(t, tmpDir, "a.mkv", "frames")
	cache := New(filepath.Join(tmpDir, "cache"), nil)

	if _, ok := cache.Lookup(media); ok {
		t.Fatal("Lookup should miss before Store")
	}

	stored, err := cache.Store(media, 120.5, 23.976, []float64{0, 2, 4})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	found, ok := cache.Lookup(media)
	if !ok {
		t.Fatal("Lookup failed to find stored entry")
	}
	if found.Key != stored.Key {
		t.Errorf("Key mismatch: got %q, want %q", found.Key, stored.Key)
	}
	if found.Duration != 120.5 {
		t.Errorf("Duration mismatch: got %v", found.Duration)
	}
	if len(found.Keyframes) != 3 || found.Keyframes[2] != 4 {
		t.Errorf("Keyframes mismatch: got %v", found.Keyframes)
	}
	if !filepath.IsAbs(found.Path) {
		t.Errorf("expected absolute path, got %q", found.Path)
	}
}

func TestCacheInvalidatesOnModification(t *testing.T) {
	tmpDir := t.TempDir()
	media := writeMedia(t, tmpDir, "a.mkv", "frames")
	cache := New(filepath.Join(tmpDir, "cache"), nil)

	if _, err := cache.Store(media, 10, 0, []float64{0, 1}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(media, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, ok := cache.Lookup(media); ok {
		t.Fatal("Lookup should miss after mtime change")
	}

	if _, err := cache.Store(media, 11, 0, []float64{0, 1, 2}); err != nil {
		t.Fatalf("re-Store failed: %v", err)
	}
	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected re-probe to overwrite the entry, got %d entries", len(entries))
	}
	if entries[0].Duration != 11 {
		t.Fatalf("expected refreshed entry, got %#v", entries[0])
	}
}

func TestCacheInvalidatesOnSizeChange(t *testing.T) {
	tmpDir := t.TempDir()
	media := writeMedia(t, tmpDir, "a.mkv", "frames")
	cache := New(filepath.Join(tmpDir, "cache"), nil)
	if _, err := cache.Store(media, 10, 0, nil); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	info, err := os.Stat(media)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := os.WriteFile(media, []byte("longer content"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := os.Chtimes(media, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, ok := cache.Lookup(media); ok {
		t.Fatal("Lookup should miss after size change")
	}
}

func TestCacheListAndClear(t *testing.T) {
	tmpDir := t.TempDir()
	cache := New(filepath.Join(tmpDir, "cache"), nil)
	for _, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		media := writeMedia(t, tmpDir, name, name)
		if _, err := cache.Store(media, 1, 0, []float64{0}); err != nil {
			t.Fatalf("Store %s: %v", name, err)
		}
	}

	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CachedAt.After(entries[i-1].CachedAt) {
			t.Fatal("expected newest entries first")
		}
	}

	removed, err := cache.Clear()
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	entries, err = cache.List()
	if err != nil {
		t.Fatalf("List after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty cache, got %d entries", len(entries))
	}
}

func TestCacheIgnoresCorruptEntries(t *testing.T) {
	tmpDir := t.TempDir()
	media := writeMedia(t, tmpDir, "a.mkv", "frames")
	cacheDir := filepath.Join(tmpDir, "cache")
	cache := New(cacheDir, nil)
	if _, err := cache.Store(media, 1, 0, []float64{0}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	fp, err := FingerprintFor(media)
	if err != nil {
		t.Fatalf("FingerprintFor: %v", err)
	}
	if err := os.WriteFile(cache.entryPath(fp.Path), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}

	if _, ok := cache.Lookup(media); ok {
		t.Fatal("Lookup should miss on corrupt entry")
	}
	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected corrupt entry to be skipped, got %d", len(entries))
	}
}

func TestCacheConcurrentStores(t *testing.T) {
	tmpDir := t.TempDir()
	media := writeMedia(t, tmpDir, "a.mkv", "frames")
	cacheDir := filepath.Join(tmpDir, "cache")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := New(cacheDir, nil)
			if _, err := c.Store(media, float64(i), 0, []float64{0, 1}); err != nil {
				t.Errorf("Store %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	if _, ok := New(cacheDir, nil).Lookup(media); !ok {
		t.Fatal("expected a complete entry after concurrent stores")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	cache := New("", nil)
	if cache.Enabled() {
		t.Fatal("expected empty dir to disable cache")
	}
	if _, err := cache.Store("/does/not/matter", 1, 0, nil); err != nil {
		t.Fatalf("Store on disabled cache: %v", err)
	}
	if _, ok := cache.Lookup("/does/not/matter"); ok {
		t.Fatal("Lookup on disabled cache should miss")
	}
	if n, err := cache.Clear(); err != nil || n != 0 {
		t.Fatalf("Clear on disabled cache: %d %v", n, err)
	}
}
