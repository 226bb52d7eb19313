package probecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"framesync/internal/fileutil"
	"framesync/internal/logging"
)

const (
	entrySuffix  = ".json"
	lockFileName = ".lock"
)

// Entry is a cached probe result for one media file.
type Entry struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	Duration  float64   `json:"duration"`
	FrameRate float64   `json:"frame_rate,omitempty"`
	Keyframes []float64 `json:"keyframes"`
	CachedAt  time.Time `json:"cached_at"`
}

// Fingerprint identifies the state of a media file at probe time.
type Fingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Key returns the hex SHA-256 of the absolute path, size and mtime.
func (f Fingerprint) Key() string {
	sum := sha256.Sum256([]byte(f.Path + "\x00" +
		strconv.FormatInt(f.Size, 10) + "\x00" +
		strconv.FormatInt(f.ModTime.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])
}

// FingerprintFor stats path and returns its fingerprint.
func FingerprintFor(path string) (Fingerprint, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("resolve media path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat media: %w", err)
	}
	if info.IsDir() {
		return Fingerprint{}, fmt.Errorf("stat media: %s is a directory", abs)
	}
	return Fingerprint{Path: abs, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Cache provides locked access to the on-disk probe cache.
type Cache struct {
	dir    string
	logger *slog.Logger
	// mu serializes callers in this process; flock only excludes other
	// processes and treats a second Lock on the same handle as a no-op.
	mu   sync.Mutex
	lock *flock.Flock
}

// New creates a cache rooted at dir. If dir is empty, the cache is
// non-functional and all operations become no-ops. The directory is created
// lazily on the first Store call.
func New(dir string, logger *slog.Logger) *Cache {
	c := &Cache{
		dir:    strings.TrimSpace(dir),
		logger: logging.NewComponentLogger(logger, "probecache"),
	}
	if c.dir != "" {
		c.lock = flock.New(filepath.Join(c.dir, lockFileName))
	}
	return c
}

// Enabled reports whether the cache has a backing directory.
func (c *Cache) Enabled() bool {
	return c != nil && c.dir != ""
}

// Lookup returns the cached entry for the media file at path when the file
// still matches the fingerprint recorded at probe time.
func (c *Cache) Lookup(path string) (Entry, bool) {
	if !c.Enabled() {
		return Entry{}, false
	}
	fp, err := FingerprintFor(path)
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	err = c.withLock(false, func() error {
		var readErr error
		entry, readErr = readEntry(c.entryPath(fp.Path))
		return readErr
	})
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("probe cache entry unreadable",
				logging.String(logging.FieldEventType, "probecache_read_failed"),
				logging.String("path", fp.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run framesync cache clear if this persists"),
				logging.String(logging.FieldImpact, "media will be probed again"))
		}
		return Entry{}, false
	}
	if entry.Key != fp.Key() {
		c.logger.Debug("probe cache entry stale", logging.String("path", fp.Path))
		return Entry{}, false
	}
	return entry, true
}

// Store records a probe result for the media file at path.
func (c *Cache) Store(path string, duration, frameRate float64, keyframes []float64) (Entry, error) {
	if !c.Enabled() {
		return Entry{}, nil
	}
	fp, err := FingerprintFor(path)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Key:       fp.Key(),
		Path:      fp.Path,
		Size:      fp.Size,
		ModTime:   fp.ModTime,
		Duration:  duration,
		FrameRate: frameRate,
		Keyframes: append([]float64(nil), keyframes...),
		CachedAt:  time.Now().UTC(),
	}
	if entry.Keyframes == nil {
		entry.Keyframes = []float64{}
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("create cache directory: %w", err)
	}
	if err := c.withLock(true, func() error {
		return writeEntry(c.entryPath(fp.Path), entry)
	}); err != nil {
		return Entry{}, fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached probe result",
		logging.String("path", fp.Path),
		logging.Int("keyframes", len(entry.Keyframes)))
	return entry, nil
}

// List returns all readable entries sorted by CachedAt descending (newest first).
func (c *Cache) List() ([]Entry, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var entries []Entry
	err := c.withLock(false, func() error {
		names, err := c.entryFiles()
		if err != nil {
			return err
		}
		for _, name := range names {
			entry, err := readEntry(name)
			if err != nil {
				c.logger.Debug("skipping unreadable cache entry", logging.String("file", name), logging.Error(err))
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries, nil
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	removed := 0
	err := c.withLock(true, func() error {
		names, err := c.entryFiles()
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove cache entry: %w", err)
			}
			removed++
		}
		if _, err := fileutil.RemoveStaleTemps(c.dir); err != nil {
			return fmt.Errorf("remove stale temp files: %w", err)
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	c.logger.Debug("cleared probe cache", logging.Int("removed", removed))
	return removed, nil
}

func (c *Cache) entryPath(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+entrySuffix)
}

func (c *Cache) entryFiles() ([]string, error) {
	items, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), entrySuffix) {
			continue
		}
		names = append(names, filepath.Join(c.dir, item.Name()))
	}
	return names, nil
}

// withLock runs fn under the directory lock. Readers share the lock. A
// missing cache directory means there is nothing to read, so readers skip
// locking rather than creating it.
func (c *Cache) withLock(exclusive bool, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := os.Stat(c.dir); err != nil {
		if exclusive {
			return fmt.Errorf("cache directory: %w", err)
		}
		return fn()
	}
	var err error
	if exclusive {
		err = c.lock.Lock()
	} else {
		err = c.lock.RLock()
	}
	if err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	defer func() {
		_ = c.lock.Unlock()
	}()
	return fn()
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, fmt.Errorf("parse cache entry: %w", err)
	}
	return entry, nil
}

// writeEntry writes the entry atomically via a temp file in the same directory.
func writeEntry(path string, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return fileutil.WriteAtomic(path, data, 0o644)
}
