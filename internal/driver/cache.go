package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when CachePayload changes shape.
const cacheSchemaVersion uint16 = 1

// DiskCache stores per-file rewrite verdicts keyed by input content hash,
// so re-runs skip files whose content was already found unchanged.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload records the verdict for one (operation, content hash) pair.
type CachePayload struct {
	Schema    uint16
	Op        string
	Changed   bool
	Rewritten int
	Replaced  int
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location ($XDG_CACHE_HOME or ~/.cache).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt returns a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// cacheKey mixes the transform fingerprint into the content hash, so the
// same content under a different configuration maps to a different entry.
func cacheKey(contentHash [32]byte, fingerprint string) [32]byte {
	if fingerprint == "" {
		return contentHash
	}
	h := sha256.New()
	h.Write(contentHash[:])
	h.Write([]byte(fingerprint))
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *DiskCache) pathFor(op string, key [32]byte) string {
	return filepath.Join(c.dir, op, hex.EncodeToString(key[:])+".mp")
}

// Get returns the cached payload for key, if present and schema-compatible.
func (c *DiskCache) Get(op string, key [32]byte) (*CachePayload, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(op, key))
	if err != nil {
		return nil, false
	}
	var payload CachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion || payload.Op != op {
		return nil, false
	}
	return &payload, true
}

// Put serializes and writes a payload, atomically replacing any prior entry.
func (c *DiskCache) Put(op string, key [32]byte, payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = cacheSchemaVersion
	payload.Op = op

	p := c.pathFor(op, key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p)
}

// Clear removes every entry for one operation.
func (c *DiskCache) Clear(op string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.RemoveAll(filepath.Join(c.dir, op))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
