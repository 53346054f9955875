// Package store implements the file-backed TTL cache that sits between
// the CLI and the Morgen API. The cache is advisory: every read-side
// failure (missing file, corrupt payload, corrupt metadata index)
// degrades to a miss so a broken cache only ever costs an extra origin
// fetch, never an error.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// TTL policy per resource class. These are policy constants, not
// protocol requirements.
const (
	TTLAccounts     = 24 * time.Hour
	TTLCalendars    = 24 * time.Hour
	TTLTags         = 4 * time.Hour
	TTLEvents       = 30 * time.Minute
	TTLTasks        = 30 * time.Minute
	TTLSingle       = 5 * time.Minute
	TTLTaskAccounts = 24 * time.Hour
)

const metaFile = "_meta.json"

// metaEntry is one record in the metadata index. Timestamps and TTLs are
// epoch-second floats for compatibility with earlier cache layouts.
type metaEntry struct {
	TS  float64 `json:"ts"`
	TTL float64 `json:"ttl"`
}

// CacheStore is a keyed TTL cache persisting opaque payloads to disk.
// Keys are hierarchical strings with "/" as the namespace separator
// ("tasks/<accountId>", "events/<hash>"). Expiry is evaluated lazily on
// read; expired entries linger until overwritten or invalidated.
//
// The store is not safe for concurrent writers across processes beyond
// the metadata-index flock: racing writers may lose updates, but a
// reader always degrades to a miss on any inconsistency.
type CacheStore struct {
	fs   afero.Fs
	dir  string
	flk  *flock.Flock // nil on non-OS filesystems
	meta map[string]metaEntry
	now  func() time.Time
}

// New creates a CacheStore on the given filesystem. Use afero.NewOsFs()
// for real operation or afero.NewMemMapFs() in tests.
func New(fs afero.Fs, dir string) (*CacheStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	s := &CacheStore{
		fs:  fs,
		dir: dir,
		now: time.Now,
	}
	s.meta = s.loadMeta()
	return s, nil
}

// NewOsStore creates a CacheStore on the operating-system filesystem
// with a lock file guarding the metadata index against concurrent gm
// processes.
func NewOsStore(dir string) (*CacheStore, error) {
	s, err := New(afero.NewOsFs(), dir)
	if err != nil {
		return nil, err
	}
	s.flk = flock.New(filepath.Join(dir, metaFile+".lock"))
	return s, nil
}

// Dir returns the cache directory.
func (s *CacheStore) Dir() string {
	return s.dir
}

func (s *CacheStore) nowSeconds() float64 {
	return float64(s.now().UnixNano()) / float64(time.Second)
}

// loadMeta reads the metadata index, treating a missing or corrupt file
// as an empty index.
func (s *CacheStore) loadMeta() map[string]metaEntry {
	raw, err := afero.ReadFile(s.fs, filepath.Join(s.dir, metaFile))
	if err != nil {
		return map[string]metaEntry{}
	}
	meta := map[string]metaEntry{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return map[string]metaEntry{}
	}
	return meta
}

// saveMeta persists the metadata index synchronously. It runs under the
// lock file when one is configured so racing gm processes do not
// interleave partial writes.
func (s *CacheStore) saveMeta() error {
	if s.flk != nil {
		if err := s.flk.Lock(); err == nil {
			defer func() { _ = s.flk.Unlock() }()
		}
	}
	raw, err := json.Marshal(s.meta)
	if err != nil {
		return fmt.Errorf("encode cache meta: %w", err)
	}
	return s.writeAtomic(filepath.Join(s.dir, metaFile), raw)
}

// writeAtomic writes via a temp file and rename so a crash never leaves
// a half-written file behind.
func (s *CacheStore) writeAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString()[:8])
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// dataPath maps a cache key to its payload file ("tasks/abc" ->
// "tasks--abc.json").
func (s *CacheStore) dataPath(key string) string {
	safe := strings.ReplaceAll(key, "/", "--")
	return filepath.Join(s.dir, safe+".json")
}

// Get returns the payload stored at key if the entry is still fresh.
// Expired, missing, or unreadable entries report a miss. Reading never
// deletes anything.
func (s *CacheStore) Get(key string) ([]byte, bool) {
	entry, ok := s.meta[key]
	if !ok {
		return nil, false
	}
	// Fresh iff now < storedAt + ttl.
	if s.nowSeconds() >= entry.TS+entry.TTL {
		return nil, false
	}
	raw, err := afero.ReadFile(s.fs, s.dataPath(key))
	if err != nil {
		return nil, false
	}
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}

// Set persists payload at key with the given TTL, overwriting any prior
// entry. The payload lands before the metadata index so a crash in
// between leaves the entry absent rather than dangling.
func (s *CacheStore) Set(key string, payload []byte, ttl time.Duration) error {
	if err := s.writeAtomic(s.dataPath(key), payload); err != nil {
		return err
	}
	s.meta[key] = metaEntry{
		TS:  s.nowSeconds(),
		TTL: ttl.Seconds(),
	}
	return s.saveMeta()
}

// Invalidate removes every entry whose key equals prefix or starts with
// prefix + "/". No matching entries is a no-op, not an error.
func (s *CacheStore) Invalidate(prefix string) error {
	var removed []string
	for key := range s.meta {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			removed = append(removed, key)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	for _, key := range removed {
		_ = s.fs.Remove(s.dataPath(key))
		delete(s.meta, key)
	}
	return s.saveMeta()
}

// Clear removes all entries.
func (s *CacheStore) Clear() error {
	for key := range s.meta {
		_ = s.fs.Remove(s.dataPath(key))
	}
	s.meta = map[string]metaEntry{}
	return s.saveMeta()
}

// KeyStats describes one cache entry for operational commands.
type KeyStats struct {
	AgeSeconds       float64 `json:"age_seconds"`
	TTL              int     `json:"ttl"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	Expired          bool    `json:"expired"`
	SizeBytes        int64   `json:"size_bytes"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries  int                 `json:"entries"`
	CacheDir string              `json:"cache_dir"`
	Keys     map[string]KeyStats `json:"keys"`
}

// Stats reports entry count, storage location, and per-key freshness.
func (s *CacheStore) Stats() Stats {
	now := s.nowSeconds()
	keys := make(map[string]KeyStats, len(s.meta))
	for key, entry := range s.meta {
		age := now - entry.TS
		remaining := entry.TTL - age
		var size int64
		if info, err := s.fs.Stat(s.dataPath(key)); err == nil {
			size = info.Size()
		}
		keys[key] = KeyStats{
			AgeSeconds:       age,
			TTL:              int(entry.TTL),
			RemainingSeconds: max(0, remaining),
			Expired:          remaining <= 0,
			SizeBytes:        size,
		}
	}
	return Stats{Entries: len(keys), CacheDir: s.dir, Keys: keys}
}
