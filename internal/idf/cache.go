package idf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
)

// cacheFile is the on-disk shape of a persisted dictionary: a term->doc-freq
// map plus the total document count and a build timestamp, mirroring
// idf_dictionary.py's pickle cache but as JSON.
type cacheFile struct {
	BuiltAt   time.Time      `json:"built_at"`
	TotalDocs int            `json:"total_docs"`
	DocFreq   map[string]int `json:"doc_freq"`
}

// cacheGuard is the single-writer guard serializing the cache file's load
// and save critical sections (Build itself does not take it), adapted from the teacher's internal/storage/storage.go
// per-conversation-id sync.Mutex map: there it serialized writes to one
// conversation's JSON files, here it serializes the one dictionary cache
// file this process owns.
type cacheGuard struct {
	mu sync.Mutex
}

var guard cacheGuard

// Load reads the cache at path if it exists and is younger than ttl,
// replacing the dictionary's contents. It reports ok=false with a nil error
// when the cache is absent or stale, and ok=false with an error when the
// file cannot be read or decoded; either way the caller knows to rebuild.
func (d *Dictionary) Load(path string, ttl time.Duration) (ok bool, err error) {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read idf cache %s: %w", path, err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return false, fmt.Errorf("decode idf cache %s: %w", path, err)
	}

	if time.Since(cf.BuiltAt) > ttl {
		log.Info().Time("built_at", cf.BuiltAt).Msg("idf cache stale, rebuild required")
		return false, nil
	}

	d.mu.Lock()
	d.docFreq = cf.DocFreq
	d.totalDocs = cf.TotalDocs
	d.builtAt = cf.BuiltAt
	d.mu.Unlock()

	return true, nil
}

// Save persists the dictionary's current contents to path, taking an
// advisory cross-process file lock (path+".lock") for the duration of the
// write so a concurrent offline rebuild (cmd/idfbuild) run from another
// process never interleaves with an in-process writer.
func (d *Dictionary) Save(path string) error {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create idf cache dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock idf cache: %w", err)
	}
	if !locked {
		return fmt.Errorf("idf cache %s is locked by another process", path)
	}
	defer fileLock.Unlock()

	d.mu.RLock()
	cf := cacheFile{
		BuiltAt:   d.builtAt,
		TotalDocs: d.totalDocs,
		DocFreq:   d.docFreq,
	}
	d.mu.RUnlock()

	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode idf cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write idf cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize idf cache: %w", err)
	}

	log.Info().Str("path", path).Int("total_docs", cf.TotalDocs).Msg("idf cache saved")
	return nil
}
