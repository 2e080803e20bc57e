package match

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a computed pair score stays valid.
const DefaultCacheTTL = 24 * time.Hour

// Fingerprint derives the stable cache key for a (job, candidate) pair.
func Fingerprint(jobID, candidateID string) string {
	sum := sha256.Sum256([]byte(jobID + "\x00" + candidateID))
	return fmt.Sprintf("%x", sum[:])
}

type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

// ScoreCache memoizes match results per pair for a bounded TTL. Concurrent
// reads and racing writes are safe; last write wins, which is acceptable
// because results are idempotent for a pair within the TTL window.
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	now func() time.Time
}

func NewScoreCache(ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ScoreCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for the pair, or nil past expiry or on a
// miss. Expired entries are dropped lazily.
func (c *ScoreCache) Get(jobID, candidateID string) *Result {
	key := Fingerprint(jobID, candidateID)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if current, ok := c.entries[key]; ok && !c.now().Before(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil
	}

	result := entry.result
	return &result
}

// Put stores a successfully computed result. Callers must not cache
// failures; a missing entry is what triggers recomputation.
func (c *ScoreCache) Put(result *Result) {
	if result == nil {
		return
	}

	key := Fingerprint(result.JobID, result.CandidateID)

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		result:    *result,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Len reports the current entry count, including not-yet-collected expired
// entries.
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
