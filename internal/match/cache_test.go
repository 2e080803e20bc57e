package match

import (
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewScoreCache(time.Hour)

	stored := &Result{
		JobID:       "job-1",
		CandidateID: "cand-1",
		Score:       88,
		Reason:      "solid overlap",
		Source:      SourceExternal,
		ComputedAt:  time.Now().UTC(),
	}
	cache.Put(stored)

	got := cache.Get("job-1", "cand-1")
	if got == nil {
		t.Fatal("expected a cache hit within the TTL")
	}
	if *got != *stored {
		t.Errorf("cached result differs: got %+v, want %+v", got, stored)
	}

	// The cache hands out copies; mutating one must not leak back.
	got.Score = 1
	if again := cache.Get("job-1", "cand-1"); again.Score != 88 {
		t.Errorf("cache entry was mutated through a returned pointer: %d", again.Score)
	}
}

func TestCacheMiss(t *testing.T) {
	cache := NewScoreCache(time.Hour)
	if got := cache.Get("job-1", "cand-2"); got != nil {
		t.Errorf("expected a miss, got %+v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewScoreCache(time.Hour)

	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Put(&Result{JobID: "job-1", CandidateID: "cand-1", Score: 50, Source: SourceDeterministic})

	current = current.Add(59 * time.Minute)
	if cache.Get("job-1", "cand-1") == nil {
		t.Fatal("entry should still be valid before the TTL")
	}

	current = current.Add(2 * time.Minute)
	if got := cache.Get("job-1", "cand-1"); got != nil {
		t.Errorf("entry must never be served past expiry, got %+v", got)
	}

	if cache.Len() != 0 {
		t.Errorf("expired entry should have been dropped, cache has %d", cache.Len())
	}
}

func TestFingerprintStability(t *testing.T) {
	if Fingerprint("a", "b") != Fingerprint("a", "b") {
		t.Error("fingerprint must be deterministic")
	}
	if Fingerprint("a", "b") == Fingerprint("b", "a") {
		t.Error("fingerprint must distinguish pair order")
	}
	// The separator keeps ("ab","c") apart from ("a","bc").
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("fingerprint must not be concatenation-ambiguous")
	}
}
