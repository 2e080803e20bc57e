package match

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gigfair/matchengine/internal/ai"
	"github.com/gigfair/matchengine/internal/marketplace"
)

type stubScorer struct {
	scores []int
	err    error
	calls  int
}

func (s *stubScorer) Evaluate(_ context.Context, job *marketplace.JobProfile, candidate *marketplace.CandidateProfile) (*ai.Assessment, error) {
	idx := s.calls
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	score := s.scores[len(s.scores)-1]
	if idx < len(s.scores) {
		score = s.scores[idx]
	}
	return &ai.Assessment{
		Score:  score,
		Reason: fmt.Sprintf("stub assessment for %s/%s", job.ID, candidate.ID),
		Model:  "stub-model",
	}, nil
}

func testCandidates(n int) *marketplace.Candidates {
	pool := &marketplace.Candidates{}
	for i := 1; i <= n; i++ {
		pool.Items = append(pool.Items, &marketplace.CandidateProfile{
			ID:        fmt.Sprintf("cand-%02d", i),
			Title:     "Developer",
			Available: true,
		})
	}
	return pool
}

func testJob() *marketplace.JobProfile {
	return &marketplace.JobProfile{
		ID:    "job-1",
		Title: "Backend Developer",
		Open:  true,
		Requirements: []marketplace.SkillRequirement{
			{Name: "Go", Level: marketplace.LevelIntermediate},
		},
	}
}

func TestFindMatchesForJobRanksAndTruncates(t *testing.T) {
	source := marketplace.NewStaticSource(nil, testCandidates(4))
	external := &stubScorer{scores: []int{10, 50, 30, 50}}

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(nil), external, nil,
		Options{Limit: 2}, zap.NewNop())

	results, err := orchestrator.FindMatchesForJob(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results.Len() != 2 {
		t.Fatalf("expected results truncated to limit 2, got %d", results.Len())
	}

	// Two candidates scored 50; the tie breaks on candidate id ascending.
	if results.Items[0].Score != 50 || results.Items[0].CandidateID != "cand-02" {
		t.Errorf("unexpected first result: %+v", results.Items[0])
	}
	if results.Items[1].Score != 50 || results.Items[1].CandidateID != "cand-04" {
		t.Errorf("unexpected second result: %+v", results.Items[1])
	}
}

func TestFindMatchesForCandidateTieBreaksOnJobID(t *testing.T) {
	jobs := &marketplace.Jobs{Items: []*marketplace.JobProfile{
		{ID: "job-b", Open: true, KeySkills: []string{"go"}},
		{ID: "job-a", Open: true, KeySkills: []string{"go"}},
	}}
	source := marketplace.NewStaticSource(jobs, nil)
	external := &stubScorer{scores: []int{40, 40}}

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(nil), external, nil,
		Options{Limit: 5}, zap.NewNop())

	candidate := &marketplace.CandidateProfile{ID: "cand-1", Title: "Dev", Available: true}
	results, err := orchestrator.FindMatchesForCandidate(context.Background(), candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results.Len() != 2 {
		t.Fatalf("expected 2 results, got %d", results.Len())
	}
	if results.Items[0].JobID != "job-a" || results.Items[1].JobID != "job-b" {
		t.Errorf("equal scores should order by job id: %s, %s",
			results.Items[0].JobID, results.Items[1].JobID)
	}
}

func TestEarlyExitStopsScoring(t *testing.T) {
	// With limit 5, the 10th scored pair is the first to reach 70 while 10
	// results (2x limit) are already collected: the 11th pair is not scored.
	scores := []int{60, 60, 60, 60, 60, 60, 60, 60, 60, 75, 99, 99}
	source := marketplace.NewStaticSource(nil, testCandidates(12))
	external := &stubScorer{scores: scores}

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(nil), external, nil,
		Options{Limit: 5}, zap.NewNop())

	results, err := orchestrator.FindMatchesForJob(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if external.calls != 10 {
		t.Errorf("expected the batch to stop after 10 scored pairs, scored %d", external.calls)
	}
	if results.Len() != 5 {
		t.Errorf("expected truncation to limit 5, got %d", results.Len())
	}
}

func TestCacheHitSkipsScoring(t *testing.T) {
	source := marketplace.NewStaticSource(nil, testCandidates(1))
	external := &stubScorer{scores: []int{90}}
	cache := NewScoreCache(time.Hour)

	cached := &Result{
		JobID:       "job-1",
		CandidateID: "cand-01",
		Score:       42,
		Reason:      "served from cache",
		Source:      SourceExternal,
		ComputedAt:  time.Now().UTC(),
	}
	cache.Put(cached)

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(nil), external, cache,
		Options{}, zap.NewNop())

	results, err := orchestrator.FindMatchesForJob(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if external.calls != 0 {
		t.Errorf("cache hit must not reach the external scorer, got %d calls", external.calls)
	}
	if results.Len() != 1 || results.Items[0].Score != 42 {
		t.Errorf("expected the cached result, got %+v", results.Items)
	}
}

func TestExternalFailureFallsBackToDeterministic(t *testing.T) {
	source := marketplace.NewStaticSource(nil, testCandidates(2))
	external := &stubScorer{err: errors.New("all providers down")}
	cache := NewScoreCache(time.Hour)

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(zap.NewNop()), external, cache,
		Options{}, zap.NewNop())

	results, err := orchestrator.FindMatchesForJob(context.Background(), testJob())
	if err != nil {
		t.Fatalf("fallback must not surface an error: %v", err)
	}

	for _, result := range results.Items {
		if result.Source != SourceDeterministic {
			t.Errorf("expected deterministic fallback, got %q", result.Source)
		}
	}

	// Fallback results are still cached.
	if cache.Len() != 2 {
		t.Errorf("expected 2 cached results, got %d", cache.Len())
	}
}

func TestNilExternalScorerUsesDeterministic(t *testing.T) {
	source := marketplace.NewStaticSource(nil, testCandidates(1))

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(nil), nil, nil,
		Options{}, zap.NewNop())

	results, err := orchestrator.FindMatchesForJob(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.Len() != 1 || results.Items[0].Source != SourceDeterministic {
		t.Errorf("expected a deterministic result, got %+v", results.Items)
	}
}

func TestTimeBudgetReturnsPartialResults(t *testing.T) {
	source := marketplace.NewStaticSource(nil, testCandidates(10))
	external := &stubScorer{scores: []int{50}}

	orchestrator := NewOrchestrator(source, NewDeterministicScorer(nil), external, nil,
		Options{TimeBudget: 20 * time.Second}, zap.NewNop())

	// Fake clock: the budget is computed at t0; after two scored pairs every
	// later check sees the clock already past the deadline.
	start := time.Now()
	calls := 0
	orchestrator.now = func() time.Time {
		calls++
		if calls <= 4 {
			return start
		}
		return start.Add(time.Minute)
	}

	results, err := orchestrator.FindMatchesForJob(context.Background(), testJob())
	if err != nil {
		t.Fatalf("an exhausted budget is not an error: %v", err)
	}

	if results.Len() == 0 || results.Len() == 10 {
		t.Errorf("expected a partial result set, got %d of 10", results.Len())
	}
}
