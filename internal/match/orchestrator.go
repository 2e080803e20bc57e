package match

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gigfair/matchengine/internal/ai"
	"github.com/gigfair/matchengine/internal/marketplace"
)

// Batch defaults. The pool bound and time budget deliberately favor
// responsiveness over exhaustiveness: a marketplace caller would rather see
// a good partial ranking now than a complete one later.
const (
	DefaultLimit      = 10
	DefaultPoolSize   = 20
	DefaultTimeBudget = 20 * time.Second

	// Once twice the requested limit is collected and scores are still this
	// high, further scoring has diminishing returns.
	earlyExitScore  = 70
	earlyExitFactor = 2
)

// Options tunes a batch matching run.
type Options struct {
	Limit      int
	PoolSize   int
	TimeBudget time.Duration
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	return o
}

// Orchestrator drives batch search over a candidate or job pool, merging
// cached, external and deterministic scores into a ranked top-N list.
type Orchestrator struct {
	source        marketplace.Source
	deterministic *DeterministicScorer
	external      ai.Scorer
	cache         *ScoreCache
	logger        *zap.Logger
	opts          Options

	now func() time.Time
}

// NewOrchestrator wires the matching pipeline. external may be nil when no
// providers are configured; the deterministic scorer then produces every
// result.
func NewOrchestrator(source marketplace.Source, deterministic *DeterministicScorer, external ai.Scorer, cache *ScoreCache, opts Options, logger *zap.Logger) *Orchestrator {
	if cache == nil {
		cache = NewScoreCache(DefaultCacheTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		source:        source,
		deterministic: deterministic,
		external:      external,
		cache:         cache,
		logger:        logger,
		opts:          opts.withDefaults(),
		now:           time.Now,
	}
}

// FindMatchesForJob ranks available candidates against the job.
func (o *Orchestrator) FindMatchesForJob(ctx context.Context, job *marketplace.JobProfile) (*Results, error) {
	pool, err := o.source.AvailableCandidates(o.opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("fetching candidate pool: %w", err)
	}

	o.logger.Info("starting match batch for job",
		zap.String("job_id", job.ID),
		zap.Int("pool", pool.Len()),
		zap.String("competition", marketplace.CompetitionLevel(job.BidCount)),
	)

	results := o.collect(ctx, pool.Len(), func(ctx context.Context, i int) *Result {
		return o.scorePair(ctx, job, pool.Items[i])
	})

	rankResults(results, func(r *Result) string { return r.CandidateID })
	o.truncate(results)
	return results, nil
}

// FindMatchesForCandidate ranks open jobs against the candidate.
func (o *Orchestrator) FindMatchesForCandidate(ctx context.Context, candidate *marketplace.CandidateProfile) (*Results, error) {
	pool, err := o.source.OpenJobs("", o.opts.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("fetching job pool: %w", err)
	}

	o.logger.Info("starting match batch for candidate",
		zap.String("candidate_id", candidate.ID),
		zap.Int("pool", pool.Len()),
	)

	results := o.collect(ctx, pool.Len(), func(ctx context.Context, i int) *Result {
		return o.scorePair(ctx, pool.Items[i], candidate)
	})

	rankResults(results, func(r *Result) string { return r.JobID })
	o.truncate(results)
	return results, nil
}

// collect scores pairs sequentially under the batch wall-clock budget.
// Exceeding the budget stops the loop and keeps whatever was collected;
// partial results are a valid outcome, not an error.
func (o *Orchestrator) collect(ctx context.Context, total int, score func(context.Context, int) *Result) *Results {
	deadline := o.now().Add(o.opts.TimeBudget)
	batchCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	results := &Results{}
	for i := 0; i < total; i++ {
		if !o.now().Before(deadline) {
			o.logger.Warn("time budget exhausted, returning partial results",
				zap.Int("scored", results.Len()),
				zap.Int("pool", total),
			)
			break
		}

		result := score(batchCtx, i)
		results.Items = append(results.Items, result)

		if results.Len() >= earlyExitFactor*o.opts.Limit && result.Score >= earlyExitScore {
			o.logger.Debug("stopping batch early",
				zap.Int("collected", results.Len()),
				zap.Int("last_score", result.Score),
			)
			break
		}
	}

	return results
}

// scorePair resolves one pair: cache, then the external provider chain, then
// the deterministic scorer. Every path yields a usable result; only
// successfully computed results are cached.
func (o *Orchestrator) scorePair(ctx context.Context, job *marketplace.JobProfile, candidate *marketplace.CandidateProfile) *Result {
	if cached := o.cache.Get(job.ID, candidate.ID); cached != nil {
		o.logger.Debug("score served from cache",
			zap.String("job_id", job.ID),
			zap.String("candidate_id", candidate.ID),
		)
		return cached
	}

	if o.external != nil {
		assessment, err := o.external.Evaluate(ctx, job, candidate)
		if err == nil {
			result := &Result{
				JobID:       job.ID,
				CandidateID: candidate.ID,
				Score:       clampScore(assessment.Score),
				Reason:      assessment.Reason,
				Source:      SourceExternal,
				ComputedAt:  o.now().UTC(),
			}
			o.cache.Put(result)
			return result
		}

		o.logger.Warn("external scoring failed, falling back to deterministic",
			zap.String("job_id", job.ID),
			zap.String("candidate_id", candidate.ID),
			zap.Error(err),
		)
	}

	result := o.deterministic.Score(job, candidate)
	o.cache.Put(result)
	return result
}

// rankResults orders by score descending. Equal scores order by the
// counterpart ID ascending, so rankings are deterministic regardless of
// input order.
func rankResults(results *Results, key func(*Result) string) {
	sort.SliceStable(results.Items, func(i, j int) bool {
		a, b := results.Items[i], results.Items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return key(a) < key(b)
	})
}

func (o *Orchestrator) truncate(results *Results) {
	if results.Len() > o.opts.Limit {
		results.Items = results.Items[:o.opts.Limit]
	}
}
