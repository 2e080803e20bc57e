package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/gigfair/matchengine/internal/logger"
	"github.com/gigfair/matchengine/internal/marketplace"
	"github.com/gigfair/matchengine/internal/skills"
)

// Assessment is a parsed provider response for one (job, candidate) pair.
type Assessment struct {
	Score  int
	Reason string
	Model  string
	Raw    string
}

// Scorer evaluates a pair through an external provider. The orchestrator
// treats any returned error as a signal to fall back to deterministic
// scoring.
type Scorer interface {
	Evaluate(ctx context.Context, job *marketplace.JobProfile, candidate *marketplace.CandidateProfile) (*Assessment, error)
}

// Generator is one chat-completion backend. Implementations live in the
// gemini and openai subpackages; tests supply stubs.
type Generator interface {
	GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Provider is one entry of the ordered failover list. Larger-capacity models
// get longer timeouts.
type Provider struct {
	Name      string
	Generator Generator
	Timeout   time.Duration
}

const defaultProviderTimeout = 30 * time.Second

// ErrNoProviders is a configuration error: an enabled external scorer needs
// at least one usable provider. Reported at construction, never at call time.
var ErrNoProviders = errors.New("no scoring providers configured")

// ErrAllProvidersFailed tells the caller every provider in the list failed
// and the deterministic scorer must produce the result.
var ErrAllProvidersFailed = errors.New("all scoring providers failed")

//go:embed prompt.md
var promptTemplate string

const systemPrompt = "You are a recruiting assistant for a freelance marketplace. " +
	"Rate how well the candidate fits the job on a 0-100 scale. " +
	"Respond with exactly two lines:\nScore: <number>\nReason: <one sentence>"

var (
	scorePattern  = regexp.MustCompile(`(?im)^\s*score:\s*(\d+)`)
	reasonPattern = regexp.MustCompile(`(?im)^\s*reason:\s*(.+)$`)
)

const defaultMaxLogLength = 200

// Client tries each provider in order and returns the first parseable
// response. It is the only component of the engine that talks to the
// network.
type Client struct {
	providers []Provider
	logger    *zap.Logger
	maxLogLen int
}

func NewClient(providers []Provider, maxLogLength int, log *zap.Logger) (*Client, error) {
	usable := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.Generator == nil {
			continue
		}
		if p.Timeout <= 0 {
			p.Timeout = defaultProviderTimeout
		}
		if p.Name == "" {
			p.Name = p.Generator.Model()
		}
		usable = append(usable, p)
	}

	if len(usable) == 0 {
		return nil, ErrNoProviders
	}

	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{providers: usable, logger: log, maxLogLen: maxLogLength}, nil
}

// Evaluate walks the provider list sequentially. The first provider that
// answers with a parseable Score:/Reason: body wins; errors, rate limits and
// unparseable content only advance the list. Exhaustion returns
// ErrAllProvidersFailed.
func (c *Client) Evaluate(ctx context.Context, job *marketplace.JobProfile, candidate *marketplace.CandidateProfile) (*Assessment, error) {
	userPrompt, err := buildPrompt(job, candidate)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("external scoring request",
		zap.String("job_id", job.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(userPrompt)),
		zap.String("prompt_preview", logger.TruncateForLog(userPrompt, c.maxLogLen)),
	)

	for _, provider := range c.providers {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("scoring canceled: %w", ctx.Err())
		}

		attemptCtx, cancel := context.WithTimeout(ctx, provider.Timeout)
		raw, err := provider.Generator.GenerateContent(attemptCtx, systemPrompt, userPrompt)
		cancel()

		if err != nil {
			c.logger.Warn("scoring provider failed, trying next",
				zap.String("provider", provider.Name),
				zap.Error(err),
			)
			continue
		}

		assessment, err := parseAssessment(raw)
		if err != nil {
			c.logger.Warn("scoring provider returned unparseable content, trying next",
				zap.String("provider", provider.Name),
				zap.String("response_preview", logger.TruncateForLog(raw, c.maxLogLen)),
				zap.Error(err),
			)
			continue
		}

		assessment.Model = provider.Generator.Model()
		assessment.Raw = raw

		c.logger.Debug("external scoring response",
			zap.String("provider", provider.Name),
			zap.Int("score", assessment.Score),
		)

		return assessment, nil
	}

	return nil, ErrAllProvidersFailed
}

// buildPrompt renders the embedded template with compact JSON summaries of
// both sides of the pair.
func buildPrompt(job *marketplace.JobProfile, candidate *marketplace.CandidateProfile) (string, error) {
	jobPayload := map[string]any{
		"id":               job.ID,
		"title":            job.Title,
		"description":      job.Description,
		"skills":           job.SkillNames(),
		"experience_level": job.Experience.String(),
		"budget_min":       job.BudgetMin,
		"budget_max":       job.BudgetMax,
	}

	candidatePayload := map[string]any{
		"id":               candidate.ID,
		"title":            candidate.Title,
		"skills":           skills.Normalize(candidate.Skills),
		"experience_level": candidate.Experience.String(),
		"hourly_rate":      candidate.HourlyRate,
		"bio":              candidate.Bio,
	}

	jobJSON, err := json.MarshalIndent(jobPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(candidatePayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_JSON}}\n\nCandidate:\n{{CANDIDATE_JSON}}\n"
	}

	prompt := strings.ReplaceAll(template, "{{JOB_JSON}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", string(candidateJSON))
	return prompt, nil
}

// parseAssessment extracts the labeled Score:/Reason: lines. Both must be
// present; the score is clamped to [0,100].
func parseAssessment(raw string) (*Assessment, error) {
	scoreMatch := scorePattern.FindStringSubmatch(raw)
	if scoreMatch == nil {
		return nil, errors.New("response has no Score: line")
	}

	reasonMatch := reasonPattern.FindStringSubmatch(raw)
	if reasonMatch == nil {
		return nil, errors.New("response has no Reason: line")
	}

	score, err := strconv.Atoi(scoreMatch[1])
	if err != nil {
		return nil, fmt.Errorf("parse score %q: %w", scoreMatch[1], err)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &Assessment{
		Score:  score,
		Reason: strings.TrimSpace(reasonMatch[1]),
	}, nil
}
