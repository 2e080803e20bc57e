package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gigfair/matchengine/internal/ai"
	"github.com/gigfair/matchengine/internal/ai/gemini"
	"github.com/gigfair/matchengine/internal/ai/openai"
	"github.com/gigfair/matchengine/internal/logger"
	"github.com/gigfair/matchengine/internal/marketplace"
	"github.com/gigfair/matchengine/internal/match"
	"github.com/gigfair/matchengine/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowReasons    = "Show score reasons"
	PromptReportBySource = "Report by scoring source"
	PromptResultsToFile  = "Dump results to file"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReasons, PromptReportBySource, PromptResultsToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run a batch matching request for a job or a candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job", "", "job id to find candidates for")
	matchCmd.Flags().String("candidate", "", "candidate id to find jobs for")
	matchCmd.Flags().BoolP("no-prompt", "y", false, "print the ranking and exit without the interactive prompt")
	matchCmd.Flags().Int("limit", 0, "override the configured top-N limit")
}

// runMatch is the main command for the cli.
func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the matchengine", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.JobsFile == "" || config.CandidatesFile == "" {
		logger.Fatal("jobs-file and candidates-file are required to build the matching pools")
	}

	jobID := cmd.Flag("job").Value.String()
	candidateID := cmd.Flag("candidate").Value.String()
	if (jobID == "") == (candidateID == "") {
		logger.Fatal("exactly one of --job or --candidate is required")
	}

	jobs, err := marketplace.LoadJobsFromFile(config.JobsFile)
	if err != nil {
		logger.Fatal("loading jobs", zap.Error(err))
	}

	candidates, err := marketplace.LoadCandidatesFromFile(config.CandidatesFile)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	logger.Info("loaded matching pools",
		zap.Int("jobs", jobs.Len()),
		zap.Int("candidates", candidates.Len()),
	)

	external, err := prepareExternalScorer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building external scoring client", zap.Error(err))
	}
	if external == nil {
		logger.Info("external scoring disabled, deterministic scorer only")
	}

	opts, ttl := matchOptions(config.Match)
	if limit, err := cmd.Flags().GetInt("limit"); err == nil && limit > 0 {
		opts.Limit = limit
	}

	orchestrator := match.NewOrchestrator(
		marketplace.NewStaticSource(jobs, candidates),
		match.NewDeterministicScorer(logger),
		external,
		match.NewScoreCache(ttl),
		opts,
		logger,
	)

	results, err := runBatch(ctx, orchestrator, jobs, candidates, jobID, candidateID)
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no pairs to score"))
		return
	}

	printRanking(logger, results)

	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func runBatch(ctx context.Context, orchestrator *match.Orchestrator, jobs *marketplace.Jobs, candidates *marketplace.Candidates, jobID, candidateID string) (*match.Results, error) {
	if jobID != "" {
		job := jobs.FindByID(jobID)
		if job == nil {
			return nil, fmt.Errorf("job with id %q not found in the pool", jobID)
		}
		return orchestrator.FindMatchesForJob(ctx, job)
	}

	candidate := candidates.FindByID(candidateID)
	if candidate == nil {
		return nil, fmt.Errorf("candidate with id %q not found in the pool", candidateID)
	}
	return orchestrator.FindMatchesForCandidate(ctx, candidate)
}

func printRanking(logger *zap.Logger, results *match.Results) {
	logger.Info("ranked matches", zap.Int("count", results.Len()))
	for i, result := range results.Items {
		logger.Info(fmt.Sprintf("match #%d", i+1),
			zap.String("job_id", result.JobID),
			zap.String("candidate_id", result.CandidateID),
			zap.Int("score", result.Score),
			zap.String("source", string(result.Source)),
		)
	}
}

func handleAction(action string, logger *zap.Logger, results *match.Results) error {
	switch action {
	case PromptShowReasons:
		for _, result := range results.Items {
			logger.Info(result.Reason,
				zap.String("job_id", result.JobID),
				zap.String("candidate_id", result.CandidateID),
				zap.Int("score", result.Score),
			)
		}
		return nil
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(results.CountBySource(), "", "  ")
		logger.Info(string(pretty), zap.Int("results count", results.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func matchOptions(cfg *MatchConfig) (match.Options, time.Duration) {
	opts := match.Options{}
	ttl := match.DefaultCacheTTL
	if cfg != nil {
		opts.Limit = cfg.Limit
		opts.PoolSize = cfg.PoolSize
		opts.TimeBudget = cfg.TimeBudget
		if cfg.CacheTTL > 0 {
			ttl = cfg.CacheTTL
		}
	}
	return opts, ttl
}

// prepareExternalScorer builds the ordered failover client from the config.
// Disabled AI returns a nil scorer; enabled AI with no usable provider is a
// configuration error.
func prepareExternalScorer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Scorer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if len(cfg.Providers) == 0 {
		return nil, ai.ErrNoProviders
	}

	providers := make([]ai.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		generator, err := newGenerator(ctx, pc)
		if err != nil {
			return nil, fmt.Errorf("building provider %q: %w", pc.Name, err)
		}

		providers = append(providers, ai.Provider{
			Name:      pc.Name,
			Generator: generator,
			Timeout:   pc.Timeout,
		})

		logger.Debug("configured scoring provider",
			zap.String("name", pc.Name),
			zap.String("type", pc.Type),
			zap.String("model", pc.Model),
			zap.Duration("timeout", pc.Timeout),
		)
	}

	return ai.NewClient(providers, cfg.MaxLogLength, logger)
}

func newGenerator(ctx context.Context, cfg *ProviderConfig) (ai.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  fmt.Sprintf("%s api key", cfg.Type),
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "gemini":
		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "openai":
		return openai.NewGenerator(openai.Config{
			APIKey:      apiKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}
