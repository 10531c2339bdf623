// Package pipeline assembles the resolution engine from configuration and
// renders its outcomes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/llm"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/resolve"
	"github.com/ppiankov/truthlens/internal/retry"
	"github.com/ppiankov/truthlens/internal/sources"
	"github.com/ppiankov/truthlens/internal/worker"
)

// Pipeline owns the engine and the adapter state shared across calls
type Pipeline struct {
	engine   *resolve.Engine
	cache    cache.Cache
	provider llm.Provider // nil when enrichment is disabled
	logger   *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration.
// A provider that cannot be created disables enrichment with a warning.
func NewPipeline(cfg *model.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	lookupCache := cache.New(cfg.Cache)

	opts := sources.Options{
		HTTP:     cfg.HTTP,
		Timeout:  cfg.Timeouts.Primary,
		Limiter:  limiter,
		Cache:    lookupCache,
		CacheTTL: cfg.Cache.DiskTTL,
		Logger:   logger.With("component", "sources"),
	}

	primary := sources.NewFactCheckSource(cfg.FactCheck, opts)
	if cfg.FactCheck.APIKey == "" {
		logger.Warn("fact check API key not configured; every lookup will report source_unavailable")
	}

	var fallback resolve.FallbackKnowledgeSource
	if cfg.Wikipedia.Enabled {
		wikiOpts := opts
		wikiOpts.Timeout = cfg.Timeouts.Fallback
		fallback = sources.NewWikipediaSource(cfg.Wikipedia, wikiOpts)
	}

	p := &Pipeline{
		cache:  lookupCache,
		logger: logger,
	}

	// Keep the classifier interface nil unless a provider exists
	var classifier resolve.HeuristicClassifier
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	switch {
	case err != nil:
		logger.Warn("LLM provider unavailable, enrichment disabled", "provider", cfg.LLM.Provider, "error", err)
	case provider != nil:
		p.provider = provider
		classifier = llm.NewEnricher(
			provider,
			retry.PolicyFromConfig(cfg.Retry),
			cfg.Retry.PerAttemptTimeout,
			cfg.LLM.MaxTokens,
			logger.With("component", "enrichment"),
		)
	}

	p.engine = resolve.NewEngine(cfg, primary, fallback, classifier, logger.With("component", "engine"))
	return p, nil
}

// Resolve resolves a single claim
func (p *Pipeline) Resolve(ctx context.Context, claim string) (*model.ResolutionOutcome, error) {
	return p.engine.Resolve(ctx, claim)
}

// EnrichmentProvider returns the LLM provider name, or "" when disabled
func (p *Pipeline) EnrichmentProvider() string {
	if p.provider == nil {
		return ""
	}
	return p.provider.Name()
}

// CheckEnrichment reports whether the configured LLM provider answers.
// It returns nil when enrichment is disabled.
func (p *Pipeline) CheckEnrichment(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	if !p.provider.IsAvailable(ctx) {
		return fmt.Errorf("LLM provider %s is not reachable", p.provider.Name())
	}
	return nil
}

// ClearCache drops every cached lookup
func (p *Pipeline) ClearCache() error {
	if p.cache == nil {
		return nil
	}
	if err := p.cache.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	p.logger.Info("lookup cache cleared")
	return nil
}
