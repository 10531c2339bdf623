package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/truthlens/internal/match"
	"github.com/ppiankov/truthlens/internal/metrics"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/rating"
)

// Engine resolves claims against the configured sources
type Engine struct {
	primary    PrimaryClaimSource
	fallback   FallbackKnowledgeSource // Optional (nil disables)
	classifier HeuristicClassifier     // Optional (nil disables)

	matcher   *match.Matcher
	ratings   *rating.Classifier
	validator *EvidenceValidator

	thresholds model.ThresholdConfig
	trust      model.TrustConfig
	timeouts   model.TimeoutConfig
	logger     *slog.Logger
}

// NewEngine wires the decision components from cfg around the given sources.
// fallback and classifier may be nil; logger nil discards logs.
func NewEngine(cfg *model.Config, primary PrimaryClaimSource, fallback FallbackKnowledgeSource, classifier HeuristicClassifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	detector := match.NewNegationDetector(cfg.Negation)

	return &Engine{
		primary:    primary,
		fallback:   fallback,
		classifier: classifier,
		matcher:    match.NewMatcher(detector, cfg.Thresholds.Acceptance),
		ratings:    rating.NewClassifier(cfg.RatingRules, cfg.Trust.Unrated),
		validator:  NewEvidenceValidator(cfg.ValidationRules, detector),
		thresholds: cfg.Thresholds,
		trust:      cfg.Trust,
		timeouts:   cfg.Timeouts,
		logger:     logger,
	}
}

// Resolve runs one claim through primary lookup, fallback and enrichment.
//
// The returned outcome is never nil. The error is non-nil only for blank
// input (model.ErrEmptyInput); source failures and cancellation are reported
// through the outcome status.
func (e *Engine) Resolve(ctx context.Context, claimText string) (*model.ResolutionOutcome, error) {
	start := time.Now()

	query, err := model.NewClaimQuery(claimText)
	if err != nil {
		out := errorOutcome("", model.ErrorCodeEmptyInput, "Claim text is empty")
		e.finish(out, start)
		return out, err
	}

	if ctx.Err() != nil {
		out := errorOutcome(query.Text(), model.ErrorCodeCancelled, "Resolution cancelled")
		e.finish(out, start)
		return out, nil
	}

	var (
		branch     branchResult
		enrichment *model.EnrichmentRecord
		enrichErr  error
	)

	g, gctx := errgroup.WithContext(ctx)

	if e.classifier != nil {
		g.Go(func() error {
			enrichment, enrichErr = e.enrich(gctx, query.Text())
			return nil
		})
	}

	// Only a primary transport failure fails the group, which cancels enrichment
	g.Go(func() error {
		res, err := e.lookup(gctx, ctx, query)
		if err != nil {
			return err
		}
		branch = res
		return nil
	})

	groupErr := g.Wait()

	if ctx.Err() != nil {
		out := errorOutcome(query.Text(), model.ErrorCodeCancelled, "Resolution cancelled")
		e.logger.Warn("resolution cancelled", "claim", query.Text(), "error", ctx.Err())
		e.finish(out, start)
		return out, nil
	}

	if groupErr != nil {
		out := errorOutcome(query.Text(), model.ErrorCodeSourceUnavailable, "Fact-check source unavailable")
		e.logger.Error("primary source failed", "claim", query.Text(), "error", groupErr)
		e.finish(out, start)
		return out, nil
	}

	out := &model.ResolutionOutcome{
		Status:        branch.status,
		Claim:         query.Text(),
		VerdictResult: branch.verdict,
		Match:         branch.match,
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}

	switch {
	case enrichErr != nil:
		out.EnrichmentError = enrichErr.Error()
		e.logger.Warn("enrichment unavailable", "claim", query.Text(), "error", enrichErr)
	case enrichment != nil:
		out.ApplyEnrichment(enrichment)
		e.applySuspiciousUpgrade(out, branch.inferred)
	}

	e.finish(out, start)
	return out, nil
}

// lookup runs PRIMARY_LOOKUP and, on a miss, FALLBACK_LOOKUP.
// callerCtx distinguishes caller cancellation from a branch timeout.
func (e *Engine) lookup(ctx, callerCtx context.Context, query model.ClaimQuery) (branchResult, error) {
	candidates, err := e.searchPrimary(ctx, callerCtx, query)
	if err != nil {
		return branchResult{}, err
	}

	best, score := e.matcher.Best(query.Text(), candidates)
	if best != nil {
		e.logger.Debug("primary match",
			"claim", query.Text(),
			"candidate", best.Candidate.Text,
			"similarity", best.Similarity,
			"opposite", best.IsOpposite,
		)
		return e.reconcile(best), nil
	}

	if len(candidates) > 0 {
		e.logger.Debug("no candidate above acceptance", "claim", query.Text(), "best_similarity", score, "candidates", len(candidates))
	}

	return e.lookupFallback(ctx, query), nil
}

func (e *Engine) searchPrimary(ctx, callerCtx context.Context, query model.ClaimQuery) ([]model.CandidateClaim, error) {
	pctx, cancel := context.WithTimeout(ctx, e.timeouts.Primary)
	defer cancel()

	candidates, err := e.primary.Search(pctx, query)
	if err == nil {
		return candidates, nil
	}

	if callerCtx.Err() != nil {
		return nil, callerCtx.Err()
	}

	// Branch timeout with a live caller degrades to a miss
	if errors.Is(pctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		e.logger.Warn("primary lookup timed out", "claim", query.Text(), "timeout", e.timeouts.Primary)
		return nil, nil
	}

	return nil, fmt.Errorf("primary search: %w", err)
}

// lookupFallback handles NOT_FOUND. Fallback errors never propagate.
func (e *Engine) lookupFallback(ctx context.Context, query model.ClaimQuery) branchResult {
	notFound := branchResult{
		status: model.StatusNotFound,
		verdict: model.VerdictResult{
			Verdict: model.VerdictUnknown,
			Summary: "No matching fact-check or reference material found",
			Sources: []string{},
		},
	}

	if e.fallback == nil {
		return notFound
	}

	fctx, cancel := context.WithTimeout(ctx, e.timeouts.Fallback)
	defer cancel()

	snip, err := e.fallback.Lookup(fctx, query)
	if err != nil {
		e.logger.Warn("fallback lookup failed", "claim", query.Text(), "error", err)
		return notFound
	}
	if snip == nil || (snip.Title == "" && snip.Snippet == "") {
		return notFound
	}

	res := branchResult{
		verdict: model.VerdictResult{
			Verdict: model.VerdictUnknown,
			Sources: sourcesOf(snip.URL),
		},
	}

	if hit := e.validator.Validate(query.Text(), snip); hit != nil {
		e.logger.Debug("fallback evidence validated", "claim", query.Text(), "rule", hit.Rule, "negated", hit.Negated)
		res.inferred = true
		res.verdict.Verdict = hit.Verdict
		res.verdict.Trust = model.Trust(hit.Trust)
		res.verdict.Summary = fmt.Sprintf("No fact-check found; reference %q supports this verdict: %s", snip.Title, snip.Snippet)
		if hit.Verdict == model.VerdictUnknown {
			res.status = model.StatusPartialSuccess
		} else {
			res.status = model.StatusSuccess
		}
		return res
	}

	res.status = model.StatusPartialSuccess
	res.verdict.Summary = fmt.Sprintf("No fact-check found; reference context from %q: %s", snip.Title, snip.Snippet)
	return res
}

func (e *Engine) enrich(ctx context.Context, text string) (*model.EnrichmentRecord, error) {
	ectx, cancel := context.WithTimeout(ctx, e.timeouts.Enrichment)
	defer cancel()

	rec, err := e.classifier.Classify(ectx, text)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// applySuspiciousUpgrade marks an otherwise unknown verdict as suspicious when
// the classifier is confident the claim follows misinformation patterns.
// The status is left untouched.
func (e *Engine) applySuspiciousUpgrade(out *model.ResolutionOutcome, inferred bool) {
	threshold := e.thresholds.SuspiciousCertainty
	if threshold <= 0 || inferred || out.Verdict != model.VerdictUnknown {
		return
	}
	if len(out.MisinformationPatterns) == 0 || out.Certainty == nil || *out.Certainty < threshold {
		return
	}

	out.Verdict = model.VerdictSuspicious
	out.Trust = nil
	out.Summary = fmt.Sprintf("%s. Heuristic classifier flags misinformation patterns (certainty %.2f)", out.Summary, *out.Certainty)
}

func (e *Engine) finish(out *model.ResolutionOutcome, start time.Time) {
	elapsed := time.Since(start)
	metrics.ObserveResolution(string(out.Status), string(out.Verdict), elapsed)
	e.logger.Info("claim resolved",
		"status", out.Status,
		"verdict", out.Verdict,
		"enriched", out.Enriched,
		"duration", elapsed,
	)
}

func errorOutcome(claim, code, summary string) *model.ResolutionOutcome {
	return &model.ResolutionOutcome{
		Status: model.StatusError,
		Claim:  claim,
		VerdictResult: model.VerdictResult{
			Verdict: model.VerdictUnknown,
			Summary: summary,
			Sources: []string{},
		},
		Error: code,
	}
}
