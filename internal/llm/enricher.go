package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/truthlens/internal/metrics"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/retry"
)

// SystemPrompt fixes the reply schema of the heuristic classifier
const SystemPrompt = `You analyze short factual claims for signs of bias and misinformation.
You do NOT decide whether the claim is true.

Reply with ONE JSON object and nothing else, using exactly these keys:
{"bias_flags": [string], "misinformation_patterns": [string], "claim_type": string, "certainty": number}

- bias_flags: short lowercase labels such as "loaded language", "partisan framing", "appeal to emotion". Empty list if none.
- misinformation_patterns: short lowercase labels such as "conspiracy", "false causation", "fabricated statistic", "out of context". Empty list if none.
- claim_type: one of "factual", "opinion", "prediction", "satire", "mixed", "other".
- certainty: your confidence in these labels, from 0.0 to 1.0.`

// BuildPrompt wraps the claim in the user message
func BuildPrompt(claim string) string {
	return fmt.Sprintf("Claim:\n%q\n\nReturn the JSON object.", claim)
}

// Enricher classifies claims through a Provider with retry and per-attempt timeouts.
// It satisfies resolve.HeuristicClassifier.
type Enricher struct {
	provider       Provider
	policy         retry.Policy
	attemptTimeout time.Duration
	maxTokens      int
	logger         *slog.Logger
}

// NewEnricher creates an enricher. logger nil discards logs.
func NewEnricher(provider Provider, policy retry.Policy, attemptTimeout time.Duration, maxTokens int, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{
		provider:       provider,
		policy:         policy,
		attemptTimeout: timeoutOrDefault(attemptTimeout, 20*time.Second),
		maxTokens:      maxTokens,
		logger:         logger,
	}
}

// Classify returns enrichment for text. Once the retry budget is spent the
// error wraps model.ErrEnrichmentFailed and the last cause.
func (e *Enricher) Classify(ctx context.Context, text string) (*model.EnrichmentRecord, error) {
	var record *model.EnrichmentRecord

	res, err := e.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		rec, err := e.attempt(ctx, text)
		if err != nil {
			e.logger.Debug("enrichment attempt failed",
				"provider", e.provider.Name(),
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		record = rec
		return nil
	}, IsRetryable)

	if err != nil {
		return nil, fmt.Errorf("%w after %d attempt(s): %w", model.ErrEnrichmentFailed, res.Attempts, err)
	}
	return record, nil
}

func (e *Enricher) attempt(ctx context.Context, text string) (*model.EnrichmentRecord, error) {
	actx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	resp, err := e.provider.Complete(actx, CompletionRequest{
		System:    SystemPrompt,
		Prompt:    BuildPrompt(text),
		MaxTokens: e.maxTokens,
		JSON:      true,
	})
	if err != nil {
		metrics.ObserveEnrichmentAttempt(metrics.OutcomeError)
		return nil, err
	}

	rec, err := ParseEnrichment(resp.Text)
	if err != nil {
		metrics.ObserveEnrichmentAttempt("malformed")
		return nil, err
	}

	metrics.ObserveEnrichmentAttempt(metrics.OutcomeOK)
	return rec, nil
}

// enrichmentPayload mirrors the reply schema; pointers detect missing keys
type enrichmentPayload struct {
	BiasFlags              *[]string `json:"bias_flags"`
	MisinformationPatterns *[]string `json:"misinformation_patterns"`
	ClaimType              *string   `json:"claim_type"`
	Certainty              *float64  `json:"certainty"`
}

// ParseEnrichment decodes a classifier reply. Markdown code fences and text
// around the object are tolerated; a missing key, a wrong type or a certainty
// outside [0,1] is model.ErrMalformedEnrichmentPayload.
func ParseEnrichment(raw string) (*model.EnrichmentRecord, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", model.ErrMalformedEnrichmentPayload)
	}

	var p enrichmentPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedEnrichmentPayload, err)
	}

	if p.BiasFlags == nil || p.MisinformationPatterns == nil || p.ClaimType == nil {
		return nil, fmt.Errorf("%w: missing required keys", model.ErrMalformedEnrichmentPayload)
	}
	if p.Certainty != nil && (*p.Certainty < 0 || *p.Certainty > 1) {
		return nil, fmt.Errorf("%w: certainty %v outside [0,1]", model.ErrMalformedEnrichmentPayload, *p.Certainty)
	}

	return &model.EnrichmentRecord{
		BiasFlags:              uniqueLabels(*p.BiasFlags),
		MisinformationPatterns: uniqueLabels(*p.MisinformationPatterns),
		ClaimType:              model.ParseClaimType(strings.ToLower(strings.TrimSpace(*p.ClaimType))),
		Certainty:              p.Certainty,
	}, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// uniqueLabels lower-cases, trims and de-duplicates labels, keeping order
func uniqueLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	var out []string
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
