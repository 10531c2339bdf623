package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/metrics"
	"github.com/ppiankov/truthlens/internal/model"
)

// FactCheckName labels the primary source in metrics and cache keys
const FactCheckName = "factcheck"

// factCheckResponse is the subset of the claims:search reply we use
type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// FactCheckSource searches previously fact-checked claims.
// It satisfies resolve.PrimaryClaimSource.
type FactCheckSource struct {
	client   *client
	baseURL  string
	apiKey   string
	language string
	pageSize int
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewFactCheckSource creates the Google Fact Check Tools adapter
func NewFactCheckSource(cfg model.FactCheckConfig, opts Options) *FactCheckSource {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &FactCheckSource{
		client:   newClient(opts),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		pageSize: pageSize,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   loggerOrDiscard(opts.Logger),
	}
}

// Search returns one candidate per claim review, in source order.
// Transport, auth and status failures wrap model.ErrSourceUnavailable.
func (s *FactCheckSource) Search(ctx context.Context, query model.ClaimQuery) ([]model.CandidateClaim, error) {
	if s.apiKey == "" {
		metrics.ObserveSource(FactCheckName, metrics.OutcomeError)
		return nil, fmt.Errorf("%w: %s: API key not configured", model.ErrSourceUnavailable, FactCheckName)
	}

	key := cache.CacheKey(FactCheckName, s.language+"|"+query.Text())
	if s.cache != nil {
		var cached []model.CandidateClaim
		hit := cache.GetJSON(s.cache, key, &cached)
		metrics.ObserveCache(FactCheckName, hit)
		if hit {
			return cached, nil
		}
	}

	var resp factCheckResponse
	if err := s.client.getJSON(ctx, s.searchURL(query.Text()), &resp); err != nil {
		metrics.ObserveSource(FactCheckName, outcomeOf(err))
		return nil, fmt.Errorf("%w: %s: %w", model.ErrSourceUnavailable, FactCheckName, err)
	}

	candidates := candidatesOf(resp)
	if len(candidates) == 0 {
		metrics.ObserveSource(FactCheckName, metrics.OutcomeEmpty)
	} else {
		metrics.ObserveSource(FactCheckName, metrics.OutcomeOK)
	}

	s.logger.Debug("fact check search",
		"query", query.Text(),
		"claims", len(resp.Claims),
		"candidates", len(candidates),
	)

	if s.cache != nil {
		if err := cache.SetJSON(s.cache, key, candidates, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", "source", FactCheckName, "error", err)
		}
	}

	return candidates, nil
}

func (s *FactCheckSource) searchURL(text string) string {
	params := url.Values{}
	params.Set("query", text)
	params.Set("key", s.apiKey)
	if s.language != "" {
		params.Set("languageCode", s.language)
	}
	params.Set("pageSize", strconv.Itoa(s.pageSize))
	return s.baseURL + "/v1alpha1/claims:search?" + params.Encode()
}

func candidatesOf(resp factCheckResponse) []model.CandidateClaim {
	candidates := make([]model.CandidateClaim, 0, len(resp.Claims))
	for _, c := range resp.Claims {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		for _, review := range c.ClaimReview {
			publisher := review.Publisher.Name
			if publisher == "" {
				publisher = review.Publisher.Site
			}
			candidates = append(candidates, model.CandidateClaim{
				Text:          text,
				Rating:        strings.TrimSpace(review.TextualRating),
				SourceURL:     review.URL,
				PublisherName: publisher,
			})
		}
	}
	return candidates
}

// outcomeOf maps a fetch error to a metrics outcome label
func outcomeOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}
