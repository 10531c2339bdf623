package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/metrics"
	"github.com/ppiankov/truthlens/internal/model"
)

// WikipediaName labels the fallback source in metrics and cache keys
const WikipediaName = "wikipedia"

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

type wikiSummaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// WikipediaSource finds the best matching article and returns its summary.
// It satisfies resolve.FallbackKnowledgeSource.
type WikipediaSource struct {
	client   *client
	baseURL  string
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewWikipediaSource creates the Wikipedia adapter
func NewWikipediaSource(cfg model.WikipediaConfig, opts Options) *WikipediaSource {
	return &WikipediaSource{
		client:   newClient(opts),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   loggerOrDiscard(opts.Logger),
	}
}

// Lookup returns the summary of the top search hit, nil when nothing matches.
// When the summary cannot be fetched the search snippet is used instead.
func (s *WikipediaSource) Lookup(ctx context.Context, query model.ClaimQuery) (*model.KnowledgeSnippet, error) {
	key := cache.CacheKey(WikipediaName, query.Text())
	if s.cache != nil {
		var cached model.KnowledgeSnippet
		hit := cache.GetJSON(s.cache, key, &cached)
		metrics.ObserveCache(WikipediaName, hit)
		if hit {
			if cached.Title == "" {
				return nil, nil
			}
			return &cached, nil
		}
	}

	snip, err := s.lookup(ctx, query.Text())
	if err != nil {
		metrics.ObserveSource(WikipediaName, outcomeOf(err))
		return nil, err
	}

	if snip == nil {
		metrics.ObserveSource(WikipediaName, metrics.OutcomeEmpty)
	} else {
		metrics.ObserveSource(WikipediaName, metrics.OutcomeOK)
	}

	if s.cache != nil {
		stored := model.KnowledgeSnippet{}
		if snip != nil {
			stored = *snip
		}
		if err := cache.SetJSON(s.cache, key, stored, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", "source", WikipediaName, "error", err)
		}
	}

	return snip, nil
}

func (s *WikipediaSource) lookup(ctx context.Context, text string) (*model.KnowledgeSnippet, error) {
	var search wikiSearchResponse
	if err := s.client.getJSON(ctx, s.searchURL(text), &search); err != nil {
		return nil, fmt.Errorf("%s search: %w", WikipediaName, err)
	}

	if len(search.Query.Search) == 0 {
		return nil, nil
	}
	hit := search.Query.Search[0]

	snip := &model.KnowledgeSnippet{
		Title:   hit.Title,
		Snippet: StripHTML(hit.Snippet),
		URL:     s.pageURL(hit.Title),
	}

	var summary wikiSummaryResponse
	err := s.client.getJSON(ctx, s.summaryURL(hit.Title), &summary)
	switch {
	case err != nil:
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.Debug("summary unavailable, using search snippet", "title", hit.Title, "error", err)
	case strings.TrimSpace(summary.Extract) != "":
		snip.Snippet = strings.TrimSpace(summary.Extract)
		if summary.Title != "" {
			snip.Title = summary.Title
		}
		if summary.ContentURLs.Desktop.Page != "" {
			snip.URL = summary.ContentURLs.Desktop.Page
		}
	}

	if snip.Snippet == "" {
		return nil, nil
	}
	return snip, nil
}

func (s *WikipediaSource) searchURL(text string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", text)
	params.Set("format", "json")
	params.Set("srlimit", "1")
	return s.baseURL + "/w/api.php?" + params.Encode()
}

func (s *WikipediaSource) summaryURL(title string) string {
	return s.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(titleSlug(title))
}

func (s *WikipediaSource) pageURL(title string) string {
	return s.baseURL + "/wiki/" + url.PathEscape(titleSlug(title))
}

func titleSlug(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// StripHTML returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed
func StripHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var buf strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(buf.String()), " ")
		case html.TextToken:
			buf.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" || string(name) == "p" {
				buf.WriteByte(' ')
			}
		}
	}
}
