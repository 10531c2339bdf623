package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/truthlens/internal/model"
)

// Mock sources for testing

type mockPrimary struct {
	candidates []model.CandidateClaim
	err        error
	block      bool // Wait for ctx cancellation
	calls      atomic.Int32
}

func (m *mockPrimary) Search(ctx context.Context, q model.ClaimQuery) ([]model.CandidateClaim, error) {
	m.calls.Add(1)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.candidates, m.err
}

type mockFallback struct {
	snippet *model.KnowledgeSnippet
	err     error
	calls   atomic.Int32
}

func (m *mockFallback) Lookup(ctx context.Context, q model.ClaimQuery) (*model.KnowledgeSnippet, error) {
	m.calls.Add(1)
	return m.snippet, m.err
}

type mockClassifier struct {
	record    *model.EnrichmentRecord
	err       error
	block     bool
	cancelled atomic.Bool
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (*model.EnrichmentRecord, error) {
	if m.block {
		<-ctx.Done()
		m.cancelled.Store(true)
		return nil, ctx.Err()
	}
	return m.record, m.err
}

func certainty(v float64) *float64 { return &v }

func newTestEngine(primary PrimaryClaimSource, fallback FallbackKnowledgeSource, classifier HeuristicClassifier) *Engine {
	return NewEngine(model.DefaultConfig(), primary, fallback, classifier, nil)
}

func TestResolve_EmptyInput(t *testing.T) {
	primary := &mockPrimary{}
	e := newTestEngine(primary, nil, nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		out, err := e.Resolve(context.Background(), input)
		if !errors.Is(err, model.ErrEmptyInput) {
			t.Errorf("Resolve(%q): expected ErrEmptyInput, got %v", input, err)
		}
		if out == nil {
			t.Fatalf("Resolve(%q): expected non-nil outcome", input)
		}
		if out.Status != model.StatusError || out.Error != model.ErrorCodeEmptyInput {
			t.Errorf("Resolve(%q): expected error/empty_input, got %s/%s", input, out.Status, out.Error)
		}
	}

	if primary.calls.Load() != 0 {
		t.Errorf("expected no lookups for empty input, got %d", primary.calls.Load())
	}
}

func TestResolve_MatchedFalseRating(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{
		{Text: "Drinking bleach cures the flu", Rating: "False", SourceURL: "https://fc.example/bleach", PublisherName: "FactCheck"},
	}}
	e := newTestEngine(primary, nil, nil)

	out, err := e.Resolve(context.Background(), "Drinking bleach cures the flu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Status != model.StatusSuccess {
		t.Errorf("expected success, got %s", out.Status)
	}
	if out.Verdict != model.VerdictFalse {
		t.Errorf("expected verdict false, got %s", out.Verdict)
	}
	if out.Trust == nil || *out.Trust != 20 {
		t.Errorf("expected trust 20, got %v", out.Trust)
	}
	if len(out.Sources) != 1 || out.Sources[0] != "https://fc.example/bleach" {
		t.Errorf("expected candidate URL as source, got %v", out.Sources)
	}
	if out.Match == nil || out.Match.Publisher != "FactCheck" {
		t.Errorf("expected match summary, got %+v", out.Match)
	}
}

func TestResolve_OppositeOfTrueClaim(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{
		{Text: "5G does not cause COVID-19", Rating: "True"},
	}}
	e := newTestEngine(primary, nil, nil)

	out, _ := e.Resolve(context.Background(), "5G causes COVID-19")

	if out.Verdict != model.VerdictFalse {
		t.Errorf("expected verdict false, got %s", out.Verdict)
	}
	if out.Trust == nil || *out.Trust != 20 {
		t.Errorf("expected trust 20, got %v", out.Trust)
	}
	if out.Match == nil || !out.Match.Opposite {
		t.Error("expected match flagged as opposite")
	}
}

func TestResolve_IdenticalNegatedClaimKeepsRating(t *testing.T) {
	for _, claim := range []string{"Vaccines do not cause autism", "Vaccines don't cause autism"} {
		primary := &mockPrimary{candidates: []model.CandidateClaim{
			{Text: claim, Rating: "True"},
		}}
		e := newTestEngine(primary, nil, nil)

		out, _ := e.Resolve(context.Background(), claim)

		if out.Verdict != model.VerdictTrue {
			t.Errorf("%q: expected verdict true, got %s", claim, out.Verdict)
		}
		if out.Trust == nil || *out.Trust != 85 {
			t.Errorf("%q: expected trust 85, got %v", claim, out.Trust)
		}
		if out.Match == nil || out.Match.Opposite {
			t.Errorf("%q: expected non-opposite match, got %+v", claim, out.Match)
		}
	}
}

func TestResolve_BelowAcceptanceIsNotFound(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{
		{Text: "Quarterly earnings exceeded analyst expectations", Rating: "True"},
	}}
	e := newTestEngine(primary, nil, nil)

	out, _ := e.Resolve(context.Background(), "zz")

	if out.Status != model.StatusNotFound {
		t.Errorf("expected not_found, got %s", out.Status)
	}
	if out.Verdict != model.VerdictUnknown || out.Trust != nil {
		t.Errorf("expected unknown with no trust, got %s/%v", out.Verdict, out.Trust)
	}
	if out.Match != nil {
		t.Errorf("expected no match, got %+v", out.Match)
	}
}

func TestResolve_LowConfidenceMatch(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{
		{Text: "Vaccines cause autism in young children according to a study", Rating: "False"},
	}}
	e := newTestEngine(primary, nil, nil)

	out, _ := e.Resolve(context.Background(), "Vaccines cause autism")

	if out.Status != model.StatusPartialSuccess {
		t.Errorf("expected partial_success, got %s", out.Status)
	}
	if out.Verdict != model.VerdictUnknown || out.Trust != nil {
		t.Errorf("expected unknown with absent trust, got %s/%v", out.Verdict, out.Trust)
	}
	if out.Match == nil {
		t.Fatal("expected weak match to be reported")
	}
	if out.Match.Similarity >= 0.8 || out.Match.Similarity < 0.3 {
		t.Errorf("expected similarity between thresholds, got %v", out.Match.Similarity)
	}
}

func TestResolve_FallbackValidatedEarthOrbit(t *testing.T) {
	primary := &mockPrimary{}
	fallback := &mockFallback{snippet: &model.KnowledgeSnippet{
		Title:   "Earth's orbit",
		Snippet: "Earth orbits the Sun at an average distance of 149.60 million km, and one complete orbit takes 365.256 days.",
		URL:     "https://en.wikipedia.org/wiki/Earth%27s_orbit",
	}}
	e := newTestEngine(primary, fallback, nil)

	out, err := e.Resolve(context.Background(), "The Earth orbits the Sun once per year")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Status != model.StatusSuccess {
		t.Errorf("expected success, got %s", out.Status)
	}
	if out.Verdict != model.VerdictTrue {
		t.Errorf("expected verdict true, got %s", out.Verdict)
	}
	if out.Trust == nil || *out.Trust < 85 || *out.Trust > 90 {
		t.Errorf("expected trust in [85,90], got %v", out.Trust)
	}
	if len(out.Sources) != 1 || out.Sources[0] != fallback.snippet.URL {
		t.Errorf("expected snippet URL as source, got %v", out.Sources)
	}
	if fallback.calls.Load() != 1 {
		t.Errorf("expected one fallback call, got %d", fallback.calls.Load())
	}
}

func TestResolve_FallbackValidationNegatedClaim(t *testing.T) {
	fallback := &mockFallback{snippet: &model.KnowledgeSnippet{
		Title:   "Earth's orbit",
		Snippet: "Earth orbits the Sun once every 365.256 days.",
	}}
	e := newTestEngine(&mockPrimary{}, fallback, nil)

	out, _ := e.Resolve(context.Background(), "The Earth does not orbit the Sun once per year")

	if out.Verdict != model.VerdictFalse {
		t.Errorf("expected negated claim to resolve false, got %s", out.Verdict)
	}
	if out.Trust == nil || *out.Trust != 12 {
		t.Errorf("expected inverted trust 12, got %v", out.Trust)
	}
}

func TestResolve_FallbackContextOnly(t *testing.T) {
	fallback := &mockFallback{snippet: &model.KnowledgeSnippet{
		Title:   "Great Wall of China",
		Snippet: "The Great Wall of China is a series of fortifications.",
		URL:     "https://en.wikipedia.org/wiki/Great_Wall_of_China",
	}}
	e := newTestEngine(&mockPrimary{}, fallback, nil)

	out, _ := e.Resolve(context.Background(), "The Great Wall is visible from space")

	if out.Status != model.StatusPartialSuccess {
		t.Errorf("expected partial_success, got %s", out.Status)
	}
	if out.Verdict != model.VerdictUnknown || out.Trust != nil {
		t.Errorf("expected unknown with no trust, got %s/%v", out.Verdict, out.Trust)
	}
	if len(out.Sources) != 1 {
		t.Errorf("expected snippet URL as source, got %v", out.Sources)
	}
}

func TestResolve_FallbackErrorAbsorbed(t *testing.T) {
	fallback := &mockFallback{err: errors.New("connection reset")}
	e := newTestEngine(&mockPrimary{}, fallback, nil)

	out, err := e.Resolve(context.Background(), "Some obscure claim")
	if err != nil {
		t.Fatalf("expected fallback error to be absorbed, got %v", err)
	}
	if out.Status != model.StatusNotFound {
		t.Errorf("expected not_found, got %s", out.Status)
	}
}

func TestResolve_FallbackSkippedOnMatch(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{{Text: "The moon is made of cheese", Rating: "False"}}}
	fallback := &mockFallback{}
	e := newTestEngine(primary, fallback, nil)

	_, _ = e.Resolve(context.Background(), "The moon is made of cheese")

	if fallback.calls.Load() != 0 {
		t.Errorf("expected no fallback call after a primary match, got %d", fallback.calls.Load())
	}
}

func TestResolve_PrimaryFailure(t *testing.T) {
	primary := &mockPrimary{err: fmt.Errorf("%w: status 503", model.ErrSourceUnavailable)}
	classifier := &mockClassifier{block: true}
	e := newTestEngine(primary, &mockFallback{}, classifier)

	out, err := e.Resolve(context.Background(), "Any claim")
	if err != nil {
		t.Fatalf("expected error reported in outcome only, got %v", err)
	}

	if out.Status != model.StatusError || out.Error != model.ErrorCodeSourceUnavailable {
		t.Errorf("expected error/source_unavailable, got %s/%s", out.Status, out.Error)
	}
	if !classifier.cancelled.Load() {
		t.Error("expected enrichment to be cancelled")
	}
	if out.Enriched {
		t.Error("expected enrichment to be dropped")
	}
}

func TestResolve_PrimaryTimeoutDegradesToNotFound(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Timeouts.Primary = 20 * time.Millisecond

	fallback := &mockFallback{}
	e := NewEngine(cfg, &mockPrimary{block: true}, fallback, nil, nil)

	out, _ := e.Resolve(context.Background(), "Any claim")

	if out.Status != model.StatusNotFound {
		t.Errorf("expected not_found after primary timeout, got %s (%s)", out.Status, out.Error)
	}
	if fallback.calls.Load() != 1 {
		t.Errorf("expected fallback after primary timeout, got %d calls", fallback.calls.Load())
	}
}

func TestResolve_CallerCancellation(t *testing.T) {
	e := newTestEngine(&mockPrimary{block: true}, nil, &mockClassifier{block: true})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan *model.ResolutionOutcome, 1)
	go func() {
		out, _ := e.Resolve(ctx, "Any claim")
		done <- out
	}()

	select {
	case out := <-done:
		if out.Status != model.StatusError || out.Error != model.ErrorCodeCancelled {
			t.Errorf("expected error/cancelled, got %s/%s", out.Status, out.Error)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("resolve did not return after cancellation")
	}
}

func TestResolve_AlreadyCancelled(t *testing.T) {
	primary := &mockPrimary{}
	e := newTestEngine(primary, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _ := e.Resolve(ctx, "Any claim")
	if out.Error != model.ErrorCodeCancelled {
		t.Errorf("expected cancelled, got %q", out.Error)
	}
	if primary.calls.Load() != 0 {
		t.Error("expected no lookup on cancelled context")
	}
}

func TestResolve_EnrichmentFailureIsSoft(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{{Text: "The moon is made of cheese", Rating: "Pants on Fire"}}}
	classifier := &mockClassifier{err: fmt.Errorf("%w: after 3 attempts: %w", model.ErrEnrichmentFailed, errors.New("status 503"))}
	e := newTestEngine(primary, nil, classifier)

	out, err := e.Resolve(context.Background(), "The moon is made of cheese")
	if err != nil {
		t.Fatalf("expected no call-level error, got %v", err)
	}

	if out.Status != model.StatusSuccess || out.Verdict != model.VerdictFalse {
		t.Errorf("expected primary result to stand, got %s/%s", out.Status, out.Verdict)
	}
	if out.Trust == nil || *out.Trust != 20 {
		t.Errorf("expected trust 20, got %v", out.Trust)
	}
	if out.Enriched {
		t.Error("expected enriched=false")
	}
	if out.EnrichmentError == "" {
		t.Error("expected enrichment_error to be set")
	}
	if out.BiasFlags != nil || out.Certainty != nil || out.ClaimType != "" {
		t.Error("expected enrichment fields to be absent")
	}
}

func TestResolve_EnrichmentMerged(t *testing.T) {
	primary := &mockPrimary{candidates: []model.CandidateClaim{{Text: "The moon is made of cheese", Rating: "False"}}}
	classifier := &mockClassifier{record: &model.EnrichmentRecord{
		BiasFlags:              []string{"sensational"},
		MisinformationPatterns: []string{"fabricated"},
		ClaimType:              model.ClaimTypeFactual,
		Certainty:              certainty(0.9),
	}}
	e := newTestEngine(primary, nil, classifier)

	out, _ := e.Resolve(context.Background(), "The moon is made of cheese")

	if !out.Enriched {
		t.Error("expected enriched=true")
	}
	if len(out.BiasFlags) != 1 || out.ClaimType != model.ClaimTypeFactual {
		t.Errorf("expected enrichment fields merged, got %+v", out)
	}
	// Enrichment never overrides a rating-based verdict
	if out.Verdict != model.VerdictFalse {
		t.Errorf("expected verdict false, got %s", out.Verdict)
	}
}

func TestResolve_SuspiciousUpgrade(t *testing.T) {
	tests := []struct {
		name      string
		certainty *float64
		patterns  []string
		want      model.Verdict
	}{
		{"confident patterns", certainty(0.9), []string{"conspiracy"}, model.VerdictSuspicious},
		{"low certainty", certainty(0.5), []string{"conspiracy"}, model.VerdictUnknown},
		{"no patterns", certainty(0.95), nil, model.VerdictUnknown},
		{"missing certainty", nil, []string{"conspiracy"}, model.VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &mockClassifier{record: &model.EnrichmentRecord{
				MisinformationPatterns: tt.patterns,
				Certainty:              tt.certainty,
			}}
			e := newTestEngine(&mockPrimary{}, nil, classifier)

			out, _ := e.Resolve(context.Background(), "Chemtrails control the weather")

			if out.Verdict != tt.want {
				t.Errorf("expected verdict %s, got %s", tt.want, out.Verdict)
			}
			if out.Status != model.StatusNotFound {
				t.Errorf("expected status unchanged (not_found), got %s", out.Status)
			}
			if out.Trust != nil {
				t.Errorf("expected no trust, got %v", *out.Trust)
			}
		})
	}
}

func TestResolve_SuspiciousUpgradeDisabled(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Thresholds.SuspiciousCertainty = 0

	classifier := &mockClassifier{record: &model.EnrichmentRecord{
		MisinformationPatterns: []string{"conspiracy"},
		Certainty:              certainty(1),
	}}
	e := NewEngine(cfg, &mockPrimary{}, nil, classifier, nil)

	out, _ := e.Resolve(context.Background(), "Chemtrails control the weather")
	if out.Verdict != model.VerdictUnknown {
		t.Errorf("expected upgrade disabled, got %s", out.Verdict)
	}
}

func TestResolutionOutcome_JSONContract(t *testing.T) {
	e := newTestEngine(&mockPrimary{}, nil, nil)
	out, _ := e.Resolve(context.Background(), "Some obscure claim")

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"status", "verdict", "trust", "summary", "sources"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
	if fields["trust"] != nil {
		t.Errorf("expected trust null, got %v", fields["trust"])
	}
	if sources, ok := fields["sources"].([]any); !ok || len(sources) != 0 {
		t.Errorf("expected empty sources array, got %v", fields["sources"])
	}
}
