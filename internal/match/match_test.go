package match

import (
	"testing"

	"github.com/ppiankov/truthlens/internal/model"
)

func newTestMatcher(acceptance float64) *Matcher {
	return NewMatcher(NewNegationDetector(model.DefaultNegationConfig()), acceptance)
}

func TestMatcher_Best_PicksMaximum(t *testing.T) {
	m := newTestMatcher(0.3)

	candidates := []model.CandidateClaim{
		{Text: "Bananas are berries", Rating: "True"},
		{Text: "Vaccines cause autism", Rating: "False"},
		{Text: "Vaccines cause autism in children", Rating: "False"},
	}

	result, score := m.Best("Vaccines cause autism", candidates)
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Candidate.Text != "Vaccines cause autism" {
		t.Errorf("expected exact candidate, got %q", result.Candidate.Text)
	}
	if result.Similarity != 1.0 || score != 1.0 {
		t.Errorf("expected similarity 1.0, got %v (score %v)", result.Similarity, score)
	}
	if result.IsOpposite {
		t.Error("expected identical claim not to be opposite")
	}
}

func TestMatcher_Best_TiesKeepFirst(t *testing.T) {
	m := newTestMatcher(0.3)

	candidates := []model.CandidateClaim{
		{Text: "same claim", Rating: "True", SourceURL: "https://a.example"},
		{Text: "same claim", Rating: "False", SourceURL: "https://b.example"},
	}

	result, _ := m.Best("same claim", candidates)
	if result == nil || result.Candidate.SourceURL != "https://a.example" {
		t.Errorf("expected first candidate on tie, got %+v", result)
	}
}

func TestMatcher_Best_BelowAcceptance(t *testing.T) {
	m := newTestMatcher(0.9)

	candidates := []model.CandidateClaim{{Text: "Completely unrelated statement"}}

	result, score := m.Best("Vaccines cause autism", candidates)
	if result != nil {
		t.Errorf("expected no match below acceptance, got %+v", result)
	}
	if score <= 0 || score >= 0.9 {
		t.Errorf("expected best score reported below threshold, got %v", score)
	}
}

func TestMatcher_Best_NoCandidates(t *testing.T) {
	m := newTestMatcher(0.3)

	result, score := m.Best("anything", nil)
	if result != nil || score != 0 {
		t.Errorf("expected nil match and zero score, got %+v, %v", result, score)
	}
}

func TestMatcher_Best_DetectsOpposite(t *testing.T) {
	m := newTestMatcher(0.3)

	candidates := []model.CandidateClaim{{Text: "5G does not cause COVID-19", Rating: "True"}}

	result, _ := m.Best("5G causes COVID-19", candidates)
	if result == nil {
		t.Fatal("expected a match")
	}
	if !result.IsOpposite {
		t.Error("expected candidate to be detected as opposite")
	}
}
