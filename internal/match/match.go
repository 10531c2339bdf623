package match

import "github.com/ppiankov/truthlens/internal/model"

// Matcher picks the best candidate for an input claim
type Matcher struct {
	detector   *NegationDetector
	acceptance float64
}

// NewMatcher creates a matcher that rejects best matches scoring below acceptance
func NewMatcher(detector *NegationDetector, acceptance float64) *Matcher {
	return &Matcher{
		detector:   detector,
		acceptance: acceptance,
	}
}

// Best scores every candidate and returns the highest-scoring one with its score.
// Ties keep the earliest candidate. The match is nil (not found) when there are
// no candidates or the best score is below the acceptance threshold; the
// returned score is still the maximum seen.
func (m *Matcher) Best(input string, candidates []model.CandidateClaim) (*model.MatchResult, float64) {
	bestIdx := -1
	bestScore := -1.0

	for i, c := range candidates {
		score := Similarity(input, c.Text)
		if score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 {
		return nil, 0
	}
	if bestScore < m.acceptance {
		return nil, bestScore
	}

	best := candidates[bestIdx]
	return &model.MatchResult{
		Candidate:  best,
		Similarity: bestScore,
		IsOpposite: m.detector.IsOpposite(input, best.Text),
	}, bestScore
}
