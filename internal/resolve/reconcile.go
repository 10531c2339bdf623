package resolve

import (
	"fmt"

	"github.com/ppiankov/truthlens/internal/model"
)

// branchResult is what the primary or fallback branch hands to FINALIZE
type branchResult struct {
	verdict  model.VerdictResult
	status   model.Status
	match    *model.MatchSummary
	inferred bool // Verdict backed by a confident rating or a validation rule
}

// reconcile combines the best match, its rating and the opposite flag
func (e *Engine) reconcile(m *model.MatchResult) branchResult {
	c := m.Candidate
	candVerdict, candTrust := e.ratings.Classify(c.Rating)

	res := branchResult{
		match: &model.MatchSummary{
			Text:       c.Text,
			Rating:     c.Rating,
			Publisher:  c.PublisherName,
			URL:        c.SourceURL,
			Similarity: m.Similarity,
			Opposite:   m.IsOpposite,
		},
		verdict: model.VerdictResult{Sources: sourcesOf(c.SourceURL)},
	}

	verdict, trust := candVerdict, candTrust
	switch {
	case m.IsOpposite && candVerdict == model.VerdictFalse:
		verdict, trust = model.VerdictTrue, e.trust.OppositeOfFalse
	case m.IsOpposite && candVerdict == model.VerdictTrue:
		verdict, trust = model.VerdictFalse, e.trust.OppositeOfTrue
	case m.IsOpposite && candVerdict == model.VerdictSuspicious:
		verdict, trust = model.VerdictUnknown, e.trust.Mixed
	case candVerdict == model.VerdictTrue:
		trust = e.trust.MatchesTrue
	case candVerdict == model.VerdictFalse:
		trust = e.trust.MatchesFalse
	}

	publisher := c.PublisherName
	if publisher == "" {
		publisher = "a fact-checker"
	}

	// Weak matches never carry a rating-based verdict
	if m.Similarity < e.thresholds.Confident {
		res.verdict.Verdict = model.VerdictUnknown
		res.status = model.StatusPartialSuccess
		res.verdict.Summary = fmt.Sprintf("Closest fact-check by %s (similarity %.2f) is too weak to rely on: %q rated %q",
			publisher, m.Similarity, c.Text, ratingLabel(c.Rating))
		return res
	}

	res.inferred = true
	res.verdict.Verdict = verdict
	res.verdict.Trust = model.Trust(trust)

	switch {
	case m.IsOpposite:
		res.verdict.Summary = fmt.Sprintf("Claim contradicts %q, rated %q by %s", c.Text, ratingLabel(c.Rating), publisher)
	default:
		res.verdict.Summary = fmt.Sprintf("Matches %q, rated %q by %s", c.Text, ratingLabel(c.Rating), publisher)
	}

	if verdict == model.VerdictUnknown {
		res.status = model.StatusPartialSuccess
	} else {
		res.status = model.StatusSuccess
	}

	return res
}

func ratingLabel(r string) string {
	if r == "" {
		return "unrated"
	}
	return r
}

func sourcesOf(urls ...string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
