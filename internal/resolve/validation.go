package resolve

import (
	"strings"

	"github.com/ppiankov/truthlens/internal/match"
	"github.com/ppiankov/truthlens/internal/model"
)

// EvidenceValidator upgrades fallback context to a verdict using keyword rules
type EvidenceValidator struct {
	rules    []model.ValidationRule
	detector *match.NegationDetector
}

// ValidationHit is a rule that fired for a claim and snippet
type ValidationHit struct {
	Rule    string
	Verdict model.Verdict
	Trust   int
	Negated bool // Claim is negated, so the rule verdict was inverted
}

// NewEvidenceValidator creates a validator with ordered rules
func NewEvidenceValidator(rules []model.ValidationRule, detector *match.NegationDetector) *EvidenceValidator {
	return &EvidenceValidator{rules: rules, detector: detector}
}

// Validate returns the first rule whose claim terms all appear in the claim
// and whose evidence terms all appear in the snippet title or text. Terms are
// matched as lower-case substrings so stems like "spher" work.
func (v *EvidenceValidator) Validate(claim string, snip *model.KnowledgeSnippet) *ValidationHit {
	if snip == nil {
		return nil
	}

	claimText := strings.ToLower(claim)
	evidence := strings.ToLower(snip.Title + " " + snip.Snippet)

	for _, r := range v.rules {
		if !containsAll(claimText, r.ClaimTerms) || !containsAll(evidence, r.EvidenceTerms) {
			continue
		}

		hit := &ValidationHit{Rule: r.Name, Verdict: r.Verdict, Trust: r.Trust}
		if v.detector != nil && v.detector.HasNegation(claim) {
			hit.Negated = true
			switch r.Verdict {
			case model.VerdictTrue:
				hit.Verdict, hit.Trust = model.VerdictFalse, 100-r.Trust
			case model.VerdictFalse:
				hit.Verdict, hit.Trust = model.VerdictTrue, 100-r.Trust
			}
		}
		return hit
	}

	return nil
}

func containsAll(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || !strings.Contains(text, t) {
			return false
		}
	}
	return true
}
