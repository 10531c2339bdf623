// Package rating maps free-text fact-check rating labels onto verdicts.
package rating

import (
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// Rule is one row of the ordered rating table
type Rule struct {
	Patterns []string
	Verdict  model.Verdict
	Trust    int
}

// Matches reports whether any pattern is a substring of the lower-cased label
func (r Rule) Matches(label string) bool {
	for _, p := range r.Patterns {
		if p != "" && strings.Contains(label, p) {
			return true
		}
	}
	return false
}

// Classifier evaluates rules in order; the first matching rule wins
type Classifier struct {
	rules         []Rule
	fallbackTrust int
}

// NewClassifier builds a classifier from configured rules.
// fallbackTrust is the trust for labels no rule matches (verdict unknown).
func NewClassifier(rules []model.RatingRule, fallbackTrust int) *Classifier {
	c := &Classifier{
		rules:         make([]Rule, 0, len(rules)),
		fallbackTrust: fallbackTrust,
	}

	for _, r := range rules {
		patterns := make([]string, 0, len(r.Patterns))
		for _, p := range r.Patterns {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				patterns = append(patterns, p)
			}
		}
		c.rules = append(c.rules, Rule{
			Patterns: patterns,
			Verdict:  r.Verdict,
			Trust:    r.Trust,
		})
	}

	return c
}

// Classify returns the verdict and trust score for a rating label
func (c *Classifier) Classify(label string) (model.Verdict, int) {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if normalized == "" {
		return model.VerdictUnknown, c.fallbackTrust
	}

	for _, r := range c.rules {
		if r.Matches(normalized) {
			return r.Verdict, r.Trust
		}
	}

	return model.VerdictUnknown, c.fallbackTrust
}
