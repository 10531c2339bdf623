package match

import (
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// NegationDetector decides whether a candidate claim negates the input claim.
//
// It is lexical only: antonym phrases first, then a negation-token parity check.
// Double negation, sarcasm, scope ("not only") and paraphrased opposites are
// not understood.
type NegationDetector struct {
	pairs  []phrasePair
	tokens map[string]bool
}

type phrasePair struct {
	positive []string
	negative []string
}

// NewNegationDetector compiles the configured tables. Pair order is preserved.
func NewNegationDetector(cfg model.NegationConfig) *NegationDetector {
	d := &NegationDetector{
		pairs:  make([]phrasePair, 0, len(cfg.AntonymPairs)),
		tokens: make(map[string]bool, len(cfg.Tokens)),
	}

	for _, p := range cfg.AntonymPairs {
		pos, neg := tokenize(p.Positive), tokenize(p.Negative)
		if len(pos) == 0 || len(neg) == 0 {
			continue
		}
		d.pairs = append(d.pairs, phrasePair{positive: pos, negative: neg})
	}

	for _, t := range cfg.Tokens {
		t = normalize(t)
		if t != "" {
			d.tokens[t] = true
		}
	}

	return d
}

// IsOpposite reports whether candidate states the opposite of input
func (d *NegationDetector) IsOpposite(input, candidate string) bool {
	in := tokenize(input)
	cand := tokenize(candidate)

	// 1. Curated antonym phrases
	for _, p := range d.pairs {
		if p.holdsPositive(in) && containsPhrase(cand, p.negative) {
			return true
		}
		if containsPhrase(in, p.negative) && p.holdsPositive(cand) {
			return true
		}
	}

	// 2. Negation token parity
	return d.hasNegation(in) != d.hasNegation(cand)
}

// holdsPositive reports whether words state the positive phrase. A positive
// phrase nested in the paired negative ("cause" in "do not cause") does not count.
func (p phrasePair) holdsPositive(words []string) bool {
	return containsPhrase(words, p.positive) && !containsPhrase(words, p.negative)
}

// HasNegation reports whether text contains a negation token as a whole word
func (d *NegationDetector) HasNegation(text string) bool {
	return d.hasNegation(tokenize(text))
}

func (d *NegationDetector) hasNegation(words []string) bool {
	for _, w := range words {
		if d.tokens[w] {
			return true
		}
		// "n't" contractions not listed explicitly still negate
		if strings.HasSuffix(w, "n't") {
			return true
		}
	}
	return false
}

// containsPhrase reports whether phrase occurs in words as a contiguous run
func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}
