package rating

import (
	"testing"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestClassifier_DefaultRules(t *testing.T) {
	c := NewClassifier(model.DefaultRatingRules(), 50)

	tests := []struct {
		label   string
		verdict model.Verdict
		trust   int
	}{
		{"PANTS ON FIRE", model.VerdictFalse, 5},
		{"Pants on Fire!", model.VerdictFalse, 5},
		{"False", model.VerdictFalse, 20},
		{"Incorrect", model.VerdictFalse, 20},
		{"Inaccurate", model.VerdictFalse, 20},
		{"Debunked", model.VerdictFalse, 20},
		{"Mostly False", model.VerdictFalse, 30},
		{"Misleading", model.VerdictUnknown, 45},
		{"Half True", model.VerdictUnknown, 45},
		{"Partly false", model.VerdictUnknown, 45},
		{"Mixture", model.VerdictUnknown, 45},
		{"Unproven", model.VerdictSuspicious, 35},
		{"Mostly True", model.VerdictTrue, 70},
		{"True", model.VerdictTrue, 85},
		{"Correct", model.VerdictTrue, 85},
		{"Accurate", model.VerdictTrue, 85},
		{"Four Pinocchios", model.VerdictUnknown, 50},
		{"", model.VerdictUnknown, 50},
		{"   ", model.VerdictUnknown, 50},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			verdict, trust := c.Classify(tt.label)
			if verdict != tt.verdict || trust != tt.trust {
				t.Errorf("Classify(%q) = (%s, %d), want (%s, %d)", tt.label, verdict, trust, tt.verdict, tt.trust)
			}
		})
	}
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	// Deliberately generic row first: "mostly false" now hits "false"
	rules := []model.RatingRule{
		{Patterns: []string{"false"}, Verdict: model.VerdictFalse, Trust: 20},
		{Patterns: []string{"mostly false"}, Verdict: model.VerdictFalse, Trust: 30},
	}
	c := NewClassifier(rules, 50)

	if _, trust := c.Classify("Mostly False"); trust != 20 {
		t.Errorf("expected first row to win with trust 20, got %d", trust)
	}
}

func TestClassifier_CustomFallbackTrust(t *testing.T) {
	c := NewClassifier(nil, 42)

	verdict, trust := c.Classify("True")
	if verdict != model.VerdictUnknown || trust != 42 {
		t.Errorf("expected (unknown, 42) with no rules, got (%s, %d)", verdict, trust)
	}
}

func TestClassifier_NormalizesPatterns(t *testing.T) {
	rules := []model.RatingRule{
		{Patterns: []string{"  Four Pinocchios ", ""}, Verdict: model.VerdictFalse, Trust: 10},
	}
	c := NewClassifier(rules, 50)

	verdict, trust := c.Classify("four pinocchios")
	if verdict != model.VerdictFalse || trust != 10 {
		t.Errorf("expected configured pattern to match case-insensitively, got (%s, %d)", verdict, trust)
	}
}
