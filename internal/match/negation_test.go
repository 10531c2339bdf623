package match

import (
	"testing"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestNegationDetector_IsOpposite(t *testing.T) {
	d := NewNegationDetector(model.DefaultNegationConfig())

	tests := []struct {
		name      string
		input     string
		candidate string
		want      bool
	}{
		{"antonym phrase", "X causes Y", "X does not cause Y", true},
		{"antonym phrase reversed", "X does not cause Y", "X causes Y", true},
		{"identical claims", "X is safe", "X is safe", false},
		{"prefix antonym", "X is safe", "X is unsafe", true},
		{"prefix antonym reversed", "X is unsafe", "X is safe", true},
		{"both negated", "X is not safe", "X is not safe", false},
		{"token parity", "The vaccine works", "The vaccine never works", true},
		{"contraction", "Vaccines don't cause autism", "Vaccines cause autism", true},
		{"curly apostrophe", "It doesn’t work", "It works", true},
		{"no negation either side", "Water boils at 100 degrees", "Water boils at 90 degrees", false},
		{"substring is not a token", "A notable event happened", "A notable event happened", false},
		{"true that / false that", "It is true that cats purr", "It is false that cats purr", true},
		{"case insensitive", "X CAUSES Y", "x does not cause y", true},
		{"identical negated phrase", "Vaccines do not cause autism", "Vaccines do not cause autism", false},
		{"identical contraction phrase", "Vaccines don't cause autism", "Vaccines don't cause autism", false},
		{"nested positive reversed", "Vaccines cause autism", "Vaccines do not cause autism", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.IsOpposite(tt.input, tt.candidate); got != tt.want {
				t.Errorf("IsOpposite(%q, %q) = %v, want %v", tt.input, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestNegationDetector_IdenticalClaimsNeverOpposite(t *testing.T) {
	cfg := model.DefaultNegationConfig()
	d := NewNegationDetector(cfg)

	for _, p := range cfg.AntonymPairs {
		for _, phrase := range []string{p.Positive, p.Negative} {
			s := "The policy " + phrase + " the outcome"
			if d.IsOpposite(s, s) {
				t.Errorf("IsOpposite(%q, same) = true, want false", s)
			}
		}
	}
}

func TestNegationDetector_CustomTables(t *testing.T) {
	d := NewNegationDetector(model.NegationConfig{
		AntonymPairs: []model.AntonymPair{{Positive: "hot", Negative: "cold"}},
		Tokens:       []string{"nope"},
	})

	if !d.IsOpposite("the soup is hot", "the soup is cold") {
		t.Error("expected configured antonym pair to match")
	}
	if !d.IsOpposite("nope it works", "it works") {
		t.Error("expected configured negation token to match")
	}
	// "not" is not in the configured token list
	if d.IsOpposite("it is not hot", "it is hot") {
		t.Error("expected unconfigured token to be ignored")
	}
	// n't contractions negate regardless of the list
	if !d.IsOpposite("it isn't hot", "it is hot") {
		t.Error("expected contraction to negate")
	}
}

func TestNegationDetector_SkipsEmptyPairs(t *testing.T) {
	d := NewNegationDetector(model.NegationConfig{
		AntonymPairs: []model.AntonymPair{{Positive: "", Negative: "anything"}},
	})
	if len(d.pairs) != 0 {
		t.Errorf("expected empty pair to be dropped, got %d pairs", len(d.pairs))
	}
}

func TestNegationDetector_HasNegation(t *testing.T) {
	d := NewNegationDetector(model.DefaultNegationConfig())

	if !d.HasNegation("The Earth is not flat") {
		t.Error("expected negation in 'is not flat'")
	}
	if d.HasNegation("The Earth is flat") {
		t.Error("expected no negation in 'is flat'")
	}
}
