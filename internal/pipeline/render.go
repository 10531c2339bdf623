package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// RenderJSON writes v as indented JSON
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderText writes a human-readable summary of an outcome
func RenderText(w io.Writer, out *model.ResolutionOutcome) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(&b, "  Claim: %s\n", out.Claim)
	fmt.Fprintf(&b, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "  Verdict:  %s\n", strings.ToUpper(string(out.Verdict)))
	fmt.Fprintf(&b, "  Trust:    %s\n", trustText(out.Trust))
	fmt.Fprintf(&b, "  Status:   %s\n", statusText(out))

	if out.Summary != "" {
		fmt.Fprintf(&b, "\n  %s\n", out.Summary)
	}

	if out.Match != nil {
		fmt.Fprintf(&b, "\n  Best match (similarity %.2f", out.Match.Similarity)
		if out.Match.Opposite {
			fmt.Fprintf(&b, ", opposite")
		}
		fmt.Fprintf(&b, "):\n")
		fmt.Fprintf(&b, "    %q\n", out.Match.Text)
		if out.Match.Rating != "" {
			fmt.Fprintf(&b, "    rated %q by %s\n", out.Match.Rating, orUnknown(out.Match.Publisher))
		}
	}

	if len(out.Sources) > 0 {
		fmt.Fprintf(&b, "\n  Sources:\n")
		for _, src := range out.Sources {
			fmt.Fprintf(&b, "    - %s\n", src)
		}
	}

	switch {
	case out.Enriched:
		fmt.Fprintf(&b, "\n  Heuristic analysis:\n")
		fmt.Fprintf(&b, "    Claim type:   %s\n", orUnknown(string(out.ClaimType)))
		fmt.Fprintf(&b, "    Bias flags:   %s\n", listText(out.BiasFlags))
		fmt.Fprintf(&b, "    Patterns:     %s\n", listText(out.MisinformationPatterns))
		if out.Certainty != nil {
			fmt.Fprintf(&b, "    Certainty:    %.2f\n", *out.Certainty)
		}
	case out.EnrichmentError != "":
		fmt.Fprintf(&b, "\n  Heuristic analysis unavailable: %s\n", out.EnrichmentError)
	}

	fmt.Fprintf(&b, "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func trustText(trust *int) string {
	if trust == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d/100", *trust)
}

func statusText(out *model.ResolutionOutcome) string {
	if out.Status == model.StatusError && out.Error != "" {
		return fmt.Sprintf("%s (%s)", out.Status, out.Error)
	}
	return string(out.Status)
}

func listText(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
