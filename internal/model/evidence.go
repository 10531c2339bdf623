package model

// KnowledgeSnippet is the reply of the encyclopedic fallback source
type KnowledgeSnippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// ClaimType categorizes the nature of the claim as judged by the heuristic classifier
type ClaimType string

const (
	ClaimTypeFactual    ClaimType = "factual"    // Checkable statement of fact
	ClaimTypeOpinion    ClaimType = "opinion"    // Value judgement
	ClaimTypePrediction ClaimType = "prediction" // Statement about the future
	ClaimTypeSatire     ClaimType = "satire"     // Humor or parody
	ClaimTypeMixed      ClaimType = "mixed"      // Fact wrapped in opinion
	ClaimTypeOther      ClaimType = "other"
)

// ParseClaimType maps a free-form label onto a known ClaimType
func ParseClaimType(s string) ClaimType {
	switch ClaimType(s) {
	case ClaimTypeFactual, ClaimTypeOpinion, ClaimTypePrediction, ClaimTypeSatire, ClaimTypeMixed:
		return ClaimType(s)
	default:
		return ClaimTypeOther
	}
}

// EnrichmentRecord holds best-effort annotations from the heuristic classifier.
// It never influences the rating-based verdict.
type EnrichmentRecord struct {
	BiasFlags              []string  `json:"bias_flags,omitempty"`
	MisinformationPatterns []string  `json:"misinformation_patterns,omitempty"`
	ClaimType              ClaimType `json:"claim_type,omitempty"`
	Certainty              *float64  `json:"certainty,omitempty"` // Model confidence in [0,1]
}
