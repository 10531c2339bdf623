package model

// Verdict is the discrete outcome of a resolution
type Verdict string

const (
	VerdictTrue       Verdict = "true"
	VerdictFalse      Verdict = "false"
	VerdictSuspicious Verdict = "suspicious"
	VerdictUnknown    Verdict = "unknown"
)

// Status tags how far a resolution got
type Status string

const (
	StatusSuccess        Status = "success"         // Verdict other than unknown
	StatusPartialSuccess Status = "partial_success" // Only partial evidence or context
	StatusNotFound       Status = "not_found"       // Nothing usable anywhere
	StatusError          Status = "error"           // Empty input, primary failure or cancellation
)

// Error codes reported alongside StatusError
const (
	ErrorCodeEmptyInput        = "empty_input"
	ErrorCodeSourceUnavailable = "source_unavailable"
	ErrorCodeCancelled         = "cancelled"
)

// VerdictResult is the reconciled verdict before enrichment is merged
type VerdictResult struct {
	Verdict Verdict  `json:"verdict"`
	Trust   *int     `json:"trust"`   // 0-100, null when no trust can be assigned
	Summary string   `json:"summary"` // Human-readable explanation
	Sources []string `json:"sources"` // Ordered URLs backing the verdict
}

// MatchSummary describes the accepted candidate in the outcome
type MatchSummary struct {
	Text       string  `json:"text"`
	Rating     string  `json:"rating,omitempty"`
	Publisher  string  `json:"publisher,omitempty"`
	URL        string  `json:"url,omitempty"`
	Similarity float64 `json:"similarity"`
	Opposite   bool    `json:"opposite"`
}

// ResolutionOutcome is the final result returned to callers.
// Field names are a stable contract for HTTP and JSON consumers.
type ResolutionOutcome struct {
	Status Status `json:"status"`
	Claim  string `json:"claim,omitempty"`

	VerdictResult

	BiasFlags              []string  `json:"bias_flags,omitempty"`
	MisinformationPatterns []string  `json:"misinformation_patterns,omitempty"`
	ClaimType              ClaimType `json:"claim_type,omitempty"`
	Certainty              *float64  `json:"certainty,omitempty"`

	Match           *MatchSummary `json:"match,omitempty"`
	Enriched        bool          `json:"enriched"`
	EnrichmentError string        `json:"enrichment_error,omitempty"`
	Error           string        `json:"error,omitempty"` // Machine code when Status is error
}

// ApplyEnrichment copies the non-empty enrichment fields into the outcome
func (o *ResolutionOutcome) ApplyEnrichment(rec *EnrichmentRecord) {
	if rec == nil {
		return
	}
	o.Enriched = true
	o.EnrichmentError = ""
	o.BiasFlags = rec.BiasFlags
	o.MisinformationPatterns = rec.MisinformationPatterns
	o.ClaimType = rec.ClaimType
	o.Certainty = rec.Certainty
}

// Trust returns a pointer to v for use in VerdictResult
func Trust(v int) *int {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}
