package model

import "strings"

// ClaimQuery is the normalized claim submitted for resolution
type ClaimQuery struct {
	text string
}

// NewClaimQuery trims and collapses whitespace. Blank input returns ErrEmptyInput.
func NewClaimQuery(raw string) (ClaimQuery, error) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return ClaimQuery{}, ErrEmptyInput
	}
	return ClaimQuery{text: text}, nil
}

// Text returns the normalized claim text
func (q ClaimQuery) Text() string {
	return q.text
}

// CandidateClaim is a previously fact-checked claim returned by a source
type CandidateClaim struct {
	Text          string `json:"text"`                // The claim as reviewed by the publisher
	Rating        string `json:"rating,omitempty"`    // Free-text rating label (e.g., "Mostly False")
	SourceURL     string `json:"url,omitempty"`       // Review article
	PublisherName string `json:"publisher,omitempty"` // Fact-checking organization
}

// MatchResult pairs the best candidate with its similarity to the input
type MatchResult struct {
	Candidate  CandidateClaim `json:"candidate"`
	Similarity float64        `json:"similarity"` // Max similarity over all candidates, in [0,1]
	IsOpposite bool           `json:"opposite"`   // Candidate negates the input claim
}
