// Package resolve turns a free-text claim into a single reconciled verdict.
//
// The Engine queries a primary fact-check corpus, falls back to encyclopedic
// context on a miss, and merges best-effort annotations from a heuristic
// classifier. Every call is independent; the engine holds no mutable state.
package resolve

import (
	"context"

	"github.com/ppiankov/truthlens/internal/model"
)

// PrimaryClaimSource searches a corpus of rated claims.
// Transport and auth failures wrap model.ErrSourceUnavailable.
type PrimaryClaimSource interface {
	Search(ctx context.Context, query model.ClaimQuery) ([]model.CandidateClaim, error)
}

// FallbackKnowledgeSource returns reference context for a claim, or nil when
// nothing relevant exists. Errors are absorbed by the engine.
type FallbackKnowledgeSource interface {
	Lookup(ctx context.Context, query model.ClaimQuery) (*model.KnowledgeSnippet, error)
}

// HeuristicClassifier annotates a claim with bias and misinformation signals
type HeuristicClassifier interface {
	Classify(ctx context.Context, text string) (*model.EnrichmentRecord, error)
}
