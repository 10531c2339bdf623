package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/truthlens/internal/model"
)

// Resolver resolves a single claim
type Resolver interface {
	Resolve(ctx context.Context, claim string) (*model.ResolutionOutcome, error)
}

// ResolveJob represents one claim of a batch
type ResolveJob struct {
	Index    int
	Claim    string
	Resolver Resolver
}

// Execute executes the resolve job
func (j *ResolveJob) Execute(ctx context.Context) Result {
	outcome, err := j.Resolver.Resolve(ctx, j.Claim)
	return &ResolveResult{
		Index:   j.Index,
		Claim:   j.Claim,
		Outcome: outcome,
		Error:   err,
	}
}

// ResolveResult represents the result of a resolve job
type ResolveResult struct {
	Index   int                      `json:"-"`
	Claim   string                   `json:"claim"`
	Outcome *model.ResolutionOutcome `json:"outcome"`
	Error   error                    `json:"-"`
}

// GetError returns the error from the resolve result
func (r *ResolveResult) GetError() error {
	return r.Error
}

// BatchProcessor resolves many claims on a bounded worker pool
type BatchProcessor struct {
	resolver    Resolver
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(resolver Resolver, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// ProcessClaims resolves claims concurrently. Results are in input order;
// claims not reached before ctx ends get a cancelled outcome.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*ResolveResult {
	results := make([]*ResolveResult, len(claims))
	if len(claims) == 0 {
		return results
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		defer pool.Close()
		for i, claim := range claims {
			job := &ResolveJob{Index: i, Claim: claim, Resolver: b.resolver}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		res := r.(*ResolveResult)
		results[res.Index] = res
	}

	for i, res := range results {
		if res == nil {
			results[i] = &ResolveResult{
				Index: i,
				Claim: claims[i],
				Outcome: &model.ResolutionOutcome{
					Status:        model.StatusError,
					Claim:         claims[i],
					VerdictResult: model.VerdictResult{Verdict: model.VerdictUnknown, Sources: []string{}},
					Error:         model.ErrorCodeCancelled,
				},
				Error: ctx.Err(),
			}
		}
	}

	return results
}

// ProcessFile reads claims from a file and resolves them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ResolveResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads claims from a file (one per line).
// Blank lines and # comments are skipped; repeated claims are kept once.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			claims = append(claims, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
