package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/history"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
)

var (
	checkJSON    bool
	checkTimeout time.Duration
	checkSave    bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Resolve a single claim to a verdict",
	Long: `Check resolves one claim:
- Search published fact-checks and pick the closest matching claim
- Detect when the input negates the matched claim
- Map the publisher rating to a verdict and trust score
- Fall back to Wikipedia context when no fact-check matches
- Optionally annotate the claim with an LLM heuristic classifier

Example:
  truthlens check "Vaccines cause autism"
  truthlens check "The Earth orbits the Sun once a year" --json
  truthlens check "5G spreads viruses" --llm-provider openai`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the outcome as JSON")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")
	checkCmd.Flags().BoolVar(&checkSave, "save", false, "store the outcome in history")
}

func runCheck(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", claim)
		fmt.Fprintf(os.Stderr, "Enrichment: %s\n", orDisabled(p.EnrichmentProvider()))
		if err := p.CheckEnrichment(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	outcome, err := p.Resolve(ctx, claim)
	if errors.Is(err, model.ErrEmptyInput) {
		return fmt.Errorf("claim is empty")
	}

	if checkSave {
		if err := saveToHistory(cfg, outcome); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if checkJSON {
		return pipeline.RenderJSON(cmd.OutOrStdout(), outcome)
	}
	return pipeline.RenderText(cmd.OutOrStdout(), outcome)
}

// saveToHistory stores outcome unless the resolution was cancelled
func saveToHistory(cfg *model.Config, outcome *model.ResolutionOutcome) error {
	if outcome.Error == model.ErrorCodeCancelled {
		if verbose {
			fmt.Fprintln(os.Stderr, "Skipped history: resolution was cancelled")
		}
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	rec, err := store.Save(outcome.Claim, outcome)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Saved to history: %s\n", rec.ID)
	}
	return nil
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}
