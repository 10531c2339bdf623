package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/worker"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve multiple claims from a file in parallel",
	Long: `Batch resolves many claims concurrently:
- Read claims from input file (one per line, # comments allowed)
- Resolve claims in parallel with configurable worker count
- Write all outcomes, in input order, as a JSON array

Example:
  truthlens batch claims.txt
  truthlens batch claims.txt --concurrency 8 --output results.json
  truthlens batch claims.txt --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputFile, "output", "", "write JSON results to this file instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  TruthLens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(cfg, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	if provider := p.EnrichmentProvider(); provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n\n", provider, cfg.LLM.Model)
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Resolving claims with %d workers...\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	// Tally outcomes
	counts := make(map[model.Status]int)
	for _, result := range results {
		counts[result.Outcome.Status]++
		if verbose {
			fmt.Fprintf(os.Stderr, "  %-16s %-10s %s\n", result.Outcome.Status, result.Outcome.Verdict, result.Claim)
		}
	}

	if err := writeResults(cmd, results); err != nil {
		return err
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:            %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:          %d\n", counts[model.StatusSuccess])
	fmt.Fprintf(os.Stderr, "  Partial success:  %d\n", counts[model.StatusPartialSuccess])
	fmt.Fprintf(os.Stderr, "  Not found:        %d\n", counts[model.StatusNotFound])
	fmt.Fprintf(os.Stderr, "  Errors:           %d\n", counts[model.StatusError])
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "  Output:           %s\n", outputFile)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func writeResults(cmd *cobra.Command, results []*worker.ResolveResult) (err error) {
	if outputFile == "" {
		return pipeline.RenderJSON(cmd.OutOrStdout(), results)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()

	return pipeline.RenderJSON(f, results)
}
