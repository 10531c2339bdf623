package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/pipeline"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the source lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached fact-check and Wikipedia lookup",
	Long: `Clear empties the in-memory and on-disk lookup cache
(cache.dir, default ~/.truthlens/cache) so the next check fetches fresh results.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cfg.Cache.Enabled {
			fmt.Fprintln(os.Stderr, "Cache is disabled; nothing to clear")
			return nil
		}

		p, err := pipeline.NewPipeline(cfg, newLogger(cfg))
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}
		if err := p.ClearCache(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "✓ Cleared cache at %s\n", cfg.Cache.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
