package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/history"
	"github.com/ppiankov/truthlens/internal/pipeline"
)

var (
	historyLimit int
	historyJSON  bool
	historyYes   bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored resolution outcomes",
	Long: `History lists, shows, deletes and clears outcomes stored by
'truthlens check --save' and the HTTP API.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored outcomes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			return listHistory(cmd.OutOrStdout(), cmd.ErrOrStderr(), store, historyLimit, historyJSON)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored outcome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			return clearHistory(cmd.ErrOrStderr(), store, historyYes)
		})
	},
}

// listHistory prints up to limit records and a total line on errW
func listHistory(w, errW io.Writer, store *history.Store, limit int, asJSON bool) error {
	records, err := store.List(limit)
	if err != nil {
		return err
	}
	total, err := store.Count()
	if err != nil {
		return err
	}
	if asJSON {
		return pipeline.RenderJSON(w, records)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tVERDICT\tCLAIM")
	for _, r := range records {
		status, verdict := "-", "-"
		if r.Outcome != nil {
			status, verdict = string(r.Outcome.Status), string(r.Outcome.Verdict)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), status, verdict, r.Claim)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(errW, "Showing %d of %d record(s)\n", len(records), total)
	return nil
}

// clearHistory empties the store. Without confirmed it only reports what would go.
func clearHistory(errW io.Writer, store *history.Store, confirmed bool) error {
	if !confirmed {
		total, err := store.Count()
		if err != nil {
			return err
		}
		return fmt.Errorf("refusing to delete %d record(s) without --yes", total)
	}

	n, err := store.Clear()
	if err != nil {
		return err
	}
	fmt.Fprintf(errW, "✓ Cleared %d record(s)\n", n)
	return nil
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			rec, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if historyJSON || rec.Outcome == nil {
				return pipeline.RenderJSON(cmd.OutOrStdout(), rec)
			}
			return pipeline.RenderText(cmd.OutOrStdout(), rec.Outcome)
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one stored outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Deleted %s\n", args[0])
			return nil
		})
	},
}

func withHistory(cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	return fn(store)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)

	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print JSON")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum records to list (0 for all)")
	historyClearCmd.Flags().BoolVar(&historyYes, "yes", false, "confirm deleting every record")
}
