package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tariff-cli/internal/runlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent convert runs",
	Long:  "Lists runs recorded in the history database (history.path). Runs are only recorded when history.enabled is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runHistory(cmd.Context(), cfg.History.Path, limit, os.Stdout)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context, path string, limit int, out io.Writer) error {
	h, err := runlog.Open(path)
	if err != nil {
		return err
	}
	defer h.Close() //nolint:errcheck
	if err := h.Migrate(ctx); err != nil {
		return err
	}

	entries, err := h.Recent(ctx, limit)
	if err != nil {
		return eris.Wrap(err, "history")
	}
	if len(entries) == 0 {
		zap.L().Info("no runs recorded, enable history.enabled and run 'convert'")
		return nil
	}
	formatHistory(out, entries)
	return nil
}

// formatHistory writes a tabular representation of run entries to w.
func formatHistory(out io.Writer, entries []runlog.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tDURATION\tRECORDS\tCONTRACTS\tERROR")
	_, _ = fmt.Fprintln(w, "--\t------\t-------\t--------\t-------\t---------\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Millisecond).String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateID(e.ID),
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.Records,
			strings.Join(e.Contracts, ","),
			truncate(e.Error, 60),
		)
	}
	_ = w.Flush()
}

// truncateID shortens a run ID to its first eight characters.
func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
