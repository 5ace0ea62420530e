package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tariff-cli/internal/config"
	"github.com/sells-group/tariff-cli/internal/converter"
	"github.com/sells-group/tariff-cli/internal/output"
	"github.com/sells-group/tariff-cli/internal/runlog"
	"github.com/sells-group/tariff-cli/internal/tariff"
	"github.com/sells-group/tariff-cli/internal/validate"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert raw tariff sources into the canonical artifact",
	Long: `Runs every registered converter over the configured data directory,
merges the results by contract type, validates them and writes the artifact.

Any converter or validation failure aborts the run and leaves the previous
artifact untouched. Use --contracts to restrict the run to some contract types
and --dry-run to validate without writing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseConvertOpts(cmd, cfg.Output)
		if err != nil {
			return err
		}
		return runConvert(cmd.Context(), afero.NewOsFs(), cfg, opts, os.Stdout)
	},
}

type convertOpts struct {
	Output    string
	Format    output.Format
	DryRun    bool
	Contracts []string
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "artifact path (default from output.path)")
	convertCmd.Flags().String("format", "", "artifact format: json or yaml (default from output.format, or the --output extension)")
	convertCmd.Flags().Bool("dry-run", false, "convert and validate without writing the artifact")
	convertCmd.Flags().StringSlice("contracts", nil, "comma-separated contract types to convert (default all)")
	rootCmd.AddCommand(convertCmd)
}

// parseConvertOpts resolves flags against configured defaults. An explicit
// --output without --format takes its format from the file extension.
func parseConvertOpts(cmd *cobra.Command, oc config.OutputConfig) (convertOpts, error) {
	path, _ := cmd.Flags().GetString("output")
	formatFlag, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	contracts, _ := cmd.Flags().GetStringSlice("contracts")

	opts := convertOpts{Output: oc.Path, DryRun: dryRun, Contracts: contracts}
	if path != "" {
		opts.Output = path
	}

	switch {
	case formatFlag != "":
		f, err := output.ParseFormat(formatFlag)
		if err != nil {
			return convertOpts{}, err
		}
		opts.Format = f
	case path != "":
		opts.Format = output.FormatForPath(path)
	default:
		f, err := output.ParseFormat(oc.Format)
		if err != nil {
			return convertOpts{}, err
		}
		opts.Format = f
	}
	return opts, nil
}

func runConvert(ctx context.Context, fsys afero.Fs, c *config.Config, opts convertOpts, out io.Writer) error {
	log := zap.L().With(zap.String("command", "convert"))

	var history *runlog.Log
	runID := ""
	if c.History.Enabled && !opts.DryRun {
		h, err := runlog.Open(c.History.Path)
		if err != nil {
			return err
		}
		defer h.Close() //nolint:errcheck
		if err := h.Migrate(ctx); err != nil {
			return err
		}
		if runID, err = h.Start(ctx); err != nil {
			return err
		}
		history = h
	}

	start := time.Now()
	agg, summaries, err := convertAndValidate(ctx, fsys, c, opts)
	if err == nil && !opts.DryRun {
		err = output.NewWriter(fsys, opts.Format, c.Output.Indent).Write(opts.Output, agg)
	}

	if history != nil {
		if err != nil {
			if ferr := history.Fail(ctx, runID, err); ferr != nil {
				log.Warn("failed to record run failure", zap.Error(ferr))
			}
		} else if cerr := history.Complete(ctx, runID, agg.Contracts(), agg.RecordCount()); cerr != nil {
			log.Warn("failed to record run completion", zap.Error(cerr))
		}
	}
	if err != nil {
		return err
	}

	formatSummaries(out, summaries)
	if opts.DryRun {
		_, _ = fmt.Fprintf(out, "\nvalid: %d contracts, %d records (dry run, nothing written)\n", len(agg), agg.RecordCount())
	} else {
		_, _ = fmt.Fprintf(out, "\nwrote %s: %d contracts, %d records\n", opts.Output, len(agg), agg.RecordCount())
	}
	log.Info("convert complete",
		zap.String("output", opts.Output),
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func convertAndValidate(ctx context.Context, fsys afero.Fs, c *config.Config, opts convertOpts) (tariff.Aggregate, []converter.Summary, error) {
	engine := converter.NewEngine(fsys, converter.NewRegistry(c.Sources))
	agg, summaries, err := engine.Run(ctx, converter.RunOpts{Contracts: opts.Contracts})
	if err != nil {
		return nil, nil, eris.Wrap(err, "convert")
	}
	if err := validate.New().Validate(agg); err != nil {
		return nil, nil, eris.Wrap(err, "convert")
	}
	return agg, summaries, nil
}

// formatSummaries writes a tabular per-contract summary to w.
func formatSummaries(out io.Writer, summaries []converter.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CONTRACT\tPOWER LEVELS\tRECORDS\tSKIPPED\tELAPSED")
	_, _ = fmt.Fprintln(w, "--------\t------------\t-------\t-------\t-------")
	for _, s := range summaries {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			s.Contract, s.PowerLevels, s.Records, s.Skipped, s.Elapsed.Round(time.Millisecond))
	}
	_ = w.Flush()
}
