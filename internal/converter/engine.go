package converter

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sells-group/tariff-cli/internal/tariff"
)

// Summary describes one converter's contribution to a run.
type Summary struct {
	Contract    string        `json:"contract"`
	PowerLevels int           `json:"power_levels"`
	Records     int           `json:"records"`
	Skipped     int           `json:"skipped"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Aggregate invokes each converter exactly once, in the given order, and merges
// their outputs keyed by contract type. The first converter error aborts the
// whole run and no partial aggregate is returned.
func Aggregate(ctx context.Context, fsys afero.Fs, converters []Converter) (tariff.Aggregate, []Summary, error) {
	log := zap.L().With(zap.String("component", "converter.aggregate"))

	seen := make(map[string]bool, len(converters))
	for _, c := range converters {
		if seen[c.Name()] {
			return nil, nil, eris.Errorf("converter: duplicate contract type %q", c.Name())
		}
		seen[c.Name()] = true
	}

	agg := make(tariff.Aggregate, len(converters))
	summaries := make([]Summary, 0, len(converters))

	for _, c := range converters {
		select {
		case <-ctx.Done():
			return nil, nil, eris.Wrap(ctx.Err(), "converter: context cancelled")
		default:
		}

		start := time.Now()
		res, err := c.Convert(ctx, fsys)
		elapsed := time.Since(start)
		if err != nil {
			log.Error("converter failed", zap.String("contract", c.Name()), zap.Error(err))
			return nil, nil, eris.Wrapf(err, "converter: %s", c.Name())
		}

		agg[c.Name()] = res.Levels
		s := Summary{
			Contract:    c.Name(),
			PowerLevels: len(res.Levels),
			Records:     res.Levels.RecordCount(),
			Skipped:     res.Skipped,
			Elapsed:     elapsed,
		}
		summaries = append(summaries, s)

		log.Info("converted",
			zap.String("contract", s.Contract),
			zap.Int("power_levels", s.PowerLevels),
			zap.Int("records", s.Records),
			zap.Duration("elapsed", elapsed),
		)
		log.Debug("incomplete rows dropped", zap.String("contract", s.Contract), zap.Int("skipped", s.Skipped))
	}

	log.Info("aggregate complete",
		zap.Int("contracts", len(agg)),
		zap.Int("records", agg.RecordCount()),
	)
	return agg, summaries, nil
}

// Engine runs a selection of registered converters against a filesystem.
type Engine struct {
	fs  afero.Fs
	reg *Registry
}

// RunOpts configures which converters run.
type RunOpts struct {
	Contracts []string // restrict to specific contract types; empty means all
}

// NewEngine creates a new conversion engine.
func NewEngine(fsys afero.Fs, reg *Registry) *Engine {
	return &Engine{fs: fsys, reg: reg}
}

// Run selects converters per opts and aggregates their output.
func (e *Engine) Run(ctx context.Context, opts RunOpts) (tariff.Aggregate, []Summary, error) {
	converters, err := e.reg.Select(opts.Contracts)
	if err != nil {
		return nil, nil, err
	}
	if len(converters) == 0 {
		return nil, nil, eris.New("converter: no converters selected")
	}
	return Aggregate(ctx, e.fs, converters)
}
