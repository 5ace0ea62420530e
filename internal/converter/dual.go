package converter

import (
	"context"

	"github.com/spf13/afero"

	"github.com/sells-group/tariff-cli/internal/source"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

// DualRate converts a peak/off-peak table. Consumption records carry the
// placeholder hour-slot tokens; resolving them is left to the consumer.
type DualRate struct {
	Contract string
	Path     string
	Options  source.TableOptions
}

func (c *DualRate) Name() string      { return c.Contract }
func (c *DualRate) Sources() []string { return []string{c.Path} }

func (c *DualRate) Convert(ctx context.Context, fsys afero.Fs) (*Result, error) {
	spec := tableSpec{path: c.Path, opts: c.Options, prices: []string{colOffPeak, colPeak}}
	return convertTable(ctx, fsys, spec, func(r row) ([]tariff.PriceRecord, error) {
		offPeak, err := r.price(colOffPeak)
		if err != nil {
			return nil, err
		}
		peak, err := r.price(colPeak)
		if err != nil {
			return nil, err
		}
		sub, err := r.subscription(c.Contract)
		if err != nil {
			return nil, err
		}
		start, end := r.period()
		return []tariff.PriceRecord{
			tariff.NewConsumption(c.Contract, offPeak, start, end, tariff.Ptr(tariff.OffPeakToken), nil),
			tariff.NewConsumption(c.Contract, peak, start, end, tariff.Ptr(tariff.PeakToken), nil),
			sub,
		}, nil
	})
}
