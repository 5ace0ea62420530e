package converter

import (
	"context"

	"github.com/spf13/afero"

	"github.com/sells-group/tariff-cli/internal/source"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

// FlatRate converts a single-rate table: one consumption price and one
// subscription per row.
type FlatRate struct {
	Contract string
	Path     string
	Options  source.TableOptions
}

func (c *FlatRate) Name() string      { return c.Contract }
func (c *FlatRate) Sources() []string { return []string{c.Path} }

func (c *FlatRate) Convert(ctx context.Context, fsys afero.Fs) (*Result, error) {
	spec := tableSpec{path: c.Path, opts: c.Options, prices: []string{colVariable}}
	return convertTable(ctx, fsys, spec, func(r row) ([]tariff.PriceRecord, error) {
		price, err := r.price(colVariable)
		if err != nil {
			return nil, err
		}
		sub, err := r.subscription(c.Contract)
		if err != nil {
			return nil, err
		}
		start, end := r.period()
		return []tariff.PriceRecord{
			tariff.NewConsumption(c.Contract, price, start, end, nil, nil),
			sub,
		}, nil
	})
}
