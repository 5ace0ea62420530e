package converter

import (
	"context"

	"github.com/spf13/afero"

	"github.com/sells-group/tariff-cli/internal/source"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

// tierColumns maps each day color to its (off-peak, peak) price columns.
var tierColumns = map[tariff.DayType][2]string{
	tariff.Blue:  {"PART_VARIABLE_HCBleu_TTC", "PART_VARIABLE_HPBleu_TTC"},
	tariff.White: {"PART_VARIABLE_HCBlanc_TTC", "PART_VARIABLE_HPBlanc_TTC"},
	tariff.Red:   {"PART_VARIABLE_HCRouge_TTC", "PART_VARIABLE_HPRouge_TTC"},
}

func tierPriceColumns() []string {
	cols := make([]string, 0, 2*len(tariff.DayTypes))
	for _, day := range tariff.DayTypes {
		cols = append(cols, tierColumns[day][0], tierColumns[day][1])
	}
	return cols
}

// CalendarTiered converts a day-color table: six consumption prices (three
// tiers × off-peak/peak) and one subscription per row. A row missing any of
// the seven prices is dropped whole.
type CalendarTiered struct {
	Contract string
	Path     string
	Options  source.TableOptions
}

func (c *CalendarTiered) Name() string      { return c.Contract }
func (c *CalendarTiered) Sources() []string { return []string{c.Path} }

func (c *CalendarTiered) Convert(ctx context.Context, fsys afero.Fs) (*Result, error) {
	spec := tableSpec{path: c.Path, opts: c.Options, prices: tierPriceColumns()}
	return convertTable(ctx, fsys, spec, func(r row) ([]tariff.PriceRecord, error) {
		start, end := r.period()
		recs := make([]tariff.PriceRecord, 0, 2*len(tariff.DayTypes)+1)
		for _, day := range tariff.DayTypes {
			offPeak, err := r.price(tierColumns[day][0])
			if err != nil {
				return nil, err
			}
			peak, err := r.price(tierColumns[day][1])
			if err != nil {
				return nil, err
			}
			recs = append(recs,
				tariff.NewConsumption(c.Contract, offPeak, start, end, tariff.Ptr(tariff.OffPeakSlots), tariff.Ptr(day)),
				tariff.NewConsumption(c.Contract, peak, start, end, tariff.Ptr(tariff.PeakSlots), tariff.Ptr(day)),
			)
		}
		sub, err := r.subscription(c.Contract)
		if err != nil {
			return nil, err
		}
		return append(recs, sub), nil
	})
}
