package converter

import (
	"context"

	"github.com/mohae/deepcopy"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"

	"github.com/sells-group/tariff-cli/internal/source"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

// RegulatedPowerLevels are the standard subscribed power ratings, in kVA. It is
// the set of regulated ratings between 3 and 36, not every integer in that range.
var RegulatedPowerLevels = []string{"3", "6", "9", "12", "15", "18", "24", "30", "36"}

// StaticCatalog combines a shared consumption price list with a per-power-level
// subscription table. Every power level gets its own copy of the consumption
// entries.
type StaticCatalog struct {
	Contract         string
	ConsumptionPath  string
	SubscriptionPath string
}

func (c *StaticCatalog) Name() string { return c.Contract }
func (c *StaticCatalog) Sources() []string {
	return []string{c.ConsumptionPath, c.SubscriptionPath}
}

func (c *StaticCatalog) Convert(ctx context.Context, fsys afero.Fs) (*Result, error) {
	consumption, err := source.DecodeJSON[[]tariff.PriceRecord](fsys, c.ConsumptionPath)
	if err != nil {
		return nil, eris.Wrapf(err, "converter: %s consumption catalog", c.Contract)
	}
	subscriptions, err := source.DecodeJSON[map[string][]tariff.PriceRecord](fsys, c.SubscriptionPath)
	if err != nil {
		return nil, eris.Wrapf(err, "converter: %s subscription catalog", c.Contract)
	}

	res := newResult()
	for level, subs := range subscriptions {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "converter: context cancelled")
		}
		recs, err := copyRecords(consumption)
		if err != nil {
			return nil, eris.Wrapf(err, "converter: %s power level %s", c.Contract, level)
		}
		res.Levels.Add(level, append(recs, subs...)...)
	}
	return res, nil
}

// ConsumptionCatalog emits the same consumption price list for each of a fixed
// set of power levels. The tariff has no subscription pricing.
type ConsumptionCatalog struct {
	Contract        string
	ConsumptionPath string

	// Levels defaults to RegulatedPowerLevels.
	Levels []string
}

func (c *ConsumptionCatalog) Name() string      { return c.Contract }
func (c *ConsumptionCatalog) Sources() []string { return []string{c.ConsumptionPath} }

func (c *ConsumptionCatalog) Convert(ctx context.Context, fsys afero.Fs) (*Result, error) {
	consumption, err := source.DecodeJSON[[]tariff.PriceRecord](fsys, c.ConsumptionPath)
	if err != nil {
		return nil, eris.Wrapf(err, "converter: %s consumption catalog", c.Contract)
	}

	levels := c.Levels
	if len(levels) == 0 {
		levels = RegulatedPowerLevels
	}

	res := newResult()
	for _, level := range levels {
		recs, err := copyRecords(consumption)
		if err != nil {
			return nil, eris.Wrapf(err, "converter: %s power level %s", c.Contract, level)
		}
		res.Levels.Add(level, recs...)
	}
	return res, nil
}

// copyRecords deep-copies recs, pointer fields included, so no two power
// levels share a record or any of its dates.
func copyRecords(recs []tariff.PriceRecord) ([]tariff.PriceRecord, error) {
	if recs == nil {
		return []tariff.PriceRecord{}, nil
	}
	copied, ok := deepcopy.Copy(recs).([]tariff.PriceRecord)
	if !ok {
		return nil, eris.New("converter: deep copy returned unexpected type")
	}
	return copied, nil
}
