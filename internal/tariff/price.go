package tariff

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// PriceScale is the fixed-point factor applied to every price.
const PriceScale = 10000

var (
	scale        = decimal.NewFromInt(PriceScale)
	monthsInYear = decimal.NewFromInt(12)
)

// ParseDecimal parses a source price, accepting a decimal comma and
// space-grouped thousands ("1 234,56").
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", ".", " ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if s == "" {
		return decimal.Zero, eris.New("tariff: empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "tariff: parse price %q", s)
	}
	return d, nil
}

// ScalePrice converts a source price to its fixed-point representation,
// rounding half away from zero.
func ScalePrice(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.Mul(scale).Round(0).IntPart(), nil
}

// MonthlyFromAnnual converts an annual fee to a scaled monthly price:
// round(annual / 12 * PriceScale).
func MonthlyFromAnnual(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.Mul(scale).DivRound(monthsInYear, 0).IntPart(), nil
}
