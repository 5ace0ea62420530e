package tariff

import (
	"slices"

	"github.com/rotisserie/eris"
)

// Kind is the pricing structure of a contract; it drives the shape rules the
// validator applies to consumption records.
type Kind string

const (
	KindFlat   Kind = "flat"   // one consumption price, no time differentiation
	KindDual   Kind = "dual"   // peak/off-peak placeholder tokens
	KindTiered Kind = "tiered" // day color × peak/off-peak
)

// Contract describes one commercial tariff variant.
type Contract struct {
	Name        string
	Kind        Kind
	Description string

	// SubscriptionOptional marks consumption-only tariffs, which carry no
	// subscription pricing at all.
	SubscriptionOptional bool
}

var contracts = map[string]Contract{}

func init() {
	for _, c := range []Contract{
		{Name: "base", Kind: KindFlat, Description: "Regulated single-rate tariff"},
		{Name: "peak-off-peak", Kind: KindDual, Description: "Regulated peak/off-peak tariff"},
		{Name: "tempo", Kind: KindTiered, Description: "Regulated calendar-tiered tariff (blue/white/red days)"},
		{Name: "green-base", Kind: KindFlat, Description: "Green supplier single-rate offer"},
		{Name: "green-peak-off-peak", Kind: KindDual, Description: "Green supplier peak/off-peak offer"},
		{Name: "market-index", Kind: KindFlat, Description: "Market-indexed offer, consumption only", SubscriptionOptional: true},
	} {
		contracts[c.Name] = c
	}
}

// RegisterContract adds a contract to the known enumeration.
func RegisterContract(c Contract) error {
	if c.Name == "" {
		return eris.New("tariff: contract name is required")
	}
	switch c.Kind {
	case KindFlat, KindDual, KindTiered:
	default:
		return eris.Errorf("tariff: contract %q has unknown kind %q", c.Name, c.Kind)
	}
	if _, ok := contracts[c.Name]; ok {
		return eris.Errorf("tariff: contract %q already registered", c.Name)
	}
	contracts[c.Name] = c
	return nil
}

// LookupContract returns the contract registered under name.
func LookupContract(name string) (Contract, bool) {
	c, ok := contracts[name]
	return c, ok
}

// ContractNames returns all known contract names, sorted.
func ContractNames() []string {
	names := make([]string, 0, len(contracts))
	for name := range contracts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
