package converter

import (
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tariff-cli/internal/config"
	"github.com/sells-group/tariff-cli/internal/source"
)

// Registry maps contract type names to their converters. Adding a tariff means
// adding one Register call to NewRegistry.
type Registry struct {
	converters map[string]Converter
	order      []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with the built-in converters, reading
// their sources under cfg.DataDir.
func NewRegistry(cfg config.SourcesConfig) *Registry {
	r := &Registry{
		converters: make(map[string]Converter),
	}
	path := func(rel string) string { return filepath.Join(cfg.DataDir, rel) }
	opts := source.TableOptions{Encoding: cfg.Encoding}

	// Regulated tariffs (tabular exports)
	r.mustRegister(&FlatRate{Contract: "base", Path: path("edf/option_base.csv"), Options: opts})
	r.mustRegister(&DualRate{Contract: "peak-off-peak", Path: path("edf/option_hphc.csv"), Options: opts})
	r.mustRegister(&CalendarTiered{Contract: "tempo", Path: path("edf/option_tempo.csv"), Options: opts})

	// Supplier offers (static catalogs)
	r.mustRegister(&StaticCatalog{
		Contract:         "green-base",
		ConsumptionPath:  path("green/base_consumption.json"),
		SubscriptionPath: path("green/base_subscriptions.json"),
	})
	r.mustRegister(&StaticCatalog{
		Contract:         "green-peak-off-peak",
		ConsumptionPath:  path("green/hphc_consumption.json"),
		SubscriptionPath: path("green/hphc_subscriptions.json"),
	})
	r.mustRegister(&ConsumptionCatalog{
		Contract:        "market-index",
		ConsumptionPath: path("market/index_consumption.json"),
	})

	return r
}

// Register adds a converter. Contract type names must be unique.
func (r *Registry) Register(c Converter) error {
	name := c.Name()
	if name == "" {
		return eris.New("converter: converter has no contract name")
	}
	if _, ok := r.converters[name]; ok {
		return eris.Errorf("converter: duplicate contract type %q", name)
	}
	r.converters[name] = c
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) mustRegister(c Converter) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns a converter by contract type name.
func (r *Registry) Get(name string) (Converter, error) {
	c, ok := r.converters[name]
	if !ok {
		return nil, eris.Errorf("converter: unknown contract type %q", name)
	}
	return c, nil
}

// Select returns the named converters, or all of them when names is empty.
func (r *Registry) Select(names []string) ([]Converter, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	result := make([]Converter, 0, len(names))
	for _, name := range names {
		c, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// All returns all converters in registration order.
func (r *Registry) All() []Converter {
	result := make([]Converter, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.converters[name])
	}
	return result
}

// AllNames returns all registered contract type names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
