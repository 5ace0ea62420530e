package tariff

import (
	"cmp"
	"slices"
	"strconv"
)

// PowerLevels maps a subscribed power level (kVA, as a string) to its records.
// It is the output shape every converter produces.
type PowerLevels map[string][]PriceRecord

// Add appends records under level.
func (p PowerLevels) Add(level string, recs ...PriceRecord) {
	p[level] = append(p[level], recs...)
}

// Levels returns the power levels in numeric order; non-numeric labels sort
// after numeric ones.
func (p PowerLevels) Levels() []string {
	levels := make([]string, 0, len(p))
	for level := range p {
		levels = append(levels, level)
	}
	SortLevels(levels)
	return levels
}

// RecordCount returns the total number of records across all levels.
func (p PowerLevels) RecordCount() int {
	n := 0
	for _, recs := range p {
		n += len(recs)
	}
	return n
}

// Aggregate is the terminal artifact: contract type → power level → records.
type Aggregate map[string]PowerLevels

// Contracts returns the contract type names, sorted.
func (a Aggregate) Contracts() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RecordCount returns the total number of records in the aggregate.
func (a Aggregate) RecordCount() int {
	n := 0
	for _, levels := range a {
		n += levels.RecordCount()
	}
	return n
}

// SortLevels sorts power-level labels numerically where possible.
func SortLevels(levels []string) {
	slices.SortFunc(levels, func(a, b string) int {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		switch {
		case aerr == nil && berr == nil:
			return cmp.Compare(ai, bi)
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		default:
			return cmp.Compare(a, b)
		}
	})
}
