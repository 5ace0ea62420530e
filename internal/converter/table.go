package converter

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"

	"github.com/sells-group/tariff-cli/internal/source"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

// Column headers shared by the regulated tariff exports.
const (
	colStart = "DATE_DEBUT"
	colEnd   = "DATE_FIN"
	colPower = "P_SOUSCRITE"
	colFixed = "PART_FIXE_TTC"

	colVariable = "PART_VARIABLE_TTC"
	colOffPeak  = "PART_VARIABLE_HC_TTC"
	colPeak     = "PART_VARIABLE_HP_TTC"
)

// row wraps one data record of a table.
type row struct {
	tbl    *source.Table
	record []string
	num    int
}

func (r row) get(col string) string {
	return r.tbl.Get(r.record, col)
}

// complete reports whether every column in cols is non-empty.
func (r row) complete(cols []string) bool {
	for _, col := range cols {
		if r.get(col) == "" {
			return false
		}
	}
	return true
}

func (r row) period() (start, end *string) {
	return tariff.ConvertDate(r.get(colStart)), tariff.ConvertDate(r.get(colEnd))
}

func (r row) price(col string) (int64, error) {
	p, err := tariff.ScalePrice(r.get(col))
	if err != nil {
		return 0, &RowError{Path: r.tbl.Path, Row: r.num, Column: col, Err: err}
	}
	return p, nil
}

// subscription builds the monthly subscription record from the annual fixed part.
func (r row) subscription(contract string) (tariff.PriceRecord, error) {
	p, err := tariff.MonthlyFromAnnual(r.get(colFixed))
	if err != nil {
		return tariff.PriceRecord{}, &RowError{Path: r.tbl.Path, Row: r.num, Column: colFixed, Err: err}
	}
	start, end := r.period()
	return tariff.NewSubscription(contract, p, start, end), nil
}

// rowBuilder emits the records for one complete row, subscription last.
type rowBuilder func(r row) ([]tariff.PriceRecord, error)

// tableSpec describes a tabular source: where it lives and which price columns
// a row needs beyond the common date/power/fixed columns.
type tableSpec struct {
	path   string
	opts   source.TableOptions
	prices []string
}

// required lists the columns whose absence from the header aborts the file.
func (s tableSpec) required() []string {
	return append([]string{colStart, colEnd, colPower, colFixed}, s.prices...)
}

// mandatory lists the fields a row must fill to be kept. DATE_FIN may be
// empty: an open-ended period.
func (s tableSpec) mandatory() []string {
	return slices.DeleteFunc(s.required(), func(c string) bool { return c == colEnd })
}

// convertTable reads the source table, rejects it outright if a required header is
// missing, silently skips incomplete rows, and groups the built records by
// power level.
func convertTable(ctx context.Context, fsys afero.Fs, spec tableSpec, build rowBuilder) (*Result, error) {
	tbl, err := source.ReadTable(fsys, spec.path, spec.opts)
	if err != nil {
		return nil, err
	}
	if err := tbl.Require(spec.required()...); err != nil {
		return nil, err
	}

	mandatory := spec.mandatory()
	res := newResult()
	for i, record := range tbl.Rows {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "converter: context cancelled")
		}

		r := row{tbl: tbl, record: record, num: i + 1}
		if !r.complete(mandatory) {
			res.Skipped++
			continue
		}

		recs, err := build(r)
		if err != nil {
			return nil, err
		}
		res.Levels.Add(r.get(colPower), recs...)
	}
	return res, nil
}
