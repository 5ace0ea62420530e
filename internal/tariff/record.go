// Package tariff defines the canonical price record produced by every source
// converter, plus the shared price, date, and hour-slot helpers.
package tariff

// PriceType distinguishes per-energy prices from recurring fees.
type PriceType string

const (
	Consumption  PriceType = "consumption"
	Subscription PriceType = "subscription"
)

// Currency tags the unit a price is expressed in. Prices are never converted.
type Currency string

const (
	Euro Currency = "euro"
)

var currencies = map[Currency]bool{
	Euro: true,
}

// KnownCurrency reports whether c is a recognized currency tag.
func KnownCurrency(c Currency) bool {
	return currencies[c]
}

// DayType is the provider-assigned day color of a calendar-tiered contract.
type DayType string

const (
	Blue  DayType = "blue"
	White DayType = "white"
	Red   DayType = "red"
)

// DayTypes lists the calendar tiers in emission order.
var DayTypes = []DayType{Blue, White, Red}

// KnownDayType reports whether d belongs to the calendar tier enumeration.
func KnownDayType(d DayType) bool {
	for _, known := range DayTypes {
		if d == known {
			return true
		}
	}
	return false
}

// PriceRecord is the canonical, dated price entry. Price is fixed-point,
// scaled by PriceScale; subscription prices are always monthly.
type PriceRecord struct {
	Contract  string    `json:"contract" yaml:"contract" validate:"required,contract"`
	PriceType PriceType `json:"price_type" yaml:"price_type" validate:"required,oneof=consumption subscription" jsonschema:"enum=consumption,enum=subscription"`
	Currency  Currency  `json:"currency" yaml:"currency" validate:"required,currency"`
	Price     int64     `json:"price" yaml:"price" validate:"min=0" jsonschema:"minimum=0"`
	StartDate *string   `json:"start_date" yaml:"start_date" validate:"required,datetime=2006-01-02" jsonschema:"format=date"`
	EndDate   *string   `json:"end_date" yaml:"end_date" validate:"omitempty,datetime=2006-01-02" jsonschema:"nullable,format=date"`
	HourSlots *string   `json:"hour_slots" yaml:"hour_slots" jsonschema:"nullable"`
	DayType   *DayType  `json:"day_type" yaml:"day_type" validate:"omitempty,daytype" jsonschema:"nullable,enum=blue,enum=white,enum=red"`
}

// NewConsumption builds a consumption record. slots and day may be nil.
func NewConsumption(contract string, price int64, start, end, slots *string, day *DayType) PriceRecord {
	return PriceRecord{
		Contract:  contract,
		PriceType: Consumption,
		Currency:  Euro,
		Price:     price,
		StartDate: start,
		EndDate:   end,
		HourSlots: slots,
		DayType:   day,
	}
}

// NewSubscription builds a monthly subscription record.
func NewSubscription(contract string, price int64, start, end *string) PriceRecord {
	return PriceRecord{
		Contract:  contract,
		PriceType: Subscription,
		Currency:  Euro,
		Price:     price,
		StartDate: start,
		EndDate:   end,
	}
}

// Period returns the record's (start_date, end_date) pair as a comparable key.
// A nil end date (open-ended) maps to the empty string.
func (r PriceRecord) Period() Period {
	var p Period
	if r.StartDate != nil {
		p.Start = *r.StartDate
	}
	if r.EndDate != nil {
		p.End = *r.EndDate
	}
	return p
}

// Period is a validity range; End is empty when open-ended.
type Period struct {
	Start string
	End   string
}

// String renders the period for diagnostics.
func (p Period) String() string {
	end := p.End
	if end == "" {
		end = "open"
	}
	return p.Start + ".." + end
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
