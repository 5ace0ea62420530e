// Package validate gates the aggregate output: every record must be well
// formed, every power level must be consistent, and every contract's records
// must match its pricing structure. The first violation fails the run.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sells-group/tariff-cli/internal/tariff"
)

// Rule names carried by a Violation.
const (
	RuleUnknownContract  = "unknown_contract"
	RuleEmptyPowerLevel  = "empty_power_level"
	RuleField            = "field"
	RuleSubscriptionForm = "subscription_form"
	RuleNoSubscription   = "no_subscription"
	RuleCoverage         = "coverage_parity"
	RuleShape            = "contract_shape"
	RuleContractMismatch = "contract_mismatch"
)

// Violation pinpoints the first failed rule. Index is the record position in
// the power level, or -1 when the rule concerns the level or contract as a whole.
type Violation struct {
	Contract   string
	PowerLevel string
	Index      int
	Rule       string
	Message    string
}

func (v *Violation) Error() string {
	loc := v.Contract
	if v.PowerLevel != "" {
		loc += " power level " + v.PowerLevel
	}
	if v.Index >= 0 {
		loc += fmt.Sprintf(" record %d", v.Index)
	}
	return fmt.Sprintf("validate: %s: %s: %s", loc, v.Rule, v.Message)
}

// Validator checks aggregate outputs.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the tariff enumerations registered as struct
// tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("contract", func(fl validator.FieldLevel) bool {
		_, ok := tariff.LookupContract(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return tariff.KnownCurrency(tariff.Currency(fl.Field().String()))
	})
	_ = v.RegisterValidation("daytype", func(fl validator.FieldLevel) bool {
		return tariff.KnownDayType(tariff.DayType(fl.Field().String()))
	})
	return &Validator{validate: v}
}

// Validate walks contracts and power levels in sorted order and returns the
// first *Violation found, or nil.
func (v *Validator) Validate(agg tariff.Aggregate) error {
	for _, name := range agg.Contracts() {
		contract, ok := tariff.LookupContract(name)
		if !ok {
			return &Violation{Contract: name, Index: -1, Rule: RuleUnknownContract,
				Message: fmt.Sprintf("contract type %q is not in the known enumeration", name)}
		}
		levels := agg[name]
		for _, level := range levels.Levels() {
			if err := v.validateLevel(contract, level, levels[level]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) validateLevel(contract tariff.Contract, level string, recs []tariff.PriceRecord) error {
	fail := func(index int, rule, format string, args ...any) error {
		return &Violation{
			Contract:   contract.Name,
			PowerLevel: level,
			Index:      index,
			Rule:       rule,
			Message:    fmt.Sprintf(format, args...),
		}
	}

	if len(recs) == 0 {
		return fail(-1, RuleEmptyPowerLevel, "power level has no records")
	}

	subscriptions := make(map[tariff.Period]bool)
	for i, rec := range recs {
		if err := v.validate.Struct(rec); err != nil {
			return fail(i, RuleField, "%s", describeFieldError(err))
		}
		if rec.Contract != contract.Name {
			return fail(i, RuleContractMismatch, "record contract %q filed under %q", rec.Contract, contract.Name)
		}

		switch rec.PriceType {
		case tariff.Subscription:
			if msg := checkSubscription(rec); msg != "" {
				return fail(i, RuleSubscriptionForm, "%s", msg)
			}
			subscriptions[rec.Period()] = true
		case tariff.Consumption:
			if msg := checkShape(contract.Kind, rec); msg != "" {
				return fail(i, RuleShape, "%s contract: %s", contract.Kind, msg)
			}
		}
	}

	if contract.SubscriptionOptional {
		return nil
	}

	if len(subscriptions) == 0 {
		return fail(-1, RuleNoSubscription, "power level has no subscription record")
	}

	for i, rec := range recs {
		if rec.PriceType != tariff.Consumption {
			continue
		}
		if !subscriptions[rec.Period()] {
			return fail(i, RuleCoverage, "no subscription record covers period %s", rec.Period())
		}
	}
	return nil
}

// checkSubscription enforces null hour_slots/day_type and a strictly positive
// price on subscription records.
func checkSubscription(rec tariff.PriceRecord) string {
	switch {
	case rec.HourSlots != nil:
		return "subscription must not carry hour_slots"
	case rec.DayType != nil:
		return "subscription must not carry day_type"
	case rec.Price <= 0:
		return fmt.Sprintf("subscription price must be > 0, got %d", rec.Price)
	}
	return ""
}

// checkShape enforces the per-kind hour_slots/day_type rules on consumption
// records.
func checkShape(kind tariff.Kind, rec tariff.PriceRecord) string {
	switch kind {
	case tariff.KindFlat:
		if rec.HourSlots != nil {
			return "hour_slots must be null"
		}
		if rec.DayType != nil {
			return "day_type must be null"
		}
	case tariff.KindDual:
		if rec.HourSlots == nil || (*rec.HourSlots != tariff.PeakToken && *rec.HourSlots != tariff.OffPeakToken) {
			return fmt.Sprintf("hour_slots must be %s or %s", tariff.PeakToken, tariff.OffPeakToken)
		}
		if rec.DayType != nil {
			return "day_type must be null"
		}
	case tariff.KindTiered:
		if rec.DayType == nil {
			return "day_type is required"
		}
		if rec.HourSlots == nil {
			return "hour_slots is required"
		}
		if _, err := tariff.ParseSlots(*rec.HourSlots); err != nil {
			return fmt.Sprintf("invalid hour_slots: %v", err)
		}
	}
	return ""
}

func describeFieldError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Sprintf("field %s failed %s=%s (value %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Sprintf("field %s failed %s (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return err.Error()
}
