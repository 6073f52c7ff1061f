package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrPriceParameters signals trip price parameters that violate their invariants.
var ErrPriceParameters = errors.New("domain: invalid trip price parameters")

// TripPriceParameters holds the published price inputs of a trip. They are
// immutable once the trip is published; the organisation aggregate owns them.
type TripPriceParameters struct {
	BasePrice    decimal.Decimal
	PricePerKg   decimal.Decimal
	MinimumPrice decimal.Decimal
	Currency     string
}

// Validate enforces the structural invariants: every money field is
// non-negative and the currency is a 3-letter uppercase code. Whether the code
// is one the platform actually supports is checked by the currency package.
func (p TripPriceParameters) Validate() error {
	if p.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base price is negative", ErrPriceParameters)
	}
	if p.PricePerKg.IsNegative() {
		return fmt.Errorf("%w: price per kg is negative", ErrPriceParameters)
	}
	if p.MinimumPrice.IsNegative() {
		return fmt.Errorf("%w: minimum price is negative", ErrPriceParameters)
	}
	if !validCurrencyCode(p.Currency) {
		return fmt.Errorf("%w: currency %q is not a 3-letter code", ErrPriceParameters, p.Currency)
	}
	return nil
}

func validCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ParcelChargeBreakdown captures the derived cost of shipping one parcel on a
// trip. It is recomputed on every weight or price change and never stored.
// Amounts carry full precision; rounding happens only at display time.
type ParcelChargeBreakdown struct {
	BaseComponent   decimal.Decimal
	WeightComponent decimal.Decimal
	InsuranceFee    decimal.Decimal
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Currency        string
}
