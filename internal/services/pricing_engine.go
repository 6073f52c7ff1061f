package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/atlas-parcel/core/internal/domain"
	"github.com/atlas-parcel/core/internal/platform/currency"
)

var (
	// ErrInvalidWeight signals a non-positive or non-finite parcel weight.
	// Callers must block submission and surface a field-level message.
	ErrInvalidWeight = errors.New("pricing: invalid weight")
	// ErrInvalidPriceParameters signals trip price data that violates its
	// invariants. This is a data-integrity failure of the trip aggregate and
	// must surface as "pricing unavailable", never a silently defaulted charge.
	ErrInvalidPriceParameters = errors.New("pricing: invalid price parameters")
)

// PricingEngine computes shipment charges from trip price parameters and
// parcel weight. It is a pure calculator: no I/O, safe for concurrent use,
// and idempotent for identical inputs. All injected parameters are fixed at
// construction.
type PricingEngine struct {
	insuranceFee decimal.Decimal
	taxRate      decimal.Decimal
}

// PricingEngineConfig carries the injected pricing tunables.
type PricingEngineConfig struct {
	// InsuranceFee is the flat fee included unconditionally, in the trip currency.
	InsuranceFee decimal.Decimal
	// TaxRate is the fraction of the subtotal charged as tax.
	TaxRate decimal.Decimal
}

// NewPricingEngine validates the injected tunables and builds an engine.
func NewPricingEngine(cfg PricingEngineConfig) (*PricingEngine, error) {
	if cfg.InsuranceFee.IsNegative() {
		return nil, errors.New("pricing engine: insurance fee cannot be negative")
	}
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, errors.New("pricing engine: tax rate must be in [0,1)")
	}
	return &PricingEngine{insuranceFee: cfg.InsuranceFee, taxRate: cfg.TaxRate}, nil
}

// WeightFromFloat converts a caller-supplied weight into a decimal, rejecting
// non-finite and non-positive values up front.
func WeightFromFloat(weightKg float64) (decimal.Decimal, error) {
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: weight is not finite", ErrInvalidWeight)
	}
	if weightKg <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: weight %v must be positive", ErrInvalidWeight, weightKg)
	}
	return decimal.NewFromFloat(weightKg), nil
}

// ComputeCharge derives the full charge breakdown for shipping weightKg on a
// trip priced by params. Intermediate amounts keep full precision; rounding is
// a display concern. Currency is pass-through: this engine never converts.
func (e *PricingEngine) ComputeCharge(weightKg decimal.Decimal, params domain.TripPriceParameters) (domain.ParcelChargeBreakdown, error) {
	if !weightKg.IsPositive() {
		return domain.ParcelChargeBreakdown{}, fmt.Errorf("%w: weight %s must be positive", ErrInvalidWeight, weightKg)
	}
	if err := params.Validate(); err != nil {
		return domain.ParcelChargeBreakdown{}, fmt.Errorf("%w: %s", ErrInvalidPriceParameters, err)
	}
	if !currency.IsSupported(params.Currency) {
		return domain.ParcelChargeBreakdown{}, fmt.Errorf("%w: unsupported currency %q", ErrInvalidPriceParameters, params.Currency)
	}

	base := params.BasePrice
	if params.MinimumPrice.GreaterThan(base) {
		base = params.MinimumPrice
	}
	weightComponent := weightKg.Mul(params.PricePerKg)
	subtotal := base.Add(weightComponent).Add(e.insuranceFee)
	tax := subtotal.Mul(e.taxRate)

	return domain.ParcelChargeBreakdown{
		BaseComponent:   base,
		WeightComponent: weightComponent,
		InsuranceFee:    e.insuranceFee,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           subtotal.Add(tax),
		Currency:        params.Currency,
	}, nil
}
