package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-parcel/core/internal/domain"
	"github.com/atlas-parcel/core/internal/platform/currency"
	"github.com/atlas-parcel/core/internal/platform/observability"
)

var (
	// ErrInvalidDeclaredValue signals a negative declared value.
	ErrInvalidDeclaredValue = errors.New("customs: invalid declared value")
	// ErrDutyCategoryNotFound signals an unknown category key. The assessment
	// is still returned, computed with the catch-all category, so callers can
	// show a flagged estimate instead of nothing.
	ErrDutyCategoryNotFound = errors.New("customs: duty category not found")
	// ErrDutyTableMismatch signals that the configured table version pin does
	// not match the table supplied at construction.
	ErrDutyTableMismatch = errors.New("customs: duty table version mismatch")
)

// DutyCalculator estimates Moroccan import charges for a declared value and
// goods category. It is advisory by design: every rendered estimate must carry
// domain.AssessmentDisclaimer, and the figure never gates payment release —
// that determination belongs to the customs authority.
type DutyCalculator struct {
	deMinimisEUR  decimal.Decimal
	processingFee decimal.Decimal
	fxRate        decimal.Decimal
	table         domain.DutyTable
	now           func() time.Time
}

// DutyCalculatorConfig carries the injected customs tunables.
type DutyCalculatorConfig struct {
	// DeMinimisEUR is the declared value at or below which no duty is charged.
	// The threshold applies to the total declared value, not the remainder.
	DeMinimisEUR decimal.Decimal
	// ProcessingFeeMAD is the flat clearance fee added to dutiable assessments.
	ProcessingFeeMAD decimal.Decimal
	// FXRateEURToMAD is the fixed conversion rate for the dutiable portion.
	FXRateEURToMAD decimal.Decimal
	// TableVersion, when non-empty, pins the expected duty table version.
	TableVersion string
	// Now overrides the clock for tests.
	Now func() time.Time
}

// NewDutyCalculator validates tunables and the category table, then builds a
// calculator.
func NewDutyCalculator(cfg DutyCalculatorConfig, table domain.DutyTable) (*DutyCalculator, error) {
	if cfg.DeMinimisEUR.IsNegative() {
		return nil, errors.New("duty calculator: de-minimis threshold cannot be negative")
	}
	if cfg.ProcessingFeeMAD.IsNegative() {
		return nil, errors.New("duty calculator: processing fee cannot be negative")
	}
	if !cfg.FXRateEURToMAD.IsPositive() {
		return nil, errors.New("duty calculator: FX rate must be positive")
	}
	if table.Version == "" {
		return nil, errors.New("duty calculator: table version is required")
	}
	if cfg.TableVersion != "" && cfg.TableVersion != table.Version {
		return nil, fmt.Errorf("%w: pinned %q, table carries %q", ErrDutyTableMismatch, cfg.TableVersion, table.Version)
	}
	if _, ok := table.Lookup(domain.CategoryOther); !ok {
		return nil, errors.New("duty calculator: table is missing the catch-all category")
	}
	one := decimal.NewFromInt(1)
	for key, cat := range table.Categories {
		if cat.DutyRate.IsNegative() || cat.DutyRate.GreaterThan(one) {
			return nil, fmt.Errorf("duty calculator: category %s duty rate %s outside [0,1]", key, cat.DutyRate)
		}
		if cat.VATRate.IsNegative() || cat.VATRate.GreaterThan(one) {
			return nil, fmt.Errorf("duty calculator: category %s VAT rate %s outside [0,1]", key, cat.VATRate)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &DutyCalculator{
		deMinimisEUR:  cfg.DeMinimisEUR,
		processingFee: cfg.ProcessingFeeMAD,
		fxRate:        cfg.FXRateEURToMAD,
		table:         table,
		now:           func() time.Time { return now().UTC() },
	}, nil
}

// TableVersion exposes the version of the category table in use, so callers
// can surface which shared contract revision produced an estimate.
func (c *DutyCalculator) TableVersion() string { return c.table.Version }

// AssessDuty estimates import charges for declaredValueEUR in category key.
//
// A declared value at or below the de-minimis threshold is duty-free: every
// amount field is zero. Above it, only the portion exceeding the threshold is
// dutiable; it is converted to MAD at the fixed rate before applying the
// category rates and the flat processing fee.
//
// An unknown category key does not fail the assessment: the catch-all
// category is used, the result carries CategoryFallback=true, and the call
// returns the assessment together with ErrDutyCategoryNotFound so the caller
// can visibly flag the fallback.
func (c *DutyCalculator) AssessDuty(ctx context.Context, declaredValueEUR decimal.Decimal, key domain.CategoryKey) (domain.DutyAssessment, error) {
	if declaredValueEUR.IsNegative() {
		return domain.DutyAssessment{}, fmt.Errorf("%w: declared value %s is negative", ErrInvalidDeclaredValue, declaredValueEUR)
	}

	category, found := c.table.Lookup(key)
	var lookupErr error
	if !found {
		category = c.table.Fallback()
		lookupErr = fmt.Errorf("%w: %q, using %q", ErrDutyCategoryNotFound, key, category.Key)
		observability.FromContext(ctx).Warn("duty_category_fallback",
			zap.String("requestedCategory", string(key)),
			zap.String("fallbackCategory", string(category.Key)),
			zap.String("tableVersion", c.table.Version),
		)
		observability.CategoryFallbackCounter().Add(ctx, 1)
	}

	assessment := domain.DutyAssessment{
		ID:               ulid.Make().String(),
		Currency:         currency.MAD,
		Category:         category.Key,
		CategoryFallback: !found,
		TableVersion:     c.table.Version,
		AssessedAt:       c.now(),
	}

	if declaredValueEUR.LessThanOrEqual(c.deMinimisEUR) {
		assessment.DutyFree = true
		assessment.DutiableValueEUR = decimal.Zero
		assessment.DutiableValueLocal = decimal.Zero
		assessment.DutyAmount = decimal.Zero
		assessment.VATAmount = decimal.Zero
		assessment.ProcessingFee = decimal.Zero
		assessment.TotalDue = decimal.Zero
		return assessment, lookupErr
	}

	dutiableEUR := declaredValueEUR.Sub(c.deMinimisEUR)
	dutiableLocal := dutiableEUR.Mul(c.fxRate)
	duty := dutiableLocal.Mul(category.DutyRate)
	vat := dutiableLocal.Mul(category.VATRate)

	assessment.DutiableValueEUR = dutiableEUR
	assessment.DutiableValueLocal = dutiableLocal
	assessment.DutyAmount = duty
	assessment.VATAmount = vat
	assessment.ProcessingFee = c.processingFee
	assessment.TotalDue = duty.Add(vat).Add(c.processingFee)
	return assessment, lookupErr
}
