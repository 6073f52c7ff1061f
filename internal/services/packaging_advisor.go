package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atlas-parcel/core/internal/domain"
)

var (
	// ErrWeightExceedsTiers signals a weight above the largest packaging tier.
	ErrWeightExceedsTiers = errors.New("packaging: weight exceeds the largest tier")
	// ErrTierConfiguration signals a tier set that breaks the contiguity invariant.
	ErrTierConfiguration = errors.New("packaging: invalid tier configuration")
)

// PackagingAdvisor recommends a packaging tier for a parcel weight and
// validates a chosen tier against it. Pure and safe for concurrent use.
//
// Tiers partition (0, large.max] into contiguous bands: each tier accepts
// weights above the previous tier's maximum up to and including its own, so
// exactly one tier fits any admissible weight and a boundary weight belongs
// to the lower tier. Weights under the smallest tier's advertised minimum
// still map to the smallest tier — there is no smaller box to offer.
type PackagingAdvisor struct {
	tiers []domain.PackagingTier
}

// NewPackagingAdvisor validates the tier set (ordered, contiguous,
// non-overlapping) and builds an advisor.
func NewPackagingAdvisor(tiers []domain.PackagingTier) (*PackagingAdvisor, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers supplied", ErrTierConfiguration)
	}
	for i, tier := range tiers {
		if tier.MinKg.IsNegative() {
			return nil, fmt.Errorf("%w: tier %s has negative minimum", ErrTierConfiguration, tier.ID)
		}
		if !tier.MaxKg.GreaterThan(tier.MinKg) {
			return nil, fmt.Errorf("%w: tier %s range is empty", ErrTierConfiguration, tier.ID)
		}
		if i > 0 && !tier.MinKg.Equal(tiers[i-1].MaxKg) {
			return nil, fmt.Errorf("%w: gap or overlap between %s and %s", ErrTierConfiguration, tiers[i-1].ID, tier.ID)
		}
	}
	copied := make([]domain.PackagingTier, len(tiers))
	copy(copied, tiers)
	return &PackagingAdvisor{tiers: copied}, nil
}

// Tiers returns the configured tier set in ascending order.
func (a *PackagingAdvisor) Tiers() []domain.PackagingTier {
	out := make([]domain.PackagingTier, len(a.tiers))
	copy(out, a.tiers)
	return out
}

// Recommend returns the smallest tier whose band contains weightKg.
func (a *PackagingAdvisor) Recommend(weightKg decimal.Decimal) (domain.PackagingTier, error) {
	if !weightKg.IsPositive() {
		return domain.PackagingTier{}, fmt.Errorf("%w: weight %s must be positive", ErrInvalidWeight, weightKg)
	}
	for _, tier := range a.tiers {
		if weightKg.LessThanOrEqual(tier.MaxKg) {
			return tier, nil
		}
	}
	return domain.PackagingTier{}, fmt.Errorf("%w: %s kg exceeds %s kg", ErrWeightExceedsTiers, weightKg, a.tiers[len(a.tiers)-1].MaxKg)
}

// Fits reports whether weightKg belongs to the tier's band. Exactly one tier
// fits any weight in (0, large.max].
func (a *PackagingAdvisor) Fits(id domain.TierID, weightKg decimal.Decimal) bool {
	if !weightKg.IsPositive() {
		return false
	}
	lower := decimal.Zero
	for _, tier := range a.tiers {
		if tier.ID == id {
			return weightKg.GreaterThan(lower) && weightKg.LessThanOrEqual(tier.MaxKg)
		}
		lower = tier.MaxKg
	}
	return false
}

// CapacityStatus reports how much of the trip's remaining capacity the parcel
// would consume. Over-capacity is independent of tier fit and must be checked
// first: an over-capacity parcel blocks booking even when it fits a tier.
type CapacityStatus struct {
	Percentage   int
	OverCapacity bool
}

// CapacityStatus evaluates weightKg against the trip's remaining capacity.
func (a *PackagingAdvisor) CapacityStatus(weightKg, remainingCapacityKg decimal.Decimal) (CapacityStatus, error) {
	if !weightKg.IsPositive() {
		return CapacityStatus{}, fmt.Errorf("%w: weight %s must be positive", ErrInvalidWeight, weightKg)
	}
	if !remainingCapacityKg.IsPositive() {
		return CapacityStatus{Percentage: 100, OverCapacity: true}, nil
	}
	if weightKg.GreaterThan(remainingCapacityKg) {
		return CapacityStatus{Percentage: 100, OverCapacity: true}, nil
	}
	pct := weightKg.Div(remainingCapacityKg).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return CapacityStatus{Percentage: int(pct)}, nil
}
