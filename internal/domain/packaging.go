package domain

import "github.com/shopspring/decimal"

// TierID identifies a packaging tier.
type TierID string

const (
	// TierSmall fits documents and small goods.
	TierSmall TierID = "small"
	// TierMedium fits standard parcels.
	TierMedium TierID = "medium"
	// TierLarge fits bulky parcels up to the per-parcel weight cap.
	TierLarge TierID = "large"
)

// PackagingTier maps a closed weight range in kilograms to a box size.
// Tiers are contiguous and non-overlapping: each tier's MaxKg equals the next
// tier's MinKg, and a boundary weight belongs to the lower tier. The advisor
// preserves this invariant when ranges are configured.
type PackagingTier struct {
	ID      TierID
	MinKg   decimal.Decimal
	MaxKg   decimal.Decimal
	Popular bool
}

// DefaultPackagingTiers returns the tier set shipped with this release.
func DefaultPackagingTiers() []PackagingTier {
	return []PackagingTier{
		{ID: TierSmall, MinKg: decimal.NewFromFloat(0.1), MaxKg: decimal.NewFromInt(5)},
		{ID: TierMedium, MinKg: decimal.NewFromInt(5), MaxKg: decimal.NewFromInt(10), Popular: true},
		{ID: TierLarge, MinKg: decimal.NewFromInt(10), MaxKg: decimal.NewFromInt(30)},
	}
}
