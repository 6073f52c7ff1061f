package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryKey identifies one entry of the shared duty category table.
type CategoryKey string

const (
	// CategoryElectronics covers consumer electronics and accessories.
	CategoryElectronics CategoryKey = "electronics"
	// CategoryClothing covers apparel and textiles.
	CategoryClothing CategoryKey = "clothing"
	// CategoryCosmetics covers cosmetics and personal care products.
	CategoryCosmetics CategoryKey = "cosmetics"
	// CategoryBooks covers printed books and publications.
	CategoryBooks CategoryKey = "books"
	// CategoryFood covers packaged foodstuffs.
	CategoryFood CategoryKey = "food"
	// CategoryToys covers toys and games.
	CategoryToys CategoryKey = "toys"
	// CategoryJewelry covers jewelry and watches.
	CategoryJewelry CategoryKey = "jewelry"
	// CategorySports covers sporting goods.
	CategorySports CategoryKey = "sports"
	// CategoryOther is the catch-all used when no specific category applies,
	// and the fallback when an unknown key is supplied.
	CategoryOther CategoryKey = "other"
)

// DutyCategory describes the duty and VAT rates applied to one goods category.
// VATRate is currently 0.20 across the table but is modeled per category so a
// future table version can diverge without a schema change.
type DutyCategory struct {
	Key      CategoryKey
	Name     string
	DutyRate decimal.Decimal
	VATRate  decimal.Decimal
}

// DutyTable is the versioned category table shared with the backend that
// independently re-validates duty. Both sides must carry identical rates and
// thresholds for a given version; every assessment records the version it
// used so mismatches are detectable rather than silent.
type DutyTable struct {
	Version    string
	Categories map[CategoryKey]DutyCategory
}

// Lookup returns the category for key, or false when the key is unknown.
func (t DutyTable) Lookup(key CategoryKey) (DutyCategory, bool) {
	cat, ok := t.Categories[key]
	return cat, ok
}

// Fallback returns the catch-all category used for unknown keys.
func (t DutyTable) Fallback() DutyCategory {
	return t.Categories[CategoryOther]
}

var standardVAT = decimal.NewFromFloat(0.20)

// DefaultDutyTable returns the table shipped with this release. Rates mirror
// the published Moroccan import tariff bands for parcel-post goods.
func DefaultDutyTable() DutyTable {
	categories := []DutyCategory{
		{Key: CategoryElectronics, Name: "Electronics", DutyRate: decimal.NewFromFloat(0.025), VATRate: standardVAT},
		{Key: CategoryClothing, Name: "Clothing & Textiles", DutyRate: decimal.NewFromFloat(0.40), VATRate: standardVAT},
		{Key: CategoryCosmetics, Name: "Cosmetics", DutyRate: decimal.NewFromFloat(0.30), VATRate: standardVAT},
		{Key: CategoryBooks, Name: "Books", DutyRate: decimal.Zero, VATRate: standardVAT},
		{Key: CategoryFood, Name: "Foodstuffs", DutyRate: decimal.NewFromFloat(0.10), VATRate: standardVAT},
		{Key: CategoryToys, Name: "Toys & Games", DutyRate: decimal.NewFromFloat(0.125), VATRate: standardVAT},
		{Key: CategoryJewelry, Name: "Jewelry & Watches", DutyRate: decimal.NewFromFloat(0.30), VATRate: standardVAT},
		{Key: CategorySports, Name: "Sporting Goods", DutyRate: decimal.NewFromFloat(0.10), VATRate: standardVAT},
		{Key: CategoryOther, Name: "Other Goods", DutyRate: decimal.NewFromFloat(0.20), VATRate: standardVAT},
	}
	table := DutyTable{Version: "2026-01", Categories: make(map[CategoryKey]DutyCategory, len(categories))}
	for _, cat := range categories {
		table.Categories[cat.Key] = cat
	}
	return table
}

// AssessmentDisclaimer must accompany every rendered duty estimate. The
// calculator is advisory only; the customs authority's own assessment
// prevails and payment release is never gated on this figure.
const AssessmentDisclaimer = "Estimate only. The final amount is determined by the Moroccan customs authority and may differ."

// DutyAssessment is the derived outcome of estimating import charges for a
// declared value and category. Recomputed per request; never cached across
// currency-rate changes.
type DutyAssessment struct {
	ID                 string
	DutiableValueEUR   decimal.Decimal
	DutiableValueLocal decimal.Decimal
	DutyAmount         decimal.Decimal
	VATAmount          decimal.Decimal
	ProcessingFee      decimal.Decimal
	TotalDue           decimal.Decimal
	Currency           string
	DutyFree           bool
	Category           CategoryKey
	CategoryFallback   bool
	TableVersion       string
	AssessedAt         time.Time
}

// Disclaimer returns the advisory text that must accompany this assessment
// wherever it is rendered.
func (DutyAssessment) Disclaimer() string { return AssessmentDisclaimer }
