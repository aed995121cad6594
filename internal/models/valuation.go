package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentFeature identifies one row of a comp's adjustment table.
type AdjustmentFeature string

const (
	FeatureAddress       AdjustmentFeature = "address"
	FeaturePrice         AdjustmentFeature = "price"
	FeatureSqft          AdjustmentFeature = "sqft"
	FeatureBedrooms      AdjustmentFeature = "bedrooms"
	FeatureBathrooms     AdjustmentFeature = "bathrooms"
	FeatureYearBuilt     AdjustmentFeature = "year_built"
	FeatureTotal         AdjustmentFeature = "total"
	FeatureAdjustedValue AdjustmentFeature = "adjusted_value"
)

// AdjustmentRowOrder is the canonical row order for every comp's adjustment
// table. Rendering and tests depend on this exact sequence.
var AdjustmentRowOrder = []AdjustmentFeature{
	FeatureAddress,
	FeaturePrice,
	FeatureSqft,
	FeatureBedrooms,
	FeatureBathrooms,
	FeatureYearBuilt,
	FeatureTotal,
	FeatureAdjustedValue,
}

// Adjustment is one row of a comp's adjustment table. Delta follows the
// convention "dollars added to the comp's price to make it comparable to
// the subject": positive when the comp is inferior to the subject on that
// feature. Applicable is false when the row cannot be computed (for
// example, a missing year built) and the renderer should show "N/A" rather
// than zero. Informational rows (address, price) carry a zero delta and
// Applicable=false.
type Adjustment struct {
	Feature      AdjustmentFeature `json:"feature"`
	SubjectValue string            `json:"subject_value"`
	CompValue    string            `json:"comp_value"`
	Delta        decimal.Decimal   `json:"delta"`
	Applicable   bool              `json:"applicable"`
}

// CompAdjustments holds the full adjustment table for one comp.
type CompAdjustments struct {
	PropertyID      uuid.UUID       `json:"property_id"`
	Address         string          `json:"address"`
	Rows            []Adjustment    `json:"rows"`
	TotalAdjustment decimal.Decimal `json:"total_adjustment"`
	AdjustedValue   decimal.Decimal `json:"adjusted_value"`
}

// Valuation is the aggregate valuation output. ARV and MAO are nil when the
// sold bucket is empty; nil is deliberately distinct from a zero dollar
// value. A Valuation is never mutated in place; recomputation always
// replaces it wholesale.
type Valuation struct {
	ARV           *decimal.Decimal `json:"arv,omitempty"`
	Multiplier    decimal.Decimal  `json:"multiplier"`
	MAO           *decimal.Decimal `json:"mao,omitempty"`
	SoldCompCount int              `json:"sold_comp_count"`
}

// WithMultiplier returns a new Valuation with MAO recomputed from the
// stored ARV and the given multiplier. ARV is never recomputed here, so a
// multiplier change is cheap and leaves the sold-comp aggregate untouched.
func (v Valuation) WithMultiplier(multiplier decimal.Decimal) Valuation {
	next := Valuation{
		ARV:           v.ARV,
		Multiplier:    multiplier,
		SoldCompCount: v.SoldCompCount,
	}
	if v.ARV != nil {
		mao := v.ARV.Mul(multiplier)
		next.MAO = &mao
	}
	return next
}
