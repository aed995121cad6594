package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TypeMode controls how the property-type constraint is derived.
type TypeMode string

const (
	// TypeModeSame copies the subject's property type into the filter.
	TypeModeSame TypeMode = "same"
	// TypeModeAny omits the property-type constraint entirely.
	TypeModeAny TypeMode = "any"
	// TypeModeExplicit uses ExplicitType as the constraint.
	TypeModeExplicit TypeMode = "explicit"
)

// MatchCriteria holds the caller-tunable tolerances used to derive a
// SearchFilter from a subject property. Percentage tolerances are expressed
// as 0-100, not 0-1.
type MatchCriteria struct {
	RadiusMiles     float64         `json:"radius_miles"`
	BedsRange       int             `json:"beds_range"`
	BathsRange      decimal.Decimal `json:"baths_range"`
	SqftPct         float64         `json:"sqft_pct"`
	PricePct        float64         `json:"price_pct"`
	LotSizePct      float64         `json:"lot_size_pct"`
	AgeRangeYears   int             `json:"age_range_years"`
	SoldWithinDays  int             `json:"sold_within_days"`
	RequireGarage   bool            `json:"require_garage"`
	RequireBasement bool            `json:"require_basement"`
	TypeMode        TypeMode        `json:"type_mode"`
	ExplicitType    PropertyType    `json:"explicit_type,omitempty"`
	IncludeActive   bool            `json:"include_active"`
	IncludePending  bool            `json:"include_pending"`
	IncludeSold     bool            `json:"include_sold"`
}

// DefaultMatchCriteria returns the tolerances used when the caller supplies
// none: a one-mile radius, +/-1 bed and bath, 20% on sqft and price, 10-year
// age window, and sold comps from the last 180 days.
func DefaultMatchCriteria() MatchCriteria {
	return MatchCriteria{
		RadiusMiles:    1.0,
		BedsRange:      1,
		BathsRange:     decimal.NewFromInt(1),
		SqftPct:        20,
		PricePct:       20,
		LotSizePct:     20,
		AgeRangeYears:  10,
		SoldWithinDays: 180,
		TypeMode:       TypeModeSame,
		IncludeActive:  true,
		IncludePending: true,
		IncludeSold:    true,
	}
}

// Validate checks the invariants on the tolerances: every range is
// non-negative, percentages fall within 0-100, at least one status is
// requested, and an explicit type mode names a recognized type.
func (mc MatchCriteria) Validate() error {
	if mc.RadiusMiles < 0 {
		return fmt.Errorf("radius_miles must be non-negative, got %f", mc.RadiusMiles)
	}
	if mc.BedsRange < 0 {
		return fmt.Errorf("beds_range must be non-negative, got %d", mc.BedsRange)
	}
	if mc.BathsRange.IsNegative() {
		return fmt.Errorf("baths_range must be non-negative, got %s", mc.BathsRange)
	}
	if mc.SqftPct < 0 || mc.SqftPct > 100 {
		return fmt.Errorf("sqft_pct must be between 0 and 100, got %f", mc.SqftPct)
	}
	if mc.PricePct < 0 || mc.PricePct > 100 {
		return fmt.Errorf("price_pct must be between 0 and 100, got %f", mc.PricePct)
	}
	if mc.LotSizePct < 0 || mc.LotSizePct > 100 {
		return fmt.Errorf("lot_size_pct must be between 0 and 100, got %f", mc.LotSizePct)
	}
	if mc.AgeRangeYears < 0 {
		return fmt.Errorf("age_range_years must be non-negative, got %d", mc.AgeRangeYears)
	}
	if mc.SoldWithinDays < 0 {
		return fmt.Errorf("sold_within_days must be non-negative, got %d", mc.SoldWithinDays)
	}
	if !mc.IncludeActive && !mc.IncludePending && !mc.IncludeSold {
		return fmt.Errorf("at least one of include_active, include_pending, include_sold must be set")
	}
	switch mc.TypeMode {
	case TypeModeSame, TypeModeAny:
	case TypeModeExplicit:
		if !mc.ExplicitType.IsValid() {
			return fmt.Errorf("explicit_type %q is not a recognized property type", mc.ExplicitType)
		}
	case "":
		// Empty mode is treated as "same" during derivation.
	default:
		return fmt.Errorf("type_mode %q is not recognized", mc.TypeMode)
	}
	return nil
}

// Statuses returns the requested status inclusion set in canonical order.
func (mc MatchCriteria) Statuses() []ListingStatus {
	statuses := make([]ListingStatus, 0, 3)
	if mc.IncludeActive {
		statuses = append(statuses, StatusActive)
	}
	if mc.IncludePending {
		statuses = append(statuses, StatusPending)
	}
	if mc.IncludeSold {
		statuses = append(statuses, StatusSold)
	}
	return statuses
}
