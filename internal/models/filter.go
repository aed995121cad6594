package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MilesPerDegreeLatitude is the fixed conversion used to turn a search
// radius into a bounding box. The same delta is applied to longitude
// without latitude correction, so the box is wider east-west than a true
// circle everywhere off the equator. This is a documented approximation,
// kept intentionally; a corrected box would scale the longitude delta by
// 1/cos(latitude).
const MilesPerDegreeLatitude = 69.0

// SearchFilter is the source-agnostic comp query derived from a subject
// property and a set of MatchCriteria. Absent bounds mean "unconstrained";
// every present min/max pair satisfies min <= max.
type SearchFilter struct {
	MinBeds         int              `json:"min_beds"`
	MaxBeds         int              `json:"max_beds"`
	MinBaths        decimal.Decimal  `json:"min_baths"`
	MaxBaths        decimal.Decimal  `json:"max_baths"`
	MinSqft         decimal.Decimal  `json:"min_sqft"`
	MaxSqft         decimal.Decimal  `json:"max_sqft"`
	MinPrice        decimal.Decimal  `json:"min_price"`
	MaxPrice        decimal.Decimal  `json:"max_price"`
	MinYearBuilt    *int             `json:"min_year_built,omitempty"`
	MaxYearBuilt    *int             `json:"max_year_built,omitempty"`
	MinLotSize      *decimal.Decimal `json:"min_lot_size,omitempty"`
	MaxLotSize      *decimal.Decimal `json:"max_lot_size,omitempty"`
	PropertyType    *PropertyType    `json:"property_type,omitempty"`
	Statuses        []ListingStatus  `json:"statuses"`
	Latitude        *float64         `json:"latitude,omitempty"`
	Longitude       *float64         `json:"longitude,omitempty"`
	RadiusMiles     float64          `json:"radius_miles,omitempty"`
	SoldAfter       *time.Time       `json:"sold_after,omitempty"`
	SoldBefore      *time.Time       `json:"sold_before,omitempty"`
	RequireGarage   bool             `json:"require_garage,omitempty"`
	RequireBasement bool             `json:"require_basement,omitempty"`
}

// BoundingBox returns the rectangular approximation of the circular search
// radius around the filter's center point. ok is false when the filter has
// no geographic constraint.
func (f SearchFilter) BoundingBox() (minLat, maxLat, minLng, maxLng float64, ok bool) {
	if f.Latitude == nil || f.Longitude == nil || f.RadiusMiles <= 0 {
		return 0, 0, 0, 0, false
	}
	delta := f.RadiusMiles / MilesPerDegreeLatitude
	return *f.Latitude - delta, *f.Latitude + delta,
		*f.Longitude - delta, *f.Longitude + delta, true
}

// IncludesStatus reports whether the filter requests the given status.
func (f SearchFilter) IncludesStatus(status ListingStatus) bool {
	for _, s := range f.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CacheKey returns a deterministic key for this filter, used by the comp
// search result cache. encoding/json emits struct fields in declaration
// order, so identical filters always produce identical keys.
func (f SearchFilter) CacheKey() string {
	payload, err := json.Marshal(f)
	if err != nil {
		// Marshal over plain structs cannot fail; fall back to an empty key
		// rather than panic if that ever changes.
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
