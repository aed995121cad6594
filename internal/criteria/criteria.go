// Package criteria derives a source-agnostic SearchFilter from a subject
// property and a set of caller-tunable match tolerances. Derivation is a
// pure function: no I/O, no clock access beyond the injectable now func used
// for the sold-date window.
package criteria

import (
	"errors"
	"fmt"
	"time"

	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Validation errors surfaced to the caller. All wrap ErrInvalidInput so
// callers can detect the class with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid criteria input")
	ErrSubjectIncomplete = fmt.Errorf("%w: subject property is missing required fields", ErrInvalidInput)
)

// Deriver turns subject properties and tolerances into search filters.
// The zero value is not usable; use NewDeriver.
type Deriver struct {
	now func() time.Time
}

// NewDeriver creates a Deriver using the real clock.
func NewDeriver() *Deriver {
	return &Deriver{now: time.Now}
}

// NewDeriverAt creates a Deriver with a fixed clock, for tests.
func NewDeriverAt(now func() time.Time) *Deriver {
	return &Deriver{now: now}
}

// Derive builds a SearchFilter from the subject and criteria.
// The subject must carry bedrooms, bathrooms, sqft, and price; those drive
// the tolerance ranges and derivation is rejected without them.
func (d *Deriver) Derive(subject models.Property, mc models.MatchCriteria) (models.SearchFilter, error) {
	var filter models.SearchFilter

	if err := mc.Validate(); err != nil {
		return filter, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateSubject(subject); err != nil {
		return filter, err
	}

	// Bedrooms: floored at 1 so a zero tolerance on a 1-bed subject still
	// matches something livable.
	filter.MinBeds = subject.Bedrooms - mc.BedsRange
	if filter.MinBeds < 1 {
		filter.MinBeds = 1
	}
	filter.MaxBeds = subject.Bedrooms + mc.BedsRange

	// Bathrooms: floored at 0; half-bath counts are legal on either bound.
	filter.MinBaths = subject.Bathrooms.Sub(mc.BathsRange)
	if filter.MinBaths.IsNegative() {
		filter.MinBaths = decimal.Zero
	}
	filter.MaxBaths = subject.Bathrooms.Add(mc.BathsRange)

	filter.MinSqft, filter.MaxSqft = pctRange(subject.Sqft, mc.SqftPct)
	filter.MinPrice, filter.MaxPrice = pctRange(subject.Price, mc.PricePct)

	if subject.LotSize != nil {
		minLot, maxLot := pctRange(*subject.LotSize, mc.LotSizePct)
		filter.MinLotSize = &minLot
		filter.MaxLotSize = &maxLot
	}

	// Age range only applies when the subject has a recorded year built.
	if subject.YearBuilt != nil {
		minYear := *subject.YearBuilt - mc.AgeRangeYears
		maxYear := *subject.YearBuilt + mc.AgeRangeYears
		filter.MinYearBuilt = &minYear
		filter.MaxYearBuilt = &maxYear
	}

	switch mc.TypeMode {
	case models.TypeModeAny:
		// No type constraint.
	case models.TypeModeExplicit:
		explicit := mc.ExplicitType
		filter.PropertyType = &explicit
	default:
		// TypeModeSame and the empty mode copy the subject's type.
		if subject.Type != "" {
			same := subject.Type
			filter.PropertyType = &same
		}
	}

	if subject.Latitude != nil && subject.Longitude != nil && mc.RadiusMiles > 0 {
		lat, lng := *subject.Latitude, *subject.Longitude
		filter.Latitude = &lat
		filter.Longitude = &lng
		filter.RadiusMiles = mc.RadiusMiles
	}

	filter.Statuses = mc.Statuses()

	// Sale-date window only applies when sold comps are requested. The
	// window is anchored to the UTC date rather than the instant so that
	// identical derivations within a day produce identical filters, and
	// therefore identical cache keys.
	if mc.IncludeSold && mc.SoldWithinDays > 0 {
		today := d.now().UTC().Truncate(24 * time.Hour)
		after := today.AddDate(0, 0, -mc.SoldWithinDays)
		filter.SoldAfter = &after
		filter.SoldBefore = &today
	}

	filter.RequireGarage = mc.RequireGarage
	filter.RequireBasement = mc.RequireBasement

	return filter, nil
}

// validateSubject rejects subjects that lack the numeric fields required
// for range derivation.
func validateSubject(subject models.Property) error {
	if subject.Bedrooms <= 0 {
		return fmt.Errorf("%w: bedrooms", ErrSubjectIncomplete)
	}
	if subject.Bathrooms.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: bathrooms", ErrSubjectIncomplete)
	}
	if subject.Sqft.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: sqft", ErrSubjectIncomplete)
	}
	if subject.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: price", ErrSubjectIncomplete)
	}
	return nil
}

// pctRange returns [floor(value*(1-pct/100)), ceil(value*(1+pct/100))].
func pctRange(value decimal.Decimal, pct float64) (decimal.Decimal, decimal.Decimal) {
	fraction := decimal.NewFromFloat(pct / 100.0)
	minVal := value.Mul(decimal.NewFromInt(1).Sub(fraction)).Floor()
	maxVal := value.Mul(decimal.NewFromInt(1).Add(fraction)).Ceil()
	return minVal, maxVal
}
