// Package valuation computes the aggregate CMA valuation (ARV, MAO) and
// the per-comp adjustment tables from a subject property and a comp search
// result.
//
// The per-unit dollar weights below are illustrative, tunable constants.
// They make the arithmetic deterministic and testable; they do not claim
// appraisal-grade, market-derived accuracy.
package valuation

import (
	"errors"
	"fmt"

	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Per-unit adjustment weights, in dollars.
var (
	DollarsPerSqft     = decimal.NewFromInt(45)
	DollarsPerBedroom  = decimal.NewFromInt(5000)
	DollarsPerBathroom = decimal.NewFromInt(7500)
	DollarsPerYear     = decimal.NewFromInt(1000)
)

// DefaultMultiplier is the standard 70% rule: MAO = ARV * 0.70.
var DefaultMultiplier = decimal.NewFromFloat(0.70)

// ErrInvalidMultiplier is returned when the multiplier falls outside [0,1].
var ErrInvalidMultiplier = errors.New("multiplier must be between 0 and 1")

// Compute derives the valuation and adjustment tables for a matching run.
// A nil multiplier selects DefaultMultiplier; an explicit zero is honored
// and yields a zero MAO. ARV is the arithmetic mean of the sold bucket's
// prices; with no sold comps both ARV and MAO are absent, which is
// distinct from a zero value.
func Compute(subject models.Property, comps models.CompResult, multiplier *decimal.Decimal) (models.Valuation, []models.CompAdjustments, error) {
	m := DefaultMultiplier
	if multiplier != nil {
		m = *multiplier
	}
	if m.IsNegative() || m.GreaterThan(decimal.NewFromInt(1)) {
		return models.Valuation{}, nil, fmt.Errorf("%w: got %s", ErrInvalidMultiplier, m)
	}

	valuation := models.Valuation{
		Multiplier:    m,
		SoldCompCount: len(comps.Sold),
	}

	if len(comps.Sold) > 0 {
		sum := decimal.Zero
		for _, comp := range comps.Sold {
			sum = sum.Add(comp.Price)
		}
		arv := sum.Div(decimal.NewFromInt(int64(len(comps.Sold))))
		valuation.ARV = &arv
		mao := arv.Mul(m)
		valuation.MAO = &mao
	}

	all := comps.AllComps()
	adjustments := make([]models.CompAdjustments, 0, len(all))
	for _, comp := range all {
		adjustments = append(adjustments, AdjustComp(subject, comp))
	}

	return valuation, adjustments, nil
}

// AdjustComp builds the canonical eight-row adjustment table for one comp.
// Feature deltas follow the sign convention "dollars added to the comp's
// price to make it comparable to the subject".
func AdjustComp(subject, comp models.Property) models.CompAdjustments {
	sqftDelta := subject.Sqft.Sub(comp.Sqft).Mul(DollarsPerSqft)
	bedsDelta := decimal.NewFromInt(int64(subject.Bedrooms - comp.Bedrooms)).Mul(DollarsPerBedroom)
	bathsDelta := subject.Bathrooms.Sub(comp.Bathrooms).Mul(DollarsPerBathroom)

	ageApplicable := subject.YearBuilt != nil && comp.YearBuilt != nil
	ageDelta := decimal.Zero
	if ageApplicable {
		ageDelta = decimal.NewFromInt(int64(*subject.YearBuilt - *comp.YearBuilt)).Mul(DollarsPerYear)
	}

	total := sqftDelta.Add(bedsDelta).Add(bathsDelta)
	if ageApplicable {
		total = total.Add(ageDelta)
	}
	adjusted := comp.Price.Add(total)

	rows := []models.Adjustment{
		{
			Feature:      models.FeatureAddress,
			SubjectValue: subject.FullAddress(),
			CompValue:    comp.FullAddress(),
		},
		{
			Feature:      models.FeaturePrice,
			SubjectValue: subject.Price.StringFixed(2),
			CompValue:    comp.Price.StringFixed(2),
		},
		{
			Feature:      models.FeatureSqft,
			SubjectValue: subject.Sqft.String(),
			CompValue:    comp.Sqft.String(),
			Delta:        sqftDelta,
			Applicable:   true,
		},
		{
			Feature:      models.FeatureBedrooms,
			SubjectValue: fmt.Sprintf("%d", subject.Bedrooms),
			CompValue:    fmt.Sprintf("%d", comp.Bedrooms),
			Delta:        bedsDelta,
			Applicable:   true,
		},
		{
			Feature:      models.FeatureBathrooms,
			SubjectValue: subject.Bathrooms.String(),
			CompValue:    comp.Bathrooms.String(),
			Delta:        bathsDelta,
			Applicable:   true,
		},
		{
			Feature:      models.FeatureYearBuilt,
			SubjectValue: yearString(subject.YearBuilt),
			CompValue:    yearString(comp.YearBuilt),
			Delta:        ageDelta,
			Applicable:   ageApplicable,
		},
		{
			Feature:    models.FeatureTotal,
			Delta:      total,
			Applicable: true,
		},
		{
			Feature:    models.FeatureAdjustedValue,
			CompValue:  adjusted.StringFixed(2),
			Delta:      adjusted,
			Applicable: true,
		},
	}

	return models.CompAdjustments{
		PropertyID:      comp.ID,
		Address:         comp.FullAddress(),
		Rows:            rows,
		TotalAdjustment: total,
		AdjustedValue:   adjusted,
	}
}

// yearString renders a year-built pointer, using "N/A" for missing values.
func yearString(year *int) string {
	if year == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *year)
}
