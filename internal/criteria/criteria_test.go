package criteria

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxr0514/AgentsHub-sub000/internal/models"
)

func testSubject() models.Property {
	yearBuilt := 2005
	return models.Property{
		Bedrooms:  3,
		Bathrooms: decimal.NewFromInt(2),
		Sqft:      decimal.NewFromInt(2200),
		Price:     decimal.NewFromInt(450000),
		YearBuilt: &yearBuilt,
		Type:      models.SingleFamily,
	}
}

func testCriteria() models.MatchCriteria {
	return models.MatchCriteria{
		BedsRange:      1,
		BathsRange:     decimal.NewFromInt(1),
		SqftPct:        20,
		PricePct:       20,
		AgeRangeYears:  10,
		TypeMode:       models.TypeModeSame,
		IncludeActive:  true,
		IncludePending: true,
		IncludeSold:    true,
	}
}

func TestDerive_ToleranceScenario(t *testing.T) {
	// Arrange
	deriver := NewDeriver()

	// Act
	filter, err := deriver.Derive(testSubject(), testCriteria())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, filter.MinBeds)
	assert.Equal(t, 4, filter.MaxBeds)
	assert.True(t, filter.MinSqft.Equal(decimal.NewFromInt(1760)), "min sqft: %s", filter.MinSqft)
	assert.True(t, filter.MaxSqft.Equal(decimal.NewFromInt(2640)), "max sqft: %s", filter.MaxSqft)
	assert.True(t, filter.MinPrice.Equal(decimal.NewFromInt(360000)), "min price: %s", filter.MinPrice)
	assert.True(t, filter.MaxPrice.Equal(decimal.NewFromInt(540000)), "max price: %s", filter.MaxPrice)
	require.NotNil(t, filter.MinYearBuilt)
	require.NotNil(t, filter.MaxYearBuilt)
	assert.Equal(t, 1995, *filter.MinYearBuilt)
	assert.Equal(t, 2015, *filter.MaxYearBuilt)
}

func TestDerive_BoundsAlwaysOrdered(t *testing.T) {
	// Any non-negative tolerances must yield min <= max on every present bound.
	deriver := NewDeriver()

	cases := []models.MatchCriteria{
		testCriteria(),
		{IncludeActive: true},
		{BedsRange: 5, BathsRange: decimal.NewFromFloat(2.5), SqftPct: 100, PricePct: 100, AgeRangeYears: 50, IncludeSold: true, SoldWithinDays: 90},
		{SqftPct: 0, PricePct: 0, IncludePending: true},
	}

	for _, mc := range cases {
		filter, err := deriver.Derive(testSubject(), mc)
		require.NoError(t, err)

		assert.LessOrEqual(t, filter.MinBeds, filter.MaxBeds)
		assert.True(t, filter.MinBaths.LessThanOrEqual(filter.MaxBaths))
		assert.True(t, filter.MinSqft.LessThanOrEqual(filter.MaxSqft))
		assert.True(t, filter.MinPrice.LessThanOrEqual(filter.MaxPrice))
		if filter.MinYearBuilt != nil {
			assert.LessOrEqual(t, *filter.MinYearBuilt, *filter.MaxYearBuilt)
		}
	}
}

func TestDerive_MinBedsFlooredAtOne(t *testing.T) {
	deriver := NewDeriver()
	subject := testSubject()
	subject.Bedrooms = 1
	mc := testCriteria()
	mc.BedsRange = 3

	filter, err := deriver.Derive(subject, mc)

	require.NoError(t, err)
	assert.Equal(t, 1, filter.MinBeds)
	assert.Equal(t, 4, filter.MaxBeds)
}

func TestDerive_MinBathsFlooredAtZero(t *testing.T) {
	deriver := NewDeriver()
	subject := testSubject()
	subject.Bathrooms = decimal.NewFromFloat(1.5)
	mc := testCriteria()
	mc.BathsRange = decimal.NewFromInt(2)

	filter, err := deriver.Derive(subject, mc)

	require.NoError(t, err)
	assert.True(t, filter.MinBaths.Equal(decimal.Zero))
	assert.True(t, filter.MaxBaths.Equal(decimal.NewFromFloat(3.5)))
}

func TestDerive_NoYearBuiltOmitsAgeRange(t *testing.T) {
	deriver := NewDeriver()
	subject := testSubject()
	subject.YearBuilt = nil

	filter, err := deriver.Derive(subject, testCriteria())

	require.NoError(t, err)
	assert.Nil(t, filter.MinYearBuilt)
	assert.Nil(t, filter.MaxYearBuilt)
}

func TestDerive_TypeModes(t *testing.T) {
	deriver := NewDeriver()
	subject := testSubject()

	// same: copies the subject's type
	mc := testCriteria()
	mc.TypeMode = models.TypeModeSame
	filter, err := deriver.Derive(subject, mc)
	require.NoError(t, err)
	require.NotNil(t, filter.PropertyType)
	assert.Equal(t, models.SingleFamily, *filter.PropertyType)

	// any: omits the constraint
	mc.TypeMode = models.TypeModeAny
	filter, err = deriver.Derive(subject, mc)
	require.NoError(t, err)
	assert.Nil(t, filter.PropertyType)

	// explicit: uses the named type
	mc.TypeMode = models.TypeModeExplicit
	mc.ExplicitType = models.Condo
	filter, err = deriver.Derive(subject, mc)
	require.NoError(t, err)
	require.NotNil(t, filter.PropertyType)
	assert.Equal(t, models.Condo, *filter.PropertyType)
}

func TestDerive_GeographyRequiresCoordinates(t *testing.T) {
	deriver := NewDeriver()
	mc := testCriteria()
	mc.RadiusMiles = 2

	// No coordinates: no geographic constraint.
	filter, err := deriver.Derive(testSubject(), mc)
	require.NoError(t, err)
	assert.Nil(t, filter.Latitude)
	assert.Nil(t, filter.Longitude)

	// With coordinates: center and radius carried through.
	subject := testSubject()
	lat, lng := 33.0, -97.3
	subject.Latitude = &lat
	subject.Longitude = &lng
	filter, err = deriver.Derive(subject, mc)
	require.NoError(t, err)
	require.NotNil(t, filter.Latitude)
	assert.Equal(t, 33.0, *filter.Latitude)
	assert.Equal(t, 2.0, filter.RadiusMiles)
}

func TestDerive_SoldWindowOnlyWhenSoldRequested(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deriver := NewDeriverAt(func() time.Time { return fixed })

	mc := testCriteria()
	mc.SoldWithinDays = 90

	filter, err := deriver.Derive(testSubject(), mc)
	require.NoError(t, err)
	require.NotNil(t, filter.SoldAfter)
	require.NotNil(t, filter.SoldBefore)
	// The window is anchored to the UTC date, not the clock instant.
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today.AddDate(0, 0, -90), *filter.SoldAfter)
	assert.Equal(t, today, *filter.SoldBefore)

	// Sold not requested: no window even with a days value.
	mc.IncludeSold = false
	filter, err = deriver.Derive(testSubject(), mc)
	require.NoError(t, err)
	assert.Nil(t, filter.SoldAfter)
	assert.Nil(t, filter.SoldBefore)
}

func TestDerive_SoldWindowStableWithinDay(t *testing.T) {
	// Two derivations of the same subject and criteria moments apart must
	// agree on the filter, or the result cache can never hit.
	base := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	first := NewDeriverAt(func() time.Time { return base })
	second := NewDeriverAt(func() time.Time { return base.Add(5 * time.Millisecond) })

	mc := testCriteria()
	mc.SoldWithinDays = 180

	filterA, err := first.Derive(testSubject(), mc)
	require.NoError(t, err)
	filterB, err := second.Derive(testSubject(), mc)
	require.NoError(t, err)

	assert.Equal(t, *filterA.SoldAfter, *filterB.SoldAfter)
	assert.Equal(t, filterA.CacheKey(), filterB.CacheKey())
}

func TestDerive_RejectsIncompleteSubject(t *testing.T) {
	deriver := NewDeriver()

	subjects := []models.Property{
		{},
		{Bedrooms: 3},
		{Bedrooms: 3, Bathrooms: decimal.NewFromInt(2)},
		{Bedrooms: 3, Bathrooms: decimal.NewFromInt(2), Sqft: decimal.NewFromInt(2000)},
	}

	for _, subject := range subjects {
		_, err := deriver.Derive(subject, testCriteria())
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestDerive_RejectsNoStatusSelected(t *testing.T) {
	deriver := NewDeriver()
	mc := testCriteria()
	mc.IncludeActive = false
	mc.IncludePending = false
	mc.IncludeSold = false

	_, err := deriver.Derive(testSubject(), mc)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDerive_RejectsNegativeTolerances(t *testing.T) {
	deriver := NewDeriver()
	mc := testCriteria()
	mc.BedsRange = -1

	_, err := deriver.Derive(testSubject(), mc)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDerive_StatusSetInCanonicalOrder(t *testing.T) {
	deriver := NewDeriver()
	mc := testCriteria()
	mc.IncludePending = false

	filter, err := deriver.Derive(testSubject(), mc)

	require.NoError(t, err)
	assert.Equal(t, []models.ListingStatus{models.StatusActive, models.StatusSold}, filter.Statuses)
}
