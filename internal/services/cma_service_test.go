package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cxr0514/AgentsHub-sub000/internal/commentary"
	"github.com/cxr0514/AgentsHub-sub000/internal/criteria"
	"github.com/cxr0514/AgentsHub-sub000/internal/logger"
	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/cxr0514/AgentsHub-sub000/internal/report"
)

// MockPropertyRepository is a mock implementation of repository.PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) SearchLocal(ctx context.Context, filter models.SearchFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

// MockOrchestrator is a mock implementation of search.Orchestrator for testing
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) SearchComps(ctx context.Context, filter models.SearchFilter) models.CompResult {
	args := m.Called(ctx, filter)
	return args.Get(0).(models.CompResult)
}

// MockCommentary is a mock implementation of commentary.Generator for testing
type MockCommentary struct {
	mock.Mock
}

func (m *MockCommentary) MarketCommentary(ctx context.Context, subject models.Property, valuation models.Valuation, compCount int) (string, error) {
	args := m.Called(ctx, subject, valuation, compCount)
	return args.String(0), args.Error(1)
}

func testSubject() models.Property {
	yearBuilt := 2005
	return models.Property{
		ID:        uuid.New(),
		Street:    "100 Main St",
		City:      "Fort Worth",
		State:     "TX",
		Zip:       "76102",
		Bedrooms:  3,
		Bathrooms: decimal.NewFromInt(2),
		Sqft:      decimal.NewFromInt(2200),
		Price:     decimal.NewFromInt(450000),
		YearBuilt: &yearBuilt,
		Type:      models.SingleFamily,
	}
}

func soldComps() models.CompResult {
	sold := testSubject()
	sold.ID = uuid.New()
	sold.Street = "200 Oak Ave"
	sold.Status = models.StatusSold
	sold.Price = decimal.NewFromInt(430000)
	return models.CompResult{Sold: []models.Property{sold}}
}

func newTestService(repo *MockPropertyRepository, orch *MockOrchestrator, com *MockCommentary) CMAService {
	log := logger.New("test")
	var gen commentary.Generator
	if com != nil {
		gen = com
	}
	return NewCMAService(repo, criteria.NewDeriver(), orch, report.NewAssembler(), gen, decimal.Zero, log)
}

func TestGenerateReport_FullPipeline(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	mockOrch := new(MockOrchestrator)
	mockCom := new(MockCommentary)
	service := newTestService(mockRepo, mockOrch, mockCom)

	subject := testSubject()
	mockRepo.On("GetByID", mock.Anything, subject.ID).Return(&subject, nil)
	mockOrch.On("SearchComps", mock.Anything, mock.Anything).Return(soldComps())
	mockCom.On("MarketCommentary", mock.Anything, mock.Anything, mock.Anything, 1).Return("steady market", nil)

	// Act
	model, err := service.GenerateReport(context.Background(), GenerateReportRequest{
		SubjectID: subject.ID,
		Criteria:  models.DefaultMatchCriteria(),
		Sections:  models.AllSections(),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, subject.ID, model.Subject.ID)
	assert.Equal(t, 7, model.PageCount)
	assert.Len(t, model.Adjustments, 1)
	require.NotNil(t, model.Valuation.ARV)
	assert.Equal(t, "steady market", model.Commentary)
	mockRepo.AssertExpectations(t)
	mockOrch.AssertExpectations(t)
}

func TestGenerateReport_SubjectNotFound(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	mockOrch := new(MockOrchestrator)
	service := newTestService(mockRepo, mockOrch, nil)

	id := uuid.New()
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := service.GenerateReport(context.Background(), GenerateReportRequest{
		SubjectID: id,
		Criteria:  models.DefaultMatchCriteria(),
	})

	assert.ErrorIs(t, err, ErrPropertyNotFound)
	mockOrch.AssertNotCalled(t, "SearchComps")
}

func TestGenerateReport_InlineSubjectSkipsStore(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	mockOrch := new(MockOrchestrator)
	service := newTestService(mockRepo, mockOrch, nil)

	subject := testSubject()
	mockOrch.On("SearchComps", mock.Anything, mock.Anything).Return(soldComps())

	model, err := service.GenerateReport(context.Background(), GenerateReportRequest{
		Subject:  &subject,
		Criteria: models.DefaultMatchCriteria(),
		Sections: models.SectionFlags{Cover: true, Comps: true},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, model.PageCount)
	mockRepo.AssertNotCalled(t, "GetByID")
}

func TestGenerateReport_NoSubjectRejected(t *testing.T) {
	service := newTestService(new(MockPropertyRepository), new(MockOrchestrator), nil)

	_, err := service.GenerateReport(context.Background(), GenerateReportRequest{
		Criteria: models.DefaultMatchCriteria(),
	})

	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestGenerateReport_InvalidCriteriaRejected(t *testing.T) {
	service := newTestService(new(MockPropertyRepository), new(MockOrchestrator), nil)

	subject := testSubject()
	mc := models.DefaultMatchCriteria()
	mc.IncludeActive = false
	mc.IncludePending = false
	mc.IncludeSold = false

	_, err := service.GenerateReport(context.Background(), GenerateReportRequest{
		Subject:  &subject,
		Criteria: mc,
	})

	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestGenerateReport_CommentaryFailureDoesNotBlock(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	mockOrch := new(MockOrchestrator)
	mockCom := new(MockCommentary)
	service := newTestService(mockRepo, mockOrch, mockCom)

	subject := testSubject()
	mockOrch.On("SearchComps", mock.Anything, mock.Anything).Return(soldComps())
	mockCom.On("MarketCommentary", mock.Anything, mock.Anything, mock.Anything, 1).
		Return("", errors.New("rate limited"))

	model, err := service.GenerateReport(context.Background(), GenerateReportRequest{
		Subject:  &subject,
		Criteria: models.DefaultMatchCriteria(),
		Sections: models.AllSections(),
	})

	require.NoError(t, err)
	assert.Empty(t, model.Commentary)
}

func TestComputeValuation_InvalidMultiplier(t *testing.T) {
	service := newTestService(new(MockPropertyRepository), new(MockOrchestrator), nil)

	two := decimal.NewFromInt(2)
	_, _, err := service.ComputeValuation(testSubject(), soldComps(), &two)

	assert.ErrorIs(t, err, ErrInvalidMultiplier)
}

func TestComputeValuation_NilMultiplierUsesConfiguredDefault(t *testing.T) {
	log := logger.New("test")
	service := NewCMAService(new(MockPropertyRepository), criteria.NewDeriver(), new(MockOrchestrator),
		report.NewAssembler(), nil, decimal.NewFromFloat(0.65), log)

	result, _, err := service.ComputeValuation(testSubject(), soldComps(), nil)

	require.NoError(t, err)
	assert.True(t, result.Multiplier.Equal(decimal.NewFromFloat(0.65)), "multiplier: %s", result.Multiplier)
}

func TestComputeValuation_ExplicitZeroOverridesDefault(t *testing.T) {
	log := logger.New("test")
	service := NewCMAService(new(MockPropertyRepository), criteria.NewDeriver(), new(MockOrchestrator),
		report.NewAssembler(), nil, decimal.NewFromFloat(0.70), log)

	zero := decimal.Zero
	result, _, err := service.ComputeValuation(testSubject(), soldComps(), &zero)

	require.NoError(t, err)
	assert.True(t, result.Multiplier.IsZero())
	require.NotNil(t, result.MAO)
	assert.True(t, result.MAO.IsZero(), "MAO: %s", result.MAO)
}

func TestDeriveCriteria_WrapsValidationErrors(t *testing.T) {
	service := newTestService(new(MockPropertyRepository), new(MockOrchestrator), nil)

	_, err := service.DeriveCriteria(models.Property{}, models.DefaultMatchCriteria())

	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestSearchComps_PassesThroughDegradedResults(t *testing.T) {
	mockOrch := new(MockOrchestrator)
	service := newTestService(new(MockPropertyRepository), mockOrch, nil)

	degraded := models.CompResult{Degraded: true, DegradedReason: "market data provider unavailable"}
	mockOrch.On("SearchComps", mock.Anything, mock.Anything).Return(degraded)

	result := service.SearchComps(context.Background(), models.SearchFilter{})

	assert.True(t, result.Degraded)
}
