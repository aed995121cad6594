package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cxr0514/AgentsHub-sub000/internal/commentary"
	"github.com/cxr0514/AgentsHub-sub000/internal/criteria"
	"github.com/cxr0514/AgentsHub-sub000/internal/logger"
	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/cxr0514/AgentsHub-sub000/internal/report"
	"github.com/cxr0514/AgentsHub-sub000/internal/repository"
	"github.com/cxr0514/AgentsHub-sub000/internal/search"
	"github.com/cxr0514/AgentsHub-sub000/internal/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service-level errors
var (
	ErrInvalidCriteria   = errors.New("invalid match criteria")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrInvalidMultiplier = errors.New("invalid valuation multiplier")
)

// Renderer is the rendering collaborator: it turns an assembled report
// model into document bytes. The core never repairs or retries a render
// failure; RenderError conditions propagate to the caller as-is.
type Renderer interface {
	Render(model models.ReportModel) ([]byte, error)
}

// GenerateReportRequest is the input for a full matching-and-report run.
// Either SubjectID or Subject must be set; an inline Subject wins. A nil
// Multiplier selects the configured default; an explicit zero is honored.
type GenerateReportRequest struct {
	SubjectID  uuid.UUID
	Subject    *models.Property
	Criteria   models.MatchCriteria
	Multiplier *decimal.Decimal
	Sections   models.SectionFlags
	Notes      string
}

// CMAService defines the comparable-property matching and valuation
// interface exposed to the surrounding application.
type CMAService interface {
	// DeriveCriteria turns a subject property and tolerances into a filter.
	// Returns ErrInvalidCriteria (wrapped) on validation failure.
	DeriveCriteria(subject models.Property, mc models.MatchCriteria) (models.SearchFilter, error)

	// SearchComps executes a filter. Never errors; source failures degrade
	// to a flagged, possibly empty result.
	SearchComps(ctx context.Context, filter models.SearchFilter) models.CompResult

	// ComputeValuation computes ARV/MAO and per-comp adjustment tables.
	// A nil multiplier selects the configured default. Returns
	// ErrInvalidMultiplier (wrapped) when multiplier is outside [0,1].
	ComputeValuation(subject models.Property, comps models.CompResult, multiplier *decimal.Decimal) (models.Valuation, []models.CompAdjustments, error)

	// BuildReport assembles the paginated report model.
	BuildReport(input report.AssembleInput) models.ReportModel

	// GenerateReport runs the full pipeline: fetch subject, derive, search,
	// value, and assemble. Returns ErrPropertyNotFound when SubjectID does
	// not resolve, ErrInvalidCriteria or ErrInvalidMultiplier on bad input.
	GenerateReport(ctx context.Context, req GenerateReportRequest) (models.ReportModel, error)
}

// cmaService is the concrete implementation of CMAService.
type cmaService struct {
	repo              repository.PropertyRepository
	deriver           *criteria.Deriver
	search            search.Orchestrator
	assembler         *report.Assembler
	commentary        commentary.Generator
	defaultMultiplier decimal.Decimal
	log               *logger.Logger
}

// NewCMAService creates a new instance of CMAService. commentaryGen may be
// nil when no commentary provider is configured. A zero defaultMultiplier
// falls back to the standard 70% rule.
func NewCMAService(
	repo repository.PropertyRepository,
	deriver *criteria.Deriver,
	orchestrator search.Orchestrator,
	assembler *report.Assembler,
	commentaryGen commentary.Generator,
	defaultMultiplier decimal.Decimal,
	log *logger.Logger,
) CMAService {
	return &cmaService{
		repo:              repo,
		deriver:           deriver,
		search:            orchestrator,
		assembler:         assembler,
		commentary:        commentaryGen,
		defaultMultiplier: defaultMultiplier,
		log:               log,
	}
}

// DeriveCriteria validates inputs and derives the search filter.
func (s *cmaService) DeriveCriteria(subject models.Property, mc models.MatchCriteria) (models.SearchFilter, error) {
	filter, err := s.deriver.Derive(subject, mc)
	if err != nil {
		s.log.Warn("Criteria derivation rejected", map[string]interface{}{
			"subject_id": subject.ID,
			"error":      err.Error(),
		})
		return models.SearchFilter{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}

	s.log.Debug("Derived search filter", map[string]interface{}{
		"subject_id": subject.ID,
		"min_price":  filter.MinPrice,
		"max_price":  filter.MaxPrice,
		"statuses":   filter.Statuses,
	})

	return filter, nil
}

// SearchComps delegates to the orchestrator.
func (s *cmaService) SearchComps(ctx context.Context, filter models.SearchFilter) models.CompResult {
	return s.search.SearchComps(ctx, filter)
}

// ComputeValuation delegates to the valuation engine. A nil multiplier
// selects the configured default.
func (s *cmaService) ComputeValuation(subject models.Property, comps models.CompResult, multiplier *decimal.Decimal) (models.Valuation, []models.CompAdjustments, error) {
	if multiplier == nil && !s.defaultMultiplier.IsZero() {
		m := s.defaultMultiplier
		multiplier = &m
	}
	result, adjustments, err := valuation.Compute(subject, comps, multiplier)
	if err != nil {
		return models.Valuation{}, nil, fmt.Errorf("%w: %v", ErrInvalidMultiplier, err)
	}

	s.log.Info("Valuation computed", map[string]interface{}{
		"subject_id":      subject.ID,
		"sold_comp_count": result.SoldCompCount,
		"has_arv":         result.ARV != nil,
	})

	return result, adjustments, nil
}

// BuildReport delegates to the assembler.
func (s *cmaService) BuildReport(input report.AssembleInput) models.ReportModel {
	return s.assembler.Assemble(input)
}

// GenerateReport runs one full matching-and-report-build run. Stages run
// strictly forward: resolve subject, derive criteria, search, value,
// commentary, assemble. Commentary is best-effort; its failure never
// blocks the report.
func (s *cmaService) GenerateReport(ctx context.Context, req GenerateReportRequest) (models.ReportModel, error) {
	subject, err := s.resolveSubject(ctx, req)
	if err != nil {
		return models.ReportModel{}, err
	}

	filter, err := s.DeriveCriteria(*subject, req.Criteria)
	if err != nil {
		return models.ReportModel{}, err
	}

	comps := s.SearchComps(ctx, filter)

	result, adjustments, err := s.ComputeValuation(*subject, comps, req.Multiplier)
	if err != nil {
		return models.ReportModel{}, err
	}

	commentaryText := ""
	if s.commentary != nil && req.Sections.Notes {
		commentaryText, err = s.commentary.MarketCommentary(ctx, *subject, result, comps.Total())
		if err != nil {
			s.log.Warn("Market commentary unavailable, continuing without it", map[string]interface{}{
				"subject_id": subject.ID,
				"error":      err.Error(),
			})
			commentaryText = ""
		}
	}

	model := s.assembler.Assemble(report.AssembleInput{
		Subject:     *subject,
		Comps:       comps,
		Adjustments: adjustments,
		Valuation:   result,
		Sections:    req.Sections,
		Notes:       req.Notes,
		Commentary:  commentaryText,
	})

	s.log.Info("Report generated", map[string]interface{}{
		"report_id":  model.ID,
		"subject_id": subject.ID,
		"pages":      model.PageCount,
		"comps":      comps.Total(),
		"degraded":   comps.Degraded,
	})

	return model, nil
}

// resolveSubject returns the inline subject when present, otherwise loads
// it from the store. A repository nil,nil becomes ErrPropertyNotFound.
func (s *cmaService) resolveSubject(ctx context.Context, req GenerateReportRequest) (*models.Property, error) {
	if req.Subject != nil {
		return req.Subject, nil
	}

	if req.SubjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: no subject provided", ErrInvalidCriteria)
	}

	subject, err := s.repo.GetByID(ctx, req.SubjectID)
	if err != nil {
		s.log.Error("Failed to load subject property", err, map[string]interface{}{
			"subject_id": req.SubjectID,
		})
		return nil, fmt.Errorf("failed to load subject property: %w", err)
	}
	if subject == nil {
		s.log.Debug("Subject property not found", map[string]interface{}{
			"subject_id": req.SubjectID,
		})
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, req.SubjectID)
	}

	return subject, nil
}
