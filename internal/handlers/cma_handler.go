package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apierrors "github.com/cxr0514/AgentsHub-sub000/internal/errors"
	"github.com/cxr0514/AgentsHub-sub000/internal/middleware"
	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/cxr0514/AgentsHub-sub000/internal/report"
	"github.com/cxr0514/AgentsHub-sub000/internal/services"
)

// CMAHandler handles comparative-market-analysis HTTP requests.
type CMAHandler struct {
	service services.CMAService
}

// NewCMAHandler creates a new CMAHandler instance.
func NewCMAHandler(service services.CMAService) *CMAHandler {
	return &CMAHandler{
		service: service,
	}
}

// DeriveCriteriaRequest is the body for the criteria endpoint.
type DeriveCriteriaRequest struct {
	Subject  models.Property      `json:"subject" binding:"required"`
	Criteria models.MatchCriteria `json:"criteria"`
}

// SearchRequest is the body for the comp search endpoint.
type SearchRequest struct {
	Filter models.SearchFilter `json:"filter" binding:"required"`
}

// ValuationRequest is the body for the valuation endpoint. An absent
// multiplier selects the configured default; an explicit 0 is honored.
type ValuationRequest struct {
	Subject    models.Property   `json:"subject" binding:"required"`
	Comps      models.CompResult `json:"comps"`
	Multiplier *float64          `json:"multiplier" binding:"omitempty,gte=0,lte=1"`
}

// ValuationResponse pairs the valuation with its adjustment tables.
type ValuationResponse struct {
	Valuation   models.Valuation         `json:"valuation"`
	Adjustments []models.CompAdjustments `json:"adjustments"`
}

// GenerateReportRequest is the body for the report endpoint. Either
// subject_id or an inline subject must be provided.
type GenerateReportRequest struct {
	SubjectID  string               `json:"subject_id" binding:"omitempty,uuid"`
	Subject    *models.Property     `json:"subject"`
	Criteria   models.MatchCriteria `json:"criteria"`
	Multiplier *float64             `json:"multiplier" binding:"omitempty,gte=0,lte=1"`
	Sections   models.SectionFlags  `json:"sections"`
	Notes      string               `json:"notes"`
}

// decimalMultiplier converts an optional wire multiplier, preserving the
// unset/zero distinction.
func decimalMultiplier(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	m := decimal.NewFromFloat(*v)
	return &m
}

// DeriveCriteria handles POST /api/v1/cma/criteria.
// It derives a search filter from a subject property and match tolerances.
func (h *CMAHandler) DeriveCriteria(c *gin.Context) {
	var req DeriveCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	filter, err := h.service.DeriveCriteria(req.Subject, req.Criteria)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCriteria) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to derive search criteria", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"filter": filter})
}

// SearchComps handles POST /api/v1/cma/search.
// The search itself never fails; a degraded result carries its own flag.
func (h *CMAHandler) SearchComps(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	result := h.service.SearchComps(c.Request.Context(), req.Filter)

	if result.Degraded && log != nil {
		log.Warn("Returning degraded comp search result", map[string]interface{}{
			"reason": result.DegradedReason,
		})
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ComputeValuation handles POST /api/v1/cma/valuation.
func (h *CMAHandler) ComputeValuation(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	result, adjustments, err := h.service.ComputeValuation(req.Subject, req.Comps, decimalMultiplier(req.Multiplier))
	if err != nil {
		if errors.Is(err, services.ErrInvalidMultiplier) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to compute valuation", err)
		return
	}

	c.JSON(http.StatusOK, ValuationResponse{
		Valuation:   result,
		Adjustments: adjustments,
	})
}

// GenerateReport handles POST /api/v1/cma/reports.
// It runs the full pipeline and returns the paginated report model.
func (h *CMAHandler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	serviceReq := services.GenerateReportRequest{
		Subject:    req.Subject,
		Criteria:   req.Criteria,
		Multiplier: decimalMultiplier(req.Multiplier),
		Sections:   req.Sections,
		Notes:      req.Notes,
	}
	if req.SubjectID != "" {
		id, err := uuid.Parse(req.SubjectID)
		if err != nil {
			apierrors.BadRequest(c, "subject_id must be a valid UUID", nil)
			return
		}
		serviceReq.SubjectID = id
	}

	model, err := h.service.GenerateReport(c.Request.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "Subject property not found")
			return
		}
		if errors.Is(err, services.ErrInvalidCriteria) || errors.Is(err, services.ErrInvalidMultiplier) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to generate report", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": model})
}

// BuildReportRequest is the body for the assemble-only endpoint.
type BuildReportRequest struct {
	Subject     models.Property          `json:"subject" binding:"required"`
	Comps       models.CompResult        `json:"comps"`
	Adjustments []models.CompAdjustments `json:"adjustments"`
	Valuation   models.Valuation         `json:"valuation"`
	Sections    models.SectionFlags      `json:"sections"`
	Notes       string                   `json:"notes"`
}

// BuildReport handles POST /api/v1/cma/reports/assemble.
// It assembles an already-computed valuation into a report model without
// re-running the search, which lets callers preview pagination changes.
func (h *CMAHandler) BuildReport(c *gin.Context) {
	var req BuildReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	model := h.service.BuildReport(report.AssembleInput{
		Subject:     req.Subject,
		Comps:       req.Comps,
		Adjustments: req.Adjustments,
		Valuation:   req.Valuation,
		Sections:    req.Sections,
		Notes:       req.Notes,
	})

	c.JSON(http.StatusOK, gin.H{"report": model})
}
