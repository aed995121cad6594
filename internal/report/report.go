// Package report assembles the subject, comps, adjustments, and valuation
// into an ordered, paginated ReportModel. The assembler resolves section
// ordering and page numbers; turning the model into PDF or spreadsheet
// bytes belongs to the rendering collaborator.
package report

import (
	"time"

	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/google/uuid"
)

// AssembleInput carries everything the assembler needs for one report.
type AssembleInput struct {
	Subject     models.Property
	Comps       models.CompResult
	Adjustments []models.CompAdjustments
	Valuation   models.Valuation
	Sections    models.SectionFlags
	Notes       string
	Commentary  string
}

// Assembler builds report models. The zero value is not usable; use
// NewAssembler.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an Assembler using the real clock.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// NewAssemblerAt creates an Assembler with a fixed clock, for tests.
func NewAssemblerAt(now func() time.Time) *Assembler {
	return &Assembler{now: now}
}

// Assemble builds the paginated report model.
//
// Pages are assigned by walking models.SectionOrder and giving each enabled
// section exactly one page, starting at 1. Disabled sections keep Page=0
// and never appear in the table of contents. Content overflow within a
// section is a rendering-layer concern and does not affect these numbers.
// The table of contents lists every enabled section except itself.
func (a *Assembler) Assemble(input AssembleInput) models.ReportModel {
	model := models.ReportModel{
		ID:          uuid.New(),
		GeneratedAt: a.now(),
		Subject:     input.Subject,
		Comps:       input.Comps,
		Adjustments: input.Adjustments,
		Valuation:   input.Valuation,
		Notes:       input.Notes,
		Commentary:  input.Commentary,
	}

	page := 0
	sections := make([]models.ReportSection, 0, len(models.SectionOrder))
	toc := make([]models.TOCEntry, 0, len(models.SectionOrder))

	for _, name := range models.SectionOrder {
		section := models.ReportSection{
			Name:  name,
			Title: models.SectionTitle(name),
		}

		if input.Sections.Enabled(name) {
			page++
			section.Enabled = true
			section.Page = page

			if name != models.SectionTOC {
				toc = append(toc, models.TOCEntry{
					Title: section.Title,
					Page:  section.Page,
				})
			}
		}

		sections = append(sections, section)
	}

	model.Sections = sections
	model.TOC = toc
	model.PageCount = page

	return model
}
