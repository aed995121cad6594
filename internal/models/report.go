package models

import (
	"time"

	"github.com/google/uuid"
)

// SectionName identifies one section of a CMA report.
type SectionName string

const (
	SectionCover           SectionName = "cover"
	SectionTOC             SectionName = "table_of_contents"
	SectionPropertyDetails SectionName = "property_details"
	SectionComps           SectionName = "comps"
	SectionAdjustments     SectionName = "adjustments"
	SectionCharts          SectionName = "charts"
	SectionNotes           SectionName = "notes"
)

// SectionOrder is the canonical ordering of report sections. Page numbering
// walks this slice and assigns one page per enabled section, so reordering
// it changes every downstream page reference.
var SectionOrder = []SectionName{
	SectionCover,
	SectionTOC,
	SectionPropertyDetails,
	SectionComps,
	SectionAdjustments,
	SectionCharts,
	SectionNotes,
}

// SectionFlags enumerates every recognized report section and whether the
// caller wants it included. Disabled sections contribute no page and no
// table-of-contents entry.
type SectionFlags struct {
	Cover           bool `json:"cover"`
	TOC             bool `json:"toc"`
	PropertyDetails bool `json:"property_details"`
	Comps           bool `json:"comps"`
	Adjustments     bool `json:"adjustments"`
	Charts          bool `json:"charts"`
	Notes           bool `json:"notes"`
}

// AllSections returns flags with every section enabled.
func AllSections() SectionFlags {
	return SectionFlags{
		Cover:           true,
		TOC:             true,
		PropertyDetails: true,
		Comps:           true,
		Adjustments:     true,
		Charts:          true,
		Notes:           true,
	}
}

// Enabled reports whether the named section is requested.
func (f SectionFlags) Enabled(name SectionName) bool {
	switch name {
	case SectionCover:
		return f.Cover
	case SectionTOC:
		return f.TOC
	case SectionPropertyDetails:
		return f.PropertyDetails
	case SectionComps:
		return f.Comps
	case SectionAdjustments:
		return f.Adjustments
	case SectionCharts:
		return f.Charts
	case SectionNotes:
		return f.Notes
	default:
		return false
	}
}

// ReportSection is one entry in the report's ordered section list. Page is
// zero for disabled sections.
type ReportSection struct {
	Name    SectionName `json:"name"`
	Title   string      `json:"title"`
	Enabled bool        `json:"enabled"`
	Page    int         `json:"page"`
}

// TOCEntry is one line of the table of contents.
type TOCEntry struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// ReportModel is the fully-resolved, paginated report document handed to
// the rendering collaborator. It is built once per report request, consumed
// once, and discarded.
type ReportModel struct {
	ID          uuid.UUID         `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Subject     Property          `json:"subject"`
	Comps       CompResult        `json:"comps"`
	Adjustments []CompAdjustments `json:"adjustments"`
	Valuation   Valuation         `json:"valuation"`
	Sections    []ReportSection   `json:"sections"`
	TOC         []TOCEntry        `json:"toc"`
	Notes       string            `json:"notes,omitempty"`
	Commentary  string            `json:"commentary,omitempty"`
	PageCount   int               `json:"page_count"`
}

// SectionTitle returns the display title for a section name.
func SectionTitle(name SectionName) string {
	switch name {
	case SectionCover:
		return "Cover Page"
	case SectionTOC:
		return "Table of Contents"
	case SectionPropertyDetails:
		return "Property Details"
	case SectionComps:
		return "Comparable Properties"
	case SectionAdjustments:
		return "Adjustments"
	case SectionCharts:
		return "Charts"
	case SectionNotes:
		return "Notes"
	default:
		return string(name)
	}
}
