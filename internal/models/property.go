package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyType classifies the structural category of a listing.
type PropertyType string

const (
	SingleFamily PropertyType = "single_family"
	Condo        PropertyType = "condo"
	Townhouse    PropertyType = "townhouse"
	MultiFamily  PropertyType = "multi_family"
	Land         PropertyType = "land"
)

// ValidPropertyTypes is the set of recognized property types.
var ValidPropertyTypes = []PropertyType{SingleFamily, Condo, Townhouse, MultiFamily, Land}

// IsValid checks if a property type is recognized.
func (t PropertyType) IsValid() bool {
	for _, v := range ValidPropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the property type.
func (t PropertyType) Label() string {
	switch t {
	case SingleFamily:
		return "Single Family"
	case Condo:
		return "Condo"
	case Townhouse:
		return "Townhouse"
	case MultiFamily:
		return "Multi-Family"
	case Land:
		return "Land"
	default:
		return string(t)
	}
}

// ListingStatus represents the market status of a listing at fetch time.
type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPending ListingStatus = "pending"
	StatusSold    ListingStatus = "sold"
)

// ValidStatuses is the set of recognized listing statuses.
var ValidStatuses = []ListingStatus{StatusActive, StatusPending, StatusSold}

// IsValid checks if a listing status is recognized.
func (s ListingStatus) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Property represents a real-world listing or sale record used as a CMA
// subject or comparable. A Property is immutable for the duration of one
// matching run; callers receive copies and never share instances across runs.
// All nullable fields use pointers to distinguish between zero values and
// "not recorded".
type Property struct {
	ID          uuid.UUID        `json:"id"`
	Street      string           `json:"street"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	Zip         string           `json:"zip"`
	Price       decimal.Decimal  `json:"price"`
	Bedrooms    int              `json:"bedrooms"`
	Bathrooms   decimal.Decimal  `json:"bathrooms"`
	Sqft        decimal.Decimal  `json:"sqft"`
	LotSize     *decimal.Decimal `json:"lot_size,omitempty"`
	YearBuilt   *int             `json:"year_built,omitempty"`
	Type        PropertyType     `json:"type"`
	Status      ListingStatus    `json:"status"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	SaleDate    *time.Time       `json:"sale_date,omitempty"`
	HasGarage   *bool            `json:"has_garage,omitempty"`
	HasBasement *bool            `json:"has_basement,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FullAddress returns the single-line mailing address for display rows.
func (p Property) FullAddress() string {
	return p.Street + ", " + p.City + ", " + p.State + " " + p.Zip
}

// DedupKey returns the key used to collapse the same listing returned by
// multiple data sources: lowercase street plus zip.
func (p Property) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(p.Street)) + "|" + strings.TrimSpace(p.Zip)
}
