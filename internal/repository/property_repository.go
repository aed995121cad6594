package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cxr0514/AgentsHub-sub000/internal/database"
	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Maximum number of comps returned from one local search.
const maxSearchResults = 50

// PropertyRepository defines the interface for property data access.
type PropertyRepository interface {
	// GetByID fetches a single property.
	// Returns nil, nil if the property does not exist (not an error).
	// Returns error only for actual database failures.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)

	// SearchLocal finds properties in the local store matching the filter.
	// Returns an empty slice if nothing matches (not an error).
	// Returns error only for actual database failures.
	SearchLocal(ctx context.Context, filter models.SearchFilter) ([]models.Property, error)
}

// propertyRepository is the concrete implementation of PropertyRepository.
type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{
		db: db,
	}
}

const propertyColumns = `
	id,
	street,
	city,
	state,
	zip,
	price,
	bedrooms,
	bathrooms,
	sqft,
	lot_size,
	year_built,
	property_type,
	status,
	latitude,
	longitude,
	sale_date,
	has_garage,
	has_basement,
	created_at,
	updated_at
`

// GetByID fetches one property by primary key.
func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	property, err := scanProperty(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}

	return property, nil
}

// SearchLocal builds a WHERE clause from the filter's present bounds and
// runs it against the properties table. The geographic constraint is the
// filter's bounding box, not a true radius; the box intentionally matches
// the rest of the engine's approximation.
func (r *propertyRepository) SearchLocal(ctx context.Context, filter models.SearchFilter) ([]models.Property, error) {
	var (
		clauses []string
		args    []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	clauses = append(clauses, "bedrooms >= "+arg(filter.MinBeds))
	clauses = append(clauses, "bedrooms <= "+arg(filter.MaxBeds))
	clauses = append(clauses, "bathrooms >= "+arg(filter.MinBaths))
	clauses = append(clauses, "bathrooms <= "+arg(filter.MaxBaths))
	clauses = append(clauses, "sqft >= "+arg(filter.MinSqft))
	clauses = append(clauses, "sqft <= "+arg(filter.MaxSqft))
	clauses = append(clauses, "price >= "+arg(filter.MinPrice))
	clauses = append(clauses, "price <= "+arg(filter.MaxPrice))

	if filter.MinYearBuilt != nil && filter.MaxYearBuilt != nil {
		clauses = append(clauses, "year_built >= "+arg(*filter.MinYearBuilt))
		clauses = append(clauses, "year_built <= "+arg(*filter.MaxYearBuilt))
	}
	if filter.MinLotSize != nil && filter.MaxLotSize != nil {
		clauses = append(clauses, "lot_size >= "+arg(*filter.MinLotSize))
		clauses = append(clauses, "lot_size <= "+arg(*filter.MaxLotSize))
	}
	if filter.PropertyType != nil {
		clauses = append(clauses, "property_type = "+arg(string(*filter.PropertyType)))
	}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, arg(string(status)))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if minLat, maxLat, minLng, maxLng, ok := filter.BoundingBox(); ok {
		clauses = append(clauses, "latitude >= "+arg(minLat))
		clauses = append(clauses, "latitude <= "+arg(maxLat))
		clauses = append(clauses, "longitude >= "+arg(minLng))
		clauses = append(clauses, "longitude <= "+arg(maxLng))
	}

	if filter.SoldAfter != nil && filter.SoldBefore != nil {
		// The sale-date window only constrains sold rows; active and
		// pending listings have no sale date.
		clauses = append(clauses, "(status <> 'sold' OR (sale_date >= "+arg(*filter.SoldAfter)+" AND sale_date <= "+arg(*filter.SoldBefore)+"))")
	}

	if filter.RequireGarage {
		clauses = append(clauses, "has_garage = TRUE")
	}
	if filter.RequireBasement {
		clauses = append(clauses, "has_basement = TRUE")
	}

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE ` +
		strings.Join(clauses, " AND ") +
		` ORDER BY updated_at DESC LIMIT ` + arg(maxSearchResults)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	var results []models.Property

	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		results = append(results, *property)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	// Return empty slice if nothing matched (not an error)
	if results == nil {
		results = []models.Property{}
	}

	return results, nil
}

// scanProperty reads one property row. pgx scans numeric columns into
// decimal.Decimal via its database/sql Scanner.
func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p            models.Property
		propertyType string
		status       string
	)
	err := row.Scan(
		&p.ID,
		&p.Street,
		&p.City,
		&p.State,
		&p.Zip,
		&p.Price,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Sqft,
		&p.LotSize,
		&p.YearBuilt,
		&propertyType,
		&status,
		&p.Latitude,
		&p.Longitude,
		&p.SaleDate,
		&p.HasGarage,
		&p.HasBasement,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = models.PropertyType(propertyType)
	p.Status = models.ListingStatus(status)
	return &p, nil
}
