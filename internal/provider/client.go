// Package provider implements the client for the external market-data
// provider: an HTTP listing search keyed by an out-of-band API credential.
// Every failure mode at this boundary (non-2xx, malformed payload, network
// error, timeout) is reported as ErrProviderUnavailable; the search
// orchestrator absorbs it rather than surfacing it to callers.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cxr0514/AgentsHub-sub000/internal/logger"
	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrProviderUnavailable wraps every provider failure mode.
var ErrProviderUnavailable = errors.New("market data provider unavailable")

// Client is the interface consumed by the search orchestrator.
type Client interface {
	// Search queries the provider for listings matching the filter.
	// Returns ErrProviderUnavailable (wrapped) on any failure.
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Property, error)
}

// HTTPClient is the production Client backed by the provider's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	httpc   *http.Client
	log     *logger.Logger
}

// NewHTTPClient creates a provider client. The timeout bounds each Search
// call; a timed-out call is indistinguishable from any other provider
// failure to the caller.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// listingPayload is the provider's wire format for one listing.
type listingPayload struct {
	ListingID   string   `json:"listing_id"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Zip         string   `json:"zip"`
	Price       string   `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   string   `json:"bathrooms"`
	Sqft        string   `json:"sqft"`
	LotSize     *string  `json:"lot_size,omitempty"`
	YearBuilt   *int     `json:"year_built,omitempty"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	SaleDate    *string  `json:"sale_date,omitempty"`
	HasGarage   *bool    `json:"has_garage,omitempty"`
	HasBasement *bool    `json:"has_basement,omitempty"`
}

// searchResponse is the provider's search envelope.
type searchResponse struct {
	Listings []listingPayload `json:"listings"`
	Count    int              `json:"count"`
}

// Search posts the filter to the provider's search endpoint and maps the
// response payload into domain properties. Listings with an unrecognized
// status or an unparseable price are dropped, not treated as failures.
func (c *HTTPClient) Search(ctx context.Context, filter models.SearchFilter) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding filter: %v", ErrProviderUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/listings/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrProviderUnavailable, err)
	}

	properties := make([]models.Property, 0, len(payload.Listings))
	dropped := 0
	for _, listing := range payload.Listings {
		property, ok := c.mapListing(listing)
		if !ok {
			dropped++
			continue
		}
		properties = append(properties, property)
	}

	if dropped > 0 && c.log != nil {
		c.log.Warn("Dropped unmappable provider listings", map[string]interface{}{
			"dropped": dropped,
			"total":   len(payload.Listings),
		})
	}

	return properties, nil
}

// mapListing converts one wire listing into a domain Property.
// ok is false when the listing cannot be represented (unknown status or
// type, bad decimal fields).
func (c *HTTPClient) mapListing(listing listingPayload) (models.Property, bool) {
	status := models.ListingStatus(listing.Status)
	if !status.IsValid() {
		return models.Property{}, false
	}

	// A mislabeled type would leak through type-constrained filters, so
	// unrecognized values drop the listing the same way unknown statuses do.
	propertyType := models.PropertyType(listing.Type)
	if !propertyType.IsValid() {
		return models.Property{}, false
	}

	price, err := decimal.NewFromString(listing.Price)
	if err != nil {
		return models.Property{}, false
	}
	baths, err := decimal.NewFromString(listing.Bathrooms)
	if err != nil {
		return models.Property{}, false
	}
	sqft, err := decimal.NewFromString(listing.Sqft)
	if err != nil {
		return models.Property{}, false
	}

	property := models.Property{
		Street:      listing.Street,
		City:        listing.City,
		State:       listing.State,
		Zip:         listing.Zip,
		Price:       price,
		Bedrooms:    listing.Bedrooms,
		Bathrooms:   baths,
		Sqft:        sqft,
		YearBuilt:   listing.YearBuilt,
		Type:        propertyType,
		Status:      status,
		Latitude:    listing.Latitude,
		Longitude:   listing.Longitude,
		HasGarage:   listing.HasGarage,
		HasBasement: listing.HasBasement,
	}

	// Provider listing IDs are opaque strings; keep a stable UUID derived
	// from them so repeated fetches of the same listing agree.
	property.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("agentshub:listing:"+listing.ListingID))

	if listing.LotSize != nil {
		if lot, err := decimal.NewFromString(*listing.LotSize); err == nil {
			property.LotSize = &lot
		}
	}

	if listing.SaleDate != nil {
		if sold, err := time.Parse("2006-01-02", *listing.SaleDate); err == nil {
			property.SaleDate = &sold
		}
	}

	return property, true
}
