// Package search implements the comp search orchestrator: it executes a
// derived filter against the local property store and the external market
// data provider, dedupes and buckets the results by listing status, and
// caches the combined result for the configured TTL.
//
// Search never returns an error to the caller. Source failures are a
// deliberate soft fail: they are logged, the affected source contributes
// nothing, and the result carries Degraded=true so callers can tell "no
// comps exist" apart from "comps could not be fetched".
package search

import (
	"context"
	"strings"
	"time"

	"github.com/cxr0514/AgentsHub-sub000/internal/cache"
	"github.com/cxr0514/AgentsHub-sub000/internal/logger"
	"github.com/cxr0514/AgentsHub-sub000/internal/models"
	"github.com/cxr0514/AgentsHub-sub000/internal/provider"
	"github.com/cxr0514/AgentsHub-sub000/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Orchestrator defines the comp search interface consumed by the CMA
// service layer.
type Orchestrator interface {
	// SearchComps executes the filter against all configured sources.
	// It never returns an error; degraded results are flagged on the
	// CompResult itself.
	SearchComps(ctx context.Context, filter models.SearchFilter) models.CompResult
}

// orchestrator is the concrete implementation of Orchestrator.
type orchestrator struct {
	repo     repository.PropertyRepository
	provider provider.Client
	cache    *cache.ResultCache
	flight   singleflight.Group
	log      *logger.Logger
	now      func() time.Time
}

// NewOrchestrator creates a comp search orchestrator. provider may be nil
// when no external source is configured; searches then run against the
// local store only without being marked degraded.
func NewOrchestrator(repo repository.PropertyRepository, providerClient provider.Client, resultCache *cache.ResultCache, log *logger.Logger) Orchestrator {
	return &orchestrator{
		repo:     repo,
		provider: providerClient,
		cache:    resultCache,
		log:      log,
		now:      time.Now,
	}
}

// SearchComps looks the filter up in the cache, and on a miss fans out to
// the configured sources. Concurrent misses on the same filter share one
// fetch via singleflight.
func (o *orchestrator) SearchComps(ctx context.Context, filter models.SearchFilter) models.CompResult {
	key := filter.CacheKey()

	if cached, ok := o.cache.Get(key); ok {
		o.log.Debug("Comp search cache hit", map[string]interface{}{
			"cache_key": key,
		})
		return cached
	}

	// singleflight's fn returns (interface{}, error); fetch never errors.
	// The fetch is shared by every waiter, so it runs detached from the
	// first caller's cancellation. Degraded results are returned but not
	// cached: a transient source outage must not pin an empty snapshot
	// for the full TTL.
	value, _, _ := o.flight.Do(key, func() (interface{}, error) {
		result := o.fetch(context.WithoutCancel(ctx), filter)
		if !result.Degraded {
			o.cache.Set(key, result)
		}
		return result, nil
	})

	return value.(models.CompResult)
}

// fetch queries every source, dedupes, and buckets.
func (o *orchestrator) fetch(ctx context.Context, filter models.SearchFilter) models.CompResult {
	result := models.CompResult{
		Active:    []models.Property{},
		Pending:   []models.Property{},
		Sold:      []models.Property{},
		FetchedAt: o.now(),
	}

	var reasons []string

	locals, err := o.repo.SearchLocal(ctx, filter)
	if err != nil {
		o.log.Error("Local property search failed, degrading to empty local bucket", err, map[string]interface{}{
			"statuses": filter.Statuses,
		})
		reasons = append(reasons, "local store unavailable")
		locals = nil
	}

	var external []models.Property
	if o.provider != nil {
		external, err = o.provider.Search(ctx, filter)
		if err != nil {
			o.log.Error("Provider search failed, degrading to empty provider bucket", err, map[string]interface{}{
				"statuses": filter.Statuses,
			})
			reasons = append(reasons, "market data provider unavailable")
			external = nil
		}
	}

	// Dedup across sources by street+zip; the local store wins on a
	// collision since it is the curated record.
	seen := make(map[string]bool, len(locals)+len(external))
	bucket := func(p models.Property) {
		key := p.DedupKey()
		if seen[key] {
			return
		}
		seen[key] = true

		switch p.Status {
		case models.StatusActive:
			result.Active = append(result.Active, p)
		case models.StatusPending:
			result.Pending = append(result.Pending, p)
		case models.StatusSold:
			result.Sold = append(result.Sold, p)
		default:
			// Unknown status values are dropped, not crashed on.
			o.log.Warn("Dropping comp with unknown status", map[string]interface{}{
				"property_id": p.ID,
				"status":      p.Status,
			})
		}
	}

	for _, p := range locals {
		bucket(p)
	}
	for _, p := range external {
		bucket(p)
	}

	if len(reasons) > 0 {
		result.Degraded = true
		result.DegradedReason = strings.Join(reasons, "; ")
	}

	o.log.Info("Comp search completed", map[string]interface{}{
		"active":   len(result.Active),
		"pending":  len(result.Pending),
		"sold":     len(result.Sold),
		"degraded": result.Degraded,
	})

	return result
}
