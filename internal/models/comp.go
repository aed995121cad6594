package models

import "time"

// CompResult holds the output of one comp search, bucketed by listing
// status. A property appears in exactly one bucket, determined by its own
// status at fetch time. Degraded marks a result assembled while one or more
// data sources were unavailable; an empty, non-degraded result means no
// comps matched.
type CompResult struct {
	Active         []Property `json:"active"`
	Pending        []Property `json:"pending"`
	Sold           []Property `json:"sold"`
	FetchedAt      time.Time  `json:"fetched_at"`
	Degraded       bool       `json:"degraded"`
	DegradedReason string     `json:"degraded_reason,omitempty"`
}

// Total returns the number of comps across all buckets.
func (r CompResult) Total() int {
	return len(r.Active) + len(r.Pending) + len(r.Sold)
}

// AllComps returns every comp across the three buckets in bucket order
// (active, pending, sold), preserving per-bucket ordering.
func (r CompResult) AllComps() []Property {
	all := make([]Property, 0, r.Total())
	all = append(all, r.Active...)
	all = append(all, r.Pending...)
	all = append(all, r.Sold...)
	return all
}
