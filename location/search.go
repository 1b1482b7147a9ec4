// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/CodeGang4/jobgeo/spatial"
)

// DefaultRadiusKm is used when a nearby query omits the radius.
const DefaultRadiusKm = 5

// SearchQuery is an ephemeral proximity query. Never persisted; cached only
// as the key of a full result set.
type SearchQuery struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
}

// Validate enforces the query invariants. Invalid input is a client error,
// never retried.
func (q SearchQuery) Validate() error {
	if err := validateCoordinates(q.Latitude, q.Longitude); err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	if q.RadiusKm <= 0 {
		return &ValidationError{Msg: fmt.Sprintf("radius_km must be positive (got: %g)", q.RadiusKm)}
	}

	if q.RadiusKm > MaxRadiusKm {
		return &ValidationError{Msg: fmt.Sprintf("radius_km must be at most %d (got: %g)", MaxRadiusKm, q.RadiusKm)}
	}

	return nil
}

// ResolvedJob is a stored location joined with its job summary and the
// distance from the query point, rounded to two decimals. Constructed per
// search request, never persisted.
type ResolvedJob struct {
	JobID        string  `json:"job_id"`
	Title        string  `json:"title"`
	Salary       string  `json:"salary"`
	JobType      string  `json:"job_type"`
	EmployerName string  `json:"employer_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	DistanceKm   float64 `json:"distance_km"`
}

// ProximitySearch answers "jobs within radius R of (lat, lon)" against the
// Location Store, through the advisory result cache.
type ProximitySearch struct {
	repo  LocationRepository
	cache Cache
	log   zerolog.Logger
}

// NewProximitySearch creates a configured search engine.
func NewProximitySearch(repo LocationRepository, cache Cache, log zerolog.Logger) *ProximitySearch {
	return &ProximitySearch{repo: repo, cache: cache, log: log}
}

// Search returns all resolved jobs within query.RadiusKm of the query point,
// ordered by ascending distance with job id as the deterministic tiebreak.
// An empty result is a valid answer, not an error.
func (s *ProximitySearch) Search(ctx context.Context, query SearchQuery) ([]*ResolvedJob, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if jobs, ok := s.cache.GetSearch(ctx, query); ok {
		return jobs, nil
	}

	rows, err := s.repo.ListResolvedJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("proximity search bulk fetch: %w", err)
	}

	origin := &spatial.Point{Lat: query.Latitude, Lng: query.Longitude}

	type candidate struct {
		row      *ResolvedJobRow
		distance float64 // full precision, filtered and sorted before rounding
	}

	candidates := make([]candidate, 0, len(rows))

	for _, row := range rows {
		d := origin.HaversineDistance(&row.Point)
		if d <= query.RadiusKm {
			candidates = append(candidates, candidate{row: row, distance: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}

		return candidates[i].row.JobID < candidates[j].row.JobID
	})

	jobs := make([]*ResolvedJob, 0, len(candidates))

	for _, c := range candidates {
		jobs = append(jobs, &ResolvedJob{
			JobID:        c.row.JobID,
			Title:        c.row.Title,
			Salary:       c.row.Salary,
			JobType:      c.row.JobType,
			EmployerName: c.row.EmployerName,
			Latitude:     c.row.Point.Lat,
			Longitude:    c.row.Point.Lng,
			DistanceKm:   spatial.RoundKm(c.distance),
		})
	}

	s.cache.SetSearch(ctx, query, jobs)

	s.log.Debug().
		Int("candidates", len(rows)).
		Int("matches", len(jobs)).
		Float64("radius_km", query.RadiusKm).
		Msg("proximity search computed")

	return jobs, nil
}
