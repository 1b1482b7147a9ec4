// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/CodeGang4/jobgeo/spatial"
)

// DefaultPoint is the fixed fallback coordinate used when every geocoding
// tier comes up empty: central Hanoi, the platform's primary market.
var DefaultPoint = spatial.Point{Lat: 21.0285, Lng: 105.8542}

// ResolvedCoordinate is the outcome of a resolution. UsedDefault marks jobs
// that could not be geocoded and carry the fallback coordinate.
type ResolvedCoordinate struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name,omitempty"`
	UsedDefault bool    `json:"used_default"`
}

// AddressResolver turns a job's free-text address into a stored coordinate.
// It never fails for a bad address: the cascade degrades through broader
// queries down to the fixed default, so resolution always produces a usable
// coordinate. Only missing jobs and store failures surface as errors.
type AddressResolver struct {
	geocoder Geocoder
	repo     LocationRepository
	cache    Cache
	log      zerolog.Logger
}

// NewAddressResolver creates a configured resolver.
func NewAddressResolver(geocoder Geocoder, repo LocationRepository, cache Cache, log zerolog.Logger) *AddressResolver {
	return &AddressResolver{geocoder: geocoder, repo: repo, cache: cache, log: log}
}

// Resolve geocodes the job's stored address, upserts the location row and
// refreshes the single-address cache entry. Idempotent: re-resolving
// overwrites the existing row in place.
func (r *AddressResolver) Resolve(ctx context.Context, jobID string) (*ResolvedCoordinate, error) {
	addr, err := r.repo.GetJobAddress(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(addr.RawAddress) == "" {
		return nil, &ValidationError{Msg: "job has no address to resolve"}
	}

	coord := r.geocode(ctx, addr.RawAddress)

	loc := &JobLocation{
		JobID:      addr.JobID,
		EmployerID: addr.EmployerID,
		RawAddress: addr.RawAddress,
		Point:      spatial.Point{Lat: coord.Latitude, Lng: coord.Longitude},
	}

	if err := r.repo.UpsertLocation(ctx, loc); err != nil {
		return nil, err
	}

	// Refresh rather than just invalidate: the next read should hit.
	// Search-result entries are left to expire via TTL.
	r.cache.SetGeocode(ctx, jobID, loc)

	return coord, nil
}

// EnsureResolved resolves only when no location row exists yet; otherwise it
// returns the stored coordinate. The second return value reports whether a
// geocoding pass actually ran.
func (r *AddressResolver) EnsureResolved(ctx context.Context, jobID string) (*ResolvedCoordinate, bool, error) {
	exists, err := r.repo.HasLocation(ctx, jobID)
	if err != nil {
		return nil, false, err
	}

	if exists {
		loc, err := r.repo.GetLocation(ctx, jobID)
		if err != nil {
			return nil, false, err
		}

		return &ResolvedCoordinate{Latitude: loc.Point.Lat, Longitude: loc.Point.Lng}, false, nil
	}

	coord, err := r.Resolve(ctx, jobID)

	return coord, true, err
}

// geocode walks the tier cascade and always comes back with a coordinate.
func (r *AddressResolver) geocode(ctx context.Context, rawAddress string) *ResolvedCoordinate {
	lastQuery := ""

	for _, tier := range QueryTiers() {
		query := tier.Build(rawAddress)
		if query == "" || query == lastQuery {
			// A short address can make two tiers derive the same text;
			// the provider answer would be identical.
			continue
		}

		lastQuery = query

		result, err := r.lookupWithRetry(ctx, query)
		if err != nil {
			r.log.Debug().Err(err).Str("tier", tier.Name).Str("query", query).Msg("tier missed")

			continue
		}

		if !withinVietnam(result.Latitude, result.Longitude) {
			r.log.Warn().Str("tier", tier.Name).Str("query", query).
				Float64("lat", result.Latitude).Float64("lon", result.Longitude).
				Msg("provider hit outside national bounds, discarding")

			continue
		}

		r.log.Info().Str("tier", tier.Name).Str("query", query).Msg("address resolved")

		return &ResolvedCoordinate{
			Latitude:    result.Latitude,
			Longitude:   result.Longitude,
			DisplayName: result.DisplayName,
		}
	}

	r.log.Warn().Str("address", rawAddress).Msg("all tiers missed, using default coordinate")

	return &ResolvedCoordinate{
		Latitude:    DefaultPoint.Lat,
		Longitude:   DefaultPoint.Lng,
		UsedDefault: true,
	}
}

// lookupWithRetry retries a transient provider failure once before treating
// the tier as missed. A genuine no-results answer falls through immediately.
func (r *AddressResolver) lookupWithRetry(ctx context.Context, query string) (*GeocodingResult, error) {
	result, err := r.geocoder.Lookup(ctx, query)
	if err != nil && !errors.Is(err, ErrNoResults) && IsTransient(err) {
		result, err = r.geocoder.Lookup(ctx, query)
	}

	return result, err
}
