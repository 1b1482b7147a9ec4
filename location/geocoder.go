// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import "context"

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Latitude    float64
	Longitude   float64
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
//
// Lookup issues a single outbound call and takes the provider's best match.
// An empty result set returns ErrNoResults; transport failures, timeouts and
// provider-side throttling return a *ProviderError so callers can decide
// whether the query text or the provider is at fault. Retries and fallback
// queries are the caller's responsibility.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (*GeocodingResult, error)
}
