// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"fmt"
	"math"
)

// MaxRadiusKm bounds a proximity search; national-scale queries and beyond
// are rejected rather than computed.
const MaxRadiusKm = 100

// validateCoordinates verifies globally valid, finite coordinates.
func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("coordinates must be finite numbers (got: %f, %f)", lat, lon)
	}

	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got: %f)", lat)
	}

	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got: %f)", lon)
	}

	return nil
}

// Reasonable bounds for Vietnam with ~1 degree of margin for provider
// imprecision. Vietnam: approximately 8.2°N to 23.4°N, 102.1°E to 109.5°E.
const (
	vietnamMinLat = 7.0
	vietnamMaxLat = 24.5
	vietnamMinLon = 101.0
	vietnamMaxLon = 110.5
)

// withinVietnam reports whether a provider hit falls inside the national
// market. Hits outside are treated as not-found by the resolver so a bad
// match can never put a job on another continent.
func withinVietnam(lat, lon float64) bool {
	return lat >= vietnamMinLat && lat <= vietnamMaxLat &&
		lon >= vietnamMinLon && lon <= vietnamMaxLon
}
