// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the OSM Nominatim search API, biased to Vietnam.
type NominatimGeocoder struct {
	baseURL    string
	email      string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim geocoder. baseURL may be empty
// to use the public endpoint; email is attached to requests per the Nominatim
// usage policy when set.
func NewNominatimGeocoder(baseURL, email string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}

	return &NominatimGeocoder{
		baseURL: baseURL,
		email:   email,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup performs a single forward-geocoding call and returns the first
// match. Results are restricted to Vietnam; the best candidate wins.
func (g *NominatimGeocoder) Lookup(ctx context.Context, query string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "vn") // Bias to Vietnam

	if g.email != "" {
		params.Set("email", g.email)
	}

	reqURL := g.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ProviderError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	// Nominatim rejects requests without an identifying agent.
	req.Header.Set("User-Agent", "jobgeo/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		errType := ErrorTypeNetworkError

		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			errType = ErrorTypeTimeout
		}

		return nil, &ProviderError{Type: errType, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &ProviderError{Type: ErrorTypeUnknown, Message: "decoding response", Err: err}
	}

	if len(results) == 0 {
		return nil, ErrNoResults
	}

	best := results[0]

	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, &ProviderError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("parsing latitude %q", best.Lat), Err: err}
	}

	lon, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, &ProviderError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("parsing longitude %q", best.Lon), Err: err}
	}

	return &GeocodingResult{
		Latitude:    lat,
		Longitude:   lon,
		Provider:    "nominatim",
		DisplayName: best.DisplayName,
	}, nil
}
