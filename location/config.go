// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Config loads and validates environment variables at startup.
// Fail-fast: a missing required variable aborts before any connection opens.

package location

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the location service.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string // empty disables the cache
	GeocoderURL   string // empty uses the public Nominatim endpoint
	GeocoderEmail string
	SweepMinutes  int // 0 disables the background sweep
}

// LoadConfig reads environment variables and returns a validated Config.
func LoadConfig() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	sweepMinutes := 10

	if v := os.Getenv("SWEEP_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be a non-negative integer (got %q)", v)
		}

		sweepMinutes = n
	}

	return &Config{
		Port:          port,
		DatabaseURL:   dbURL,
		RedisURL:      os.Getenv("REDIS_URL"),
		GeocoderURL:   os.Getenv("GEOCODER_URL"),
		GeocoderEmail: os.Getenv("GEOCODER_EMAIL"),
		SweepMinutes:  sweepMinutes,
	}, nil
}
