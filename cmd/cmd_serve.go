// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/CodeGang4/jobgeo/location"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the location resolution and proximity search API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := location.LoadConfig()
		if err != nil {
			return err
		}

		pool, err := location.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to location store: %w", err)
		}
		defer pool.Close()

		repo := location.NewLocationRepository(pool)
		if err := repo.CreateSchema(ctx); err != nil {
			return err
		}

		cache := newCache(ctx, cfg)
		geocoder := location.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderEmail)
		resolver := location.NewAddressResolver(geocoder, repo, cache, log.Logger)
		search := location.NewProximitySearch(repo, cache, log.Logger)

		if cfg.SweepMinutes > 0 {
			scheduler := location.NewScheduler(resolver, repo, cfg.SweepMinutes, log.Logger)
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			defer scheduler.Stop()
		}

		server := location.NewServer(resolver, search, repo, cache, log.Logger)

		log.Info().Str("port", cfg.Port).Str("version", Version).Msg("jobgeo listening")

		return server.Run(":" + cfg.Port)
	},
}

// newCache connects to Redis when configured; otherwise the service runs
// against the store directly. A cache outage is never fatal.
func newCache(ctx context.Context, cfg *location.Config) location.Cache {
	if cfg.RedisURL == "" {
		log.Info().Msg("no REDIS_URL configured, running without result cache")

		return location.NewNoopCache()
	}

	rdb, err := location.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without result cache")

		return location.NewNoopCache()
	}

	return location.NewRedisCache(rdb, log.Logger)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
