// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/CodeGang4/jobgeo/location"
)

var resolveAll bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [job-id...]",
	Short: "Resolve job addresses from the command line",
	Long: `
Resolve the addresses of the given jobs, or with --all every job that has an
address but no stored location yet. Jobs already resolved are skipped.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resolveAll && len(args) == 0 {
			return fmt.Errorf("pass job ids or --all")
		}

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

		geocoder := location.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderEmail)
		resolver := location.NewAddressResolver(geocoder, repo, location.NewNoopCache(), log.Logger)

		ids := args
		if resolveAll {
			ids, err = repo.ListUnresolvedJobIDs(ctx, 0)
			if err != nil {
				return err
			}
		}

		if len(ids) == 0 {
			log.Info().Msg("nothing to resolve")

			return nil
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(ids),
				progressbar.OptionSetDescription("Resolving addresses"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		resolved, defaulted, failed := 0, 0, 0

		for _, id := range ids {
			coord, ran, err := resolver.EnsureResolved(ctx, id)

			switch {
			case err != nil:
				failed++

				log.Warn().Err(err).Str("job_id", id).Msg("resolution failed")
			case ran && coord.UsedDefault:
				defaulted++
			case ran:
				resolved++
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		log.Info().
			Int("resolved", resolved).
			Int("defaulted", defaulted).
			Int("failed", failed).
			Int("skipped", len(ids)-resolved-defaulted-failed).
			Msg("batch resolution complete")

		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveAll, "all", false, "resolve every job missing a location")
	rootCmd.AddCommand(resolveCmd)
}
