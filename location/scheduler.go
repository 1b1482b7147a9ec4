// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// sweepBatchSize caps how many jobs one sweep cycle resolves, keeping the
// load on the geocoding provider polite.
const sweepBatchSize = 50

// Scheduler wraps robfig/cron and periodically resolves jobs that have an
// address but no stored location yet (created before the resolver ran, or
// whose resolution was interrupted mid-flight).
type Scheduler struct {
	cron     *cron.Cron
	resolver *AddressResolver
	repo     LocationRepository
	spec     string
	log      zerolog.Logger
}

// NewScheduler creates a Scheduler that fires every intervalMinutes minutes.
func NewScheduler(resolver *AddressResolver, repo LocationRepository, intervalMinutes int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		resolver: resolver,
		repo:     repo,
		spec:     fmt.Sprintf("@every %dm", intervalMinutes),
		log:      log,
	}
}

// Start registers the sweep and starts the scheduler. Also runs one sweep
// immediately so a fresh deployment catches up without waiting for a tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("resolution sweep scheduled")

	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("resolution sweep stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	ids, err := s.repo.ListUnresolvedJobIDs(ctx, sweepBatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep: listing unresolved jobs failed")

		return
	}

	if len(ids) == 0 {
		return
	}

	s.log.Info().Int("jobs", len(ids)).Msg("sweep: resolving backlog")

	resolved := 0

	for _, id := range ids {
		if _, ran, err := s.resolver.EnsureResolved(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("job_id", id).Msg("sweep: resolution failed")
		} else if ran {
			resolved++
		}
	}

	s.log.Info().Int("resolved", resolved).Msg("sweep: cycle complete")
}
