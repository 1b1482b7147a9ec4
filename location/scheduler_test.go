// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepResolvesBacklogOnly(t *testing.T) {
	repo := newMemRepository()
	geocoder := newScriptedGeocoder()
	cache := newMemCache()
	resolver := NewAddressResolver(geocoder, repo, cache, zerolog.Nop())

	// One job already resolved, one waiting with a geocodable address, one
	// waiting that will fall back to the default point.
	repo.setLocation("job-done", "Done", 21.0291, 105.8525)
	repo.addJob("job-pending", "emp-1", "12 Main St, District 1, Hanoi", "Barista")
	repo.addJob("job-stubborn", "emp-2", "no such place, Hanoi", "Cook")
	geocoder.on("12 Main St, District 1, Hanoi", found(21.0301, 105.8011, "12 Main St, Hanoi"))

	s := NewScheduler(resolver, repo, 10, zerolog.Nop())
	s.runSweep(context.Background())

	loc, err := repo.GetLocation(context.Background(), "job-pending")
	require.NoError(t, err)
	assert.Equal(t, 21.0301, loc.Point.Lat)

	loc, err = repo.GetLocation(context.Background(), "job-stubborn")
	require.NoError(t, err)
	assert.Equal(t, DefaultPoint.Lat, loc.Point.Lat, "unmappable jobs land on the default point")

	// The pre-resolved job was not re-geocoded: both upserts belong to the
	// two pending jobs.
	assert.Equal(t, 2, repo.upsertCalls)

	ids, err := repo.ListUnresolvedJobIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, ids, "backlog drained after one sweep")
}

func TestSweepSurvivesStoreFailure(t *testing.T) {
	repo := newMemRepository()
	repo.failStore = true

	resolver := NewAddressResolver(newScriptedGeocoder(), repo, newMemCache(), zerolog.Nop())
	s := NewScheduler(resolver, repo, 10, zerolog.Nop())

	// Must not panic; the failure is logged and the cycle ends.
	s.runSweep(context.Background())
}
