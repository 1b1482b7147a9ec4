// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/CodeGang4/jobgeo/spatial"
)

// memRepository is an in-memory LocationRepository shared by the resolver,
// search and server tests.
type memRepository struct {
	mu        sync.Mutex
	addresses map[string]*JobAddress
	titles    map[string]string
	locations map[string]*JobLocation

	upsertCalls int
	failList    bool
	failStore   bool
}

var errStoreDown = errors.New("location store unreachable")

func newMemRepository() *memRepository {
	return &memRepository{
		addresses: make(map[string]*JobAddress),
		titles:    make(map[string]string),
		locations: make(map[string]*JobLocation),
	}
}

func (m *memRepository) addJob(id, employerID, address, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addresses[id] = &JobAddress{JobID: id, EmployerID: employerID, RawAddress: address}
	m.titles[id] = title
}

// setLocation seeds a job together with an already-resolved location.
func (m *memRepository) setLocation(id, title string, lat, lng float64) {
	m.addJob(id, "emp-"+id, "seeded", title)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.locations[id] = &JobLocation{
		JobID:      id,
		EmployerID: "emp-" + id,
		RawAddress: "seeded",
		Point:      spatial.Point{Lat: lat, Lng: lng},
	}
}

func (m *memRepository) CreateSchema(context.Context) error { return nil }

func (m *memRepository) GetJobAddress(_ context.Context, jobID string) (*JobAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return nil, errStoreDown
	}

	addr, ok := m.addresses[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}

	return addr, nil
}

func (m *memRepository) UpsertLocation(_ context.Context, loc *JobLocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return errStoreDown
	}

	m.upsertCalls++
	cp := *loc
	m.locations[loc.JobID] = &cp

	return nil
}

func (m *memRepository) GetLocation(_ context.Context, jobID string) (*JobLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return nil, errStoreDown
	}

	loc, ok := m.locations[jobID]
	if !ok {
		return nil, ErrNotResolved
	}

	cp := *loc

	return &cp, nil
}

func (m *memRepository) HasLocation(_ context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return false, errStoreDown
	}

	_, ok := m.locations[jobID]

	return ok, nil
}

func (m *memRepository) ListResolvedJobs(context.Context) ([]*ResolvedJobRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failList || m.failStore {
		return nil, errStoreDown
	}

	rows := make([]*ResolvedJobRow, 0, len(m.locations))

	for id, loc := range m.locations {
		rows = append(rows, &ResolvedJobRow{
			JobID:        id,
			Title:        m.titles[id],
			EmployerName: loc.EmployerID,
			Point:        loc.Point,
		})
	}

	// Deliberately unsorted-by-distance; map order already shuffles, but the
	// engine must not depend on fetch order anyway.
	sort.Slice(rows, func(i, j int) bool { return rows[i].JobID > rows[j].JobID })

	return rows, nil
}

func (m *memRepository) ListUnresolvedJobIDs(_ context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return nil, errStoreDown
	}

	var ids []string

	for id := range m.addresses {
		if _, ok := m.locations[id]; !ok {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	return ids, nil
}

func (m *memRepository) CountLocations(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.locations), nil
}

// lookupStep is one scripted provider answer.
type lookupStep struct {
	result *GeocodingResult
	err    error
}

// scriptedGeocoder answers queries from a script; unknown queries return
// ErrNoResults. Steps for a query are consumed in order, the last repeats.
type scriptedGeocoder struct {
	mu     sync.Mutex
	script map[string][]lookupStep
	calls  []string
}

func newScriptedGeocoder() *scriptedGeocoder {
	return &scriptedGeocoder{script: make(map[string][]lookupStep)}
}

func (g *scriptedGeocoder) on(query string, steps ...lookupStep) {
	g.script[query] = steps
}

func found(lat, lng float64, displayName string) lookupStep {
	return lookupStep{result: &GeocodingResult{
		Latitude:    lat,
		Longitude:   lng,
		Provider:    "scripted",
		DisplayName: displayName,
	}}
}

func fails(err error) lookupStep { return lookupStep{err: err} }

func (g *scriptedGeocoder) Lookup(_ context.Context, query string) (*GeocodingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, query)

	steps, ok := g.script[query]
	if !ok || len(steps) == 0 {
		return nil, ErrNoResults
	}

	step := steps[0]
	if len(steps) > 1 {
		g.script[query] = steps[1:]
	}

	if step.err != nil {
		return nil, step.err
	}

	return step.result, nil
}

// memCache is a recording in-process Cache using the production key scheme.
type memCache struct {
	mu      sync.Mutex
	geocode map[string]*JobLocation
	search  map[string][]*ResolvedJob

	geocodeSets int
	searchSets  int
}

func newMemCache() *memCache {
	return &memCache{
		geocode: make(map[string]*JobLocation),
		search:  make(map[string][]*ResolvedJob),
	}
}

func (c *memCache) GetGeocode(_ context.Context, jobID string) (*JobLocation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	loc, ok := c.geocode[geocodeCacheKey(jobID)]

	return loc, ok
}

func (c *memCache) SetGeocode(_ context.Context, jobID string, loc *JobLocation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.geocodeSets++
	c.geocode[geocodeCacheKey(jobID)] = loc
}

func (c *memCache) InvalidateGeocode(_ context.Context, jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.geocode, geocodeCacheKey(jobID))
}

func (c *memCache) GetSearch(_ context.Context, query SearchQuery) ([]*ResolvedJob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs, ok := c.search[searchCacheKey(query)]

	return jobs, ok
}

func (c *memCache) SetSearch(_ context.Context, query SearchQuery, jobs []*ResolvedJob) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchSets++
	c.search[searchCacheKey(query)] = jobs
}
