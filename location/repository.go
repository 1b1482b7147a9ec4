// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeGang4/jobgeo/spatial"
)

// JobAddress is the slice of the external job record the resolver needs.
type JobAddress struct {
	JobID      string
	EmployerID string
	RawAddress string
}

// JobLocation is one durably stored resolved coordinate, at most one row per
// job. Re-resolution updates the row in place, it never duplicates it.
type JobLocation struct {
	JobID      string        `json:"job_id"`
	EmployerID string        `json:"employer_id"`
	RawAddress string        `json:"raw_address"`
	Point      spatial.Point `json:"point"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ResolvedJobRow is a stored location joined with its job/employer summary,
// as loaded by the proximity search bulk fetch.
type ResolvedJobRow struct {
	JobID        string
	Title        string
	Salary       string
	JobType      string
	EmployerName string
	Point        spatial.Point
}

// LocationRepository handles persistence of resolved job locations. It is
// the source of truth; the cache in front of it is advisory only.
type LocationRepository interface {
	// CreateSchema creates the job_locations table
	CreateSchema(ctx context.Context) error

	// GetJobAddress reads the address text of an external job record.
	// Returns ErrJobNotFound when the job does not exist.
	GetJobAddress(ctx context.Context, jobID string) (*JobAddress, error)

	// UpsertLocation writes or replaces the single location row for a job
	UpsertLocation(ctx context.Context, loc *JobLocation) error

	// GetLocation returns the stored location, ErrNotResolved if absent
	GetLocation(ctx context.Context, jobID string) (*JobLocation, error)

	// HasLocation is the cheap existence check used to skip re-geocoding
	HasLocation(ctx context.Context, jobID string) (bool, error)

	// ListResolvedJobs bulk-fetches every location with its job summary
	ListResolvedJobs(ctx context.Context) ([]*ResolvedJobRow, error)

	// ListUnresolvedJobIDs returns jobs with an address but no location row
	ListUnresolvedJobIDs(ctx context.Context, limit int) ([]string, error)

	// CountLocations returns the total number of stored locations
	CountLocations(ctx context.Context) (int, error)
}

type pgxLocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository creates a Postgres-backed LocationRepository.
func NewLocationRepository(pool *pgxpool.Pool) LocationRepository {
	return &pgxLocationRepository{pool: pool}
}

func (r *pgxLocationRepository) CreateSchema(ctx context.Context) error {
	// NUMERIC columns keep the provider's coordinates stable across
	// round-trips; float8 would drift in the last digits.
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS job_locations (
			job_id      TEXT PRIMARY KEY,
			employer_id TEXT NOT NULL DEFAULT '',
			raw_address TEXT NOT NULL DEFAULT '',
			latitude    NUMERIC(10,7) NOT NULL,
			longitude   NUMERIC(10,7) NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating job_locations schema: %w", err)
	}

	return nil
}

func (r *pgxLocationRepository) GetJobAddress(ctx context.Context, jobID string) (*JobAddress, error) {
	addr := &JobAddress{}

	err := r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(employer_id::text, ''), COALESCE(address, '')
		FROM jobs
		WHERE id = $1
	`, jobID).Scan(&addr.JobID, &addr.EmployerID, &addr.RawAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}

		return nil, fmt.Errorf("fetching job address: %w", err)
	}

	return addr, nil
}

func (r *pgxLocationRepository) UpsertLocation(ctx context.Context, loc *JobLocation) error {
	loc.UpdatedAt = time.Now()

	// Single atomic upsert: concurrent re-resolutions of the same job
	// converge on one row with the last write winning.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO job_locations (job_id, employer_id, raw_address, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE
		SET employer_id = EXCLUDED.employer_id,
		    raw_address = EXCLUDED.raw_address,
		    latitude    = EXCLUDED.latitude,
		    longitude   = EXCLUDED.longitude,
		    updated_at  = EXCLUDED.updated_at
	`, loc.JobID, loc.EmployerID, loc.RawAddress, loc.Point.Lat, loc.Point.Lng, loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting job location: %w", err)
	}

	return nil
}

func (r *pgxLocationRepository) GetLocation(ctx context.Context, jobID string) (*JobLocation, error) {
	loc := &JobLocation{}

	err := r.pool.QueryRow(ctx, `
		SELECT job_id, employer_id, raw_address, latitude, longitude, updated_at
		FROM job_locations
		WHERE job_id = $1
	`, jobID).Scan(&loc.JobID, &loc.EmployerID, &loc.RawAddress, &loc.Point.Lat, &loc.Point.Lng, &loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotResolved
		}

		return nil, fmt.Errorf("fetching job location: %w", err)
	}

	return loc, nil
}

func (r *pgxLocationRepository) HasLocation(ctx context.Context, jobID string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM job_locations WHERE job_id = $1)
	`, jobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking job location existence: %w", err)
	}

	return exists, nil
}

func (r *pgxLocationRepository) ListResolvedJobs(ctx context.Context) ([]*ResolvedJobRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT jl.job_id, jl.latitude, jl.longitude,
		       COALESCE(j.title, ''), COALESCE(j.salary, ''), COALESCE(j.job_type, ''),
		       COALESCE(e.name, '')
		FROM job_locations jl
		JOIN jobs j ON j.id = jl.job_id
		LEFT JOIN employers e ON e.id::text = jl.employer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing resolved jobs: %w", err)
	}
	defer rows.Close()

	var result []*ResolvedJobRow

	for rows.Next() {
		row := &ResolvedJobRow{}

		err := rows.Scan(
			&row.JobID, &row.Point.Lat, &row.Point.Lng,
			&row.Title, &row.Salary, &row.JobType,
			&row.EmployerName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning resolved job: %w", err)
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing resolved jobs: %w", err)
	}

	return result, nil
}

func (r *pgxLocationRepository) ListUnresolvedJobIDs(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT j.id
		FROM jobs j
		LEFT JOIN job_locations jl ON jl.job_id = j.id
		WHERE jl.job_id IS NULL AND COALESCE(j.address, '') != ''
		ORDER BY j.id
	`

	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"

		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing unresolved jobs: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning unresolved job id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing unresolved jobs: %w", err)
	}

	return ids, nil
}

func (r *pgxLocationRepository) CountLocations(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM job_locations",
	).Scan(&count)

	return count, err
}
