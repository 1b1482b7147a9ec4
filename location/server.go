// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server exposes the resolver and the proximity search over a JSON API.
//
// Routes:
//
//	POST /address/:job_id  → trigger resolution for a job
//	GET  /address/:job_id  → currently resolved location, 404 if none
//	POST /address/nearby   → jobs within radius of a point
type Server struct {
	resolver *AddressResolver
	search   *ProximitySearch
	repo     LocationRepository
	cache    Cache
	log      zerolog.Logger
}

// NewServer creates a configured Server.
func NewServer(resolver *AddressResolver, search *ProximitySearch, repo LocationRepository, cache Cache, log zerolog.Logger) *Server {
	return &Server{
		resolver: resolver,
		search:   search,
		repo:     repo,
		cache:    cache,
		log:      log,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/address/nearby", s.nearbyJobs)
	r.POST("/address/:job_id", s.resolveAddress)
	r.GET("/address/:job_id", s.getAddress)

	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

type resolveResponse struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name,omitempty"`
	UsedDefault bool    `json:"used_default"`
	Message     string  `json:"message"`
}

func (s *Server) resolveAddress(ctx *gin.Context) {
	jobID := ctx.Param("job_id")

	coord, err := s.resolver.Resolve(ctx.Request.Context(), jobID)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.Is(err, ErrJobNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		case errors.As(err, &vErr):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
		default:
			s.log.Error().Err(err).Str("job_id", jobID).Msg("resolution failed")
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "location store unavailable"})
		}

		return
	}

	message := "address resolved"
	if coord.UsedDefault {
		message = "address could not be geocoded, using default city-center location"
	}

	ctx.JSON(http.StatusOK, resolveResponse{
		Latitude:    coord.Latitude,
		Longitude:   coord.Longitude,
		DisplayName: coord.DisplayName,
		UsedDefault: coord.UsedDefault,
		Message:     message,
	})
}

func (s *Server) getAddress(ctx *gin.Context) {
	jobID := ctx.Param("job_id")
	reqCtx := ctx.Request.Context()

	if loc, ok := s.cache.GetGeocode(reqCtx, jobID); ok {
		ctx.JSON(http.StatusOK, loc)

		return
	}

	loc, err := s.repo.GetLocation(reqCtx, jobID)
	if err != nil {
		if errors.Is(err, ErrNotResolved) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "address not resolved for this job"})

			return
		}

		s.log.Error().Err(err).Str("job_id", jobID).Msg("location lookup failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "location store unavailable"})

		return
	}

	s.cache.SetGeocode(reqCtx, jobID, loc)

	ctx.JSON(http.StatusOK, loc)
}

type nearbyRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RadiusKm  *float64 `json:"radius_km"`
}

func (s *Server) nearbyJobs(ctx *gin.Context) {
	var req nearbyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})

		return
	}

	query := SearchQuery{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		RadiusKm:  DefaultRadiusKm,
	}
	if req.RadiusKm != nil {
		query.RadiusKm = *req.RadiusKm
	}

	jobs, err := s.search.Search(ctx.Request.Context(), query)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})

			return
		}

		s.log.Error().Err(err).Msg("proximity search failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "location store unavailable"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"count":  len(jobs),
		"radius": query.RadiusKm,
		"userLocation": gin.H{
			"latitude":  query.Latitude,
			"longitude": query.Longitude,
		},
	})
}
