package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/metrics"
	"nearest-geopoints/internal/models"
	"nearest-geopoints/internal/ranker"

	"github.com/rs/zerolog/log"
)

// NearestService contains the core business logic for nearest-geopoint queries
type NearestService struct {
	points    PointProvider
	refs      ReferenceRepository
	limit     int
	precision int
}

// PointProvider gives access to the cached point set
type PointProvider interface {
	Points() ([]models.GeoPoint, error)
}

// ReferenceRepository interface for dependency injection
type ReferenceRepository interface {
	LoadReference(ctx context.Context) (models.ReferenceLocation, error)
}

// NewNearestService creates a new nearest service. limit is the number of results returned;
// precision is the number of decimal places kept in distances, negative for full precision.
func NewNearestService(points PointProvider, refs ReferenceRepository, limit, precision int) *NearestService {
	return &NearestService{points: points, refs: refs, limit: limit, precision: precision}
}

// FindNearest ranks the cached point set against the current reference location
func (s *NearestService) FindNearest(ctx context.Context) (results []models.RankedResult, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperror.KindOf(err))
		}
		metrics.NearestRequestsTotal.WithLabelValues(outcome).Inc()
		metrics.NearestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	points, err := s.points.Points()
	if err != nil {
		return nil, fmt.Errorf("service: point set unavailable: %w", err)
	}

	ref, err := s.refs.LoadReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load reference location: %w", err)
	}

	results, err = ranker.RankNearest(points, ref, s.limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to rank points: %w", err)
	}

	// Rounding is monotonic, so the order established by the ranker still holds.
	for i := range results {
		results[i].DistanceKm = roundTo(results[i].DistanceKm, s.precision)
	}

	log.Debug().
		Int("points", len(points)).
		Int("results", len(results)).
		Float64("ref_lat", ref.Latitude).
		Float64("ref_lon", ref.Longitude).
		Msg("ranked nearest geopoints")

	return results, nil
}

func roundTo(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
