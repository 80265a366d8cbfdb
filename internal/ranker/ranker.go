// Package ranker orders geopoints by great-circle distance from a reference location.
package ranker

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"nearest-geopoints/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by HaversineKm.
const EarthRadiusKm = 6371.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// HaversineKm computes the great-circle distance between two points in kilometers
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	dLat := lat2Rad - lat1Rad
	dLon := toRadians(lon2) - toRadians(lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon

	// Rounding can push a just past 1 for antipodal points.
	a = min(max(a, 0), 1)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// RankNearest returns the k points closest to ref, nearest first. Points at equal
// distance keep their input order. The result has min(k, len(points)) entries and
// points itself is never modified.
func RankNearest(points []models.GeoPoint, ref models.ReferenceLocation, k int) ([]models.RankedResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("ranker: k must be positive, got %d", k)
	}

	results := make([]models.RankedResult, len(points))
	for i, p := range points {
		results[i] = models.RankedResult{
			GeoPoint:   p,
			DistanceKm: HaversineKm(ref.Latitude, ref.Longitude, p.Latitude, p.Longitude),
		}
	}

	slices.SortStableFunc(results, func(a, b models.RankedResult) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	if len(results) > k {
		results = slices.Clip(results[:k])
	}
	return results, nil
}
