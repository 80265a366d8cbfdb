package ranker

import (
	"math"
	"math/rand"
	"testing"

	"nearest-geopoints/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lon1     float64
		lat2     float64
		lon2     float64
		expected float64
		delta    float64
	}{
		{
			name:     "coincident points",
			lat1:     35.681236,
			lon1:     139.767125,
			lat2:     35.681236,
			lon2:     139.767125,
			expected: 0,
		},
		{
			name:     "one degree of longitude on the equator",
			lat2:     0,
			lon2:     1,
			expected: 111.19,
			delta:    0.01,
		},
		{
			name:     "antipodal on the equator",
			lon2:     180,
			expected: math.Pi * EarthRadiusKm,
			delta:    1e-6,
		},
		{
			name:     "pole to pole",
			lat1:     90,
			lat2:     -90,
			expected: math.Pi * EarthRadiusKm,
			delta:    1e-6,
		},
		{
			name:     "paris to london",
			lat1:     48.8566,
			lon1:     2.3522,
			lat2:     51.5074,
			lon2:     -0.1278,
			expected: 343.5,
			delta:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := HaversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, d, tt.delta)
		})
	}
}

func TestHaversineKm_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		lat1, lon1 := rng.Float64()*180-90, rng.Float64()*360-180
		lat2, lon2 := rng.Float64()*180-90, rng.Float64()*360-180

		d := HaversineKm(lat1, lon1, lat2, lon2)
		assert.False(t, math.IsNaN(d) || math.IsInf(d, 0), "distance must be finite")
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, math.Pi*EarthRadiusKm+1e-9)
		assert.InDelta(t, d, HaversineKm(lat2, lon2, lat1, lon1), 1e-9, "distance must be symmetric")

		// Exact antipode of the first point.
		antiLon := lon1 + 180
		if antiLon > 180 {
			antiLon -= 360
		}
		anti := HaversineKm(lat1, lon1, -lat1, antiLon)
		assert.False(t, math.IsNaN(anti))
		assert.InDelta(t, math.Pi*EarthRadiusKm, anti, 1e-3)
	}
}

func TestRankNearest(t *testing.T) {
	a := models.GeoPoint{ID: models.IntID(1), Name: "A", Latitude: 0, Longitude: 0}
	b := models.GeoPoint{ID: models.IntID(2), Name: "B", Latitude: 0, Longitude: 1}
	origin := models.ReferenceLocation{Latitude: 0, Longitude: 0}

	t.Run("two points", func(t *testing.T) {
		results, err := RankNearest([]models.GeoPoint{b, a}, origin, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, a, results[0].GeoPoint)
		assert.Equal(t, 0.0, results[0].DistanceKm)
		assert.Equal(t, b, results[1].GeoPoint)
		assert.InDelta(t, 111.19, results[1].DistanceKm, 0.01)
	})

	t.Run("empty point set", func(t *testing.T) {
		results, err := RankNearest(nil, origin, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := RankNearest([]models.GeoPoint{a}, origin, 0)
		assert.Error(t, err)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		east := models.GeoPoint{ID: models.TextID("east"), Name: "East", Latitude: 0, Longitude: 1}
		west := models.GeoPoint{ID: models.TextID("west"), Name: "West", Latitude: 0, Longitude: -1}
		north := models.GeoPoint{ID: models.TextID("north"), Name: "North", Latitude: 1, Longitude: 0}
		dup := models.GeoPoint{ID: models.TextID("dup"), Name: "Origin copy", Latitude: 0, Longitude: 0}

		results, err := RankNearest([]models.GeoPoint{east, a, west, dup, north}, origin, 10)
		require.NoError(t, err)

		var names []string
		for _, r := range results {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"A", "Origin copy", "East", "West", "North"}, names)
	})

	t.Run("does not modify input", func(t *testing.T) {
		points := []models.GeoPoint{b, a}
		_, err := RankNearest(points, origin, 1)
		require.NoError(t, err)
		assert.Equal(t, []models.GeoPoint{b, a}, points)
	})
}

func TestRankNearest_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{0, 1, 5, 10, 11, 250} {
		points := make([]models.GeoPoint, n)
		for i := range points {
			points[i] = models.GeoPoint{
				ID:        models.IntID(int64(i)),
				Name:      "p",
				Latitude:  rng.Float64()*180 - 90,
				Longitude: rng.Float64()*360 - 180,
			}
		}
		ref := models.ReferenceLocation{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}

		for _, k := range []int{1, 3, 10} {
			results, err := RankNearest(points, ref, k)
			require.NoError(t, err)
			assert.Len(t, results, min(k, n))

			for i := 1; i < len(results); i++ {
				assert.LessOrEqual(t, results[i-1].DistanceKm, results[i].DistanceKm)
			}

			// Nothing left out is nearer than the last one returned.
			if len(results) > 0 {
				last := results[len(results)-1].DistanceKm
				nearer := 0
				for _, p := range points {
					if HaversineKm(ref.Latitude, ref.Longitude, p.Latitude, p.Longitude) < last {
						nearer++
					}
				}
				assert.Less(t, nearer, len(results))
			}
		}
	}
}
