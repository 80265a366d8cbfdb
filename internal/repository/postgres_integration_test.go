//go:build integration

package repository

import (
	"context"
	"testing"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	// Start PostgreSQL container with PostGIS
	req := testcontainers.ContainerRequest{
		Image:        "postgis/postgis:16-3.4",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func TestPostgresRepository_LoadPoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))

	t.Run("empty table", func(t *testing.T) {
		points, err := repo.LoadPoints(ctx)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("import keeps order and id kinds", func(t *testing.T) {
		input := []models.GeoPoint{
			{ID: models.IntID(2), Name: "Akasaka", Latitude: 35.675, Longitude: 139.732},
			{ID: models.TextID("marunouchi"), Name: "Marunouchi", Latitude: 35.681236, Longitude: 139.767125},
			{ID: models.IntID(2), Name: "Akasaka duplicate", Latitude: 35.675, Longitude: 139.732},
		}

		written, err := repo.ImportPoints(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, int64(3), written)

		count, err := repo.CountPoints(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		points, err := repo.LoadPoints(ctx)
		require.NoError(t, err)
		require.Len(t, points, 3)

		for i, p := range points {
			assert.Equal(t, input[i].ID, p.ID)
			assert.Equal(t, input[i].Name, p.Name)
			assert.InDelta(t, input[i].Latitude, p.Latitude, 1e-9)
			assert.InDelta(t, input[i].Longitude, p.Longitude, 1e-9)
		}
	})
}

func TestPostgresRepository_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewPostgresRepository(pool)

	// No schema: the table is missing.
	_, err := repo.LoadPoints(context.Background())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
