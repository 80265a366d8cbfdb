package repository

import (
	"context"
	"fmt"
	"strconv"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/loader"
	"nearest-geopoints/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the geopoints table. position keeps the import order, which ranking ties depend on.
const Schema = `
	CREATE EXTENSION IF NOT EXISTS postgis;

	CREATE TABLE IF NOT EXISTS geopoints (
		position BIGSERIAL PRIMARY KEY,
		point_id TEXT NOT NULL,
		id_is_int BOOLEAN NOT NULL,
		name TEXT NOT NULL,
		geom GEOGRAPHY(POINT, 4326) NOT NULL
	);
`

const sourceName = "postgres:geopoints"

// PostgresRepository reads the point set from a PostGIS table
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the geopoints table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// LoadPoints returns every stored geopoint in import order
func (r *PostgresRepository) LoadPoints(ctx context.Context) ([]models.GeoPoint, error) {
	sql := `
		SELECT
			point_id,
			id_is_int,
			name,
			ST_Y(geom::geometry) as latitude,
			ST_X(geom::geometry) as longitude
		FROM geopoints
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query points: %w",
			&apperror.NotFoundError{Source: sourceName, Err: err})
	}
	defer rows.Close()

	points := []models.GeoPoint{}
	for rows.Next() {
		var (
			rawID   string
			idIsInt bool
			p       models.GeoPoint
		)
		if err := rows.Scan(&rawID, &idIsInt, &p.Name, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("repository: failed to scan point: %w",
				&apperror.ParseError{Source: sourceName, Err: err})
		}

		index := len(points)
		if idIsInt {
			n, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				return nil, &apperror.ValidationError{Source: sourceName, Index: index, Field: "id", Reason: "must be an integer"}
			}
			p.ID = models.IntID(n)
		} else {
			p.ID = models.TextID(rawID)
		}

		if err := loader.ValidatePoint(sourceName, index, p); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w",
			&apperror.NotFoundError{Source: sourceName, Err: err})
	}

	return points, nil
}

// ImportPoints appends points after the existing rows in a single transaction and returns the number written
func (r *PostgresRepository) ImportPoints(ctx context.Context, points []models.GeoPoint) (int64, error) {
	sql := `
		INSERT INTO geopoints (point_id, id_is_int, name, geom)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography)
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(sql, p.ID.String(), p.ID.IsInt(), p.Name, p.Longitude, p.Latitude) // PostGIS order: lon lat
	}

	results := tx.SendBatch(ctx, batch)
	var written int64
	for range points {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("repository: failed to insert point %d: %w", written, err)
		}
		written += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("repository: failed to finish import: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository: failed to commit import: %w", err)
	}
	return written, nil
}

// CountPoints returns the number of stored geopoints
func (r *PostgresRepository) CountPoints(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM geopoints").Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count points: %w", err)
	}
	return count, nil
}
