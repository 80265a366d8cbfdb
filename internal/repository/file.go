package repository

import (
	"context"
	"fmt"

	"nearest-geopoints/internal/loader"
	"nearest-geopoints/internal/models"
)

// FileRepository reads the point set and the reference location from JSON files.
// Files are read on every call; caching is left to the caller.
type FileRepository struct {
	pointsPath    string
	referencePath string
}

// NewFileRepository creates a new JSON file repository
func NewFileRepository(pointsPath, referencePath string) *FileRepository {
	return &FileRepository{pointsPath: pointsPath, referencePath: referencePath}
}

// LoadPoints reads and validates the point set file
func (r *FileRepository) LoadPoints(ctx context.Context) ([]models.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, err := loader.LoadPointsFile(r.pointsPath)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to load points: %w", err)
	}
	return points, nil
}

// LoadReference reads and validates the reference location file
func (r *FileRepository) LoadReference(ctx context.Context) (models.ReferenceLocation, error) {
	if err := ctx.Err(); err != nil {
		return models.ReferenceLocation{}, err
	}

	ref, err := loader.LoadReferenceFile(r.referencePath)
	if err != nil {
		return models.ReferenceLocation{}, fmt.Errorf("repository: failed to load reference location: %w", err)
	}
	return ref, nil
}
