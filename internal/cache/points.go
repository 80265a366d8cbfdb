// Package cache holds the process-wide point set.
//
// A PointCache is populated exactly once, normally at startup, and is read-only
// afterwards. Its lifecycle is uninitialized -> loaded or uninitialized -> load_failed;
// both end states are terminal, so a failed load is never retried.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"nearest-geopoints/internal/apperror"
	"nearest-geopoints/internal/models"
)

// State is the lifecycle state of a PointCache
type State int32

const (
	StateUninitialized State = iota
	StateLoaded
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateLoadFailed:
		return "load_failed"
	default:
		return "uninitialized"
	}
}

// PointSource yields the raw point set
type PointSource interface {
	LoadPoints(ctx context.Context) ([]models.GeoPoint, error)
}

// PointCache is safe for concurrent readers once Load has returned.
type PointCache struct {
	once   sync.Once
	state  atomic.Int32
	points []models.GeoPoint
	err    error
}

// NewPointCache creates an uninitialized cache
func NewPointCache() *PointCache {
	return &PointCache{}
}

// Load populates the cache from src. Only the first call reads the source;
// later calls return the outcome of the first one.
func (c *PointCache) Load(ctx context.Context, src PointSource) error {
	c.once.Do(func() {
		points, err := src.LoadPoints(ctx)
		if err != nil {
			c.err = err
			c.state.Store(int32(StateLoadFailed))
			return
		}
		c.points = points
		c.state.Store(int32(StateLoaded))
	})
	return c.err
}

// State returns the current lifecycle state
func (c *PointCache) State() State {
	return State(c.state.Load())
}

// Len returns the number of cached points, zero unless loaded
func (c *PointCache) Len() int {
	if c.State() != StateLoaded {
		return 0
	}
	return len(c.points)
}

// Points returns the cached point set. The slice is shared between callers and must not be modified.
// It fails with a DependencyUnavailableError unless the cache is loaded.
func (c *PointCache) Points() ([]models.GeoPoint, error) {
	switch c.State() {
	case StateLoaded:
		return c.points, nil
	case StateLoadFailed:
		return nil, &apperror.DependencyUnavailableError{Dependency: "point set", Err: c.err}
	default:
		return nil, &apperror.DependencyUnavailableError{Dependency: "point set (not initialized)"}
	}
}
