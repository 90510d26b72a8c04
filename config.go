package convex

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config drives contact generation
type Config struct {
	// Signed distances to the reference face kept by clipping.
	// Points below the face have negative distances.
	MinDist float64 `yaml:"minDist"`
	MaxDist float64 `yaml:"maxDist"`
	// MaxContacts limits the points per manifold, 0 keeps every clipped point
	MaxContacts int `yaml:"maxContacts"`
	// Workers is the number of goroutines used by BroadPhase and NarrowPhase
	Workers int `yaml:"workers"`
	// CellSize of the broad phase spatial grid
	CellSize float64 `yaml:"cellSize"`
}

func DefaultConfig() Config {
	return Config{
		MinDist:     -100,
		MaxDist:     0,
		MaxContacts: 4,
		Workers:     DEFAULT_WORKERS,
		CellSize:    DEFAULT_CELL_SIZE,
	}
}

func (c Config) Validate() error {
	if c.MinDist > c.MaxDist {
		return fmt.Errorf("%w: minDist %v > maxDist %v", ErrInvalidConfig, c.MinDist, c.MaxDist)
	}
	if c.MaxContacts < 0 {
		return fmt.Errorf("%w: maxContacts %d < 0", ErrInvalidConfig, c.MaxContacts)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidConfig, c.Workers)
	}
	if c.CellSize < 0 {
		return fmt.Errorf("%w: cellSize %v < 0", ErrInvalidConfig, c.CellSize)
	}
	return nil
}
