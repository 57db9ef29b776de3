package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/livemeasure/schema"
)

// DefaultRatingGrid is the default set of debt density thresholds for ratings A to D.
const DefaultRatingGrid = "0.05,0.1,0.2,0.5"

// DebtRatingGrid maps a technical debt density to a maintainability rating.
type DebtRatingGrid interface {
	RatingForDensity(density float64) (schema.Rating, error)
	MaxDensity(r schema.Rating) float64
}

// ThresholdGrid is a DebtRatingGrid backed by four increasing upper bounds.
// A covers [0, t1), B [t1, t2), C [t2, t3), D [t3, t4) and E everything from t4.
type ThresholdGrid struct {
	thresholds [4]float64
}

var _ DebtRatingGrid = &ThresholdGrid{} // Compile-time check

// NewThresholdGrid builds a grid from exactly four strictly increasing, non-negative thresholds.
func NewThresholdGrid(thresholds []float64) (*ThresholdGrid, error) {
	if len(thresholds) != 4 {
		return nil, fmt.Errorf("%w: expected 4 thresholds, got %d", ErrInvalidRatingGrid, len(thresholds))
	}
	g := &ThresholdGrid{}
	for i, t := range thresholds {
		if t < 0 || math.IsNaN(t) {
			return nil, fmt.Errorf("%w: threshold %v must be non-negative", ErrInvalidRatingGrid, t)
		}
		if i > 0 && t <= thresholds[i-1] {
			return nil, fmt.Errorf("%w: thresholds must be strictly increasing", ErrInvalidRatingGrid)
		}
		g.thresholds[i] = t
	}
	return g, nil
}

// ParseThresholdGrid parses a comma-separated grid such as "0.05,0.1,0.2,0.5".
func ParseThresholdGrid(s string) (*ThresholdGrid, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: '%s' is not a number", ErrInvalidRatingGrid, strings.TrimSpace(p))
		}
		values = append(values, v)
	}
	return NewThresholdGrid(values)
}

// MustDefaultGrid returns the default grid.
func MustDefaultGrid() *ThresholdGrid {
	g, err := ParseThresholdGrid(DefaultRatingGrid)
	if err != nil {
		panic(err)
	}
	return g
}

// Thresholds returns the four upper bounds of the grid.
func (g *ThresholdGrid) Thresholds() []float64 {
	return g.thresholds[:]
}

// RatingForDensity returns the rating whose band contains density.
func (g *ThresholdGrid) RatingForDensity(density float64) (schema.Rating, error) {
	if density < 0 || math.IsNaN(density) {
		return 0, fmt.Errorf("invalid debt density %v", density)
	}
	for i, t := range g.thresholds {
		if density < t {
			return schema.RatingByIndex(i + 1)
		}
	}
	return schema.RatingE, nil
}

// MaxDensity returns the exclusive upper bound of the band of r.
// E has no upper bound.
func (g *ThresholdGrid) MaxDensity(r schema.Rating) float64 {
	if r >= schema.RatingA && r <= schema.RatingD {
		return g.thresholds[r.Index()-1]
	}
	return math.MaxFloat64
}
