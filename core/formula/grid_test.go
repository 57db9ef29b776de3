package formula

import (
	"math"
	"testing"

	"github.com/huangsam/livemeasure/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThresholdGrid(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  []float64
		expectErr bool
	}{
		{"default", DefaultRatingGrid, []float64{0.05, 0.1, 0.2, 0.5}, false},
		{"spaces", " 0.1 , 0.2,0.3 ,1", []float64{0.1, 0.2, 0.3, 1}, false},
		{"too few", "0.1,0.2,0.3", nil, true},
		{"too many", "0.1,0.2,0.3,0.4,0.5", nil, true},
		{"not increasing", "0.1,0.1,0.3,0.4", nil, true},
		{"decreasing", "0.4,0.3,0.2,0.1", nil, true},
		{"negative", "-0.1,0.2,0.3,0.4", nil, true},
		{"not a number", "a,b,c,d", nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseThresholdGrid(tt.input)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidRatingGrid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, g.Thresholds())
		})
	}
}

func TestRatingForDensity(t *testing.T) {
	g := MustDefaultGrid()

	tests := []struct {
		density  float64
		expected schema.Rating
	}{
		{0, schema.RatingA},
		{0.049, schema.RatingA},
		{0.05, schema.RatingB},
		{0.099, schema.RatingB},
		{0.1, schema.RatingC},
		{0.2, schema.RatingD},
		{0.49, schema.RatingD},
		{0.5, schema.RatingE},
		{12, schema.RatingE},
	}

	for _, tt := range tests {
		r, err := g.RatingForDensity(tt.density)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, r, "density %v", tt.density)
	}

	_, err := g.RatingForDensity(-0.01)
	assert.Error(t, err)
}

func TestMaxDensity(t *testing.T) {
	g := MustDefaultGrid()
	assert.Equal(t, 0.05, g.MaxDensity(schema.RatingA))
	assert.Equal(t, 0.1, g.MaxDensity(schema.RatingB))
	assert.Equal(t, 0.2, g.MaxDensity(schema.RatingC))
	assert.Equal(t, 0.5, g.MaxDensity(schema.RatingD))
	assert.Equal(t, math.MaxFloat64, g.MaxDensity(schema.RatingE))
}
