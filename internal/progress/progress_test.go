package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		current  float64
		target   float64
		want     float64
	}{
		{name: "reference day four", baseline: 14, current: 121, target: 396, want: 28.01},
		{name: "below baseline", baseline: 14, current: 10, target: 396, want: 0},
		{name: "at baseline", baseline: 14, current: 14, target: 396, want: 0},
		{name: "target reached", baseline: 14, current: 396, target: 396, want: 100},
		{name: "overshoot clamps", baseline: 14, current: 500, target: 396, want: 100},
		{name: "degenerate target", baseline: 14, current: 14, target: 14, want: 100},
		{name: "target below baseline", baseline: 20, current: 25, target: 10, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.baseline, tt.current, tt.target), 0.0001)
		})
	}
}

func TestPercentMonotonicInCurrent(t *testing.T) {
	prev := -1.0
	for c := 0.0; c <= 420; c += 7 {
		got := Percent(14, c, 396)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestEstimateItems(t *testing.T) {
	est := EstimateItems(38000, 2000, 28.01)
	assert.Equal(t, 11204, est.Total())
	assert.Equal(t, 10644, est.Photos)
	assert.Equal(t, 560, est.Videos)

	full := EstimateItems(38000, 2000, 100)
	assert.Equal(t, 38000, full.Photos)
	assert.Equal(t, 2000, full.Videos)

	assert.Equal(t, Estimate{}, EstimateItems(0, 0, 50))
	assert.Equal(t, Estimate{}, EstimateItems(-1, 10, 50))
}

func TestGrowth(t *testing.T) {
	assert.InDelta(t, 107, Growth(14, 121), 0.0001)
	assert.Zero(t, Growth(14, 10))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(0))
	assert.Error(t, Validate(-0.5))
}
