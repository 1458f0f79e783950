package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 5.0, Clip(5, 100))
	assert.Equal(t, 100.0, Clip(250, 100))
	assert.Equal(t, 100.0, Clip(100, 100))
	assert.Equal(t, 0.0, Clip(0, 100))
}

func TestLinearRescale(t *testing.T) {
	assert.Equal(t, 5.0, LinearRescale(50, 100, 10))
	assert.Equal(t, 10.0, LinearRescale(100, 100, 10))
	assert.Equal(t, 0.0, LinearRescale(0, 100, 10))
	// Guard against a misconfigured max.
	assert.Equal(t, 0.0, LinearRescale(50, 0, 10))
}

// The winsorized pair is complementary by construction: for any v <= max the
// forward and reverse scores sum to the scale factor.
func TestWinsorizedComplementarity(t *testing.T) {
	const (
		max         = 200.0
		scaleFactor = 10.0
	)
	for _, v := range []float64{0, 0.5, 1, 13, 99.9, 150, 200} {
		clipped := Clip(v, max)
		forward := LinearRescale(clipped, max, scaleFactor)
		reverse := scaleFactor - forward
		assert.InDelta(t, scaleFactor, forward+reverse, 1e-9, "v=%v", v)
	}
}

func TestWinsorizedMonotonicAndSaturating(t *testing.T) {
	const (
		max         = 50.0
		scaleFactor = 10.0
	)
	prev := -1.0
	for _, v := range []float64{0, 1, 2, 10, 25, 49, 50, 51, 500, 1e9} {
		score := LinearRescale(Clip(v, max), max, scaleFactor)
		assert.GreaterOrEqual(t, score, prev, "score must be non-decreasing in v")
		prev = score
		if v >= max {
			assert.Equal(t, scaleFactor, score, "must saturate at scale_factor for v >= max")
		}
	}
}
