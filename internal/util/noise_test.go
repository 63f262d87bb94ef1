package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoiseDeterministic(t *testing.T) {
	a := NewNoise(42)
	b := NewNoise(42)
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.13, float64(i)*0.07+0.5
		assert.Equal(t, a.Noise2D(x, y), b.Noise2D(x, y))
	}
	assert.Equal(t, int64(42), a.Seed())
}

func TestNormalizedRange(t *testing.T) {
	n := NewNoise(7)
	for i := 0; i < 500; i++ {
		v := n.Normalized(float64(i)*0.31, float64(i)*0.17)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
