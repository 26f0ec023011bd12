package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeL2(t *testing.T) {
	t.Run("normalizes to unit length", func(t *testing.T) {
		v := []float32{3, 4}
		assert.True(t, NormalizeL2(v))
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
		assert.InDelta(t, 1.0, float64(DotProduct(v, v)), 1e-6)
	})

	t.Run("zero vector", func(t *testing.T) {
		v := []float32{0, 0, 0}
		assert.False(t, NormalizeL2(v))
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.False(t, NormalizeL2(nil))
	})
}

func TestDotProduct(t *testing.T) {
	t.Run("orthogonal vectors score zero", func(t *testing.T) {
		assert.InDelta(t, 0, float64(DotProduct([]float32{1, 0}, []float32{0, 1})), 1e-6)
	})

	t.Run("identical unit vectors score one", func(t *testing.T) {
		v := []float32{0.6, 0.8}
		assert.InDelta(t, 1.0, float64(DotProduct(v, v)), 1e-6)
	})
}
