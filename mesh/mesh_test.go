package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridCoordinates(t *testing.T) {
	g, err := New(3, 5, [2]float64{0, 2}, [2]float64{-1, 3})
	require.NoError(t, err)

	dx, dy := g.Spacing()
	assert.Equal(t, 1.0, dx)
	assert.Equal(t, 1.0, dy)

	assert.Equal(t, 0.0, g.X.At(0, 0))
	assert.Equal(t, -1.0, g.Y.At(0, 0))
	assert.Equal(t, 2.0, g.X.At(2, 4))
	assert.Equal(t, 3.0, g.Y.At(2, 4))
	assert.Equal(t, 1.0, g.X.At(1, 3))
	assert.Equal(t, 2.0, g.Y.At(1, 3))
}

func TestGridIndexing(t *testing.T) {
	g, err := New(4, 3, [2]float64{0, 1}, [2]float64{0, 1})
	require.NoError(t, err)

	// Flattening is row-major in x, contiguous in y.
	assert.Equal(t, 0, g.NodeIndex(0, 0))
	assert.Equal(t, 1, g.NodeIndex(0, 1))
	assert.Equal(t, 3, g.NodeIndex(1, 0))
	assert.Equal(t, 11, g.NodeIndex(3, 2))

	assert.Equal(t, 12, g.NumNodes())
	assert.Equal(t, 6, g.NumElements())

	// Corners in local order: LL, LR, UR, UL.
	c := g.Corners(0, 0)
	assert.Equal(t, [4]int{0, 3, 4, 1}, c)
	assert.Equal(t, c, g.ElementCorners(0))

	c = g.Corners(2, 1)
	assert.Equal(t, [4]int{7, 10, 11, 8}, c)
	assert.Equal(t, c, g.ElementCorners(g.ElementIndex(2, 1)))
}

func TestGridCentroids(t *testing.T) {
	g, err := New(3, 3, [2]float64{0, 2}, [2]float64{0, 4})
	require.NoError(t, err)

	x, y := g.Centroid(0)
	assert.Equal(t, 0.5, x)
	assert.Equal(t, 1.0, y)

	x, y = g.Centroid(g.ElementIndex(1, 1))
	assert.Equal(t, 1.5, x)
	assert.Equal(t, 3.0, y)
}

func TestGridValidation(t *testing.T) {
	_, err := New(1, 3, [2]float64{0, 1}, [2]float64{0, 1})
	assert.Error(t, err)
	_, err = New(3, 3, [2]float64{1, 0}, [2]float64{0, 1})
	assert.Error(t, err)
	_, err = New(3, 3, [2]float64{0, 1}, [2]float64{2, 2})
	assert.Error(t, err)
}
