package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Grid is a structured, axis-aligned node grid over a rectangular domain.
// Node (i, j) sits at (X.At(i, j), Y.At(i, j)) with index [0, 0] at the
// minimum x and y values. Nodes flatten row-major in x, contiguous in y,
// so node (i, j) maps to i*NumY + j in the global vectors. The grid is
// immutable after construction.
type Grid struct {
	NumX, NumY int
	XLim, YLim [2]float64
	X, Y       *mat.Dense
}

// New builds a uniform grid with numX by numY nodes spanning xLim and yLim.
func New(numX, numY int, xLim, yLim [2]float64) (*Grid, error) {
	if numX < 2 || numY < 2 {
		return nil, fmt.Errorf("mesh needs at least 2 nodes per direction, got %d x %d", numX, numY)
	}
	if xLim[1] <= xLim[0] || yLim[1] <= yLim[0] {
		return nil, fmt.Errorf("mesh limits must be ordered pairs, got x %v, y %v", xLim, yLim)
	}
	g := &Grid{
		NumX: numX,
		NumY: numY,
		XLim: xLim,
		YLim: yLim,
		X:    mat.NewDense(numX, numY, nil),
		Y:    mat.NewDense(numX, numY, nil),
	}
	dx, dy := g.Spacing()
	for i := 0; i < numX; i++ {
		for j := 0; j < numY; j++ {
			g.X.Set(i, j, xLim[0]+float64(i)*dx)
			g.Y.Set(i, j, yLim[0]+float64(j)*dy)
		}
	}
	return g, nil
}

// Spacing returns the uniform element width and height.
func (g *Grid) Spacing() (dx, dy float64) {
	dx = (g.XLim[1] - g.XLim[0]) / float64(g.NumX-1)
	dy = (g.YLim[1] - g.YLim[0]) / float64(g.NumY-1)
	return
}

func (g *Grid) NumNodes() int { return g.NumX * g.NumY }

func (g *Grid) NumElements() int { return (g.NumX - 1) * (g.NumY - 1) }

// NodeIndex flattens a 2D node index into the global vector index.
func (g *Grid) NodeIndex(i, j int) int { return i*g.NumY + j }

// ElementIndex flattens a 2D element index into the density vector index.
func (g *Grid) ElementIndex(i, j int) int { return i*(g.NumY-1) + j }

// Corners returns the global node indices of element (i, j) in local
// shape-function order: lower-left, lower-right, upper-right, upper-left.
func (g *Grid) Corners(i, j int) [4]int {
	return [4]int{
		g.NodeIndex(i, j),
		g.NodeIndex(i+1, j),
		g.NodeIndex(i+1, j+1),
		g.NodeIndex(i, j+1),
	}
}

// ElementCorners is Corners for a flattened element index.
func (g *Grid) ElementCorners(e int) [4]int {
	i := e / (g.NumY - 1)
	j := e % (g.NumY - 1)
	return g.Corners(i, j)
}

// Centroid returns the center coordinates of the flattened element e.
func (g *Grid) Centroid(e int) (x, y float64) {
	i := e / (g.NumY - 1)
	j := e % (g.NumY - 1)
	dx, dy := g.Spacing()
	x = g.XLim[0] + (float64(i)+0.5)*dx
	y = g.YLim[0] + (float64(j)+0.5)*dy
	return
}
