// Package density implements the design-variable processing pipeline of
// the topology optimizer (spatial filtering, SIMP penalization, rational
// smoothstep projection) and the aggregation reductions built on its
// outputs.
package density

import (
	"fmt"

	"github.com/eytanadler/TOASTY/mesh"
	"github.com/james-bowman/sparse"
)

// LinearFilter is the linear spatial density filter: each filtered value
// is a normalized cone-weighted average of the raw densities within
// radius r of the element centroid,
//
//	w_ij = max(0, 1 - d_ij^2 / r^2)
//
// with every row normalized to sum to one. The weight matrix is fixed at
// construction; applying the filter and applying its Jacobian (itself,
// or its transpose in reverse mode) are sparse matrix-vector products.
type LinearFilter struct {
	n      int
	ia, ja []int
	w      []float64
}

// NewLinearFilter builds the weight matrix for the grid's element
// centroids. An element is always its own neighbor with weight 1, so no
// row can normalize over zero weight.
func NewLinearFilter(g *mesh.Grid, radius float64) (*LinearFilter, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("filter radius must be positive, got %v", radius)
	}
	var (
		ex = g.NumX - 1
		ey = g.NumY - 1
		f  = &LinearFilter{n: g.NumElements()}
	)
	dx, dy := g.Spacing()
	// Only elements within this index window can be inside the radius.
	wi := int(radius/dx) + 1
	wj := int(radius/dy) + 1

	f.ia = make([]int, f.n+1)
	for i := 0; i < ex; i++ {
		for j := 0; j < ey; j++ {
			e := g.ElementIndex(i, j)
			cx, cy := g.Centroid(e)
			var (
				cols    []int
				weights []float64
				total   float64
			)
			for ii := max(0, i-wi); ii <= min(ex-1, i+wi); ii++ {
				for jj := max(0, j-wj); jj <= min(ey-1, j+wj); jj++ {
					o := g.ElementIndex(ii, jj)
					ox, oy := g.Centroid(o)
					d2 := (cx-ox)*(cx-ox) + (cy-oy)*(cy-oy)
					w := 1 - d2/(radius*radius)
					if w <= 0 {
						continue
					}
					cols = append(cols, o)
					weights = append(weights, w)
					total += w
				}
			}
			for k := range weights {
				weights[k] /= total
			}
			f.ia[e+1] = f.ia[e] + len(cols)
			f.ja = append(f.ja, cols...)
			f.w = append(f.w, weights...)
		}
	}
	return f, nil
}

// Apply computes the filtered field W x.
func (f *LinearFilter) Apply(x []float64) []float64 {
	y := make([]float64, f.n)
	for r := 0; r < f.n; r++ {
		var sum float64
		for k := f.ia[r]; k < f.ia[r+1]; k++ {
			sum += f.w[k] * x[f.ja[k]]
		}
		y[r] = sum
	}
	return y
}

// ApplyJacobian propagates a derivative seed through the filter: the
// filter is linear, so its Jacobian is the weight matrix itself. Forward
// mode computes W v, reverse (transpose) mode W^T v.
func (f *LinearFilter) ApplyJacobian(v []float64, transpose bool) []float64 {
	if !transpose {
		return f.Apply(v)
	}
	y := make([]float64, f.n)
	for r := 0; r < f.n; r++ {
		for k := f.ia[r]; k < f.ia[r+1]; k++ {
			y[f.ja[k]] += f.w[k] * v[r]
		}
	}
	return y
}

// Matrix returns the weight matrix as a sparse CSR for inspection.
func (f *LinearFilter) Matrix() *sparse.CSR {
	dok := sparse.NewDOK(f.n, f.n)
	for r := 0; r < f.n; r++ {
		for k := f.ia[r]; k < f.ia[r+1]; k++ {
			dok.Set(r, f.ja[k], f.w[k])
		}
	}
	return dok.ToCSR()
}
