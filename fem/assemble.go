package fem

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// assembler owns the global conductance matrix values and the
// density-snapshot cache. Assembly is called on every solve and every
// linearization, so it skips recomputation whenever the density is
// value-identical to the last one assembled. The cache is this struct's
// private state, replaced wholesale after a successful fill.
type assembler struct {
	pat    *pattern
	vals   []float64
	last   []float64
	matrix *sparse.CSR
}

func newAssembler(pat *pattern) *assembler {
	return &assembler{
		pat:  pat,
		vals: make([]float64, pat.nnz()),
	}
}

// assemble fills the value array for the given density and reports
// whether anything was recomputed. Duplicate contributions to a slot
// are summed here; no sparse-format conversion is relied on for that.
func (a *assembler) assemble(density []float64) bool {
	if a.last != nil && floats.Equal(density, a.last) {
		return false
	}
	for i := range a.vals {
		a.vals[i] = 0
	}
	for _, stream := range a.pat.streams {
		for _, c := range stream {
			v := c.base
			if c.elem >= 0 {
				v *= density[c.elem]
			}
			a.vals[c.slot] += v
		}
	}
	n := a.pat.nNode
	a.matrix = sparse.NewCSR(n, n, a.pat.ia, a.pat.ja, a.vals)
	a.last = append(a.last[:0], density...)
	return true
}

// mulVec computes y = K x.
func (a *assembler) mulVec(x, y []float64) {
	csrMulVec(a.pat.ia, a.pat.ja, a.vals, x, y)
}

// mulTransVec computes y = K^T x.
func (a *assembler) mulTransVec(x, y []float64) {
	csrMulTransVec(a.pat.ia, a.pat.ja, a.vals, x, y, a.pat.nNode)
}

// dense expands the assembled matrix for factorization.
func (a *assembler) dense() *mat.Dense {
	n := a.pat.nNode
	d := mat.NewDense(n, n, nil)
	for r := 0; r < n; r++ {
		for k := a.pat.ia[r]; k < a.pat.ia[r+1]; k++ {
			d.Set(r, a.pat.ja[k], a.vals[k])
		}
	}
	return d
}

// csrMulVec computes y = A x for a CSR triple (ia, ja, vals).
func csrMulVec(ia, ja []int, vals, x, y []float64) {
	for r := 0; r < len(ia)-1; r++ {
		var sum float64
		for k := ia[r]; k < ia[r+1]; k++ {
			sum += vals[k] * x[ja[k]]
		}
		y[r] = sum
	}
}

// csrMulTransVec computes y = A^T x, with y of length nCols.
func csrMulTransVec(ia, ja []int, vals, x, y []float64, nCols int) {
	for i := 0; i < nCols; i++ {
		y[i] = 0
	}
	for r := 0; r < len(ia)-1; r++ {
		for k := ia[r]; k < ia[r+1]; k++ {
			y[ja[k]] += vals[k] * x[r]
		}
	}
}
