package fem

import (
	"github.com/eytanadler/TOASTY/mesh"
	"github.com/james-bowman/sparse"
)

// dContribution is one raw entry of dR/d(density): the residual row of
// corner a of an element depends on that element's density through
// localK[a][b] * T[corner b]. The base value is fixed; the temperature
// factor is substituted at linearize time.
type dContribution struct {
	slot int
	base float64
	tIdx int
}

// sensPattern is the second fixed sparse structure of the core: the
// nonzero pattern of dR/d(density), shape nNode x nElem, at most four
// element columns per node row. Rows of Dirichlet nodes are dropped
// entirely since those residual rows do not depend on density.
type sensPattern struct {
	nNode, nElem int
	ia, ja       []int
	entries      []dContribution
}

func newSensPattern(g *mesh.Grid, dirichlet []bool, localK [4][4]float64) *sensPattern {
	p := &sensPattern{
		nNode: g.NumNodes(),
		nElem: g.NumElements(),
	}

	// Element columns per node row, in element order. A node belongs to
	// at most four elements, visited in increasing element index, so
	// each row's columns come out sorted.
	rowCols := make([][]int, p.nNode)
	for e := 0; e < p.nElem; e++ {
		for _, n := range g.ElementCorners(e) {
			if dirichlet[n] {
				continue
			}
			rowCols[n] = append(rowCols[n], e)
		}
	}

	p.ia = make([]int, p.nNode+1)
	for r := 0; r < p.nNode; r++ {
		p.ia[r+1] = p.ia[r] + len(rowCols[r])
		p.ja = append(p.ja, rowCols[r]...)
	}

	slotOf := func(r, e int) int {
		for k := p.ia[r]; k < p.ia[r+1]; k++ {
			if p.ja[k] == e {
				return k
			}
		}
		panic("element column missing from sensitivity pattern")
	}

	for e := 0; e < p.nElem; e++ {
		corners := g.ElementCorners(e)
		for a := 0; a < 4; a++ {
			if dirichlet[corners[a]] {
				continue
			}
			slot := slotOf(corners[a], e)
			for b := 0; b < 4; b++ {
				p.entries = append(p.entries, dContribution{
					slot: slot,
					base: localK[a][b],
					tIdx: corners[b],
				})
			}
		}
	}
	return p
}

func (p *sensPattern) nnz() int { return len(p.ja) }

// densityJacobian holds the current values of dR/d(density), refreshed
// from the solved temperature field at each linearization.
type densityJacobian struct {
	pat    *sensPattern
	vals   []float64
	matrix *sparse.CSR
}

func newDensityJacobian(pat *sensPattern) *densityJacobian {
	return &densityJacobian{
		pat:  pat,
		vals: make([]float64, pat.nnz()),
	}
}

// refresh substitutes the solved temperatures into the fixed structure.
func (d *densityJacobian) refresh(temp []float64) {
	for i := range d.vals {
		d.vals[i] = 0
	}
	for _, e := range d.pat.entries {
		d.vals[e.slot] += e.base * temp[e.tIdx]
	}
	d.matrix = sparse.NewCSR(d.pat.nNode, d.pat.nElem, d.pat.ia, d.pat.ja, d.vals)
}

// mulVec computes y += dR/d(density) * x, x of length nElem.
func (d *densityJacobian) mulVec(x, y []float64) {
	for r := 0; r < d.pat.nNode; r++ {
		var sum float64
		for k := d.pat.ia[r]; k < d.pat.ia[r+1]; k++ {
			sum += d.vals[k] * x[d.pat.ja[k]]
		}
		y[r] += sum
	}
}

// mulTransVec computes y += dR/d(density)^T * x, y of length nElem.
func (d *densityJacobian) mulTransVec(x, y []float64) {
	for r := 0; r < d.pat.nNode; r++ {
		for k := d.pat.ia[r]; k < d.pat.ia[r+1]; k++ {
			y[d.pat.ja[k]] += d.vals[k] * x[r]
		}
	}
}
