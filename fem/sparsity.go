package fem

import (
	"sort"

	"github.com/eytanadler/TOASTY/mesh"
)

// contribution is one raw entry of an element's local stiffness matrix,
// reindexed to its slot in the global CSR value array. Entries with
// elem >= 0 are scaled by that element's density at assembly time;
// entries with elem == -1 are Dirichlet diagonal coefficients that
// assemble unscaled.
type contribution struct {
	slot int
	base float64
	elem int
}

// pattern is the fixed nonzero structure of the global conductance
// matrix, derived once from mesh connectivity and the Dirichlet set.
// The four streams, one per local-matrix row, decompose the element
// loop so that reassembly is pure value substitution: zero the value
// array, then accumulate base*density into each contribution's slot.
//
// A Dirichlet row keeps only its diagonal. Because every element
// touching the node still emits a diagonal contribution and duplicate
// slots are summed, each such contribution carries 1/touches as its
// base so the summed diagonal is exactly 1.0 (1.0 for a mesh corner,
// 0.5 for an edge node, 0.25 for an interior node). That coefficient
// rule is a correctness invariant, not bookkeeping convenience.
type pattern struct {
	nNode, nElem int
	ia, ja       []int
	streams      [4][]contribution
	dirichlet    []bool
	touches      []int
}

func newPattern(g *mesh.Grid, dirichlet []bool, localK [4][4]float64) *pattern {
	p := &pattern{
		nNode:     g.NumNodes(),
		nElem:     g.NumElements(),
		dirichlet: dirichlet,
		touches:   make([]int, g.NumNodes()),
	}

	for e := 0; e < p.nElem; e++ {
		for _, n := range g.ElementCorners(e) {
			p.touches[n]++
		}
	}

	// First pass: collect the column set of every row.
	rowCols := make([][]int, p.nNode)
	addCol := func(r, c int) {
		for _, have := range rowCols[r] {
			if have == c {
				return
			}
		}
		rowCols[r] = append(rowCols[r], c)
	}
	for e := 0; e < p.nElem; e++ {
		corners := g.ElementCorners(e)
		for a := 0; a < 4; a++ {
			r := corners[a]
			if dirichlet[r] {
				addCol(r, r)
				continue
			}
			for b := 0; b < 4; b++ {
				addCol(r, corners[b])
			}
		}
	}

	p.ia = make([]int, p.nNode+1)
	for r := 0; r < p.nNode; r++ {
		sort.Ints(rowCols[r])
		p.ia[r+1] = p.ia[r] + len(rowCols[r])
		p.ja = append(p.ja, rowCols[r]...)
	}

	slotOf := func(r, c int) int {
		for k := p.ia[r]; k < p.ia[r+1]; k++ {
			if p.ja[k] == c {
				return k
			}
		}
		panic("nonzero entry missing from sparsity pattern")
	}

	// Second pass: emit the corner-contribution streams.
	for e := 0; e < p.nElem; e++ {
		corners := g.ElementCorners(e)
		for a := 0; a < 4; a++ {
			r := corners[a]
			if dirichlet[r] {
				p.streams[a] = append(p.streams[a], contribution{
					slot: slotOf(r, r),
					base: 1.0 / float64(p.touches[r]),
					elem: -1,
				})
				continue
			}
			for b := 0; b < 4; b++ {
				p.streams[a] = append(p.streams[a], contribution{
					slot: slotOf(r, corners[b]),
					base: localK[a][b],
					elem: e,
				})
			}
		}
	}
	return p
}

// nnz is the number of stored entries in the assembled matrix.
func (p *pattern) nnz() int { return len(p.ja) }
