package fem

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// luSolver wraps a dense LU factorization of the assembled conductance
// matrix. One factorization serves the nonlinear solve and every
// forward/adjoint linear solve until the density changes; the trans
// flag reuses it for K^T systems. The residual is linear in T, so a
// single solve is exact and no Newton iteration exists anywhere.
type luSolver struct {
	lu    mat.LU
	n     int
	fresh bool
}

// factorize decomposes K. A singular or badly conditioned matrix is a
// configuration defect (no Dirichlet node reachable from part of the
// grid); the underlying error propagates at solve time.
func (s *luSolver) factorize(k *mat.Dense) {
	n, _ := k.Dims()
	s.n = n
	s.lu.Factorize(k)
	s.fresh = true
}

func (s *luSolver) invalidate() { s.fresh = false }

// solve computes K x = b, or K^T x = b when trans is set.
func (s *luSolver) solve(b []float64, trans bool) ([]float64, error) {
	if !s.fresh {
		return nil, fmt.Errorf("linear solve requested before factorization")
	}
	if len(b) != s.n {
		return nil, fmt.Errorf("right-hand side length %d does not match system size %d", len(b), s.n)
	}
	x := mat.NewVecDense(s.n, nil)
	if err := s.lu.SolveVecTo(x, trans, mat.NewVecDense(s.n, b)); err != nil {
		return nil, fmt.Errorf("conductance matrix solve failed: %w", err)
	}
	out := make([]float64, s.n)
	copy(out, x.RawVector().Data)
	return out, nil
}
