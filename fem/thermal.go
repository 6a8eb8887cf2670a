// Package fem implements the steady-state heat conduction core used by
// the topology optimizer: a structured-mesh finite element model whose
// element conductivities are scaled by a per-element density field, with
// analytic derivatives of the thermal residual with respect to both
// temperature and density.
package fem

import (
	"fmt"
	"math"

	"github.com/eytanadler/TOASTY/mesh"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mode selects the direction of derivative propagation.
type Mode int

const (
	Forward Mode = iota
	Reverse
)

func (m Mode) String() string {
	if m == Forward {
		return "forward"
	}
	return "reverse"
}

// Config fixes a thermal problem instance. TSet marks prescribed nodal
// temperatures: a finite entry at (i, j) pins that node, a non-finite
// entry (NaN or Inf) leaves it free. Q is the per-element heat
// generation rate and may be nil for no heat.
type Config struct {
	NumX, NumY   int
	XLim, YLim   [2]float64
	Conductivity float64
	TSet         *mat.Dense
	Q            *mat.Dense
}

// Thermal solves R(density, T) = K(density) T - F = 0 and linearizes it.
//
// Call order: Solve must precede Linearize at the same density, and
// Linearize must precede ApplyLinear and SolveLinear. Changing the
// density (through Solve or Residual) invalidates any previous
// linearization.
type Thermal struct {
	cfg  Config
	grid *mesh.Grid

	localK   [4][4]float64
	loadBase [4]float64

	dirichlet []bool
	asm       *assembler
	load      []float64
	lu        luSolver
	dJac      *densityJacobian

	temp       []float64
	solvedFor  []float64
	linearized bool
}

// NewThermal validates the configuration and precomputes everything that
// does not depend on density: the mesh, the element kernel, the global
// sparsity pattern and its corner streams, the density-derivative
// structure, and the load vector.
func NewThermal(cfg Config) (*Thermal, error) {
	if cfg.Conductivity <= 0 {
		return nil, fmt.Errorf("conductivity must be positive, got %v", cfg.Conductivity)
	}
	g, err := mesh.New(cfg.NumX, cfg.NumY, cfg.XLim, cfg.YLim)
	if err != nil {
		return nil, err
	}
	if cfg.TSet == nil {
		return nil, fmt.Errorf("TSet is required: a problem with no prescribed temperature is singular")
	}
	if r, c := cfg.TSet.Dims(); r != cfg.NumX || c != cfg.NumY {
		return nil, fmt.Errorf("TSet shape %dx%d does not match mesh %dx%d", r, c, cfg.NumX, cfg.NumY)
	}
	if cfg.Q != nil {
		if r, c := cfg.Q.Dims(); r != cfg.NumX-1 || c != cfg.NumY-1 {
			return nil, fmt.Errorf("q shape %dx%d does not match element grid %dx%d", r, c, cfg.NumX-1, cfg.NumY-1)
		}
	}

	t := &Thermal{cfg: cfg, grid: g}

	t.dirichlet = make([]bool, g.NumNodes())
	numSet := 0
	for i := 0; i < cfg.NumX; i++ {
		for j := 0; j < cfg.NumY; j++ {
			v := cfg.TSet.At(i, j)
			if !math.IsInf(v, 0) && !math.IsNaN(v) {
				t.dirichlet[g.NodeIndex(i, j)] = true
				numSet++
			}
		}
	}
	if numSet == 0 {
		return nil, fmt.Errorf("at least one prescribed temperature is required or the conductance matrix is singular")
	}

	dx, dy := g.Spacing()
	t.localK = localStiffness(dx, dy, cfg.Conductivity)
	t.loadBase = localLoad(dx, dy)

	t.asm = newAssembler(newPattern(g, t.dirichlet, t.localK))
	t.dJac = newDensityJacobian(newSensPattern(g, t.dirichlet, t.localK))
	t.buildLoad()
	return t, nil
}

// buildLoad accumulates the consistent load from per-element heat
// generation, skipping zero-heat elements, then overwrites Dirichlet
// entries with the prescribed temperatures. The result is fixed for the
// lifetime of the instance: density never enters F.
func (t *Thermal) buildLoad() {
	t.load = make([]float64, t.grid.NumNodes())
	if t.cfg.Q != nil {
		for i := 0; i < t.cfg.NumX-1; i++ {
			for j := 0; j < t.cfg.NumY-1; j++ {
				q := t.cfg.Q.At(i, j)
				if q == 0 {
					continue
				}
				corners := t.grid.Corners(i, j)
				for a := 0; a < 4; a++ {
					t.load[corners[a]] += q * t.loadBase[a]
				}
			}
		}
	}
	for i := 0; i < t.cfg.NumX; i++ {
		for j := 0; j < t.cfg.NumY; j++ {
			n := t.grid.NodeIndex(i, j)
			if t.dirichlet[n] {
				t.load[n] = t.cfg.TSet.At(i, j)
			}
		}
	}
}

func (t *Thermal) checkDensity(density []float64) error {
	if len(density) != t.grid.NumElements() {
		return fmt.Errorf("density length %d does not match element count %d", len(density), t.grid.NumElements())
	}
	return nil
}

// update reassembles for a new density and drops stale factorizations
// and linearizations in the same step, so no caller can observe a
// half-updated state.
func (t *Thermal) update(density []float64) {
	if t.asm.assemble(density) {
		t.lu.invalidate()
		t.solvedFor = nil
		t.linearized = false
	}
}

// Residual evaluates R = K(density) T - F at an arbitrary state.
func (t *Thermal) Residual(density, temp []float64) ([]float64, error) {
	if err := t.checkDensity(density); err != nil {
		return nil, err
	}
	if len(temp) != t.grid.NumNodes() {
		return nil, fmt.Errorf("temperature length %d does not match node count %d", len(temp), t.grid.NumNodes())
	}
	t.update(density)
	r := make([]float64, t.grid.NumNodes())
	t.asm.mulVec(temp, r)
	floats.Sub(r, t.load)
	return r, nil
}

// Solve computes the nodal temperatures for the given density. The
// residual is linear in T, so one sparse assembly and one direct solve
// are exact.
func (t *Thermal) Solve(density []float64) ([]float64, error) {
	if err := t.checkDensity(density); err != nil {
		return nil, err
	}
	t.update(density)
	if !t.lu.fresh {
		t.lu.factorize(t.asm.dense())
	}
	temp, err := t.lu.solve(t.load, false)
	if err != nil {
		return nil, err
	}
	t.temp = temp
	t.solvedFor = append([]float64(nil), density...)
	out := make([]float64, len(temp))
	copy(out, temp)
	return out, nil
}

// Linearize refreshes both derivative operators at the current state:
// dR/dT is the assembled conductance matrix itself (reused, never
// recomputed) and dR/d(density) is the fixed sensitivity structure
// scaled by the solved temperatures. It must follow a Solve at the same
// density.
func (t *Thermal) Linearize(density []float64) error {
	if err := t.checkDensity(density); err != nil {
		return err
	}
	if t.solvedFor == nil || !floats.Equal(density, t.solvedFor) {
		return fmt.Errorf("Linearize must follow a Solve at the same density")
	}
	t.dJac.refresh(t.temp)
	t.linearized = true
	return nil
}

// ApplyLinear propagates derivative seeds through the linearized
// residual. In Forward mode it accumulates
//
//	dResidual += K dTemp + dR/d(density) dDensity
//
// reading dTemp and dDensity (either may be nil). In Reverse mode it
// accumulates
//
//	dTemp    += K^T dResidual
//	dDensity += dR/d(density)^T dResidual
//
// reading dResidual and writing whichever of dTemp, dDensity is non-nil.
func (t *Thermal) ApplyLinear(mode Mode, dDensity, dTemp, dResidual []float64) error {
	if !t.linearized {
		return fmt.Errorf("ApplyLinear requires a prior Linearize")
	}
	n := t.grid.NumNodes()
	switch mode {
	case Forward:
		if dResidual == nil {
			return fmt.Errorf("forward ApplyLinear needs a dResidual target")
		}
		if dTemp != nil {
			scratch := make([]float64, n)
			t.asm.mulVec(dTemp, scratch)
			floats.Add(dResidual, scratch)
		}
		if dDensity != nil {
			t.dJac.mulVec(dDensity, dResidual)
		}
	case Reverse:
		if dResidual == nil {
			return fmt.Errorf("reverse ApplyLinear needs a dResidual seed")
		}
		if dTemp != nil {
			scratch := make([]float64, n)
			t.asm.mulTransVec(dResidual, scratch)
			floats.Add(dTemp, scratch)
		}
		if dDensity != nil {
			t.dJac.mulTransVec(dResidual, dDensity)
		}
	default:
		return fmt.Errorf("unknown mode %d", mode)
	}
	return nil
}

// SolveLinear solves K x = rhs in Forward mode and K^T x = rhs in
// Reverse mode, reusing the factorization from the last Solve. Reverse
// solves drive adjoint total-derivative propagation in the optimizer.
func (t *Thermal) SolveLinear(mode Mode, rhs []float64) ([]float64, error) {
	if !t.linearized {
		return nil, fmt.Errorf("SolveLinear requires a prior Linearize")
	}
	return t.lu.solve(rhs, mode == Reverse)
}

// Temperature returns a copy of the last solved temperature field.
func (t *Thermal) Temperature() []float64 {
	out := make([]float64, len(t.temp))
	copy(out, t.temp)
	return out
}

// Mesh returns the grid coordinates for consumers such as plotting.
func (t *Thermal) Mesh() *mesh.Grid { return t.grid }

// StiffnessMatrix returns a sparse view of the assembled conductance
// matrix from the most recent assembly.
func (t *Thermal) StiffnessMatrix() *sparse.CSR { return t.asm.matrix }

// DensityJacobianMatrix returns a sparse view of dR/d(density) from the
// most recent linearization, or nil before the first Linearize.
func (t *Thermal) DensityJacobianMatrix() *sparse.CSR { return t.dJac.matrix }

// Load returns a copy of the assembled load vector.
func (t *Thermal) Load() []float64 {
	out := make([]float64, len(t.load))
	copy(out, t.load)
	return out
}
