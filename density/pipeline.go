package density

// Pipeline composes the processing stages in their fixed order:
// filter -> penalize -> smoothstep. Any stage may be nil, in which case
// it acts as the identity. Raw design variables slightly outside [0, 1]
// from floating-point noise are clamped on the way in; this is the only
// silently recovered condition in the repository.
type Pipeline struct {
	Filter *LinearFilter
	Penal  *Penalization
	Step   *SmoothStep
}

// Apply transforms raw design variables into the physical densities
// consumed by the assembler.
func (p *Pipeline) Apply(x []float64) []float64 {
	y := clampUnit(x)
	if p.Filter != nil {
		y = p.Filter.Apply(y)
	}
	if p.Penal != nil {
		y = p.Penal.Apply(y)
	}
	if p.Step != nil {
		y = p.Step.Apply(y)
	}
	return y
}

// ApplyJacobian chain-rules a derivative seed through the stages at the
// point x. Forward mode computes J v with J = diag(s') diag(p') W;
// transpose mode computes J^T v for reverse accumulation.
func (p *Pipeline) ApplyJacobian(x, v []float64, transpose bool) []float64 {
	// Stage inputs are needed for the nonlinear diagonals.
	in := clampUnit(x)
	filtered := in
	if p.Filter != nil {
		filtered = p.Filter.Apply(in)
	}
	var penalized []float64
	if p.Penal != nil {
		penalized = p.Penal.Apply(filtered)
	} else {
		penalized = filtered
	}

	out := append([]float64(nil), v...)
	if !transpose {
		if p.Filter != nil {
			out = p.Filter.ApplyJacobian(out, false)
		}
		if p.Penal != nil {
			mulDiag(out, p.Penal.Deriv(filtered))
		}
		if p.Step != nil {
			mulDiag(out, p.Step.Deriv(penalized))
		}
		return out
	}
	if p.Step != nil {
		mulDiag(out, p.Step.Deriv(penalized))
	}
	if p.Penal != nil {
		mulDiag(out, p.Penal.Deriv(filtered))
	}
	if p.Filter != nil {
		out = p.Filter.ApplyJacobian(out, true)
	}
	return out
}

func clampUnit(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < 0:
			y[i] = 0
		case v > 1:
			y[i] = 1
		default:
			y[i] = v
		}
	}
	return y
}

func mulDiag(x, d []float64) {
	for i := range x {
		x[i] *= d[i]
	}
}
