package density

import (
	"fmt"
	"math"
)

// Penalization is the SIMP power law: physical density = x^p. For p > 1
// it penalizes intermediate densities so the optimizer is driven toward
// 0/1 material layouts.
type Penalization struct {
	P float64
}

func NewPenalization(p float64) (*Penalization, error) {
	if p <= 0 {
		return nil, fmt.Errorf("penalty exponent must be positive, got %v", p)
	}
	return &Penalization{P: p}, nil
}

// Apply maps each entry through x^p.
func (p *Penalization) Apply(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = math.Pow(v, p.P)
	}
	return y
}

// Deriv is the elementwise Jacobian diagonal p * x^(p-1).
func (p *Penalization) Deriv(x []float64) []float64 {
	d := make([]float64, len(x))
	for i, v := range x {
		d[i] = p.P * math.Pow(v, p.P-1)
	}
	return d
}
