package density

import (
	"fmt"
	"math"
)

// SmoothStep pushes densities toward 0 or 1 through the rational
// projection
//
//	s(t) = t^n / (t^n + (1-t)^n),  t = (x - xMin) / (xMax - xMin)
//
// inside the transition band [xMin, xMax]. Outputs clip to 0 below the
// band and 1 above it, where the derivative is exactly zero.
type SmoothStep struct {
	Order      float64
	XMin, XMax float64
}

func NewSmoothStep(order, xMin, xMax float64) (*SmoothStep, error) {
	if order < 1 {
		return nil, fmt.Errorf("smoothstep order must be at least 1, got %v", order)
	}
	if xMax <= xMin {
		return nil, fmt.Errorf("smoothstep band must be ordered, got [%v, %v]", xMin, xMax)
	}
	return &SmoothStep{Order: order, XMin: xMin, XMax: xMax}, nil
}

func (s *SmoothStep) value(x float64) float64 {
	t := (x - s.XMin) / (s.XMax - s.XMin)
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	tn := math.Pow(t, s.Order)
	un := math.Pow(1-t, s.Order)
	return tn / (tn + un)
}

func (s *SmoothStep) deriv(x float64) float64 {
	t := (x - s.XMin) / (s.XMax - s.XMin)
	if t <= 0 || t >= 1 {
		return 0
	}
	tn := math.Pow(t, s.Order)
	un := math.Pow(1-t, s.Order)
	denom := tn + un
	// d/dt of t^n / (t^n + (1-t)^n)
	dt := s.Order * math.Pow(t, s.Order-1) * math.Pow(1-t, s.Order-1) / (denom * denom)
	return dt / (s.XMax - s.XMin)
}

// Apply maps each entry through the projection.
func (s *SmoothStep) Apply(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = s.value(v)
	}
	return y
}

// Deriv is the elementwise Jacobian diagonal, zero outside the band.
func (s *SmoothStep) Deriv(x []float64) []float64 {
	d := make([]float64, len(x))
	for i, v := range x {
		d[i] = s.deriv(v)
	}
	return d
}
