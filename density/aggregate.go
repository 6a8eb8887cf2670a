package density

import (
	"math"

	"github.com/eytanadler/TOASTY/mesh"
	"gonum.org/v1/gonum/floats"
)

// Mass sums the densities. With congruent elements of unit mass at
// density 1, the sum is the material usage and serves as the
// optimization objective. Its Jacobian is all ones.
func Mass(density []float64) float64 {
	return floats.Sum(density)
}

// MassJacobian returns dMass/d(density), a vector of ones.
func MassJacobian(n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
	}
	return d
}

// KS is the Kreisselmeier-Steinhauser smooth maximum,
//
//	max(v) + ln(sum exp(rho*(v_i - max(v)))) / rho,
//
// a conservative, differentiable surrogate for the maximum nodal
// temperature constraint. Larger rho tightens the bound.
func KS(values []float64, rho float64) float64 {
	m := floats.Max(values)
	var sum float64
	for _, v := range values {
		sum += math.Exp(rho * (v - m))
	}
	return m + math.Log(sum)/rho
}

// KSWeights returns dKS/dv, the softmax weights of the aggregation.
func KSWeights(values []float64, rho float64) []float64 {
	m := floats.Max(values)
	w := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		w[i] = math.Exp(rho * (v - m))
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// AvgTemp reduces nodal temperatures to a per-element average weighted
// by the element's density, for constraints that should ignore void
// regions.
type AvgTemp struct {
	grid *mesh.Grid
}

func NewAvgTemp(g *mesh.Grid) *AvgTemp {
	return &AvgTemp{grid: g}
}

// Value computes density * mean(corner temperatures) per element.
func (a *AvgTemp) Value(density, temp []float64) []float64 {
	out := make([]float64, a.grid.NumElements())
	for e := range out {
		var sum float64
		for _, n := range a.grid.ElementCorners(e) {
			sum += temp[n]
		}
		out[e] = density[e] * sum / 4
	}
	return out
}

// PartialDensity is the diagonal d(avg)/d(density): the unweighted mean
// of each element's corner temperatures.
func (a *AvgTemp) PartialDensity(temp []float64) []float64 {
	out := make([]float64, a.grid.NumElements())
	for e := range out {
		var sum float64
		for _, n := range a.grid.ElementCorners(e) {
			sum += temp[n]
		}
		out[e] = sum / 4
	}
	return out
}

// ApplyTempJacobian propagates a seed through d(avg)/d(temp), whose rows
// hold density/4 at each of the element's four corner nodes. Forward
// mode maps a nodal seed to elements; transpose mode maps an element
// seed back to nodes.
func (a *AvgTemp) ApplyTempJacobian(density, v []float64, transpose bool) []float64 {
	if transpose {
		out := make([]float64, a.grid.NumNodes())
		for e := 0; e < a.grid.NumElements(); e++ {
			for _, n := range a.grid.ElementCorners(e) {
				out[n] += density[e] / 4 * v[e]
			}
		}
		return out
	}
	out := make([]float64, a.grid.NumElements())
	for e := range out {
		var sum float64
		for _, n := range a.grid.ElementCorners(e) {
			sum += v[n]
		}
		out[e] = density[e] / 4 * sum
	}
	return out
}
