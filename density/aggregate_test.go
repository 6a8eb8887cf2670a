package density

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMass(t *testing.T) {
	assert.Equal(t, 0.0, Mass([]float64{0, 0, 0}))
	assert.Equal(t, 4.0, Mass([]float64{1, 1, 1, 1}))
	assert.InDelta(t, 1.5, Mass([]float64{0.25, 0.5, 0.75}), 1e-14)

	jac := MassJacobian(5)
	require.Len(t, jac, 5)
	for _, v := range jac {
		assert.Equal(t, 1.0, v)
	}
}

func TestKSBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := make([]float64, 50)
	for i := range values {
		values[i] = 100 * rng.NormFloat64()
	}
	maxVal := values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	for _, rho := range []float64{1, 10, 50, 200} {
		ks := KS(values, rho)
		// Conservative from above, within ln(n)/rho of the true max.
		assert.GreaterOrEqual(t, ks, maxVal)
		assert.LessOrEqual(t, ks, maxVal+math.Log(float64(len(values)))/rho)
	}

	// Tightens with rho. On a wide spread the non-max terms underflow
	// for large rho and both sides round to the same float64, so the
	// strict comparison needs entries crowded near the max.
	assert.GreaterOrEqual(t, KS(values, 10), KS(values, 100))
	crowded := []float64{10, 9.9, 9.8, 9.7}
	assert.Greater(t, KS(crowded, 10), KS(crowded, 100))

	// Exact on a constant vector up to the ln(n)/rho offset.
	flat := []float64{3, 3, 3, 3}
	assert.InDelta(t, 3+math.Log(4)/50, KS(flat, 50), 1e-12)
}

func TestKSWeights(t *testing.T) {
	values := []float64{10, 40, 35, 39.5}
	rho := 25.0
	w := KSWeights(values, rho)

	var sum float64
	for _, v := range w {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-13)
	// The largest entry dominates the softmax.
	assert.Greater(t, w[1], w[3])
	assert.Greater(t, w[3], w[2])
	assert.Greater(t, w[2], w[0])

	// Weights are the gradient of the aggregate.
	h := 1e-6
	for i := range values {
		values[i] += h
		fp := KS(values, rho)
		values[i] -= 2 * h
		fm := KS(values, rho)
		values[i] += h
		assert.InDelta(t, (fp-fm)/(2*h), w[i], 1e-6, "component %d", i)
	}
}

func TestAvgTemp(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	a := NewAvgTemp(g)

	temp := make([]float64, g.NumNodes())
	for i := range temp {
		temp[i] = float64(i)
	}
	density := []float64{1, 0.5, 0, 0.25}

	vals := a.Value(density, temp)
	require.Len(t, vals, 4)
	// Element 0 spans nodes 0, 3, 4, 1.
	assert.InDelta(t, (0.0+3+4+1)/4, vals[0], 1e-14)
	assert.InDelta(t, 0.5*(1.0+4+5+2)/4, vals[1], 1e-14)
	assert.Equal(t, 0.0, vals[2])

	partial := a.PartialDensity(temp)
	for e := range vals {
		if density[e] != 0 {
			assert.InDelta(t, vals[e]/density[e], partial[e], 1e-13)
		}
	}

	// Forward/transpose consistency of the temperature Jacobian.
	rng := rand.New(rand.NewSource(9))
	u := make([]float64, g.NumElements())
	v := make([]float64, g.NumNodes())
	for i := range u {
		u[i] = rng.NormFloat64()
	}
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	jv := a.ApplyTempJacobian(density, v, false)
	jtu := a.ApplyTempJacobian(density, u, true)
	var lhs, rhs float64
	for i := range u {
		lhs += u[i] * jv[i]
	}
	for i := range v {
		rhs += jtu[i] * v[i]
	}
	assert.InDelta(t, lhs, rhs, 1e-12)

	// And against finite differences of Value.
	h := 1e-6
	plus := make([]float64, len(temp))
	minus := make([]float64, len(temp))
	for i := range temp {
		plus[i] = temp[i] + h*v[i]
		minus[i] = temp[i] - h*v[i]
	}
	vp := a.Value(density, plus)
	vm := a.Value(density, minus)
	for e := range jv {
		assert.InDelta(t, (vp[e]-vm[e])/(2*h), jv[e], 1e-7, "element %d", e)
	}
}
