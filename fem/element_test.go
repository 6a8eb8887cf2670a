package fem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeRowPartitionOfUnity(t *testing.T) {
	for _, qp := range quadraturePoints() {
		n := shapeRow(qp[0], qp[1])
		assert.InDelta(t, 1.0, n[0]+n[1]+n[2]+n[3], 1e-14)
	}
	// Each shape function is 1 at its own corner and 0 at the others.
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, c := range corners {
		n := shapeRow(c[0], c[1])
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, n[j], 1e-14)
		}
	}
}

func TestLocalStiffnessUnitSquare(t *testing.T) {
	K := localStiffness(1, 1, 1)
	want := [4][4]float64{
		{4, -1, -2, -1},
		{-1, 4, -1, -2},
		{-2, -1, 4, -1},
		{-1, -2, -1, 4},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, want[i][j]/6, K[i][j], 1e-14)
		}
	}
}

func TestLocalStiffnessProperties(t *testing.T) {
	K := localStiffness(2, 0.5, 37.5)
	for i := 0; i < 4; i++ {
		var rowSum float64
		for j := 0; j < 4; j++ {
			rowSum += K[i][j]
			assert.InDelta(t, K[j][i], K[i][j], 1e-12, "stiffness must be symmetric")
		}
		// A constant temperature field conducts no heat.
		assert.InDelta(t, 0, rowSum, 1e-12)
	}

	// Conductivity enters linearly.
	base := localStiffness(1, 1, 1)
	scaled := localStiffness(1, 1, 1000)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, 1000*base[i][j], scaled[i][j], 1e-10)
		}
	}
}

func TestLocalLoad(t *testing.T) {
	f := localLoad(1, 1)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 0.25, f[i], 1e-14)
	}
	// Unit heat generation integrates to the element area.
	f = localLoad(2, 3)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1.5, f[i], 1e-13)
	}
}
