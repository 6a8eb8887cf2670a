package fem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Reference quadrilateral kernel. Shape functions and their derivatives
// are evaluated once at the 2x2 Gauss points; with a uniform structured
// mesh every element shares one local stiffness matrix and one local
// load vector, so both are computed exactly once per problem.

func quadraturePoints() [4][2]float64 {
	s := 1.0 / math.Sqrt(3)
	return [4][2]float64{
		{-s, -s},
		{-s, s},
		{s, -s},
		{s, s},
	}
}

// shapeRow is the 1x4 bilinear shape function row [N1, N2, N3, N4]
// evaluated at standard coordinates (xi, eta).
func shapeRow(xi, eta float64) [4]float64 {
	return [4]float64{
		0.25 * (xi - 1) * (eta - 1),
		-0.25 * (xi + 1) * (eta - 1),
		0.25 * (xi + 1) * (eta + 1),
		-0.25 * (xi - 1) * (eta + 1),
	}
}

// shapeDeriv is the 2x4 matrix of shape function derivatives with
// respect to the standard coordinates:
//
//	| dN1/dxi,  dN2/dxi,  dN3/dxi,  dN4/dxi  |
//	| dN1/deta, dN2/deta, dN3/deta, dN4/deta |
func shapeDeriv(xi, eta float64) *mat.Dense {
	return mat.NewDense(2, 4, []float64{
		0.25 * (eta - 1), 0.25 * (-eta + 1), 0.25 * (eta + 1), 0.25 * (-eta - 1),
		0.25 * (xi - 1), 0.25 * (-xi - 1), 0.25 * (xi + 1), 0.25 * (-xi + 1),
	})
}

// cornerCoords are the nodal coordinates of the reference element in
// local order (lower-left, lower-right, upper-right, upper-left). All
// elements are congruent, so the element at the origin stands in for
// every element.
func cornerCoords(dx, dy float64) *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		dx, 0,
		dx, dy,
		0, dy,
	})
}

// localStiffness computes the 4x4 element conductance matrix
// sum over quadrature of k * B^T B * det(J), with J = dN * coords and
// B = J^-1 * dN.
func localStiffness(dx, dy, conductivity float64) (K [4][4]float64) {
	coords := cornerCoords(dx, dy)
	var (
		jac mat.Dense
		b   mat.Dense
		bb  mat.Dense
	)
	for _, qp := range quadraturePoints() {
		dN := shapeDeriv(qp[0], qp[1])
		jac.Mul(dN, coords)
		det := mat.Det(&jac)
		if err := b.Solve(&jac, dN); err != nil {
			panic("element Jacobian is singular")
		}
		bb.Mul(b.T(), &b)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				K[i][j] += conductivity * bb.At(i, j) * det
			}
		}
	}
	return
}

// localLoad computes the 4x1 consistent load vector for a unit heat
// generation rate, sum over quadrature of N^T * det(J). Scale by the
// element's q to get its actual load.
func localLoad(dx, dy float64) (f [4]float64) {
	coords := cornerCoords(dx, dy)
	var jac mat.Dense
	for _, qp := range quadraturePoints() {
		dN := shapeDeriv(qp[0], qp[1])
		jac.Mul(dN, coords)
		det := mat.Det(&jac)
		n := shapeRow(qp[0], qp[1])
		for i := 0; i < 4; i++ {
			f[i] += n[i] * det
		}
	}
	return
}
