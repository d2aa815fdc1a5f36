package basis

import "fmt"

// QuadratureRule integrates over a reference simplex: sum_q Weights[q] f(Points[q])
type QuadratureRule struct {
	Dim     int
	Points  [][]float64
	Weights []float64
}

func (qr QuadratureRule) Size() int { return len(qr.Weights) }

// Integrate applies the rule to f
func (qr QuadratureRule) Integrate(f func(xi []float64) float64) (sum float64) {
	for q, xi := range qr.Points {
		sum += qr.Weights[q] * f(xi)
	}
	return
}

// pointsForDegree is the number of Gauss points per collapsed direction needed to
// integrate polynomials of total degree exactly
func pointsForDegree(degree int) int {
	if degree < 0 {
		degree = 0
	}
	return (degree + 2) / 2
}

// LineQuadrature is the Gauss-Legendre rule on [0,1]
func LineQuadrature(degree int) (qr QuadratureRule) {
	x, w := GaussJacobi(pointsForDegree(degree), 0, 0)
	qr = QuadratureRule{Dim: 1}
	for i := range x {
		qr.Points = append(qr.Points, []float64{(1 + x[i]) / 2})
		qr.Weights = append(qr.Weights, w[i]/2)
	}
	return
}

// TriangleQuadrature collapses a tensor product of Gauss-Jacobi rules onto the
// reference triangle. The outer direction absorbs the Duffy Jacobian through the
// weight (1-x)^1.
func TriangleQuadrature(degree int) (qr QuadratureRule) {
	var (
		n      = pointsForDegree(degree)
		xa, wa = GaussJacobi(n, 1, 0)
		xb, wb = GaussJacobi(n, 0, 0)
	)
	qr = QuadratureRule{Dim: 2}
	for i := 0; i < n; i++ {
		x0 := (1 + xa[i]) / 2
		for j := 0; j < n; j++ {
			x1 := (1 + xb[j]) / 2 * (1 - x0)
			qr.Points = append(qr.Points, []float64{x0, x1})
			qr.Weights = append(qr.Weights, wa[i]*wb[j]/8)
		}
	}
	return
}

// TetrahedronQuadrature is the three dimensional analogue of TriangleQuadrature
func TetrahedronQuadrature(degree int) (qr QuadratureRule) {
	var (
		n      = pointsForDegree(degree)
		xa, wa = GaussJacobi(n, 2, 0)
		xb, wb = GaussJacobi(n, 1, 0)
		xc, wc = GaussJacobi(n, 0, 0)
	)
	qr = QuadratureRule{Dim: 3}
	for i := 0; i < n; i++ {
		x0 := (1 + xa[i]) / 2
		for j := 0; j < n; j++ {
			x1 := (1 + xb[j]) / 2 * (1 - x0)
			for k := 0; k < n; k++ {
				x2 := (1 + xc[k]) / 2 * (1 - x0 - x1)
				qr.Points = append(qr.Points, []float64{x0, x1, x2})
				qr.Weights = append(qr.Weights, wa[i]*wb[j]*wc[k]/64)
			}
		}
	}
	return
}

// SimplexQuadrature returns a rule on the reference simplex of dimension dim, exact for
// polynomials of total degree up to degree. Dimension 0 is the single point rule used
// on the facets of line elements.
func SimplexQuadrature(dim, degree int) QuadratureRule {
	switch dim {
	case 0:
		return QuadratureRule{Dim: 0, Points: [][]float64{{}}, Weights: []float64{1}}
	case 1:
		return LineQuadrature(degree)
	case 2:
		return TriangleQuadrature(degree)
	case 3:
		return TetrahedronQuadrature(degree)
	}
	panic(fmt.Errorf("no simplex quadrature for dimension %d", dim))
}
