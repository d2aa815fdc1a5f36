package basis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiP evaluates the (un-normalized) Jacobi polynomial P_n^{alpha,beta} at x
func JacobiP(n int, alpha, beta, x float64) (p float64) {
	p, _, _ = ScaledJacobiP(n, alpha, beta, x, 1)
	return
}

// GradJacobiP evaluates dP_n^{alpha,beta}/dx at x
func GradJacobiP(n int, alpha, beta, x float64) (dp float64) {
	_, dp, _ = ScaledJacobiP(n, alpha, beta, x, 1)
	return
}

// ScaledJacobiP evaluates the homogenized Jacobi polynomial t^n P_n^{alpha,beta}(s/t)
// and its partial derivatives with respect to s and t. The homogenized form is a
// polynomial in (s,t), so collapsed coordinates never divide by t.
func ScaledJacobiP(n int, alpha, beta, s, t float64) (p, dpds, dpdt float64) {
	if n < 0 {
		panic(fmt.Errorf("negative polynomial degree %d", n))
	}
	if n == 0 {
		return 1, 0, 0
	}
	var (
		ab           = alpha + beta
		p0, ds0, dt0 = 1., 0., 0.
		p1           = ((ab+2)*s + (alpha-beta)*t) / 2
		ds1          = (ab + 2) / 2
		dt1          = (alpha - beta) / 2
	)
	// 2(k+1)(k+ab+1)(2k+ab) P_{k+1} =
	//   (2k+ab+1)[(2k+ab+2)(2k+ab) x + alpha^2-beta^2] P_k - 2(k+alpha)(k+beta)(2k+ab+2) P_{k-1}
	for k := 1; k < n; k++ {
		var (
			fk  = float64(k)
			h   = 2*fk + ab
			A   = (h + 1) * (h + 2) * h
			B   = (h + 1) * (alpha*alpha - beta*beta)
			C   = 2 * (fk + alpha) * (fk + beta) * (h + 2)
			den = 2 * (fk + 1) * (fk + ab + 1) * h
			lin = A*s + B*t
			tt  = t * t
		)
		p2 := (lin*p1 - C*tt*p0) / den
		ds2 := (A*p1 + lin*ds1 - C*tt*ds0) / den
		dt2 := (B*p1 + lin*dt1 - 2*C*t*p0 - C*tt*dt0) / den
		p0, ds0, dt0 = p1, ds1, dt1
		p1, ds1, dt1 = p2, ds2, dt2
	}
	return p1, ds1, dt1
}

// GaussJacobi returns the n point Gauss rule for the weight (1-x)^alpha (1+x)^beta
// on [-1,1], exact for polynomials up to degree 2n-1. Nodes are the eigenvalues of the
// symmetric Jacobi matrix, weights follow from the first component of the
// eigenvectors (Golub-Welsch). Nodes are returned in descending order.
func GaussJacobi(n int, alpha, beta float64) (x, w []float64) {
	if n < 1 {
		panic(fmt.Errorf("gauss-jacobi rule needs at least one point, got %d", n))
	}
	var (
		ab = alpha + beta
		JJ = mat.NewSymDense(n, nil)
	)
	JJ.SetSym(0, 0, (beta-alpha)/(ab+2))
	for i := 1; i < n; i++ {
		fi := float64(i)
		h := 2*fi + ab
		JJ.SetSym(i, i, (beta*beta-alpha*alpha)/(h*(h+2)))
		JJ.SetSym(i-1, i,
			2/h*math.Sqrt(fi*(fi+ab)*(fi+alpha)*(fi+beta)/((h-1)*(h+1))))
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	values := eig.Values(nil)
	VV := mat.NewDense(n, n, nil)
	eig.VectorsTo(VV)

	mu0 := jacobiWeightIntegral(alpha, beta)
	x = make([]float64, n)
	w = make([]float64, n)
	for i := 0; i < n; i++ {
		// Eigenvalues come back ascending
		k := n - 1 - i
		x[i] = values[k]
		v0 := VV.At(0, k)
		w[i] = mu0 * v0 * v0
	}
	return
}

// jacobiWeightIntegral is the integral of (1-x)^alpha (1+x)^beta over [-1,1]
func jacobiWeightIntegral(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Pow(2, ab1) * math.Gamma(alpha+1) * math.Gamma(beta+1) / math.Gamma(ab1+1)
}
