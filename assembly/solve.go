package assembly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/basis"
	"github.com/notargets/goelastic/elasticity"
	"github.com/notargets/goelastic/geometry"
	"github.com/notargets/goelastic/refelement"
	"github.com/notargets/goelastic/utils"
)

// SolveCG solves A x = b for symmetric positive definite A with the Jacobi
// preconditioned conjugate gradient method, starting from zero. Convergence is reached
// when the residual norm drops below tol times the norm of b.
func SolveCG(A utils.CSR, b []float64, tol float64, maxIter int) (x []float64, iter int, err error) {
	var (
		n     = len(b)
		r     = append([]float64{}, b...)
		z     = make([]float64, n)
		p     = make([]float64, n)
		Ap    = make([]float64, n)
		dinv  = make([]float64, n)
		bnorm = floats.Norm(b, 2)
	)
	x = make([]float64, n)
	if bnorm == 0 {
		return
	}
	for i := range dinv {
		d := A.At(i, i)
		if d <= 0 {
			return x, 0, fmt.Errorf("non positive diagonal %g in row %d", d, i)
		}
		dinv[i] = 1 / d
	}
	floats.MulTo(z, dinv, r)
	copy(p, z)
	rz := floats.Dot(r, z)
	for iter = 1; iter <= maxIter; iter++ {
		A.MulVec(p, Ap)
		pAp := floats.Dot(p, Ap)
		if pAp <= 0 {
			return x, iter, fmt.Errorf("matrix is not positive definite, p'Ap = %g", pAp)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		if floats.Norm(r, 2) <= tol*bnorm {
			return
		}
		floats.MulTo(z, dinv, r)
		rzNew := floats.Dot(r, z)
		floats.AddScaledTo(p, z, rzNew/rz, p)
		rz = rzNew
	}
	return x, maxIter, fmt.Errorf("no convergence after %d iterations, relative residual %g",
		maxIter, floats.Norm(r, 2)/bnorm)
}

// L2Error integrates |u - exact|^2 over the geometry and returns its square root
func L2Error(cl geometry.Curvilinear, u *refelement.FiniteElementFunction, exact elasticity.Functional) float64 {
	var (
		D     = cl.Dim()
		space = u.Space()
		Q     = u.NumQuantities()
		rule  = basis.SimplexQuadrature(D, 2*space.Degree()+2)
		E     = space.EvaluateBasisAt(rule.Points)
		jac   = mat.NewDense(D, D, nil)
		G     = mat.NewDense(D, D, nil)
		x     = make([]float64, D)
		ex    = make([]float64, Q)
		sum   float64
	)
	for elNo := 0; elNo < u.NumElements(); elNo++ {
		coeffs := u.Values(elNo)
		for q, xi := range rule.Points {
			cl.Map(elNo, xi, x)
			cl.Jacobian(elNo, xi, jac)
			detJ := geometry.InvertJacobian(jac, G)
			exact.Eval(x, ex)
			for i := 0; i < Q; i++ {
				var uh float64
				for p := 0; p < space.NumBasisFunctions(); p++ {
					uh += E.At(p, q) * coeffs.At(p, i)
				}
				sum += rule.Weights[q] * math.Abs(detJ) * (uh - ex[i]) * (uh - ex[i])
			}
		}
	}
	return math.Sqrt(sum)
}
