package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/basis"
)

// ReferencePenalties holds one interior penalty scale per element
type ReferencePenalties []float64

func (rp ReferencePenalties) Penalty(elNo int) float64 { return rp[elNo] }

// ReferencePenalty computes (N+1)(N+D)/D * max_f |F_f| / |K| for every element, the
// trace inverse inequality constant of polynomials of degree N on a simplex
func ReferencePenalty(cl Curvilinear, degree int) (rp ReferencePenalties) {
	var (
		dim      = cl.Dim()
		volRule  = basis.SimplexQuadrature(dim, 2*degree+2)
		fctRule  = basis.SimplexQuadrature(dim-1, 2*degree+2)
		jac      = mat.NewDense(dim, dim, nil)
		cof      = mat.NewDense(dim, dim, nil)
		n        = make([]float64, dim)
		N        = float64(degree)
		D        = float64(dim)
		constant = (N + 1) * (N + D) / D
	)
	rp = make(ReferencePenalties, cl.NumElements())
	for elNo := range rp {
		var vol float64
		for q, xi := range volRule.Points {
			cl.Jacobian(elNo, xi, jac)
			Cofactor(jac, cof)
			var det float64
			for j := 0; j < dim; j++ {
				det += jac.At(0, j) * cof.At(0, j)
			}
			vol += volRule.Weights[q] * math.Abs(det)
		}
		var maxArea float64
		for f := 0; f <= dim; f++ {
			var (
				area      float64
				verts     = FacetVertices(dim, f)
				refNormal = ReferenceFacetNormal(dim, f)
			)
			for q, chi := range fctRule.Points {
				cl.Jacobian(elNo, FacetToElement(dim, verts, chi), jac)
				area += fctRule.Weights[q] * AreaNormal(jac, refNormal, n)
			}
			maxArea = math.Max(maxArea, area)
		}
		rp[elNo] = constant * maxArea / vol
	}
	return
}
