package elasticity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/utils"
)

// TractionResultInfo returns the shape of the Traction result, Dim x facet points
func (op *Elasticity) TractionResultInfo() (rows, cols int) {
	return op.dim, op.nqf
}

// Traction evaluates the numerical traction at the facet quadrature points,
//
//	{{sigma(u) n}} - delta ([[u]] - S)
//
// u0 and u1 are nb x Dim coefficient matrices of both sides. On boundary facets u1 is
// ignored: Dirichlet and slip facets give sigma(u0) n - delta (u0 - g), natural facets
// sigma(u0) n. Unset data counts as zero.
func (op *Elasticity) Traction(fctNo int, info FacetInfo, u0, u1 mat.Matrix, result *mat.Dense) {
	var (
		D        = op.dim
		nqf      = op.nqf
		boundary = info.IsBoundary()
		sides    = 2
		avg      = 0.5
	)
	checkMatrix("u0", u0, op.nb, D)
	if boundary {
		sides, avg = 1, 1
	} else {
		checkMatrix("u1", u1, op.nb, D)
	}
	checkMatrix("result", result, D, nqf)

	var (
		uk    = [2]mat.Matrix{u0, u1}
		grad  = make([]float64, op.nb*nqf*D)
		val   = make([]float64, D)
		du    = make([]float64, D*D)
		off   = fctNo * nqf
		pen   = op.penalty(info)
		x, n  = op.facetPoints(fctNo)
		data  = mat.NewDense(nqf, D, nil)
		jumps = mat.NewDense(nqf, D, nil)
		scale = 1.
		fun   FacetFunctional
	)
	result.Zero()
	for s := 0; s < sides; s++ {
		ref := op.fctRefs[op.fct.tab[s][fctNo]]
		op.physicalGradients(ref.Dxi_q, op.fct.G[s][off*D*D:(off+nqf)*D*D], grad)
		for k := 0; k < nqf; k++ {
			// u and du[j*D + a] = d_a u_j at point k
			for j := 0; j < D; j++ {
				val[j] = 0
				for a := 0; a < D; a++ {
					du[j*D+a] = 0
				}
				for p := 0; p < op.nb; p++ {
					c := uk[s].At(p, j)
					val[j] += ref.E_q.At(p, k) * c
					for a := 0; a < D; a++ {
						du[j*D+a] += grad[(p*nqf+k)*D+a] * c
					}
				}
			}
			var (
				nk  = op.fct.n[(off+k)*D : (off+k+1)*D]
				lam = op.fct.lam[s][off+k]
				mu  = op.fct.mu[s][off+k]
				div float64
			)
			for j := 0; j < D; j++ {
				div += du[j*D+j]
			}
			for a := 0; a < D; a++ {
				sn := lam * div * nk[a]
				for b := 0; b < D; b++ {
					sn += mu * (du[a*D+b] + du[b*D+a]) * nk[b]
				}
				result.Set(a, k, result.At(a, k)+avg*sn)
				jumps.Set(k, a, jumps.At(k, a)+sideSign(s)*val[a])
			}
		}
	}

	switch {
	case boundary && info.BC == utils.BCDirichlet:
		fun = op.dirichlet
	case boundary && info.BC == utils.BCSlip:
		fun, scale = op.slip, 0.5
	case !boundary && info.BC == utils.BCSlip:
		fun = op.slip
	}
	if boundary && !weakBoundary(info.BC) {
		return
	}
	if fun != nil {
		fun.EvalFacet(fctNo, x, n, data)
	}
	for k := 0; k < nqf; k++ {
		delta := op.facetDelta(fctNo, k, pen, avg)
		for a := 0; a < D; a++ {
			result.Set(a, k, result.At(a, k)-delta*(jumps.At(k, a)-scale*data.At(k, a)))
		}
	}
}

// CoefficientsVolume writes lambda (column 0) and mu (column 1) at the volume quadrature
// points of element elNo into C, nq x 2
func (op *Elasticity) CoefficientsVolume(elNo int, C *mat.Dense, scratch *utils.LinearAllocator) {
	checkMatrix("C", C, op.nq, 2)
	var (
		lam = op.vol.lam[elNo*op.nbm : (elNo+1)*op.nbm]
		mu  = op.vol.mu[elNo*op.nbm : (elNo+1)*op.nbm]
	)
	for q := 0; q < op.nq; q++ {
		C.Set(q, 0, interpolate(op.matE_Q, q, lam))
		C.Set(q, 1, interpolate(op.matE_Q, q, mu))
	}
}

// MaterialCoefficients writes the nodal values of lambda and mu of element elNo into C,
// nbm x 2, in the layout of CoefficientsPrototype
func (op *Elasticity) MaterialCoefficients(elNo int, C *mat.Dense) {
	checkMatrix("C", C, op.nbm, 2)
	for m := 0; m < op.nbm; m++ {
		C.Set(m, 0, op.vol.lam[elNo*op.nbm+m])
		C.Set(m, 1, op.vol.mu[elNo*op.nbm+m])
	}
}
