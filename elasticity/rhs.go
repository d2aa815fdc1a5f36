package elasticity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/utils"
)

// RhsVolume integrates the body force against the test functions of element elNo.
// Returns false when no force is set.
func (op *Elasticity) RhsVolume(elNo int, B *mat.VecDense, scratch *utils.LinearAllocator) bool {
	checkVector("B", B, op.BlockSize())
	if op.force == nil {
		return false
	}
	var (
		D    = op.dim
		nq   = op.nq
		off  = elNo * nq
		mark = scratch.Mark()
		F    = mat.NewDense(nq, D, scratch.Allocate(nq*D))
		x    = mat.NewDense(nq, D, op.vol.x[off*D:(off+nq)*D])
	)
	defer scratch.Release(mark)
	op.force.EvalVolume(elNo, x, F)
	B.Zero()
	for i := 0; i < D; i++ {
		for p := 0; p < op.nb; p++ {
			var sum float64
			for k := 0; k < nq; k++ {
				sum += op.vol.WJ[off+k] * op.E_Q.At(p, k) * F.At(k, i)
			}
			B.SetVec(p+i*op.nb, sum)
		}
	}
	return true
}

// facetPoints views the physical points and normals of a facet
func (op *Elasticity) facetPoints(fctNo int) (x, n *mat.Dense) {
	var (
		D   = op.dim
		off = fctNo * op.nqf
	)
	x = mat.NewDense(op.nqf, D, op.fct.x[off*D:(off+op.nqf)*D])
	n = mat.NewDense(op.nqf, D, op.fct.n[off*D:(off+op.nqf)*D])
	return
}

// RhsSkeleton adds the prescribed slip S on interior fault facets, where the jump [[u]] is
// replaced by [[u]] - S:
//
//	b_s = epsilon int {{sigma(v) n}} . S + int delta S . [[v]]
//
// Returns false on facets without slip.
func (op *Elasticity) RhsSkeleton(fctNo int, info FacetInfo, B0, B1 *mat.VecDense,
	scratch *utils.LinearAllocator) bool {
	checkVector("B0", B0, op.BlockSize())
	checkVector("B1", B1, op.BlockSize())
	if info.BC != utils.BCSlip || op.slip == nil {
		return false
	}
	var (
		D    = op.dim
		nqf  = op.nqf
		mark = scratch.Mark()
		S    = mat.NewDense(nqf, D, scratch.Allocate(nqf*D))
		grad = scratch.Allocate(op.nb * nqf * D)
		x, n = op.facetPoints(fctNo)
	)
	defer scratch.Release(mark)
	op.slip.EvalFacet(fctNo, x, n, S)
	pen := op.penalty(info)
	for s, B := range []*mat.VecDense{B0, B1} {
		op.facetRhs(fctNo, s, pen, 0.5, sideSign(s), S, grad, B)
	}
	return true
}

// RhsBoundary adds Dirichlet data g on Dirichlet facets, or half the slip on boundary
// fault facets, b = epsilon int sigma(v) n . g + int delta v . g.
// Returns false on natural facets and when the data is not set.
func (op *Elasticity) RhsBoundary(fctNo int, info FacetInfo, B0 *mat.VecDense,
	scratch *utils.LinearAllocator) bool {
	checkVector("B0", B0, op.BlockSize())
	var (
		fun   FacetFunctional
		scale = 1.
	)
	switch info.BC {
	case utils.BCDirichlet:
		fun = op.dirichlet
	case utils.BCSlip:
		fun, scale = op.slip, 0.5
	}
	if fun == nil {
		return false
	}
	var (
		D    = op.dim
		nqf  = op.nqf
		mark = scratch.Mark()
		g    = mat.NewDense(nqf, D, scratch.Allocate(nqf*D))
		grad = scratch.Allocate(op.nb * nqf * D)
		x, n = op.facetPoints(fctNo)
	)
	defer scratch.Release(mark)
	fun.EvalFacet(fctNo, x, n, g)
	if scale != 1 {
		g.Scale(scale, g)
	}
	op.facetRhs(fctNo, 0, op.penalty(info), 1, 1, g, grad, B0)
	return true
}

// facetRhs fills the load vector of side s for prescribed jump data g
func (op *Elasticity) facetRhs(fctNo, s int, pen, avg, sgn float64, g *mat.Dense, grad []float64,
	B *mat.VecDense) {
	var (
		D   = op.dim
		nb  = op.nb
		nqf = op.nqf
		off = fctNo * nqf
		ref = op.fctRefs[op.fct.tab[s][fctNo]]
	)
	op.physicalGradients(ref.Dxi_q, op.fct.G[s][off*D*D:(off+nqf)*D*D], grad)
	B.Zero()
	for k := 0; k < nqf; k++ {
		var (
			w     = op.fctRule.Weights[k] * op.fct.nl[off+k]
			n     = op.fct.n[(off+k)*D : (off+k+1)*D]
			lam   = op.fct.lam[s][off+k]
			mu    = op.fct.mu[s][off+k]
			delta = op.facetDelta(fctNo, k, pen, avg)
			gk    = g.RawRowView(k)
		)
		for i := 0; i < D; i++ {
			for p := 0; p < nb; p++ {
				var (
					gradP = grad[(p*nqf+k)*D : (p*nqf+k+1)*D]
					v     = delta * sgn * ref.E_q.At(p, k) * gk[i]
				)
				for j := 0; j < D; j++ {
					v += op.epsilon * avg * tractionOf(lam, mu, gradP, n, i, j) * gk[j]
				}
				B.SetVec(p+i*nb, B.AtVec(p+i*nb)+w*v)
			}
		}
	}
}
