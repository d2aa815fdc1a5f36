package elasticity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/utils"
)

// physicalGradients writes grad[(p*np + q)*D + d] = sum_k Dxi[k][p][q] G_q[k][d], the
// gradient of basis function p at point q in physical coordinates
func (op *Elasticity) physicalGradients(Dxi []*mat.Dense, G []float64, grad []float64) {
	var (
		D     = op.dim
		_, np = Dxi[0].Dims()
	)
	for p := 0; p < op.nb; p++ {
		for q := 0; q < np; q++ {
			g := grad[(p*np+q)*D : (p*np+q+1)*D]
			Gq := G[q*D*D : (q+1)*D*D]
			for d := 0; d < D; d++ {
				var sum float64
				for k := 0; k < D; k++ {
					sum += Dxi[k].At(p, q) * Gq[k*D+d]
				}
				g[d] = sum
			}
		}
	}
}

// tractionOf is component a of sigma(phi e_j) n for a basis function with gradient grad
func tractionOf(lam, mu float64, grad, n []float64, j, a int) (t float64) {
	t = lam*grad[j]*n[a] + mu*grad[a]*n[j]
	if a == j {
		for d := range grad {
			t += mu * grad[d] * n[d]
		}
	}
	return
}

// AssembleVolume computes the element stiffness matrix
//
//	A[(p,i),(q,j)] = int lambda d_i phi_p d_j phi_q + mu (delta_ij grad phi_p . grad phi_q + d_j phi_p d_i phi_q)
func (op *Elasticity) AssembleVolume(elNo int, A00 *mat.Dense, scratch *utils.LinearAllocator) bool {
	checkMatrix("A00", A00, op.BlockSize(), op.BlockSize())
	var (
		D    = op.dim
		nb   = op.nb
		nq   = op.nq
		mark = scratch.Mark()
		grad = scratch.Allocate(nb * nq * D)
		off  = elNo * nq
	)
	defer scratch.Release(mark)
	op.physicalGradients(op.Dxi_Q, op.vol.G[off*D*D:(off+nq)*D*D], grad)
	A00.Zero()
	for i := 0; i < D; i++ {
		for j := 0; j < D; j++ {
			for p := 0; p < nb; p++ {
				for q := 0; q < nb; q++ {
					var sum float64
					for k := 0; k < nq; k++ {
						var (
							gp = grad[(p*nq+k)*D : (p*nq+k+1)*D]
							gq = grad[(q*nq+k)*D : (q*nq+k+1)*D]
							v  = op.vol.lamWJ[off+k]*gp[i]*gq[j] + op.vol.muWJ[off+k]*gp[j]*gq[i]
						)
						if i == j {
							for d := 0; d < D; d++ {
								v += op.vol.muWJ[off+k] * gp[d] * gq[d]
							}
						}
						sum += v
					}
					A00.Set(p+i*nb, q+j*nb, sum)
				}
			}
		}
	}
	return true
}

// sideSign is +1 on side 0 and -1 on side 1, [[w]] = w_0 - w_1
func sideSign(s int) float64 {
	if s == 0 {
		return 1
	}
	return -1
}

// AssembleSkeleton computes the coupling blocks of an interior facet,
//
//	-int {{sigma(u) n}} . [[v]] + epsilon int {{sigma(v) n}} . [[u]] + int delta [[u]] . [[v]]
//
// Block Ast couples test functions of side s with trial functions of side t.
func (op *Elasticity) AssembleSkeleton(fctNo int, info FacetInfo, A00, A01, A10, A11 *mat.Dense,
	scratch *utils.LinearAllocator) bool {
	bs := op.BlockSize()
	checkMatrix("A00", A00, bs, bs)
	checkMatrix("A01", A01, bs, bs)
	checkMatrix("A10", A10, bs, bs)
	checkMatrix("A11", A11, bs, bs)
	var (
		D      = op.dim
		nqf    = op.nqf
		mark   = scratch.Mark()
		grad   = [2][]float64{scratch.Allocate(op.nb * nqf * D), scratch.Allocate(op.nb * nqf * D)}
		blocks = [2][2]*mat.Dense{{A00, A01}, {A10, A11}}
		pen    = op.penalty(info)
		off    = fctNo * nqf
	)
	defer scratch.Release(mark)
	for s := 0; s < 2; s++ {
		ref := op.fctRefs[op.fct.tab[s][fctNo]]
		op.physicalGradients(ref.Dxi_q, op.fct.G[s][off*D*D:(off+nqf)*D*D], grad[s])
	}
	for s := 0; s < 2; s++ {
		for t := 0; t < 2; t++ {
			op.facetBlock(fctNo, s, t, pen, 0.5, grad, blocks[s][t])
		}
	}
	return true
}

// AssembleBoundary computes the single sided flux of a Dirichlet or slip boundary facet.
// Natural boundaries have no contribution.
func (op *Elasticity) AssembleBoundary(fctNo int, info FacetInfo, A00 *mat.Dense,
	scratch *utils.LinearAllocator) bool {
	checkMatrix("A00", A00, op.BlockSize(), op.BlockSize())
	if !weakBoundary(info.BC) {
		return false
	}
	var (
		D    = op.dim
		nqf  = op.nqf
		mark = scratch.Mark()
		grad = scratch.Allocate(op.nb * nqf * D)
		off  = fctNo * nqf
	)
	defer scratch.Release(mark)
	ref := op.fctRefs[op.fct.tab[0][fctNo]]
	op.physicalGradients(ref.Dxi_q, op.fct.G[0][off*D*D:(off+nqf)*D*D], grad)
	op.facetBlock(fctNo, 0, 0, op.penalty(info), 1, [2][]float64{grad, grad}, A00)
	return true
}

// weakBoundary reports whether a boundary condition is imposed through the flux
func weakBoundary(bc utils.BCType) bool {
	return bc == utils.BCDirichlet || bc == utils.BCSlip
}

// facetBlock fills the (s,t) block of the facet bilinear form. avg is the weight of
// each side in the average, 1/2 inside and 1 on the boundary where side 1 is absent.
func (op *Elasticity) facetBlock(fctNo, s, t int, pen, avg float64, grad [2][]float64, A *mat.Dense) {
	var (
		D    = op.dim
		nb   = op.nb
		nqf  = op.nqf
		off  = fctNo * nqf
		Es   = op.fctRefs[op.fct.tab[s][fctNo]].E_q
		Et   = op.fctRefs[op.fct.tab[t][fctNo]].E_q
		sgnS = sideSign(s)
		sgnT = sideSign(t)
	)
	if avg == 1 {
		sgnS, sgnT = 1, 1
	}
	A.Zero()
	for k := 0; k < nqf; k++ {
		var (
			w     = op.fctRule.Weights[k] * op.fct.nl[off+k]
			n     = op.fct.n[(off+k)*D : (off+k+1)*D]
			lamS  = op.fct.lam[s][off+k]
			muS   = op.fct.mu[s][off+k]
			lamT  = op.fct.lam[t][off+k]
			muT   = op.fct.mu[t][off+k]
			delta = op.facetDelta(fctNo, k, pen, avg)
		)
		for i := 0; i < D; i++ {
			for j := 0; j < D; j++ {
				for p := 0; p < nb; p++ {
					var (
						phiP  = Es.At(p, k)
						gradP = grad[s][(p*nqf+k)*D : (p*nqf+k+1)*D]
						tnP   = tractionOf(lamS, muS, gradP, n, i, j)
					)
					for q := 0; q < nb; q++ {
						var (
							phiQ  = Et.At(q, k)
							gradQ = grad[t][(q*nqf+k)*D : (q*nqf+k+1)*D]
							v     = -avg*sgnS*phiP*tractionOf(lamT, muT, gradQ, n, j, i) +
								op.epsilon*avg*sgnT*tnP*phiQ
						)
						if i == j {
							v += delta * sgnS * sgnT * phiP * phiQ
						}
						A.Set(p+i*nb, q+j*nb, A.At(p+i*nb, q+j*nb)+w*v)
					}
				}
			}
		}
	}
}

// facetDelta is the penalty weight at point k, the penalty scale times the average
// p-wave modulus lambda + 2 mu of the sides
func (op *Elasticity) facetDelta(fctNo, k int, pen, avg float64) float64 {
	idx := fctNo*op.nqf + k
	m0 := op.fct.lam[0][idx] + 2*op.fct.mu[0][idx]
	if avg == 1 {
		return pen * m0
	}
	m1 := op.fct.lam[1][idx] + 2*op.fct.mu[1][idx]
	return pen * avg * (m0 + m1)
}
