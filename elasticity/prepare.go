package elasticity

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/geometry"
	"github.com/notargets/goelastic/utils"
)

// volumeData is stored column wise, entry (elNo, q) of a per point array lives at
// elNo*nq + q, vectors and matrices per point follow contiguously
type volumeData struct {
	lam, mu     []float64 // nodal material, elNo*nbm + m
	lamWJ, muWJ []float64 // lambda W |J|, mu W |J|
	WJ          []float64 // W |J|
	x           []float64 // physical points, (elNo*nq + q)*D + d
	G           []float64 // inverse Jacobian, (elNo*nq + q)*D*D + k*D + d
}

// facetData holds one entry per local facet, per point arrays at fctNo*nqf + q
type facetData struct {
	lam, mu [2][]float64
	x       []float64 // (fctNo*nqf + q)*D + d
	n       []float64 // unit normal of side 0, same layout as x
	nl      []float64 // area element
	G       [2][]float64
	tab     [2][]int
}

// BeginPreparation sizes all precomputed storage. Volume data covers numElements, which
// may include ghost elements beyond numLocalElements. Must not run concurrently with any
// other call.
func (op *Elasticity) BeginPreparation(numElements, numLocalElements, numLocalFacets int) {
	var (
		D   = op.dim
		nEq = numElements * op.nq
		nFq = numLocalFacets * op.nqf
	)
	op.numElements = numElements
	op.numLocalElements = numLocalElements
	op.numLocalFacets = numLocalFacets
	op.vol = volumeData{
		lam:   make([]float64, numElements*op.nbm),
		mu:    make([]float64, numElements*op.nbm),
		lamWJ: make([]float64, nEq),
		muWJ:  make([]float64, nEq),
		WJ:    make([]float64, nEq),
		x:     make([]float64, nEq*D),
		G:     make([]float64, nEq*D*D),
	}
	op.fct = facetData{
		x:  make([]float64, nFq*D),
		n:  make([]float64, nFq*D),
		nl: make([]float64, nFq),
	}
	for s := 0; s < 2; s++ {
		op.fct.lam[s] = make([]float64, nFq)
		op.fct.mu[s] = make([]float64, nFq)
		op.fct.G[s] = make([]float64, nFq*D*D)
		op.fct.tab[s] = make([]int, numLocalFacets)
	}
	op.stage.Store(int32(Uninitialized))
	op.logger.Debug("begin preparation",
		zap.Int("elements", numElements),
		zap.Int("localElements", numLocalElements),
		zap.Int("localFacets", numLocalFacets),
	)
}

func (op *Elasticity) checkElement(elNo int) {
	if elNo < 0 || elNo >= op.numElements {
		panic(fmt.Errorf("element %d out of range [0,%d)", elNo, op.numElements))
	}
}

func (op *Elasticity) checkFacet(fctNo int) {
	if fctNo < 0 || fctNo >= op.numLocalFacets {
		panic(fmt.Errorf("facet %d out of range [0,%d)", fctNo, op.numLocalFacets))
	}
}

// PrepareVolume samples the material at the nodes of element elNo and stores the
// weighted coefficients and inverse Jacobians at the volume quadrature points
func (op *Elasticity) PrepareVolume(elNo int, scratch *utils.LinearAllocator) {
	op.checkElement(elNo)
	var (
		D     = op.dim
		mark  = scratch.Mark()
		x     = scratch.Allocate(D)
		jac   = mat.NewDense(D, D, scratch.Allocate(D*D))
		lam   = op.vol.lam[elNo*op.nbm : (elNo+1)*op.nbm]
		mu    = op.vol.mu[elNo*op.nbm : (elNo+1)*op.nbm]
		nodes = op.materialSpace.RefNodes()
	)
	defer scratch.Release(mark)
	for m, xi := range nodes {
		op.cl.Map(elNo, xi, x)
		lam[m] = op.lam(x)
		mu[m] = op.mu(x)
	}
	for q, xi := range op.volRule.Points {
		k := elNo*op.nq + q
		op.cl.Map(elNo, xi, op.vol.x[k*D:(k+1)*D])
		op.cl.Jacobian(elNo, xi, jac)
		G := mat.NewDense(D, D, op.vol.G[k*D*D:(k+1)*D*D])
		detJ := geometry.InvertJacobian(jac, G)
		WJ := op.volRule.Weights[q] * math.Abs(detJ)
		op.vol.WJ[k] = WJ
		op.vol.lamWJ[k] = interpolate(op.matE_Q, q, lam) * WJ
		op.vol.muWJ[k] = interpolate(op.matE_Q, q, mu) * WJ
	}
	op.advance(VolumePrepared)
}

// interpolate evaluates sum_m E[m][q] coeffs[m]
func interpolate(E *mat.Dense, q int, coeffs []float64) (v float64) {
	for m, c := range coeffs {
		v += E.At(m, q) * c
	}
	return
}

// PrepareSkeleton stores geometry and material of both sides at the points of an
// interior facet. Normal and area element are taken from side 0.
func (op *Elasticity) PrepareSkeleton(fctNo int, info FacetInfo, scratch *utils.LinearAllocator) {
	op.prepareFacet(fctNo, info, 2, scratch)
	op.advance(SkeletonPrepared)
}

// PrepareBoundary is PrepareSkeleton for a facet with a single adjacent element
func (op *Elasticity) PrepareBoundary(fctNo int, info FacetInfo, scratch *utils.LinearAllocator) {
	op.prepareFacet(fctNo, info, 1, scratch)
	op.advance(BoundaryPrepared)
}

func (op *Elasticity) prepareFacet(fctNo int, info FacetInfo, sides int, scratch *utils.LinearAllocator) {
	op.checkFacet(fctNo)
	var (
		D    = op.dim
		mark = scratch.Mark()
		jac  = mat.NewDense(D, D, scratch.Allocate(D*D))
	)
	defer scratch.Release(mark)
	for s := 0; s < 2; s++ {
		side := s
		if s >= sides {
			side = 0
		}
		op.checkElement(info.Up[side])
		tab := op.tabulation(info.LocalNo[side], info.Vertices[side])
		op.fct.tab[s][fctNo] = tab
		var (
			ref = op.fctRefs[tab]
			el  = info.Up[side]
			lam = op.vol.lam[el*op.nbm : (el+1)*op.nbm]
			mu  = op.vol.mu[el*op.nbm : (el+1)*op.nbm]
		)
		for q, xi := range ref.points {
			k := fctNo*op.nqf + q
			op.cl.Jacobian(el, xi, jac)
			if s == 0 {
				op.cl.Map(el, xi, op.fct.x[k*D:(k+1)*D])
				op.fct.nl[k] = geometry.AreaNormal(jac, ref.refNormal, op.fct.n[k*D:(k+1)*D])
			}
			geometry.InvertJacobian(jac, mat.NewDense(D, D, op.fct.G[s][k*D*D:(k+1)*D*D]))
			op.fct.lam[s][k] = interpolate(ref.matE_q, q, lam)
			op.fct.mu[s][k] = interpolate(ref.matE_q, q, mu)
		}
	}
}

// PrepareVolumePostSkeleton runs after all facets are prepared. The base coefficients
// need no facet information, so only the stage advances.
func (op *Elasticity) PrepareVolumePostSkeleton(elNo int, scratch *utils.LinearAllocator) {
	op.checkElement(elNo)
	op.advance(PostSkeletonVolumePrepared)
}
