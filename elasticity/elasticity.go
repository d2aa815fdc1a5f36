package elasticity

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/basis"
	"github.com/notargets/goelastic/geometry"
	"github.com/notargets/goelastic/refelement"
)

// Stage tracks how far the preparation pipeline has advanced
type Stage int32

const (
	Uninitialized Stage = iota
	VolumePrepared
	SkeletonPrepared
	BoundaryPrepared
	PostSkeletonVolumePrepared
	Ready
)

func (s Stage) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case VolumePrepared:
		return "VolumePrepared"
	case SkeletonPrepared:
		return "SkeletonPrepared"
	case BoundaryPrepared:
		return "BoundaryPrepared"
	case PostSkeletonVolumePrepared:
		return "PostSkeletonVolumePrepared"
	case Ready:
		return "Ready"
	}
	return fmt.Sprintf("Stage(%d)", int32(s))
}

// ScalarFunc is a material parameter as a function of physical position
type ScalarFunc func(x []float64) float64

// Elasticity is the discontinuous Galerkin operator of linear elasticity with a symmetric
// interior penalty flux. Material parameters lambda and mu are sampled in a nodal space
// per element, the displacement lives in the modal Dubiner space.
type Elasticity struct {
	cl      geometry.Curvilinear
	pen     PenaltyProvider
	lam, mu ScalarFunc
	logger  *zap.Logger

	dim, degree, materialDegree, minQuadOrder int
	epsilon                                   float64

	space         *refelement.ModalRefElement
	materialSpace *refelement.NodalRefElement
	volRule       basis.QuadratureRule
	fctRule       basis.QuadratureRule

	// Volume tabulation, nb x nq and nbm x nq
	E_Q    *mat.Dense
	Dxi_Q  []*mat.Dense
	matE_Q *mat.Dense
	// Facet tabulation, one entry per (local facet, vertex order)
	fctTab  map[int]int
	fctRefs []facetTabulation

	nb, nbm, nq, nqf int

	stage *atomic.Int32

	numElements, numLocalElements, numLocalFacets int
	vol                                           volumeData
	fct                                           facetData

	force     VolumeFunctional
	dirichlet FacetFunctional
	slip      FacetFunctional
}

type Option func(op *Elasticity)

// WithDegree sets the polynomial degree of the displacement space
func WithDegree(degree int) Option {
	return func(op *Elasticity) { op.degree = degree }
}

// WithMaterialDegree sets the degree of the nodal space sampling lambda and mu
func WithMaterialDegree(degree int) Option {
	return func(op *Elasticity) { op.materialDegree = degree }
}

// WithMinQuadOrder sets the total degree integrated exactly by the quadrature rules
func WithMinQuadOrder(order int) Option {
	return func(op *Elasticity) { op.minQuadOrder = order }
}

// WithEpsilon selects the symmetric (-1) or non-symmetric (+1) interior penalty variant
func WithEpsilon(epsilon float64) Option {
	return func(op *Elasticity) { op.epsilon = epsilon }
}

func WithLogger(logger *zap.Logger) Option {
	return func(op *Elasticity) { op.logger = logger }
}

func New(cl geometry.Curvilinear, pen PenaltyProvider, lam, mu ScalarFunc, opts ...Option) (op *Elasticity, err error) {
	if cl == nil || pen == nil || lam == nil || mu == nil {
		err = fmt.Errorf("elasticity needs geometry, penalty and both lame parameters")
		return
	}
	op = &Elasticity{
		cl:             cl,
		pen:            pen,
		lam:            lam,
		mu:             mu,
		logger:         zap.NewNop(),
		dim:            cl.Dim(),
		degree:         2,
		materialDegree: 1,
		minQuadOrder:   -1,
		epsilon:        -1,
		stage:          atomic.NewInt32(int32(Uninitialized)),
	}
	for _, opt := range opts {
		opt(op)
	}
	switch {
	case op.dim < 2 || op.dim > 3:
		err = fmt.Errorf("elasticity is implemented for dimension 2 and 3, got %d", op.dim)
	case op.degree < 1:
		err = fmt.Errorf("displacement degree must be at least 1, got %d", op.degree)
	case op.materialDegree < 0:
		err = fmt.Errorf("negative material degree %d", op.materialDegree)
	}
	if err != nil {
		return nil, err
	}
	if op.minQuadOrder < 0 {
		op.minQuadOrder = 2 * op.degree
	}

	op.space = refelement.NewModalRefElement(op.dim, op.degree)
	op.materialSpace = refelement.NewNodalRefElement(op.dim, op.materialDegree)
	op.volRule = basis.SimplexQuadrature(op.dim, op.minQuadOrder)
	op.fctRule = basis.SimplexQuadrature(op.dim-1, op.minQuadOrder)
	op.nb = op.space.NumBasisFunctions()
	op.nbm = op.materialSpace.NumBasisFunctions()
	op.nq = op.volRule.Size()
	op.nqf = op.fctRule.Size()

	op.E_Q = op.space.EvaluateBasisAt(op.volRule.Points)
	op.Dxi_Q = op.space.EvaluateGradientAt(op.volRule.Points)
	op.matE_Q = op.materialSpace.EvaluateBasisAt(op.volRule.Points)
	op.tabulateFacets()

	op.logger.Debug("elasticity operator",
		zap.Int("dim", op.dim),
		zap.Int("degree", op.degree),
		zap.Int("materialDegree", op.materialDegree),
		zap.Int("basisFunctions", op.nb),
		zap.Int("volumePoints", op.nq),
		zap.Int("facetPoints", op.nqf),
		zap.Int("facetTabulations", len(op.fctRefs)),
	)
	return
}

func (op *Elasticity) Stage() Stage { return Stage(op.stage.Load()) }

// advance moves the stage forward, never backwards, and is safe under concurrent prepare calls
func (op *Elasticity) advance(st Stage) {
	for {
		cur := op.stage.Load()
		if cur >= int32(st) || op.stage.CAS(cur, int32(st)) {
			return
		}
	}
}

// EndPreparation marks the operator Ready once every prepare pass has completed
func (op *Elasticity) EndPreparation() { op.advance(Ready) }

func (op *Elasticity) Dim() int           { return op.dim }
func (op *Elasticity) NumQuantities() int { return op.dim }
func (op *Elasticity) BlockSize() int     { return op.nb * op.dim }
func (op *Elasticity) Degree() int        { return op.degree }
func (op *Elasticity) Epsilon() float64   { return op.epsilon }

func (op *Elasticity) VolumeRule() basis.QuadratureRule { return op.volRule }
func (op *Elasticity) FacetRule() basis.QuadratureRule  { return op.fctRule }

func (op *Elasticity) Space() refelement.RefElement         { return op.space }
func (op *Elasticity) MaterialSpace() refelement.RefElement { return op.materialSpace }

// ScratchSize is the number of float64 any single assemble or rhs call takes from its
// scratch allocator
func (op *Elasticity) ScratchSize() int {
	np := op.nq
	if op.nqf > np {
		np = op.nqf
	}
	return 2*op.nb*np*op.dim + np*op.dim
}

func (op *Elasticity) SolutionPrototype(numLocalElements int) *refelement.FiniteElementFunction {
	return refelement.NewFiniteElementFunction(op.space.Clone(), op.dim, numLocalElements)
}

func (op *Elasticity) CoefficientsPrototype(numLocalElements int) *refelement.FiniteElementFunction {
	return refelement.NewFiniteElementFunction(op.materialSpace.Clone(), 2, numLocalElements)
}

func (op *Elasticity) SetForce(fun VolumeFunctional)    { op.force = fun }
func (op *Elasticity) SetForceFunc(fun Functional)      { op.force = PointwiseVolume(fun) }
func (op *Elasticity) SetDirichlet(fun FacetFunctional) { op.dirichlet = fun }

// SetDirichletFunc sets pointwise Dirichlet data. With a non-nil refNormal the data
// changes sign on facets whose normal points against refNormal.
func (op *Elasticity) SetDirichletFunc(fun Functional, refNormal []float64) {
	op.dirichlet = PointwiseFacet(fun, refNormal)
}

func (op *Elasticity) SetSlip(fun FacetFunctional) { op.slip = fun }

// SetSlipFunc sets the slip (displacement jump) on fault facets, oriented by refNormal
func (op *Elasticity) SetSlipFunc(fun Functional, refNormal []float64) {
	op.slip = PointwiseFacet(fun, refNormal)
}

func checkMatrix(name string, A mat.Matrix, r, c int) {
	if A == nil {
		panic(fmt.Errorf("%s is nil, need %d x %d", name, r, c))
	}
	if nr, nc := A.Dims(); nr != r || nc != c {
		panic(fmt.Errorf("%s has shape %d x %d, need %d x %d", name, nr, nc, r, c))
	}
}

func checkVector(name string, B *mat.VecDense, n int) {
	if B == nil {
		panic(fmt.Errorf("%s is nil, need length %d", name, n))
	}
	if B.Len() != n {
		panic(fmt.Errorf("%s has length %d, need %d", name, B.Len(), n))
	}
}
