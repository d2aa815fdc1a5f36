package refelement

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/basis"
)

// RefElement tabulates a polynomial space on the reference simplex
type RefElement interface {
	Dim() int
	Degree() int
	NumBasisFunctions() int
	// EvaluateBasisAt returns an nb x np matrix of basis values
	EvaluateBasisAt(points [][]float64) *mat.Dense
	// EvaluateGradientAt returns one nb x np matrix per reference direction
	EvaluateGradientAt(points [][]float64) []*mat.Dense
	InverseMassMatrix() *mat.Dense
	Clone() RefElement
}

// ModalRefElement is the orthogonal Dubiner space of total degree Degree()
type ModalRefElement struct {
	dim, degree int
	indices     [][]int
	invMass     *mat.Dense
}

func NewModalRefElement(dim, degree int) (re *ModalRefElement) {
	if dim < 1 || dim > 3 {
		panic(fmt.Errorf("unsupported reference element dimension %d", dim))
	}
	if degree < 0 {
		panic(fmt.Errorf("negative polynomial degree %d", degree))
	}
	re = &ModalRefElement{
		dim:     dim,
		degree:  degree,
		indices: basis.AllIntegerSums(dim, degree),
	}
	re.invMass = inverseMass(re, basis.SimplexQuadrature(dim, 2*degree))
	return
}

func (re *ModalRefElement) Dim() int               { return re.dim }
func (re *ModalRefElement) Degree() int            { return re.degree }
func (re *ModalRefElement) NumBasisFunctions() int { return len(re.indices) }

// Indices returns the multi-index of every basis function in tabulation order
func (re *ModalRefElement) Indices() [][]int { return re.indices }

func (re *ModalRefElement) EvaluateBasisAt(points [][]float64) (E *mat.Dense) {
	E = mat.NewDense(len(re.indices), len(points), nil)
	for q, xi := range points {
		re.checkPoint(xi)
		for p, idx := range re.indices {
			E.Set(p, q, basis.DubinerP(idx, xi))
		}
	}
	return
}

func (re *ModalRefElement) EvaluateGradientAt(points [][]float64) (D []*mat.Dense) {
	D = make([]*mat.Dense, re.dim)
	for d := range D {
		D[d] = mat.NewDense(len(re.indices), len(points), nil)
	}
	for q, xi := range points {
		re.checkPoint(xi)
		for p, idx := range re.indices {
			grad := basis.GradDubinerP(idx, xi)
			for d := range D {
				D[d].Set(p, q, grad[d])
			}
		}
	}
	return
}

func (re *ModalRefElement) InverseMassMatrix() *mat.Dense {
	return mat.DenseCopyOf(re.invMass)
}

func (re *ModalRefElement) Clone() RefElement {
	return &ModalRefElement{
		dim:     re.dim,
		degree:  re.degree,
		indices: re.indices,
		invMass: mat.DenseCopyOf(re.invMass),
	}
}

func (re *ModalRefElement) checkPoint(xi []float64) {
	if len(xi) != re.dim {
		panic(fmt.Errorf("reference point of dimension %d, element has dimension %d", len(xi), re.dim))
	}
}

// inverseMass integrates the mass matrix with an exact rule and inverts it
func inverseMass(re RefElement, rule basis.QuadratureRule) (Minv *mat.Dense) {
	var (
		E  = re.EvaluateBasisAt(rule.Points)
		nb = re.NumBasisFunctions()
		EW = mat.NewDense(nb, rule.Size(), nil)
		M  = mat.NewDense(nb, nb, nil)
	)
	EW.Apply(func(i, j int, v float64) float64 { return v * rule.Weights[j] }, E)
	M.Mul(EW, E.T())
	Minv = mat.NewDense(nb, nb, nil)
	if err := Minv.Inverse(M); err != nil {
		panic(fmt.Errorf("singular reference mass matrix: %w", err))
	}
	return
}
