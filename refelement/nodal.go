package refelement

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/basis"
)

// NodalRefElement is the Lagrange basis on the equidistant simplex lattice of a given
// degree. Basis function j is one at node j and zero at every other node.
type NodalRefElement struct {
	modal *ModalRefElement
	nodes [][]float64
	// Vinv maps modal to nodal coefficients: l_j = sum_p Vinv[p][j] phi_p
	Vinv    *mat.Dense
	invMass *mat.Dense
}

func NewNodalRefElement(dim, degree int) (re *NodalRefElement) {
	re = &NodalRefElement{
		modal: NewModalRefElement(dim, degree),
		nodes: LatticeNodes(dim, degree),
	}
	var (
		nb = re.modal.NumBasisFunctions()
		// V[i][p] = phi_p(node_i)
		V = mat.DenseCopyOf(re.modal.EvaluateBasisAt(re.nodes).T())
	)
	re.Vinv = mat.NewDense(nb, nb, nil)
	if err := re.Vinv.Inverse(V); err != nil {
		panic(fmt.Errorf("singular vandermonde matrix for degree %d: %w", degree, err))
	}
	// M_nodal^-1 = V M_modal^-1 V^T
	tmp := mat.NewDense(nb, nb, nil)
	tmp.Mul(V, re.modal.invMass)
	re.invMass = mat.NewDense(nb, nb, nil)
	re.invMass.Mul(tmp, V.T())
	return
}

// LatticeNodes returns the points idx/degree for every multi-index of total degree up to
// degree, in multi-index order. Degree zero gives the centroid.
func LatticeNodes(dim, degree int) (nodes [][]float64) {
	if degree == 0 {
		c := make([]float64, dim)
		for d := range c {
			c[d] = 1. / float64(dim+1)
		}
		return [][]float64{c}
	}
	for _, idx := range basis.AllIntegerSums(dim, degree) {
		node := make([]float64, dim)
		for d, i := range idx {
			node[d] = float64(i) / float64(degree)
		}
		nodes = append(nodes, node)
	}
	return
}

func (re *NodalRefElement) Dim() int               { return re.modal.Dim() }
func (re *NodalRefElement) Degree() int            { return re.modal.Degree() }
func (re *NodalRefElement) NumBasisFunctions() int { return re.modal.NumBasisFunctions() }
func (re *NodalRefElement) RefNodes() [][]float64  { return re.nodes }

func (re *NodalRefElement) EvaluateBasisAt(points [][]float64) (E *mat.Dense) {
	E = mat.NewDense(re.NumBasisFunctions(), len(points), nil)
	E.Mul(re.Vinv.T(), re.modal.EvaluateBasisAt(points))
	return
}

func (re *NodalRefElement) EvaluateGradientAt(points [][]float64) (D []*mat.Dense) {
	D = re.modal.EvaluateGradientAt(points)
	for d, Dm := range D {
		D[d] = mat.NewDense(re.NumBasisFunctions(), len(points), nil)
		D[d].Mul(re.Vinv.T(), Dm)
	}
	return
}

func (re *NodalRefElement) InverseMassMatrix() *mat.Dense {
	return mat.DenseCopyOf(re.invMass)
}

func (re *NodalRefElement) Clone() RefElement {
	return &NodalRefElement{
		modal:   re.modal.Clone().(*ModalRefElement),
		nodes:   re.nodes,
		Vinv:    mat.DenseCopyOf(re.Vinv),
		invMass: mat.DenseCopyOf(re.invMass),
	}
}
