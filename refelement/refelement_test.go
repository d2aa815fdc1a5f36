package refelement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/basis"
)

func TestModalRefElement(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		re := NewModalRefElement(dim, 3)
		nb := basis.NumBasisFunctions(dim, 3)
		require.Equal(t, nb, re.NumBasisFunctions())
		Minv := re.InverseMassMatrix()
		for i := 0; i < nb; i++ {
			for j := 0; j < nb; j++ {
				if i == j {
					assert.InDelta(t, 1/basis.DubinerMass(re.Indices()[i]), Minv.At(i, j), 1e-8)
				} else {
					assert.InDelta(t, 0, Minv.At(i, j), 1e-8)
				}
			}
		}
		rule := basis.SimplexQuadrature(dim, 3)
		E := re.EvaluateBasisAt(rule.Points)
		r, c := E.Dims()
		assert.Equal(t, nb, r)
		assert.Equal(t, rule.Size(), c)
		D := re.EvaluateGradientAt(rule.Points)
		require.Len(t, D, dim)
		for q := 0; q < c; q++ {
			// phi_0 is the constant one
			assert.InDelta(t, 1, E.At(0, q), 1e-14)
			for d := 0; d < dim; d++ {
				assert.InDelta(t, 0, D[d].At(0, q), 1e-14)
			}
		}
	}
	assert.Panics(t, func() { NewModalRefElement(4, 1) })
	re := NewModalRefElement(2, 1)
	assert.Panics(t, func() { re.EvaluateBasisAt([][]float64{{0, 0, 0}}) })
}

func TestNodalRefElement(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for degree := 0; degree <= 3; degree++ {
			re := NewNodalRefElement(dim, degree)
			nodes := re.RefNodes()
			require.Len(t, nodes, re.NumBasisFunctions())
			E := re.EvaluateBasisAt(nodes)
			assert.True(t, mat.EqualApprox(E, eye(len(nodes)), 1e-10), "dim %d degree %d", dim, degree)

			// Partition of unity, gradients sum to zero
			rule := basis.SimplexQuadrature(dim, 2)
			E = re.EvaluateBasisAt(rule.Points)
			D := re.EvaluateGradientAt(rule.Points)
			for q := range rule.Points {
				assert.InDelta(t, 1, mat.Sum(E.ColView(q)), 1e-10)
				for d := range D {
					assert.InDelta(t, 0, mat.Sum(D[d].ColView(q)), 1e-9)
				}
			}
		}
	}
	{ // Linear nodal basis is barycentric
		re := NewNodalRefElement(2, 1)
		assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {0, 1}}, re.RefNodes())
		E := re.EvaluateBasisAt([][]float64{{0.2, 0.3}})
		assert.InDeltaSlice(t, []float64{0.5, 0.2, 0.3}, mat.Col(nil, 0, E), 1e-12)
		D := re.EvaluateGradientAt([][]float64{{0.2, 0.3}})
		assert.InDeltaSlice(t, []float64{-1, 1, 0}, mat.Col(nil, 0, D[0]), 1e-12)
		assert.InDeltaSlice(t, []float64{-1, 0, 1}, mat.Col(nil, 0, D[1]), 1e-12)
	}
	{ // Inverse mass against quadrature
		re := NewNodalRefElement(3, 2)
		rule := basis.SimplexQuadrature(3, 4)
		E := re.EvaluateBasisAt(rule.Points)
		nb := re.NumBasisFunctions()
		M := mat.NewDense(nb, nb, nil)
		for i := 0; i < nb; i++ {
			for j := 0; j < nb; j++ {
				var m float64
				for q, w := range rule.Weights {
					m += w * E.At(i, q) * E.At(j, q)
				}
				M.Set(i, j, m)
			}
		}
		prod := mat.NewDense(nb, nb, nil)
		prod.Mul(M, re.InverseMassMatrix())
		assert.True(t, mat.EqualApprox(prod, eye(nb), 1e-9))
	}
	clone := NewNodalRefElement(2, 2).Clone()
	assert.Equal(t, 6, clone.NumBasisFunctions())
	assert.Equal(t, 2, clone.Degree())
}

func TestFiniteElementFunction(t *testing.T) {
	space := NewModalRefElement(2, 1)
	f := NewFiniteElementFunction(space, 2, 3)
	assert.Len(t, f.Data(), 3*2*3)
	B := f.Block(1)
	B.Set(1, 2, 7) // quantity 1, basis function 2
	assert.Equal(t, 7., f.Data()[6+2+1*3])
	assert.Equal(t, 7., f.Values(1).At(2, 1))
	assert.Equal(t, 7., f.ElementVector(1).AtVec(2+1*3))
	f.SetElementVector(2, mat.NewVecDense(6, []float64{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, 4., f.Values(2).At(0, 1))
	assert.Panics(t, func() { f.Block(3) })
	assert.Panics(t, func() { f.SetElementVector(0, mat.NewVecDense(2, nil)) })
}

func eye(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}
