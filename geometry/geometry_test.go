package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func unitSquare(t *testing.T, transform Transform) *Simplex {
	s, err := NewSimplex(
		[][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		[][]int{{0, 1, 2}, {3, 2, 1}},
		transform)
	require.NoError(t, err)
	return s
}

func TestReferenceSimplex(t *testing.T) {
	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, ReferenceVertices(3))
	assert.Equal(t, []int{1, 2}, FacetVertices(2, 0))
	assert.Equal(t, []int{0, 2}, FacetVertices(2, 1))
	assert.Equal(t, []int{0, 1, 3}, FacetVertices(3, 2))
	assert.Equal(t, []float64{1, 1, 1}, ReferenceFacetNormal(3, 0))
	assert.Equal(t, []float64{0, -1}, ReferenceFacetNormal(2, 2))
	assert.Panics(t, func() { FacetVertices(2, 3) })

	// The facet opposite vertex 0 of the triangle, traversed from vertex 2 to vertex 1
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, FacetToElement(2, []int{2, 1}, []float64{0.25}), 1e-15)
	assert.InDeltaSlice(t, []float64{0.2, 0, 0.3},
		FacetToElement(3, []int{0, 1, 3}, []float64{0.2, 0.3}), 1e-15)
	assert.Panics(t, func() { FacetToElement(3, []int{0, 1}, []float64{0.2, 0.3}) })
}

func TestAreaNormal(t *testing.T) {
	n := make([]float64, 2)
	I := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	area := AreaNormal(I, ReferenceFacetNormal(2, 0), n)
	assert.InDelta(t, math.Sqrt2, area, 1e-15)
	assert.InDeltaSlice(t, []float64{1 / math.Sqrt2, 1 / math.Sqrt2}, n, 1e-15)

	// Scaling x by 2 doubles the length of the facet on the x axis
	J := mat.NewDense(2, 2, []float64{2, 0, 0, 1})
	area = AreaNormal(J, ReferenceFacetNormal(2, 2), n)
	assert.InDelta(t, 2, area, 1e-15)
	assert.InDeltaSlice(t, []float64{0, -1}, n, 1e-15)

	n3 := make([]float64, 3)
	J3 := mat.NewDense(3, 3, []float64{1, 0.5, 0, 0, 2, 0, 0, 0, 3})
	area = AreaNormal(J3, ReferenceFacetNormal(3, 3), n3)
	// Facet z=0 maps to the parallelogram spanned by (1,0,0), (0.5,2,0)
	assert.InDelta(t, 2, area, 1e-14)
	assert.InDeltaSlice(t, []float64{0, 0, -1}, n3, 1e-15)
}

func TestInvertJacobian(t *testing.T) {
	for _, J := range []*mat.Dense{
		mat.NewDense(1, 1, []float64{4}),
		mat.NewDense(2, 2, []float64{1, 2, 3, 5}),
		mat.NewDense(3, 3, []float64{2, 1, 0, 0.5, 3, 1, 1, 0, 4}),
	} {
		dim, _ := J.Dims()
		G := mat.NewDense(dim, dim, nil)
		det := InvertJacobian(J, G)
		assert.InDelta(t, mat.Det(J), det, 1e-13)
		prod := mat.NewDense(dim, dim, nil)
		prod.Mul(J, G)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				exp := 0.
				if i == j {
					exp = 1
				}
				assert.InDelta(t, exp, prod.At(i, j), 1e-13)
			}
		}
	}
}

func TestSimplex(t *testing.T) {
	{
		s := unitSquare(t, nil)
		assert.Equal(t, 2, s.Dim())
		assert.Equal(t, 2, s.NumElements())
		x := make([]float64, 2)
		s.Map(1, []float64{0.5, 0.5}, x)
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, x, 1e-15)
		s.Map(1, []float64{0, 0}, x)
		assert.InDeltaSlice(t, []float64{1, 1}, x, 1e-15)
		J := mat.NewDense(2, 2, nil)
		s.Jacobian(1, []float64{0.1, 0.1}, J)
		assert.Equal(t, []float64{-1, 0, 0, -1}, J.RawMatrix().Data)
	}
	{ // Jacobian of the warped map against central differences
		var (
			s  = unitSquare(t, Warp{Amplitude: 0.1})
			xi = []float64{0.2, 0.3}
			J  = mat.NewDense(2, 2, nil)
			h  = 1e-6
			xp = make([]float64, 2)
			xm = make([]float64, 2)
		)
		for elNo := 0; elNo < 2; elNo++ {
			s.Jacobian(elNo, xi, J)
			for k := 0; k < 2; k++ {
				p := append([]float64{}, xi...)
				m := append([]float64{}, xi...)
				p[k] += h
				m[k] -= h
				s.Map(elNo, p, xp)
				s.Map(elNo, m, xm)
				for i := 0; i < 2; i++ {
					assert.InDelta(t, (xp[i]-xm[i])/(2*h), J.At(i, k), 1e-7)
				}
			}
		}
		// Box corners stay fixed
		x := make([]float64, 2)
		s.Map(1, []float64{0, 0}, x)
		assert.InDeltaSlice(t, []float64{1, 1}, x, 1e-15)
	}
	_, err := NewSimplex([][]float64{{0, 0}}, [][]int{{0, 1, 2}}, nil)
	assert.Error(t, err)
	_, err = NewSimplex([][]float64{{0, 0}, {1, 0}, {0, 1}}, [][]int{{0, 1}}, nil)
	assert.Error(t, err)
	_, err = NewSimplex(nil, nil, nil)
	assert.Error(t, err)
}

func TestReferencePenalty(t *testing.T) {
	s := unitSquare(t, nil)
	rp := ReferencePenalty(s, 1)
	require.Len(t, rp, 2)
	// (N+1)(N+D)/D * |hypotenuse| / |K| = 3 * sqrt(2) / 0.5
	assert.InDelta(t, 6*math.Sqrt2, rp.Penalty(0), 1e-12)
	assert.InDelta(t, rp.Penalty(0), rp.Penalty(1), 1e-12)

	tet, err := NewSimplex([][]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}}, [][]int{{0, 1, 2, 3}}, nil)
	require.NoError(t, err)
	// 3*5/3 * (sqrt(3)/2 * 4) / (8/6)
	assert.InDelta(t, 5*2*math.Sqrt(3)/(8./6.), ReferencePenalty(tet, 2).Penalty(0), 1e-12)
}
