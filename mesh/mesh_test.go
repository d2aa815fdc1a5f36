package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/utils"
)

func TestBox(t *testing.T) {
	{
		m, err := Box(2, []int{2, 3}, []float64{0, 0}, []float64{2, 3})
		require.NoError(t, err)
		assert.Len(t, m.Vertices, 12)
		assert.Equal(t, 12, m.NumElements())
		assert.Equal(t, []float64{1, 2}, m.Vertices[1+3*2])
		var area float64
		for _, el := range m.Elements {
			det := mat.Det(m.affineJacobian(el))
			assert.Greater(t, det, 0.)
			area += det / 2
		}
		assert.InDelta(t, 6, area, 1e-12)
	}
	{
		m, err := Box(3, []int{2, 1, 2}, []float64{0, 0, 0}, []float64{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, 24, m.NumElements())
		var vol float64
		for _, el := range m.Elements {
			det := mat.Det(m.affineJacobian(el))
			assert.Greater(t, det, 0.)
			vol += det / 6
		}
		assert.InDelta(t, 1, vol, 1e-12)
	}
	_, err := Box(1, []int{2}, []float64{0}, []float64{1})
	assert.Error(t, err)
	_, err = Box(2, []int{2, 0}, []float64{0, 0}, []float64{1, 1})
	assert.Error(t, err)
	_, err = Box(2, []int{2, 2}, []float64{0, 1}, []float64{1, 1})
	assert.Error(t, err)
	_, err = Box(3, []int{2, 2}, []float64{0, 0}, []float64{1, 1})
	assert.Error(t, err)
}

func TestBuildFacets(t *testing.T) {
	for _, tc := range []struct {
		dim                 int
		n                   []int
		elements, interior  int
		boundary, perFacets int
	}{
		{2, []int{2, 3}, 12, 13, 10, 3},
		{3, []int{1, 1, 1}, 6, 6, 12, 4},
		{3, []int{2, 2, 2}, 48, 72, 48, 4},
	} {
		lo := make([]float64, tc.dim)
		hi := make([]float64, tc.dim)
		for d := range hi {
			hi[d] = 1
		}
		m, err := Box(tc.dim, tc.n, lo, hi)
		require.NoError(t, err)
		facets := m.BuildFacets(func(centroid, normal []float64) utils.BCType {
			// Outward normals of an axis aligned box are unit axis vectors
			var axis int
			for d, nd := range normal {
				if math.Abs(nd) > 0.5 {
					axis = d
				}
			}
			assert.InDelta(t, 1, math.Abs(normal[axis]), 1e-12)
			if normal[axis] < 0 {
				assert.InDelta(t, 0, centroid[axis], 1e-12)
				return utils.BCDirichlet
			}
			assert.InDelta(t, 1, centroid[axis], 1e-12)
			return utils.BCNatural
		})
		assert.Equal(t, tc.elements, m.NumElements())
		var interior, boundary int
		perElement := make([]int, m.NumElements())
		for _, info := range facets {
			perElement[info.Up[0]]++
			if info.IsBoundary() {
				boundary++
				assert.NotEqual(t, utils.BCNone, info.BC)
				continue
			}
			interior++
			perElement[info.Up[1]]++
			assert.Equal(t, utils.BCNone, info.BC)
			// Both sides enumerate the same global vertices in the same order
			e0, e1 := m.Elements[info.Up[0]], m.Elements[info.Up[1]]
			for k := range info.Vertices[0] {
				assert.Equal(t, e0[info.Vertices[0][k]], e1[info.Vertices[1][k]])
			}
			assert.NotContains(t, info.Vertices[0], info.LocalNo[0])
			assert.NotContains(t, info.Vertices[1], info.LocalNo[1])
		}
		assert.Equal(t, tc.interior, interior)
		assert.Equal(t, tc.boundary, boundary)
		for _, count := range perElement {
			assert.Equal(t, tc.perFacets, count)
		}
		counts := m.BCCounts()
		assert.Equal(t, boundary/2, counts[utils.BCDirichlet])
		assert.Equal(t, boundary/2, counts[utils.BCNatural])
	}
}

func TestMarkFault(t *testing.T) {
	m, err := Box(2, []int{4, 2}, []float64{-1, 0}, []float64{1, 1})
	require.NoError(t, err)
	m.BuildFacets(nil)
	assert.Equal(t, 12, m.BCCounts()[utils.BCDirichlet])
	// The vertical line x = 0 is covered by two edges
	count := m.MarkFault(func(centroid, normal []float64) bool {
		return math.Abs(centroid[0]) < 1e-12 && math.Abs(normal[1]) < 1e-12
	})
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, m.BCCounts()[utils.BCSlip])
	for _, info := range m.Facets {
		if info.BC == utils.BCSlip {
			_, normal := m.FacetGeometry(info)
			assert.InDelta(t, 1, math.Abs(normal[0]), 1e-12)
		}
	}
	_, err = m.Curvilinear(nil)
	assert.NoError(t, err)
}
