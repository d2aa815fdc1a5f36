package basis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangleQuadrature(t *testing.T) {
	{
		rule := TriangleQuadrature(2)
		require.Equal(t, 4, rule.Size())
		exp := [][]float64{
			{0.64494897427831780982, 0.28001991549907407200},
			{0.64494897427831780982, 0.075031110222608118175},
			{0.15505102572168219018, 0.66639024601470138669},
			{0.15505102572168219018, 0.17855872826361642311},
		}
		for i := range exp {
			assert.InDeltaSlice(t, exp[i], rule.Points[i], 1e-10)
		}
		assert.InDeltaSlice(t, []float64{0.090979309128011415315, 0.090979309128011415315,
			0.15902069087198858472, 0.15902069087198858472}, rule.Weights, 1e-10)
	}
	{
		rule := TriangleQuadrature(1)
		intf := rule.Integrate(func(xi []float64) float64 { return xi[0] + xi[1] })
		assert.InDelta(t, 1./3., intf, 1e-12)
	}
	{ // Monomial moments: int x^a y^b = a! b! / (a+b+2)!
		rule := TriangleQuadrature(5)
		intf := rule.Integrate(func(xi []float64) float64 { return xi[0] * xi[0] * xi[1] * xi[1] * xi[1] })
		assert.InDelta(t, 2.*6./5040., intf, 1e-14)
	}
}

func TestTetrahedronQuadrature(t *testing.T) {
	rule := TetrahedronQuadrature(4)
	assert.Equal(t, 27, rule.Size())
	assert.InDelta(t, 1./6., rule.Integrate(func([]float64) float64 { return 1 }), 1e-14)
	// int x y z^2 = 1! 1! 2! / 7!
	intf := rule.Integrate(func(xi []float64) float64 { return xi[0] * xi[1] * xi[2] * xi[2] })
	assert.InDelta(t, 2./5040., intf, 1e-14)
	for _, xi := range rule.Points {
		assert.True(t, xi[0] > 0 && xi[1] > 0 && xi[2] > 0 && xi[0]+xi[1]+xi[2] < 1)
	}
}

func TestSimplexQuadrature(t *testing.T) {
	line := SimplexQuadrature(1, 3)
	assert.Equal(t, 2, line.Size())
	assert.InDelta(t, 0.25, line.Integrate(func(xi []float64) float64 { return xi[0] * xi[0] * xi[0] }), 1e-14)
	point := SimplexQuadrature(0, 7)
	assert.Equal(t, 1, point.Size())
	assert.Equal(t, 2, SimplexQuadrature(2, 3).Dim)
	assert.Panics(t, func() { SimplexQuadrature(4, 1) })
}
