package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDOKScatter(t *testing.T) {
	A := NewDOK(4, 4)
	blk := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	A.AddBlock(0, 0, blk)
	A.AddBlock(1, 1, blk)
	assert.Equal(t, 1., A.At(0, 0))
	assert.Equal(t, 2., A.At(0, 1))
	assert.Equal(t, 4.+1., A.At(1, 1))
	assert.Equal(t, 4., A.At(2, 2))
	assert.Equal(t, 0., A.At(3, 3))

	csr := A.ToCSR()
	assert.Equal(t, 7, csr.NNZ())
	y := make([]float64, 4)
	csr.MulVec([]float64{1, 1, 1, 1}, y)
	assert.Equal(t, []float64{3, 3 + 5 + 2, 3 + 4, 0}, y)
	assert.Panics(t, func() { csr.MulVec([]float64{1}, y) })

	A.SetReadOnly("A")
	assert.Panics(t, func() { A.AddAt(0, 0, 1) })
}
