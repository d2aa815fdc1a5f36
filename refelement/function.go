package refelement

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FiniteElementFunction holds the coefficients of a vector valued field on every element.
// Within an element the coefficient of basis function p and quantity i lives at p + i*nb.
type FiniteElementFunction struct {
	space         RefElement
	numQuantities int
	numElements   int
	data          []float64
}

func NewFiniteElementFunction(space RefElement, numQuantities, numElements int) *FiniteElementFunction {
	return &FiniteElementFunction{
		space:         space,
		numQuantities: numQuantities,
		numElements:   numElements,
		data:          make([]float64, space.NumBasisFunctions()*numQuantities*numElements),
	}
}

func (f *FiniteElementFunction) Space() RefElement      { return f.space }
func (f *FiniteElementFunction) NumQuantities() int     { return f.numQuantities }
func (f *FiniteElementFunction) NumElements() int       { return f.numElements }
func (f *FiniteElementFunction) NumBasisFunctions() int { return f.space.NumBasisFunctions() }
func (f *FiniteElementFunction) Data() []float64        { return f.data }

func (f *FiniteElementFunction) blockSize() int {
	return f.space.NumBasisFunctions() * f.numQuantities
}

func (f *FiniteElementFunction) elementSlice(elNo int) []float64 {
	if elNo < 0 || elNo >= f.numElements {
		panic(fmt.Errorf("element %d out of range [0,%d)", elNo, f.numElements))
	}
	bs := f.blockSize()
	return f.data[elNo*bs : (elNo+1)*bs : (elNo+1)*bs]
}

// Block is a Q x nb view of the coefficients of element elNo, row i holds quantity i.
// Writes through the view modify the function.
func (f *FiniteElementFunction) Block(elNo int) *mat.Dense {
	return mat.NewDense(f.numQuantities, f.NumBasisFunctions(), f.elementSlice(elNo))
}

// Values is the nb x Q view of element elNo, column i holds quantity i
func (f *FiniteElementFunction) Values(elNo int) mat.Matrix {
	return f.Block(elNo).T()
}

// ElementVector views the coefficients of element elNo in local DOF order
func (f *FiniteElementFunction) ElementVector(elNo int) *mat.VecDense {
	return mat.NewVecDense(f.blockSize(), f.elementSlice(elNo))
}

// SetElementVector copies v into element elNo
func (f *FiniteElementFunction) SetElementVector(elNo int, v mat.Vector) {
	if v.Len() != f.blockSize() {
		panic(fmt.Errorf("element vector of length %d, block size is %d", v.Len(), f.blockSize()))
	}
	dst := f.elementSlice(elNo)
	for i := range dst {
		dst[i] = v.AtVec(i)
	}
}
