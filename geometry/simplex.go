package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is a smooth map applied after the affine simplex map
type Transform interface {
	Apply(y, x []float64)
	Jacobian(y []float64, jac *mat.Dense)
}

// Simplex is a Curvilinear made of straight simplices, optionally bent by a Transform
type Simplex struct {
	dim       int
	vertices  [][]float64
	elements  [][]int
	transform Transform
}

func NewSimplex(vertices [][]float64, elements [][]int, transform Transform) (s *Simplex, err error) {
	if len(vertices) == 0 {
		err = fmt.Errorf("no vertices")
		return
	}
	dim := len(vertices[0])
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("unsupported dimension %d", dim)
		return
	}
	for k, el := range elements {
		if len(el) != dim+1 {
			err = fmt.Errorf("element %d has %d vertices, need %d", k, len(el), dim+1)
			return
		}
		for _, v := range el {
			if v < 0 || v >= len(vertices) {
				err = fmt.Errorf("element %d references vertex %d of %d", k, v, len(vertices))
				return
			}
		}
	}
	s = &Simplex{dim: dim, vertices: vertices, elements: elements, transform: transform}
	return
}

func (s *Simplex) Dim() int         { return s.dim }
func (s *Simplex) NumElements() int { return len(s.elements) }

func (s *Simplex) affine(elNo int, xi, y []float64) {
	el := s.elements[elNo]
	v0 := s.vertices[el[0]]
	for i := 0; i < s.dim; i++ {
		y[i] = v0[i]
		for k := 0; k < s.dim; k++ {
			y[i] += xi[k] * (s.vertices[el[k+1]][i] - v0[i])
		}
	}
}

func (s *Simplex) Map(elNo int, xi, x []float64) {
	if s.transform == nil {
		s.affine(elNo, xi, x)
		return
	}
	y := make([]float64, s.dim)
	s.affine(elNo, xi, y)
	s.transform.Apply(y, x)
}

func (s *Simplex) Jacobian(elNo int, xi []float64, jac *mat.Dense) {
	el := s.elements[elNo]
	v0 := s.vertices[el[0]]
	A := mat.NewDense(s.dim, s.dim, nil)
	for i := 0; i < s.dim; i++ {
		for k := 0; k < s.dim; k++ {
			A.Set(i, k, s.vertices[el[k+1]][i]-v0[i])
		}
	}
	if s.transform == nil {
		jac.Copy(A)
		return
	}
	y := make([]float64, s.dim)
	s.affine(elNo, xi, y)
	T := mat.NewDense(s.dim, s.dim, nil)
	s.transform.Jacobian(y, T)
	jac.Mul(T, A)
}

// Warp displaces points of the unit box by Amplitude * prod_j sin(pi y_j) in every
// direction. The faces of the box stay fixed.
type Warp struct {
	Amplitude float64
}

func (w Warp) bump(y []float64, skip int) (b float64) {
	b = w.Amplitude
	for j, yj := range y {
		if j != skip {
			b *= math.Sin(math.Pi * yj)
		}
	}
	return
}

func (w Warp) Apply(y, x []float64) {
	b := w.bump(y, -1)
	for i := range y {
		x[i] = y[i] + b
	}
}

func (w Warp) Jacobian(y []float64, jac *mat.Dense) {
	for k := range y {
		dbk := math.Pi * math.Cos(math.Pi*y[k]) * w.bump(y, k)
		for i := range y {
			v := dbk
			if i == k {
				v += 1
			}
			jac.Set(i, k, v)
		}
	}
}
