package elasticity

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Functional evaluates a vector quantity at the physical point x
type Functional interface {
	Eval(x, out []float64)
}

// FunctionalFunc adapts an ordinary function to Functional
type FunctionalFunc func(x, out []float64)

func (f FunctionalFunc) Eval(x, out []float64) { f(x, out) }

// VolumeFunctional evaluates data at all quadrature points of an element at once.
// Row q of x holds point q, row q of out receives the quantity vector at point q.
type VolumeFunctional interface {
	EvalVolume(elNo int, x *mat.Dense, out *mat.Dense)
}

// FacetFunctional evaluates data at all quadrature points of a facet. normals holds the
// unit normal of side 0 at each point.
type FacetFunctional interface {
	EvalFacet(fctNo int, x, normals *mat.Dense, out *mat.Dense)
}

type pointwiseVolume struct {
	fun Functional
}

// PointwiseVolume lifts a Functional to a VolumeFunctional
func PointwiseVolume(fun Functional) VolumeFunctional {
	return pointwiseVolume{fun: fun}
}

func (pv pointwiseVolume) EvalVolume(elNo int, x *mat.Dense, out *mat.Dense) {
	np, _ := x.Dims()
	for q := 0; q < np; q++ {
		pv.fun.Eval(x.RawRowView(q), out.RawRowView(q))
	}
}

type pointwiseFacet struct {
	fun       Functional
	refNormal []float64
}

// PointwiseFacet lifts a Functional to a FacetFunctional. Facet data such as slip is
// defined relative to a normal direction, when refNormal is given the quantity changes
// sign at every point where the facet normal points against refNormal.
func PointwiseFacet(fun Functional, refNormal []float64) FacetFunctional {
	pf := pointwiseFacet{fun: fun}
	if refNormal != nil {
		pf.refNormal = append([]float64{}, refNormal...)
	}
	return pf
}

func (pf pointwiseFacet) EvalFacet(fctNo int, x, normals *mat.Dense, out *mat.Dense) {
	np, _ := x.Dims()
	for q := 0; q < np; q++ {
		row := out.RawRowView(q)
		pf.fun.Eval(x.RawRowView(q), row)
		if pf.refNormal != nil && floats.Dot(normals.RawRowView(q), pf.refNormal) < 0 {
			floats.Scale(-1, row)
		}
	}
}
