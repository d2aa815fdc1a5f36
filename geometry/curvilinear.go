package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Curvilinear maps reference simplex coordinates to physical coordinates, element by element
type Curvilinear interface {
	Dim() int
	NumElements() int
	// Map writes x(xi) for element elNo into x
	Map(elNo int, xi, x []float64)
	// Jacobian writes jac[i][j] = dx_i/dxi_j, jac is Dim x Dim
	Jacobian(elNo int, xi []float64, jac *mat.Dense)
}

// ReferenceVertices are 0, e_0, ..., e_{dim-1}
func ReferenceVertices(dim int) (verts [][]float64) {
	verts = make([][]float64, dim+1)
	for v := range verts {
		verts[v] = make([]float64, dim)
		if v > 0 {
			verts[v][v-1] = 1
		}
	}
	return
}

// FacetVertices lists the reference vertices of facet localNo, which is the facet opposite
// vertex localNo
func FacetVertices(dim, localNo int) (verts []int) {
	checkFacet(dim, localNo)
	for v := 0; v <= dim; v++ {
		if v != localNo {
			verts = append(verts, v)
		}
	}
	return
}

// ReferenceFacetNormal is the outward normal of facet localNo scaled by the ratio of the
// facet's area to the area of the reference simplex of dimension dim-1
func ReferenceFacetNormal(dim, localNo int) (n []float64) {
	checkFacet(dim, localNo)
	n = make([]float64, dim)
	if localNo == 0 {
		for d := range n {
			n[d] = 1
		}
		return
	}
	n[localNo-1] = -1
	return
}

func checkFacet(dim, localNo int) {
	if localNo < 0 || localNo > dim {
		panic(fmt.Errorf("facet %d does not exist on a simplex of dimension %d", localNo, dim))
	}
}

// FacetToElement maps facet parameters chi (dim-1 values) to element reference
// coordinates. verts holds the element-local vertices of the facet, its order fixes the
// parameterization.
func FacetToElement(dim int, verts []int, chi []float64) (xi []float64) {
	if len(verts) != dim || len(chi) != dim-1 {
		panic(fmt.Errorf("facet of %d vertices and %d parameters on a simplex of dimension %d",
			len(verts), len(chi), dim))
	}
	ref := ReferenceVertices(dim)
	xi = make([]float64, dim)
	copy(xi, ref[verts[0]])
	for k, c := range chi {
		for d := 0; d < dim; d++ {
			xi[d] += c * (ref[verts[k+1]][d] - ref[verts[0]][d])
		}
	}
	return
}

// Cofactor writes the cofactor matrix det(J) J^-T of a Dim x Dim matrix, Dim <= 3
func Cofactor(jac mat.Matrix, cof *mat.Dense) {
	r, c := jac.Dims()
	if r != c {
		panic(fmt.Errorf("cofactor of a %d x %d matrix", r, c))
	}
	switch r {
	case 1:
		cof.Set(0, 0, 1)
	case 2:
		cof.Set(0, 0, jac.At(1, 1))
		cof.Set(0, 1, -jac.At(1, 0))
		cof.Set(1, 0, -jac.At(0, 1))
		cof.Set(1, 1, jac.At(0, 0))
	case 3:
		for i := 0; i < 3; i++ {
			i1, i2 := (i+1)%3, (i+2)%3
			for j := 0; j < 3; j++ {
				j1, j2 := (j+1)%3, (j+2)%3
				cof.Set(i, j, jac.At(i1, j1)*jac.At(i2, j2)-jac.At(i1, j2)*jac.At(i2, j1))
			}
		}
	default:
		panic(fmt.Errorf("cofactor of dimension %d not supported", r))
	}
}

// AreaNormal computes the area vector det(J) J^-T refNormal, writes its direction into n
// and returns its length, the area element of the facet
func AreaNormal(jac mat.Matrix, refNormal, n []float64) (area float64) {
	var (
		dim = len(refNormal)
		cof = mat.NewDense(dim, dim, nil)
	)
	Cofactor(jac, cof)
	a := mat.NewVecDense(dim, nil)
	a.MulVec(cof, mat.NewVecDense(dim, refNormal))
	area = mat.Norm(a, 2)
	for d := 0; d < dim; d++ {
		n[d] = a.AtVec(d) / area
	}
	return
}

// InvertJacobian writes G = J^-1 and returns det(J). Degenerate elements give
// meaningless output.
func InvertJacobian(jac mat.Matrix, G *mat.Dense) (det float64) {
	dim, _ := jac.Dims()
	cof := mat.NewDense(dim, dim, nil)
	Cofactor(jac, cof)
	for j := 0; j < dim; j++ {
		det += jac.At(0, j) * cof.At(0, j)
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			G.Set(i, j, cof.At(j, i)/det)
		}
	}
	return
}
