package elasticity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/geometry"
	"github.com/notargets/goelastic/utils"
)

// FacetInfo describes the elements adjacent to a facet. On boundary facets both sides
// refer to the same element. Vertices[s] lists the facet's vertices as element-local
// reference vertex numbers of side s, both lists enumerate the same physical vertices in
// the same order.
type FacetInfo struct {
	Up       [2]int
	LocalNo  [2]int
	Vertices [2][]int
	BC       utils.BCType
}

func (info FacetInfo) IsBoundary() bool { return info.Up[0] == info.Up[1] }

// PenaltyProvider supplies the interior penalty scale of every element
type PenaltyProvider interface {
	Penalty(elNo int) float64
}

// penalty of a facet is the larger of its neighbours' scales
func (op *Elasticity) penalty(info FacetInfo) float64 {
	return math.Max(op.pen.Penalty(info.Up[0]), op.pen.Penalty(info.Up[1]))
}

// facetTabulation holds the element basis evaluated at the facet quadrature points for
// one facet and one vertex order
type facetTabulation struct {
	localNo   int
	points    [][]float64
	E_q       *mat.Dense
	Dxi_q     []*mat.Dense
	matE_q    *mat.Dense
	refNormal []float64
}

func facetKey(dim, localNo int, verts []int) (key int) {
	key = localNo
	for _, v := range verts {
		key = key*(dim+1) + v
	}
	return
}

func (op *Elasticity) tabulateFacets() {
	op.fctTab = make(map[int]int)
	for f := 0; f <= op.dim; f++ {
		for _, verts := range permutations(geometry.FacetVertices(op.dim, f)) {
			points := make([][]float64, op.nqf)
			for q, chi := range op.fctRule.Points {
				points[q] = geometry.FacetToElement(op.dim, verts, chi)
			}
			op.fctTab[facetKey(op.dim, f, verts)] = len(op.fctRefs)
			op.fctRefs = append(op.fctRefs, facetTabulation{
				localNo:   f,
				points:    points,
				E_q:       op.space.EvaluateBasisAt(points),
				Dxi_q:     op.space.EvaluateGradientAt(points),
				matE_q:    op.materialSpace.EvaluateBasisAt(points),
				refNormal: geometry.ReferenceFacetNormal(op.dim, f),
			})
		}
	}
}

func (op *Elasticity) tabulation(localNo int, verts []int) int {
	var (
		tab int
		ok  = len(verts) == op.dim
	)
	if ok {
		tab, ok = op.fctTab[facetKey(op.dim, localNo, verts)]
	}
	if !ok {
		panic(fmt.Errorf("vertices %v are not an ordering of local facet %d", verts, localNo))
	}
	return tab
}

// permutations of a small slice, in lexicographic order of positions
func permutations(a []int) (perms [][]int) {
	if len(a) <= 1 {
		return [][]int{append([]int{}, a...)}
	}
	for i := range a {
		rest := make([]int, 0, len(a)-1)
		rest = append(rest, a[:i]...)
		rest = append(rest, a[i+1:]...)
		for _, p := range permutations(rest) {
			perms = append(perms, append([]int{a[i]}, p...))
		}
	}
	return
}
