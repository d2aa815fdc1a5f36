package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/elasticity"
	"github.com/notargets/goelastic/geometry"
	"github.com/notargets/goelastic/utils"
)

// Mesh is a conforming simplex mesh. Elements list global vertex numbers, ordered so
// that the affine map of every element has positive determinant.
type Mesh struct {
	Dim      int
	Vertices [][]float64
	Elements [][]int
	Facets   []elasticity.FacetInfo
	// Physical group names of mesh files by tag
	PhysicalNames map[int]string
	facetTags     map[facetKey]int
}

// TagFunc assigns a boundary condition from the centroid and the outward unit normal of
// a boundary facet
type TagFunc func(centroid, normal []float64) utils.BCType

// Box meshes the box [lo, hi] with n[d] cells per direction. Each cell is split into
// dim! simplices along its main diagonal (Kuhn subdivision), so neighbouring cells
// conform.
func Box(dim int, n []int, lo, hi []float64) (m *Mesh, err error) {
	if dim < 2 || dim > 3 {
		return nil, fmt.Errorf("box meshes are available in 2 and 3 dimensions, got %d", dim)
	}
	if len(n) != dim || len(lo) != dim || len(hi) != dim {
		return nil, fmt.Errorf("box of dimension %d needs %d cell counts and corners", dim, dim)
	}
	for d := 0; d < dim; d++ {
		if n[d] < 1 || hi[d] <= lo[d] {
			return nil, fmt.Errorf("degenerate box in direction %d: %d cells on [%g, %g]",
				d, n[d], lo[d], hi[d])
		}
	}
	m = &Mesh{Dim: dim}
	var (
		stride = make([]int, dim)
		nv     = 1
	)
	for d := 0; d < dim; d++ {
		stride[d] = nv
		nv *= n[d] + 1
	}
	m.Vertices = make([][]float64, nv)
	for v := range m.Vertices {
		x := make([]float64, dim)
		r := v
		for d := 0; d < dim; d++ {
			i := r % (n[d] + 1)
			r /= n[d] + 1
			x[d] = lo[d] + (hi[d]-lo[d])*float64(i)/float64(n[d])
		}
		m.Vertices[v] = x
	}

	axes := make([]int, dim)
	for d := range axes {
		axes[d] = d
	}
	paths := permutations(axes)
	ncells := 1
	for d := 0; d < dim; d++ {
		ncells *= n[d]
	}
	for c := 0; c < ncells; c++ {
		var (
			corner = 0
			r      = c
		)
		for d := 0; d < dim; d++ {
			corner += (r % n[d]) * stride[d]
			r /= n[d]
		}
		for _, path := range paths {
			el := make([]int, 0, dim+1)
			v := corner
			el = append(el, v)
			for _, d := range path {
				v += stride[d]
				el = append(el, v)
			}
			m.orient(el)
			m.Elements = append(m.Elements, el)
		}
	}
	return
}

// affineJacobian of element el, columns are the edges from its first vertex
func (m *Mesh) affineJacobian(el []int) *mat.Dense {
	J := mat.NewDense(m.Dim, m.Dim, nil)
	v0 := m.Vertices[el[0]]
	for k := 0; k < m.Dim; k++ {
		for i := 0; i < m.Dim; i++ {
			J.Set(i, k, m.Vertices[el[k+1]][i]-v0[i])
		}
	}
	return J
}

// orient swaps the last two vertices of elements with negative determinant
func (m *Mesh) orient(el []int) {
	if mat.Det(m.affineJacobian(el)) < 0 {
		el[m.Dim-1], el[m.Dim] = el[m.Dim], el[m.Dim-1]
	}
}

func (m *Mesh) NumElements() int { return len(m.Elements) }

// Curvilinear returns the geometry of the mesh, bent by transform when it is not nil
func (m *Mesh) Curvilinear(transform geometry.Transform) (*geometry.Simplex, error) {
	return geometry.NewSimplex(m.Vertices, m.Elements, transform)
}

type facetKey [3]int

func keyOf(globals []int) (key facetKey) {
	key = facetKey{-1, -1, -1}
	sorted := append([]int{}, globals...)
	sort.Ints(sorted)
	copy(key[:], sorted)
	return
}

// BuildFacets finds every facet of the mesh. Interior facets get BCNone and list the
// facet vertices of side 1 in the order of side 0. Boundary facets are tagged by tag,
// a nil tag makes all of them Dirichlet.
func (m *Mesh) BuildFacets(tag TagFunc) []elasticity.FacetInfo {
	var (
		open   = make(map[facetKey]int)
		facets []elasticity.FacetInfo
	)
	for elNo, el := range m.Elements {
		for f := 0; f <= m.Dim; f++ {
			var (
				local   = geometry.FacetVertices(m.Dim, f)
				globals = make([]int, len(local))
			)
			for k, l := range local {
				globals[k] = el[l]
			}
			key := keyOf(globals)
			fctNo, found := open[key]
			if !found {
				open[key] = len(facets)
				facets = append(facets, elasticity.FacetInfo{
					Up:       [2]int{elNo, elNo},
					LocalNo:  [2]int{f, f},
					Vertices: [2][]int{local, local},
				})
				continue
			}
			delete(open, key)
			info := &facets[fctNo]
			first := m.Elements[info.Up[0]]
			other := make([]int, len(local))
			for k, l := range info.Vertices[0] {
				other[k] = localIndex(el, first[l])
			}
			info.Up[1] = elNo
			info.LocalNo[1] = f
			info.Vertices[1] = other
		}
	}
	for fctNo := range facets {
		info := &facets[fctNo]
		if !info.IsBoundary() {
			continue
		}
		info.BC = utils.BCDirichlet
		if tag != nil {
			centroid, normal := m.FacetGeometry(*info)
			info.BC = tag(centroid, normal)
		}
	}
	m.Facets = facets
	return facets
}

func localIndex(el []int, global int) int {
	for l, v := range el {
		if v == global {
			return l
		}
	}
	panic(fmt.Errorf("vertex %d is not part of element %v", global, el))
}

// FacetGeometry returns the centroid and the unit normal of side 0 of a facet
func (m *Mesh) FacetGeometry(info elasticity.FacetInfo) (centroid, normal []float64) {
	el := m.Elements[info.Up[0]]
	centroid = make([]float64, m.Dim)
	for _, l := range info.Vertices[0] {
		for d, x := range m.Vertices[el[l]] {
			centroid[d] += x / float64(m.Dim)
		}
	}
	normal = make([]float64, m.Dim)
	geometry.AreaNormal(m.affineJacobian(el), geometry.ReferenceFacetNormal(m.Dim, info.LocalNo[0]), normal)
	return
}

// MarkFault turns interior facets selected by pred into slip facets and returns how
// many were marked. BuildFacets must have run before.
func (m *Mesh) MarkFault(pred func(centroid, normal []float64) bool) (count int) {
	for fctNo := range m.Facets {
		info := &m.Facets[fctNo]
		if info.IsBoundary() {
			continue
		}
		if centroid, normal := m.FacetGeometry(*info); pred(centroid, normal) {
			info.BC = utils.BCSlip
			count++
		}
	}
	return
}

// BCCounts tallies the facets per boundary condition
func (m *Mesh) BCCounts() map[utils.BCType]int {
	counts := make(map[utils.BCType]int)
	for _, info := range m.Facets {
		counts[info.BC]++
	}
	return counts
}

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
