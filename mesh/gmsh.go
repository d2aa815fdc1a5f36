package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/goelastic/utils"
)

// Gmsh 2.2 element types and their vertex counts, higher order elements are not read
var gmshVertexCount = map[int]int{
	1: 2, // Line
	2: 3, // Triangle
	4: 4, // Tetrahedron
}

type gmshElement struct {
	physical int
	vertices []int
}

// ReadGmshFile reads a mesh in Gmsh 2.2 ASCII format from a file
func ReadGmshFile(filename string) (m *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return
	}
	defer file.Close()
	if m, err = ReadGmsh22(file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

// ReadGmsh22 reads a Gmsh 2.2 ASCII mesh. The highest dimensional simplices become the
// elements, simplices of one dimension less keep their physical tag for ApplyPhysicalTags.
func ReadGmsh22(r io.Reader) (m *Mesh, err error) {
	var (
		scanner  = bufio.NewScanner(r)
		ids      = make(map[int]int)
		coords   [][]float64
		elements = make(map[int][]gmshElement)
	)
	const maxScanTokenSize = 1024 * 1024 * 10
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)
	m = &Mesh{PhysicalNames: make(map[int]string)}

	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "$MeshFormat":
			err = readMeshFormat(scanner)
		case "$PhysicalNames":
			err = readPhysicalNames(scanner, m.PhysicalNames)
		case "$Nodes":
			coords, err = readNodes(scanner, ids)
		case "$Elements":
			err = readElements(scanner, elements)
		}
		if err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	switch {
	case len(elements[4]) != 0:
		m.Dim = 3
	case len(elements[2]) != 0:
		m.Dim = 2
	default:
		return nil, fmt.Errorf("no triangles or tetrahedra found")
	}
	m.Vertices = make([][]float64, len(coords))
	for v, x := range coords {
		m.Vertices[v] = x[:m.Dim]
	}
	index := func(ge gmshElement) (el []int, err error) {
		el = make([]int, len(ge.vertices))
		for k, id := range ge.vertices {
			var ok bool
			if el[k], ok = ids[id]; !ok {
				return nil, fmt.Errorf("element references unknown node %d", id)
			}
		}
		return
	}
	volumeType, facetType := 2, 1
	if m.Dim == 3 {
		volumeType, facetType = 4, 2
	}
	for _, ge := range elements[volumeType] {
		var el []int
		if el, err = index(ge); err != nil {
			return nil, err
		}
		m.orient(el)
		m.Elements = append(m.Elements, el)
	}
	m.facetTags = make(map[facetKey]int)
	for _, ge := range elements[facetType] {
		var el []int
		if el, err = index(ge); err != nil {
			return nil, err
		}
		m.facetTags[keyOf(el)] = ge.physical
	}
	return
}

func readMeshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2") {
		return fmt.Errorf("unsupported Gmsh version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	return skipTo(scanner, "$EndMeshFormat")
}

func readPhysicalNames(scanner *bufio.Scanner, names map[int]string) error {
	n, err := readCount(scanner, "PhysicalNames")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in PhysicalNames")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid physical name entry")
		}
		tag, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("invalid physical tag: %w", err)
		}
		names[tag] = strings.Trim(strings.Join(fields[2:], " "), "\"")
	}
	return skipTo(scanner, "$EndPhysicalNames")
}

func readNodes(scanner *bufio.Scanner, ids map[int]int) (coords [][]float64, err error) {
	var n int
	if n, err = readCount(scanner, "Nodes"); err != nil {
		return
	}
	coords = make([][]float64, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("invalid node entry at line %d", i+1)
		}
		var id int
		if id, err = strconv.Atoi(fields[0]); err != nil {
			return nil, fmt.Errorf("invalid node ID: %w", err)
		}
		x := make([]float64, 3)
		for j := range x {
			if x[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return nil, fmt.Errorf("invalid coordinate: %w", err)
			}
		}
		ids[id] = i
		coords[i] = x
	}
	err = skipTo(scanner, "$EndNodes")
	return
}

// readElements keeps lines, triangles and tetrahedra by type, other types are skipped
func readElements(scanner *bufio.Scanner, elements map[int][]gmshElement) error {
	n, err := readCount(scanner, "Elements")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element entry at line %d", i+1)
		}
		ints := make([]int, len(fields))
		for j, f := range fields {
			if ints[j], err = strconv.Atoi(f); err != nil {
				return fmt.Errorf("invalid element entry at line %d: %w", i+1, err)
			}
		}
		gmshType, numTags := ints[1], ints[2]
		nv, ok := gmshVertexCount[gmshType]
		if !ok {
			continue
		}
		if len(ints) != 3+numTags+nv {
			return fmt.Errorf("element %d of type %d expects %d nodes, got %d",
				ints[0], gmshType, nv, len(ints)-3-numTags)
		}
		ge := gmshElement{vertices: ints[3+numTags:]}
		if numTags > 0 {
			ge.physical = ints[3]
		}
		elements[gmshType] = append(elements[gmshType], ge)
	}
	return skipTo(scanner, "$EndElements")
}

func readCount(scanner *bufio.Scanner, section string) (n int, err error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("unexpected EOF in %s", section)
	}
	if n, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		return 0, fmt.Errorf("invalid number of %s: %w", section, err)
	}
	return
}

func skipTo(scanner *bufio.Scanner, endTag string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endTag {
			return nil
		}
	}
	return fmt.Errorf("missing %s", endTag)
}

// ApplyPhysicalTags sets the condition of every facet carrying a physical group listed
// in bcs, by group name. Facets without a listed group keep their condition. Returns the
// number of facets changed. BuildFacets must have run before.
func (m *Mesh) ApplyPhysicalTags(bcs map[string]utils.BCType) (count int, err error) {
	byTag := make(map[int]utils.BCType)
	for tag, name := range m.PhysicalNames {
		if bc, ok := bcs[name]; ok {
			byTag[tag] = bc
		}
	}
	for name := range bcs {
		if !m.hasPhysicalName(name) {
			return 0, fmt.Errorf("no physical group named %q", name)
		}
	}
	for fctNo := range m.Facets {
		var (
			info    = &m.Facets[fctNo]
			el      = m.Elements[info.Up[0]]
			globals = make([]int, len(info.Vertices[0]))
		)
		for k, l := range info.Vertices[0] {
			globals[k] = el[l]
		}
		tag, found := m.facetTags[keyOf(globals)]
		if !found {
			continue
		}
		bc, listed := byTag[tag]
		if !listed {
			continue
		}
		switch {
		case info.IsBoundary() && bc == utils.BCNone:
			return count, fmt.Errorf("boundary facet %d can not be interior", fctNo)
		case !info.IsBoundary() && bc != utils.BCSlip && bc != utils.BCNone:
			return count, fmt.Errorf("interior facet %d can only be a fault, got %s", fctNo, bc)
		}
		info.BC = bc
		count++
	}
	return
}

func (m *Mesh) hasPhysicalName(name string) bool {
	for _, n := range m.PhysicalNames {
		if n == name {
			return true
		}
	}
	return false
}
