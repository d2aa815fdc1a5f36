package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/goelastic/utils"
)

// Box face names, index 2*d is the lower face of direction d, 2*d+1 the upper face
var FaceNames = []string{"left", "right", "bottom", "top", "front", "back"}

type FaultParameters struct {
	Axis     int       `yaml:"Axis"`     // Fault plane is x[Axis] = Position
	Position float64   `yaml:"Position"` // Must coincide with mesh facets, also for fault groups of mesh files
	Slip     []float64 `yaml:"Slip"`     // Constant displacement jump across the fault
}

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title           string            `yaml:"Title"`
	Dimension       int               `yaml:"Dimension"`
	PolynomialOrder int               `yaml:"PolynomialOrder"`
	MaterialOrder   int               `yaml:"MaterialOrder"`
	QuadratureOrder int               `yaml:"QuadratureOrder"` // Minimum quadrature order, 0 selects 2*PolynomialOrder
	Epsilon         float64           `yaml:"Epsilon"`         // -1 SIPG (also selected when unset), 1 NIPG
	MeshFile        string            `yaml:"MeshFile"`        // Gmsh 2.2 mesh used instead of the box
	Cells           []int             `yaml:"Cells"`
	Lower           []float64         `yaml:"Lower"`
	Upper           []float64         `yaml:"Upper"`
	Warp            float64           `yaml:"Warp"` // Amplitude of the sine warp applied to the box
	Lambda          float64           `yaml:"Lambda"`
	Mu              float64           `yaml:"Mu"`
	Solution        string            `yaml:"Solution"` // Manufactured solution: linear or quadratic
	BCs             map[string]string `yaml:"BCs"`      // Face or physical group name to boundary condition name
	Fault           *FaultParameters  `yaml:"Fault"`
	Tolerance       float64           `yaml:"Tolerance"`
	MaxIterations   int               `yaml:"MaxIterations"`
	Workers         int               `yaml:"Workers"`
}

func (ip *InputParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.SetDefaults()
	return ip.Validate()
}

// SetDefaults fills unset parameters
func (ip *InputParameters) SetDefaults() {
	if ip.Dimension == 0 {
		ip.Dimension = 2
	}
	if ip.PolynomialOrder == 0 {
		ip.PolynomialOrder = 1
	}
	if ip.Epsilon == 0 {
		ip.Epsilon = -1
	}
	if len(ip.Cells) == 0 {
		ip.Cells = make([]int, ip.Dimension)
		for d := range ip.Cells {
			ip.Cells[d] = 4
		}
	}
	if len(ip.Lower) == 0 {
		ip.Lower = make([]float64, ip.Dimension)
	}
	if len(ip.Upper) == 0 {
		ip.Upper = make([]float64, ip.Dimension)
		for d := range ip.Upper {
			ip.Upper[d] = 1
		}
	}
	if ip.Lambda == 0 {
		ip.Lambda = 1
	}
	if ip.Mu == 0 {
		ip.Mu = 1
	}
	if len(ip.Solution) == 0 {
		ip.Solution = "linear"
	}
	if ip.Tolerance == 0 {
		ip.Tolerance = 1.e-10
	}
	if ip.MaxIterations == 0 {
		ip.MaxIterations = 10000
	}
}

func (ip *InputParameters) Validate() error {
	D := ip.Dimension
	if D != 2 && D != 3 {
		return fmt.Errorf("dimension must be 2 or 3, have %d", D)
	}
	if len(ip.MeshFile) != 0 {
		return ip.validateMeshFile()
	}
	if len(ip.Cells) != D || len(ip.Lower) != D || len(ip.Upper) != D {
		return fmt.Errorf("Cells, Lower and Upper need %d entries each", D)
	}
	for d := 0; d < D; d++ {
		if ip.Cells[d] < 1 {
			return fmt.Errorf("Cells[%d] = %d, must be positive", d, ip.Cells[d])
		}
		if ip.Upper[d] <= ip.Lower[d] {
			return fmt.Errorf("Upper[%d] must exceed Lower[%d]", d, d)
		}
	}
	if err := ip.validateCommon(); err != nil {
		return err
	}
	if _, err := ip.BoundaryConditions(); err != nil {
		return err
	}
	if f := ip.Fault; f != nil {
		if f.Position <= ip.Lower[f.Axis] || f.Position >= ip.Upper[f.Axis] {
			return fmt.Errorf("fault position %g is outside the box", f.Position)
		}
	}
	return nil
}

func (ip *InputParameters) validateMeshFile() error {
	if err := ip.validateCommon(); err != nil {
		return err
	}
	bcs, err := ip.PhysicalConditions()
	if err != nil {
		return err
	}
	for name, bc := range bcs {
		if bc == utils.BCSlip && ip.Fault == nil {
			return fmt.Errorf("physical group %s is a fault, the Fault section is missing", name)
		}
	}
	return nil
}

func (ip *InputParameters) validateCommon() error {
	D := ip.Dimension
	if ip.PolynomialOrder < 1 {
		return fmt.Errorf("PolynomialOrder must be at least 1, have %d", ip.PolynomialOrder)
	}
	if ip.MaterialOrder < 0 || ip.QuadratureOrder < 0 {
		return fmt.Errorf("MaterialOrder and QuadratureOrder must not be negative")
	}
	if ip.Lambda < 0 || ip.Mu <= 0 {
		return fmt.Errorf("need Lambda >= 0 and Mu > 0, have %g, %g", ip.Lambda, ip.Mu)
	}
	switch strings.ToLower(ip.Solution) {
	case "linear", "quadratic":
	default:
		return fmt.Errorf("unknown solution %q", ip.Solution)
	}
	if f := ip.Fault; f != nil {
		if f.Axis < 0 || f.Axis >= D {
			return fmt.Errorf("fault axis %d out of range", f.Axis)
		}
		if len(f.Slip) != D {
			return fmt.Errorf("fault slip needs %d components", D)
		}
		if ip.Warp != 0 {
			return fmt.Errorf("a fault needs a flat geometry, have Warp = %g", ip.Warp)
		}
	}
	if ip.Workers < 0 {
		return fmt.Errorf("Workers must not be negative")
	}
	return nil
}

// PhysicalConditions resolves the BCs section by physical group name of a mesh file
func (ip *InputParameters) PhysicalConditions() (bcs map[string]utils.BCType, err error) {
	bcs = make(map[string]utils.BCType, len(ip.BCs))
	for group, name := range ip.BCs {
		bc, ok := utils.ParseBCName(name)
		if !ok {
			return nil, fmt.Errorf("unknown boundary condition %q on group %s", name, group)
		}
		bcs[group] = bc
	}
	return
}

// BoundaryConditions resolves the BCs section for the faces of the box. Faces
// not listed are Dirichlet.
func (ip *InputParameters) BoundaryConditions() (bcs []utils.BCType, err error) {
	bcs = make([]utils.BCType, 2*ip.Dimension)
	for i := range bcs {
		bcs[i] = utils.BCDirichlet
	}
	for face, name := range ip.BCs {
		i := faceIndex(face)
		if i < 0 || i >= len(bcs) {
			return nil, fmt.Errorf("unknown face %q for dimension %d", face, ip.Dimension)
		}
		bc, ok := utils.ParseBCName(name)
		if !ok {
			return nil, fmt.Errorf("unknown boundary condition %q on face %s", name, face)
		}
		if bc == utils.BCNone {
			return nil, fmt.Errorf("face %s can not be interior", face)
		}
		bcs[i] = bc
	}
	return
}

func faceIndex(face string) int {
	face = strings.ToLower(strings.TrimSpace(face))
	for i, name := range FaceNames {
		if name == face {
			return i
		}
	}
	return -1
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Material Order\n", ip.MaterialOrder)
	fmt.Printf("%8.5f\t\t= Epsilon\n", ip.Epsilon)
	if len(ip.MeshFile) != 0 {
		fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	} else {
		fmt.Printf("%v\t\t\t= Cells\n", ip.Cells)
		fmt.Printf("%v - %v\t= Box\n", ip.Lower, ip.Upper)
	}
	fmt.Printf("%8.5f\t\t= Warp\n", ip.Warp)
	fmt.Printf("%8.5f\t\t= Lambda\n", ip.Lambda)
	fmt.Printf("%8.5f\t\t= Mu\n", ip.Mu)
	fmt.Printf("[%s]\t\t\t= Solution\n", ip.Solution)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
	if ip.Fault != nil {
		fmt.Printf("Fault at x[%d] = %g, slip %v\n", ip.Fault.Axis, ip.Fault.Position, ip.Fault.Slip)
	}
}
