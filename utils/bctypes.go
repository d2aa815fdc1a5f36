package utils

import "strings"

// BCType represents the boundary condition attached to a facet
type BCType uint8

const (
	// BCNone indicates an interior facet without prescribed data
	BCNone BCType = iota
	// BCNatural is a traction free surface, it produces no contribution
	BCNatural
	// BCDirichlet prescribes the displacement on the facet
	BCDirichlet
	// BCSlip prescribes a displacement jump (fault). On interior facets the jump is
	// between both sides, on boundary facets the facet is a symmetry plane of the fault
	BCSlip
)

func (bc BCType) String() string {
	switch bc {
	case BCNone:
		return "None"
	case BCNatural:
		return "Natural"
	case BCDirichlet:
		return "Dirichlet"
	case BCSlip:
		return "Slip"
	}
	return "Unknown"
}

// BCNameMap maps lower case names used in input files to BCType
var BCNameMap = map[string]BCType{
	"none":         BCNone,
	"interior":     BCNone,
	"natural":      BCNatural,
	"free":         BCNatural,
	"free_surface": BCNatural,
	"neumann":      BCNatural,
	"dirichlet":    BCDirichlet,
	"fixed":        BCDirichlet,
	"slip":         BCSlip,
	"fault":        BCSlip,
}

// ParseBCName converts a boundary condition name to BCType, case-insensitive.
// The boolean is false for unknown names.
func ParseBCName(name string) (BCType, bool) {
	bc, ok := BCNameMap[strings.ToLower(strings.TrimSpace(name))]
	return bc, ok
}
