package mesh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goelastic/utils"
)

const unitSquare = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
4
1 1 "fixed"
1 2 "free"
1 3 "fault"
2 10 "body"
$EndPhysicalNames
$Nodes
4
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
$EndNodes
$Elements
8
1 15 2 0 1 1
2 1 2 1 1 1 2
3 1 2 2 2 2 3
4 1 2 2 3 3 4
5 1 2 1 4 4 1
6 1 2 3 5 1 3
7 2 2 10 1 1 3 2
8 2 2 10 1 1 3 4
$EndElements
`

func TestReadGmsh22(t *testing.T) {
	m, err := ReadGmsh22(strings.NewReader(unitSquare))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, []float64{1, 1}, m.Vertices[2])
	require.Equal(t, 2, m.NumElements())
	for _, el := range m.Elements {
		assert.Greater(t, mat.Det(m.affineJacobian(el)), 0.)
	}
	assert.Equal(t, "fault", m.PhysicalNames[3])

	facets := m.BuildFacets(nil)
	assert.Len(t, facets, 5)
	count, err := m.ApplyPhysicalTags(map[string]utils.BCType{
		"free":  utils.BCNatural,
		"fault": utils.BCSlip,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, map[utils.BCType]int{
		utils.BCDirichlet: 2,
		utils.BCNatural:   2,
		utils.BCSlip:      1,
	}, m.BCCounts())

	_, err = m.ApplyPhysicalTags(map[string]utils.BCType{"inlet": utils.BCNatural})
	assert.Error(t, err)
	_, err = m.ApplyPhysicalTags(map[string]utils.BCType{"fixed": utils.BCNone})
	assert.Error(t, err)
	_, err = m.ApplyPhysicalTags(map[string]utils.BCType{"fault": utils.BCDirichlet})
	assert.Error(t, err)
}

func TestReadGmsh22Errors(t *testing.T) {
	for name, input := range map[string]string{
		"binary":     strings.Replace(unitSquare, "2.2 0 8", "2.2 1 8", 1),
		"version":    strings.Replace(unitSquare, "2.2 0 8", "4.1 0 8", 1),
		"node":       strings.Replace(unitSquare, "8 2 2 10 1 1 3 4", "8 2 2 10 1 1 3 9", 1),
		"count":      strings.Replace(unitSquare, "8 2 2 10 1 1 3 4", "8 2 2 10 1 1 3", 1),
		"no volume":  strings.Replace(strings.Replace(unitSquare, "7 2 2 10 1 1 3 2", "7 1 2 10 1 1 2", 1), "8 2 2 10 1 1 3 4", "8 1 2 10 1 1 4", 1),
		"unfinished": strings.TrimSuffix(unitSquare, "$EndElements\n"),
	} {
		_, err := ReadGmsh22(strings.NewReader(input))
		assert.Error(t, err, name)
	}
}
