package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/notargets/goelastic/InputParameters"
	"github.com/notargets/goelastic/utils"
)

func parse(t *testing.T, input string) *InputParameters.InputParameters {
	ip := &InputParameters.InputParameters{}
	require.NoError(t, ip.Parse([]byte(input)))
	ip.Tolerance = 1.e-13
	return ip
}

func TestRunSolve(t *testing.T) {
	ip := parse(t, `
Dimension: 2
Cells: [3, 2]
Lower: [-1, 0]
Upper: [1, 1]
Workers: 2
`)
	res, err := RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 12, res.Elements)
	assert.Equal(t, 12*3*2, res.DOFs)
	assert.Less(t, res.L2Error, 1.e-9)
	assert.Zero(t, res.Instructions)
}

func TestRunSolveQuadratic(t *testing.T) {
	ip := parse(t, `
PolynomialOrder: 2
Cells: [2, 2]
Lambda: 3.
Solution: quadratic
`)
	res, err := RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Less(t, res.L2Error, 1.e-8)
}

// The manufactured field is not in the discrete space of warped elements, the
// solution only converges to it
func TestRunSolveWarp(t *testing.T) {
	ip := parse(t, `
PolynomialOrder: 2
Cells: [4, 4]
Warp: 0.02
`)
	res, err := RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Greater(t, res.L2Error, 0.)
	assert.Less(t, res.L2Error, 1.e-2)
}

// A planar fault with constant slip separates two rigidly shifted halves
func TestRunSolveFault(t *testing.T) {
	ip := parse(t, `
Cells: [2, 2]
Fault:
  Axis: 0
  Position: 0.5
  Slip: [0, 0.1]
`)
	res, err := RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 2, res.FaultFacets)
	assert.Less(t, res.L2Error, 1.e-9)

	ip.Cells = []int{3, 2}
	_, err = RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	assert.Error(t, err)
}

const squareMesh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
1 1 "outer"
2 2 "body"
$EndPhysicalNames
$Nodes
5
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
5 0.4 0.6 0
$EndNodes
$Elements
8
1 1 2 1 1 1 2
2 1 2 1 1 2 3
3 1 2 1 1 3 4
4 1 2 1 1 4 1
5 2 2 2 1 1 2 5
6 2 2 2 1 2 3 5
7 2 2 2 1 3 4 5
8 2 2 2 1 4 1 5
$EndElements
`

func TestRunSolveMeshFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "square.msh")
	require.NoError(t, os.WriteFile(file, []byte(squareMesh), 0o644))
	ip := parse(t, fmt.Sprintf("MeshFile: %s\nBCs:\n  outer: fixed\n", file))
	res, err := RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Elements)
	assert.Equal(t, 8, res.Facets)
	assert.Less(t, res.L2Error, 1.e-9)

	ip.Dimension = 3
	_, err = RunSolve(context.Background(), ip, false, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRunSolveCanceled(t *testing.T) {
	ip := parse(t, "Cells: [2, 2]\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunSolve(ctx, ip, false, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoxTag(t *testing.T) {
	ip := parse(t, `
Dimension: 3
Lower: [0, -1, 0]
Upper: [1, 1, 2]
BCs:
  right: free
  back: slip
`)
	bcs, err := ip.BoundaryConditions()
	require.NoError(t, err)
	tag := boxTag(ip, bcs)
	assert.Equal(t, utils.BCDirichlet, tag([]float64{0, 0.2, 0.3}, []float64{-1, 0, 0}))
	assert.Equal(t, utils.BCNatural, tag([]float64{1, 0.2, 0.3}, []float64{1, 0, 0}))
	assert.Equal(t, utils.BCDirichlet, tag([]float64{0.5, -1, 0.3}, []float64{0, -1, 0}))
	assert.Equal(t, utils.BCSlip, tag([]float64{0.5, 0.2, 2}, []float64{0, 0, 1}))
}

func TestManufactured(t *testing.T) {
	ip := parse(t, `
Solution: quadratic
Lambda: 2.
Mu: 0.5
Fault:
  Axis: 1
  Position: 0.5
  Slip: [0.2, 0.4]
`)
	exact, force := manufactured(ip)
	out := make([]float64, 2)
	exact([]float64{0.5, 0.25}, out)
	assert.InDeltaSlice(t, []float64{0.35, 0.2}, out, 1.e-14)
	exact([]float64{0.5, 0.75}, out)
	assert.InDeltaSlice(t, []float64{0.15, -0.2}, out, 1.e-14)
	force([]float64{0.3, 0.3}, out)
	assert.InDeltaSlice(t, []float64{-6, 0}, out, 1.e-14)

	exact, force = manufactured(parse(t, "Cells: [2, 2]\n"))
	assert.Nil(t, force)
	exact([]float64{0, 0}, out)
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, out, 1.e-14)
}
