/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notargets/goelastic/InputParameters"
	"github.com/notargets/goelastic/assembly"
	"github.com/notargets/goelastic/elasticity"
	"github.com/notargets/goelastic/geometry"
	"github.com/notargets/goelastic/mesh"
	"github.com/notargets/goelastic/utils"
)

const exampleFile = `
########################################
Title: "Fault Test"
Dimension: 2
PolynomialOrder: 2
Cells: [8, 8]
Lower: [0, 0]
Upper: [1, 1]
Lambda: 2.
Mu: 1.
Solution: linear # Can be "quadratic"
BCs:
  top: Dirichlet # Can be "natural"
Fault:
  Axis: 0
  Position: 0.5
  Slip: [0, 0.1]
########################################
`

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a manufactured elasticity problem on a box",
	Long: `Solve a manufactured elasticity problem on a (warped) box, optionally cut by a
planar fault with prescribed slip, and report the L2 error of the discrete solution`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			icFile, _ = cmd.Flags().GetString("inputConditionsFile")
			ip        *InputParameters.InputParameters
			logger    *zap.Logger
		)
		if len(icFile) == 0 {
			fmt.Printf("Example File:%s\n", exampleFile)
			return fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		}
		if ip, err = processInput(icFile); err != nil {
			return
		}
		ip.Print()
		if logger, err = newLogger(viper.GetBool("verbose")); err != nil {
			return
		}
		defer func() { _ = logger.Sync() }()
		switch mode := strings.ToLower(viper.GetString("profile")); mode {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		default:
			return fmt.Errorf("unknown profile mode %q", mode)
		}
		if w := viper.GetInt("workers"); w > 0 {
			ip.Workers = w
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		var res Result
		if res, err = RunSolve(ctx, ip, viper.GetBool("perf"), logger); err != nil {
			return
		}
		res.Print()
		return
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Dimension, Cells, Lower, Upper\n\t- Lambda, Mu\n\t- BCs, Fault")
	SolveCmd.Flags().IntP("workers", "w", 0, "number of parallel partitions, 0 uses the input file or all CPUs")
	SolveCmd.Flags().Bool("perf", false, "count CPU instructions spent in assembly (linux only)")
	_ = viper.BindPFlag("workers", SolveCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("perf", SolveCmd.Flags().Lookup("perf"))
}

func processInput(icFile string) (ip *InputParameters.InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(icFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("input file %s: %w", icFile, err)
	}
	return
}

// Result summarizes a solve
type Result struct {
	Elements, Facets, FaultFacets int
	DOFs, NonZeros, Iterations    int
	Instructions                  uint64 // Zero unless counted
	L2Error                       float64
	Elapsed                       time.Duration
}

func (r Result) Print() {
	fmt.Printf("[%d]\t\t\t\t= Elements\n", r.Elements)
	fmt.Printf("[%d]\t\t\t\t= Facets (%d on the fault)\n", r.Facets, r.FaultFacets)
	fmt.Printf("[%d]\t\t\t\t= Degrees of freedom\n", r.DOFs)
	fmt.Printf("[%d]\t\t\t\t= Matrix non zeros\n", r.NonZeros)
	fmt.Printf("[%d]\t\t\t\t= CG iterations\n", r.Iterations)
	if r.Instructions != 0 {
		fmt.Printf("[%d]\t\t\t= Assembly instructions\n", r.Instructions)
	}
	fmt.Printf("%8.5e\t\t= L2 error\n", r.L2Error)
	fmt.Printf("%v\t\t= Elapsed\n", r.Elapsed)
}

// RunSolve meshes the box described by ip, assembles and solves the system and
// measures the error against the manufactured solution
func RunSolve(ctx context.Context, ip *InputParameters.InputParameters, countInstructions bool,
	logger *zap.Logger) (res Result, err error) {
	var (
		start = time.Now()
		m     *mesh.Mesh
		cl    *geometry.Simplex
		op    *elasticity.Elasticity
	)
	if m, err = buildMesh(ip); err != nil {
		return
	}
	counts := m.BCCounts()
	res.FaultFacets = counts[utils.BCSlip]
	var transform geometry.Transform
	if ip.Warp != 0 {
		transform = geometry.Warp{Amplitude: ip.Warp}
	}
	if cl, err = m.Curvilinear(transform); err != nil {
		return
	}
	logger.Info("mesh",
		zap.Int("elements", m.NumElements()),
		zap.Int("facets", len(m.Facets)),
		zap.Int("dirichlet", counts[utils.BCDirichlet]),
		zap.Int("natural", counts[utils.BCNatural]),
		zap.Int("slip", counts[utils.BCSlip]))
	if counts[utils.BCNatural] != 0 {
		logger.Warn("natural faces are traction free, the manufactured solution does not hold there")
	}

	opts := []elasticity.Option{
		elasticity.WithDegree(ip.PolynomialOrder),
		elasticity.WithMaterialDegree(ip.MaterialOrder),
		elasticity.WithEpsilon(ip.Epsilon),
		elasticity.WithLogger(logger),
	}
	if ip.QuadratureOrder > 0 {
		opts = append(opts, elasticity.WithMinQuadOrder(ip.QuadratureOrder))
	}
	lam := func([]float64) float64 { return ip.Lambda }
	mu := func([]float64) float64 { return ip.Mu }
	if op, err = elasticity.New(cl, geometry.ReferencePenalty(cl, ip.PolynomialOrder), lam, mu, opts...); err != nil {
		return
	}
	exact, force := manufactured(ip)
	op.SetDirichletFunc(exact, nil)
	if force != nil {
		op.SetForceFunc(force)
	}
	if f := ip.Fault; f != nil {
		refNormal := make([]float64, ip.Dimension)
		refNormal[f.Axis] = 1
		op.SetSlipFunc(elasticity.FunctionalFunc(func(x, out []float64) { copy(out, f.Slip) }), refNormal)
	}

	driverOpts := []assembly.Option{assembly.WithLogger(logger)}
	if ip.Workers > 0 {
		driverOpts = append(driverOpts, assembly.WithWorkers(ip.Workers))
	}
	if err = assembly.Prepare(ctx, op, m.NumElements(), m.Facets, driverOpts...); err != nil {
		return
	}
	var sys assembly.System
	assemble := func() (err error) {
		sys, err = assembly.Assemble(ctx, op, m.NumElements(), m.Facets, driverOpts...)
		return
	}
	if countInstructions {
		var counted bool
		if res.Instructions, counted, err = measureInstructions(assemble); err != nil {
			return
		}
		if !counted {
			logger.Warn("instruction counting unavailable")
		}
	} else if err = assemble(); err != nil {
		return
	}

	var x []float64
	if x, res.Iterations, err = assembly.SolveCG(sys.A, sys.B, ip.Tolerance, ip.MaxIterations); err != nil {
		return res, fmt.Errorf("solve: %w", err)
	}
	u := op.SolutionPrototype(m.NumElements())
	copy(u.Data(), x)
	res.Elements = m.NumElements()
	res.Facets = len(m.Facets)
	res.DOFs = len(x)
	res.NonZeros = sys.A.NNZ()
	res.L2Error = assembly.L2Error(cl, u, exact)
	res.Elapsed = time.Since(start)
	logger.Info("solved",
		zap.Int("dofs", res.DOFs),
		zap.Int("iterations", res.Iterations),
		zap.Float64("l2Error", res.L2Error),
		zap.Duration("elapsed", res.Elapsed))
	return
}

// buildMesh reads the mesh file of ip or meshes its box, and sets the facet conditions
func buildMesh(ip *InputParameters.InputParameters) (m *mesh.Mesh, err error) {
	if len(ip.MeshFile) != 0 {
		var bcs map[string]utils.BCType
		if m, err = mesh.ReadGmshFile(ip.MeshFile); err != nil {
			return
		}
		if m.Dim != ip.Dimension {
			return nil, fmt.Errorf("mesh %s has dimension %d, input asks for %d", ip.MeshFile, m.Dim, ip.Dimension)
		}
		m.BuildFacets(nil)
		if bcs, err = ip.PhysicalConditions(); err != nil {
			return
		}
		if _, err = m.ApplyPhysicalTags(bcs); err != nil {
			return nil, fmt.Errorf("mesh %s: %w", ip.MeshFile, err)
		}
		return
	}
	var bcs []utils.BCType
	if bcs, err = ip.BoundaryConditions(); err != nil {
		return
	}
	if m, err = mesh.Box(ip.Dimension, ip.Cells, ip.Lower, ip.Upper); err != nil {
		return
	}
	m.BuildFacets(boxTag(ip, bcs))
	if ip.Fault != nil && m.MarkFault(faultPlane(ip)) == 0 {
		return nil, fmt.Errorf("fault plane x[%d] = %g does not coincide with mesh facets",
			ip.Fault.Axis, ip.Fault.Position)
	}
	return
}

// boxTag maps boundary facets to the condition of the box face holding their centroid
func boxTag(ip *InputParameters.InputParameters, bcs []utils.BCType) mesh.TagFunc {
	return func(centroid, normal []float64) utils.BCType {
		for d := 0; d < ip.Dimension; d++ {
			tol := utils.NODETOL * (ip.Upper[d] - ip.Lower[d])
			switch {
			case math.Abs(centroid[d]-ip.Lower[d]) < tol:
				return bcs[2*d]
			case math.Abs(centroid[d]-ip.Upper[d]) < tol:
				return bcs[2*d+1]
			}
		}
		return utils.BCDirichlet
	}
}

func faultPlane(ip *InputParameters.InputParameters) func(centroid, normal []float64) bool {
	var (
		f   = ip.Fault
		tol = utils.NODETOL * (ip.Upper[f.Axis] - ip.Lower[f.Axis])
	)
	return func(centroid, normal []float64) bool {
		return math.Abs(centroid[f.Axis]-f.Position) < tol && math.Abs(normal[f.Axis]) > 1-1.e-8
	}
}

// manufactured returns the exact displacement and the body force producing it. With a
// fault the two sides are shifted rigidly by half the slip in opposite directions.
func manufactured(ip *InputParameters.InputParameters) (exact, force elasticity.FunctionalFunc) {
	D := ip.Dimension
	switch strings.ToLower(ip.Solution) {
	case "quadratic":
		exact = func(x, out []float64) {
			for i := range out {
				out[i] = 0
			}
			out[0] = x[0] * x[0]
		}
		force = func(x, out []float64) {
			for i := range out {
				out[i] = 0
			}
			out[0] = -2 * (ip.Lambda + 2*ip.Mu)
		}
	default:
		exact = func(x, out []float64) {
			for i := 0; i < D; i++ {
				out[i] = 0.1 * float64(i+1)
				for j := 0; j < D; j++ {
					out[i] += 0.1 * float64(i-2*j+1) * x[j]
				}
			}
		}
	}
	if f := ip.Fault; f != nil {
		smooth := exact
		exact = func(x, out []float64) {
			smooth(x, out)
			half := 0.5
			if x[f.Axis] > f.Position {
				half = -0.5
			}
			for i := range out {
				out[i] += half * f.Slip[i]
			}
		}
	}
	return
}
