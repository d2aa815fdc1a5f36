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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notargets/goelastic/InputParameters"
)

// ConvergenceStudy collects the error of one problem over uniform refinements
type ConvergenceStudy struct {
	Title  string
	Order  int
	Cells  []int // Cells per direction at each level
	Errors []float64
}

func NewConvergenceStudy(title string, order int) *ConvergenceStudy {
	return &ConvergenceStudy{
		Title: title,
		Order: order,
	}
}

func (cs *ConvergenceStudy) Add(cells int, l2Error float64) {
	cs.Cells = append(cs.Cells, cells)
	cs.Errors = append(cs.Errors, l2Error)
}

// Orders returns the observed convergence order between consecutive levels, the first
// entry is NaN
func (cs *ConvergenceStudy) Orders() (orders []float64) {
	orders = make([]float64, len(cs.Errors))
	for i := range orders {
		if i == 0 {
			orders[i] = math.NaN()
			continue
		}
		orders[i] = math.Log(cs.Errors[i-1]/cs.Errors[i]) /
			math.Log(float64(cs.Cells[i])/float64(cs.Cells[i-1]))
	}
	return
}

func (cs *ConvergenceStudy) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Cells", "Order", "L2Error", "ObservedOrder"}); err != nil {
		return err
	}
	for i, order := range cs.Orders() {
		if err := cw.Write([]string{
			cs.Title,
			strconv.Itoa(cs.Cells[i]),
			strconv.Itoa(cs.Order),
			strconv.FormatFloat(cs.Errors[i], 'e', 8, 64),
			strconv.FormatFloat(order, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (cs *ConvergenceStudy) Print() {
	fmt.Printf("Title = %s, Order = %d\n", cs.Title, cs.Order)
	for i, order := range cs.Orders() {
		fmt.Printf("%d, %8.5e, %5.2f\n", cs.Cells[i], cs.Errors[i], order)
	}
}

// ConvergeCmd represents the converge command
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Measure the convergence order of a box problem under uniform refinement",
	Long: `Solve the box problem of the input file on successively doubled cell counts and
report the L2 error and the observed order of convergence at every level`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			icFile, _  = cmd.Flags().GetString("inputConditionsFile")
			levels, _  = cmd.Flags().GetInt("levels")
			csvFile, _ = cmd.Flags().GetString("csvFile")
			ip         *InputParameters.InputParameters
			logger     *zap.Logger
			cs         *ConvergenceStudy
		)
		if len(icFile) == 0 {
			fmt.Printf("Example File:%s\n", exampleFile)
			return fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		}
		if ip, err = processInput(icFile); err != nil {
			return
		}
		if logger, err = newLogger(viper.GetBool("verbose")); err != nil {
			return
		}
		defer func() { _ = logger.Sync() }()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if cs, err = RunConvergence(ctx, ip, levels, logger); err != nil {
			return
		}
		cs.Print()
		if len(csvFile) != 0 {
			var f *os.File
			if f, err = os.Create(csvFile); err != nil {
				return
			}
			defer f.Close()
			return cs.WriteCSV(f)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	ConvergeCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters of the coarsest level")
	ConvergeCmd.Flags().IntP("levels", "l", 3, "number of refinement levels")
	ConvergeCmd.Flags().String("csvFile", "", "file receiving the entries of the convergence study")
}

// RunConvergence solves ip on levels uniform refinements of its box
func RunConvergence(ctx context.Context, ip *InputParameters.InputParameters, levels int,
	logger *zap.Logger) (cs *ConvergenceStudy, err error) {
	if len(ip.MeshFile) != 0 {
		return nil, fmt.Errorf("convergence studies refine the box, mesh files can not be refined")
	}
	if levels < 2 {
		return nil, fmt.Errorf("a convergence study needs at least 2 levels, have %d", levels)
	}
	var (
		level = *ip
		base  = ip.Cells
	)
	cs = NewConvergenceStudy(ip.Title, ip.PolynomialOrder)
	for l := 0; l < levels; l++ {
		level.Cells = make([]int, len(base))
		for d, n := range base {
			level.Cells[d] = n << l
		}
		var res Result
		if res, err = RunSolve(ctx, &level, false, logger); err != nil {
			return nil, fmt.Errorf("level %d: %w", l, err)
		}
		cs.Add(level.Cells[0], res.L2Error)
	}
	return
}
