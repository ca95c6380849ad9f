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
	"fmt"
	"log/slog"
	"os"
	"time"

	jsparse "github.com/james-bowman/sparse"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/notargets/gocoo/InputParameters"
	"github.com/notargets/gocoo/assembly"
	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/backend/batched"
	"github.com/notargets/gocoo/backend/cpu"
	"github.com/notargets/gocoo/mesh"
	"github.com/notargets/gocoo/solver"
	"github.com/notargets/gocoo/sparse"
	"github.com/notargets/gocoo/utils"
)

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble and solve a Poisson problem described by a YAML input file",
	Long: `
Builds a structured mesh, assembles the stiffness matrix and load vectors as
COO tensors, applies the Dirichlet conditions and solves every right-hand side.

gocoo assemble -I input.yaml --backend batched --workers 8`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ip  *InputParameters.AssemblyParameters
		)
		fmt.Println("assemble called")
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		if ip, err = processInput(icFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		applyOverrides(ip)
		if err = ip.Validate(); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		ip.Print()
		var rep *Report
		if rep, err = RunAssemble(ip, slog.Default()); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		rep.Print()
		fmt.Println(utils.GetMemUsage())
	},
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Dimension\n\t- Elements\n\t- BCs")
	addOverrides(AssembleCmd.Flags())
}

// addOverrides registers the flags that take precedence over the input file.
func addOverrides(fs *pflag.FlagSet) {
	fs.String("backend", "", "compute backend: cpu or batched")
	fs.Int("workers", 0, "worker goroutines for the batched backend and for assembly")
	fs.String("solver", "", "linear solver: cg or direct")
	for _, name := range []string{"backend", "workers", "solver"} {
		_ = viper.BindPFlag(name, fs.Lookup(name))
	}
}

// applyOverrides copies flag, environment (GOCOO_*) and config file
// settings over the input file values.
func applyOverrides(ip *InputParameters.AssemblyParameters) {
	if viper.IsSet("backend") && viper.GetString("backend") != "" {
		ip.Backend = viper.GetString("backend")
	}
	if viper.IsSet("workers") && viper.GetInt("workers") > 0 {
		ip.Workers = viper.GetInt("workers")
	}
	if viper.IsSet("solver") && viper.GetString("solver") != "" {
		ip.Solver = viper.GetString("solver")
	}
	ip.SetDefaults()
}

func processInput(icFile string) (ip *InputParameters.AssemblyParameters, err error) {
	if len(icFile) == 0 {
		fmt.Printf("Example File:%s\n", InputParameters.ExampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(icFile); err != nil {
		return
	}
	ip = &InputParameters.AssemblyParameters{}
	err = ip.Parse(data)
	return
}

// NewBackend returns the named compute backend.
func NewBackend(name string, workers int) (backend.Backend, error) {
	switch name {
	case "cpu", "":
		return cpu.New(), nil
	case "batched":
		return batched.New(workers), nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

type Report struct {
	Backend    string
	Nodes      int
	Cells      int
	NNZ        int
	TrilNNZ    int // zero unless requested
	Solutions  [][]float64
	Residuals  []float64
	Iterations []int
	Elapsed    time.Duration
}

func (rep *Report) Print() {
	fmt.Printf("[%s]\t\t\t= Backend\n", rep.Backend)
	fmt.Printf("[%d nodes, %d cells]\t= Mesh\n", rep.Nodes, rep.Cells)
	fmt.Printf("[%d]\t\t\t\t= Operator nnz\n", rep.NNZ)
	if rep.TrilNNZ != 0 {
		fmt.Printf("[%d]\t\t\t\t= Lower triangle nnz\n", rep.TrilNNZ)
	}
	for r := range rep.Solutions {
		fmt.Printf("RHS[%d]: iterations = %d, residual = %8.4e\n", r, rep.Iterations[r], rep.Residuals[r])
	}
	fmt.Printf("Elapsed time = %v\n", rep.Elapsed)
}

// RunAssemble builds the mesh, assembles and constrains the Poisson system
// and solves each right-hand side.
func RunAssemble(ip *InputParameters.AssemblyParameters, logger *slog.Logger) (rep *Report, err error) {
	var (
		start = time.Now()
		be    backend.Backend
		m     *mesh.Mesh
		as    *assembly.Assembler
		A, b  *sparse.COOTensor
	)
	if be, err = NewBackend(ip.Backend, ip.Workers); err != nil {
		return
	}
	if len(ip.MeshFile) != 0 {
		m, err = mesh.ReadSU2File(ip.MeshFile)
	} else {
		m, err = mesh.New(ip.Dimension, ip.Domain, ip.Elements)
	}
	if err != nil {
		return
	}
	logger.Info("mesh built", "mesh", m.String())
	workers := ip.Workers
	if workers < 1 {
		workers = 1
	}
	if as, err = assembly.NewAssembler(be, m, assembly.WithLogger(logger), assembly.WithWorkers(workers)); err != nil {
		return
	}
	sources := make([]func(x, y float64) float64, 0, len(ip.RHS()))
	for _, s := range ip.RHS() {
		sources = append(sources, assembly.Constant(s))
	}
	if A, b, err = as.Poisson(ip.BCs, sources...); err != nil {
		return
	}
	rep = &Report{
		Backend: be.Name(),
		Nodes:   m.NumNodes(),
		Cells:   m.NumCells(),
		NNZ:     A.NNZ(),
	}
	if ip.Tril {
		var L *sparse.COOTensor
		if L, err = A.Tril(0); err != nil {
			return
		}
		rep.TrilNNZ = L.NNZ()
	}
	var rhs *backend.Array
	if rhs, err = b.ToDense(0); err != nil {
		return
	}
	var csr *jsparse.CSR
	if csr, err = A.ToCSR(); err != nil {
		return
	}
	opts := solver.Options{Tolerance: ip.Tolerance, MaxIterations: ip.MaxIterations}
	for r := 0; r < rhs.RowSize(); r++ {
		col := make([]float64, rhs.Rows())
		for i := range col {
			col[i] = rhs.At(i, r)
		}
		var (
			x   []float64
			its int
		)
		switch ip.Solver {
		case "direct":
			x, err = solver.Direct(csr, col)
		default:
			var res solver.Result
			x, res, err = solver.CG(csr, col, opts)
			its = res.Iterations
		}
		if err != nil {
			return nil, fmt.Errorf("right-hand side %d: %w", r, err)
		}
		rep.Solutions = append(rep.Solutions, x)
		rep.Residuals = append(rep.Residuals, solver.Residual(csr, x, col))
		rep.Iterations = append(rep.Iterations, its)
	}
	rep.Elapsed = time.Since(start)
	return
}
