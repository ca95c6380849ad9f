package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type AssemblyParameters struct {
	Title         string             `yaml:"Title"`
	Dimension     int                `yaml:"Dimension"` // 1: interval, 2: square
	Elements      int                `yaml:"Elements"`  // Cells along each side
	Domain        [2]float64         `yaml:"Domain"`    // [a, b] or [a, b]²
	MeshFile      string             `yaml:"MeshFile"`  // SU2 mesh, replaces Dimension, Elements and Domain
	Backend       string             `yaml:"Backend"`   // cpu or batched
	Workers       int                `yaml:"Workers"`
	Solver        string             `yaml:"Solver"` // cg or direct
	Tolerance     float64            `yaml:"Tolerance"`
	MaxIterations int                `yaml:"MaxIterations"`
	BCs           map[string]float64 `yaml:"BCs"` // Boundary tag to Dirichlet value
	Source        float64            `yaml:"Source"`
	Sources       []float64          `yaml:"Sources"` // Extra right-hand sides solved in the same pass
	Tril          bool               `yaml:"Tril"`    // Report the lower triangle of the operator
}

const ExampleFile = `
########################################
Title: "Poisson on the unit interval"
Dimension: 1
Elements: 64
Domain: [0, 1]
Backend: batched # Can be "cpu"
Workers: 4
Solver: cg # Can be "direct"
Tolerance: 1.e-10
BCs:
  left: 0
  right: 1
Source: 1
Sources: [0, -2]
Tril: true
########################################
`

func (ip *AssemblyParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.SetDefaults()
	return
}

// SetDefaults fills the optional fields left empty by the input file.
func (ip *AssemblyParameters) SetDefaults() {
	if ip.Dimension == 0 {
		ip.Dimension = 1
	}
	if ip.Domain == [2]float64{} {
		ip.Domain = [2]float64{0, 1}
	}
	if ip.Backend == "" {
		ip.Backend = "cpu"
	}
	if ip.Solver == "" {
		ip.Solver = "cg"
	}
	if ip.Tolerance == 0 {
		ip.Tolerance = 1.e-10
	}
	ip.Backend, ip.Solver = strings.ToLower(ip.Backend), strings.ToLower(ip.Solver)
}

func (ip *AssemblyParameters) Validate() error {
	var problems []string
	if len(ip.MeshFile) == 0 {
		if ip.Dimension != 1 && ip.Dimension != 2 {
			problems = append(problems, fmt.Sprintf("Dimension must be 1 or 2, have %d", ip.Dimension))
		}
		if ip.Elements <= 0 {
			problems = append(problems, fmt.Sprintf("Elements must be positive, have %d", ip.Elements))
		}
		if !(ip.Domain[1] > ip.Domain[0]) {
			problems = append(problems, fmt.Sprintf("Domain must be increasing, have %v", ip.Domain))
		}
	}
	switch ip.Backend {
	case "cpu", "batched":
	default:
		problems = append(problems, fmt.Sprintf("Backend must be cpu or batched, have %q", ip.Backend))
	}
	switch ip.Solver {
	case "cg", "direct":
	default:
		problems = append(problems, fmt.Sprintf("Solver must be cg or direct, have %q", ip.Solver))
	}
	if ip.Workers < 0 || ip.MaxIterations < 0 || ip.Tolerance < 0 {
		problems = append(problems, "Workers, MaxIterations and Tolerance cannot be negative")
	}
	if len(ip.BCs) == 0 {
		problems = append(problems, "at least one Dirichlet boundary (BCs) is needed for a unique solution")
	}
	if len(problems) != 0 {
		return fmt.Errorf("invalid input parameters:\n\t%s", strings.Join(problems, "\n\t"))
	}
	return nil
}

// RHS lists the constant source of every right-hand side, Source first.
func (ip *AssemblyParameters) RHS() []float64 {
	return append([]float64{ip.Source}, ip.Sources...)
}

func (ip *AssemblyParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	if len(ip.MeshFile) != 0 {
		fmt.Printf("[%s]\t\t= MeshFile\n", ip.MeshFile)
	} else {
		fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
		fmt.Printf("[%d]\t\t\t\t= Elements\n", ip.Elements)
		fmt.Printf("%v\t\t\t= Domain\n", ip.Domain)
	}
	fmt.Printf("[%s]\t\t\t= Backend (%d workers)\n", ip.Backend, ip.Workers)
	fmt.Printf("[%s]\t\t\t\t= Solver\n", ip.Solver)
	fmt.Printf("%8.2e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("%v\t\t\t= Sources\n", ip.RHS())
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
}
