package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gocoo/InputParameters"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunAssemble1D(t *testing.T) {
	for _, be := range []string{"cpu", "batched"} {
		for _, sol := range []string{"cg", "direct"} {
			ip := &InputParameters.AssemblyParameters{
				Dimension: 1,
				Elements:  20,
				Backend:   be,
				Workers:   3,
				Solver:    sol,
				BCs:       map[string]float64{"left": 0, "right": 0},
				Source:    1,
				Sources:   []float64{0},
				Tril:      true,
			}
			ip.SetDefaults()
			require.NoError(t, ip.Validate())
			rep, err := RunAssemble(ip, quiet)
			require.NoError(t, err, "%s/%s", be, sol)
			assert.Equal(t, 21, rep.Nodes)
			assert.Equal(t, 20, rep.Cells)
			require.Len(t, rep.Solutions, 2)
			// Constrained rows are identity and the free block keeps its tridiagonal
			assert.Equal(t, 2+19+2*18, rep.NNZ)
			assert.Equal(t, 2+19+18, rep.TrilNNZ)
			for i, x := range rep.Solutions[0] {
				xi := float64(i) / 20
				assert.InDelta(t, xi*(1-xi)/2, x, 1.e-8)
			}
			for _, x := range rep.Solutions[1] {
				assert.InDelta(t, 0, x, 1.e-12)
			}
			for _, r := range rep.Residuals {
				assert.Less(t, r, 1.e-8)
			}
		}
	}
}

func TestRunAssemble2D(t *testing.T) {
	ip := &InputParameters.AssemblyParameters{
		Dimension: 2,
		Elements:  6,
		Backend:   "batched",
		BCs:       map[string]float64{"left": 1, "right": 1, "top": 1, "bottom": 1},
	}
	ip.SetDefaults()
	rep, err := RunAssemble(ip, quiet)
	require.NoError(t, err)
	assert.Equal(t, 49, rep.Nodes)
	for _, x := range rep.Solutions[0] {
		assert.InDelta(t, 1, x, 1.e-8)
	}
	assert.Zero(t, rep.TrilNNZ)
	rep.Print()
}

func TestRunAssembleMeshFile(t *testing.T) {
	su2 := `NDIME= 2
NELEM= 4
5 0 1 4 0
5 1 2 4 1
5 2 3 4 2
5 3 0 4 3
NPOIN= 5
0. 0. 0
1. 0. 1
1. 1. 2
0. 1. 3
0.5 0.5 4
NMARK= 1
MARKER_TAG= wall
MARKER_ELEMS= 4
3 0 1
3 1 2
3 2 3
3 3 0
`
	file := filepath.Join(t.TempDir(), "square.su2")
	require.NoError(t, os.WriteFile(file, []byte(su2), 0o644))
	ip := &InputParameters.AssemblyParameters{
		MeshFile: file,
		Solver:   "direct",
		BCs:      map[string]float64{"wall": 2},
	}
	ip.SetDefaults()
	require.NoError(t, ip.Validate())
	rep, err := RunAssemble(ip, quiet)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Nodes)
	assert.InDeltaSlice(t, []float64{2, 2, 2, 2, 2}, rep.Solutions[0], 1.e-12)
}

func TestRunAssembleErrors(t *testing.T) {
	ip := &InputParameters.AssemblyParameters{Dimension: 3, Elements: 2, BCs: map[string]float64{"left": 0}}
	ip.SetDefaults()
	_, err := RunAssemble(ip, quiet)
	assert.Error(t, err)

	ip = &InputParameters.AssemblyParameters{Dimension: 1, Elements: 2, BCs: map[string]float64{"top": 0}}
	ip.SetDefaults()
	_, err = RunAssemble(ip, quiet)
	assert.Error(t, err)

	_, err = NewBackend("gpu", 1)
	assert.Error(t, err)
	be, err := NewBackend("batched", 2)
	require.NoError(t, err)
	assert.Equal(t, "Batched(2)", be.Name())
}

func TestProcessInput(t *testing.T) {
	_, err := processInput("")
	assert.Error(t, err)
	_, err = processInput(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(file, []byte(InputParameters.ExampleFile), 0o644))
	ip, err := processInput(file)
	require.NoError(t, err)
	assert.Equal(t, 64, ip.Elements)
	assert.Equal(t, "batched", ip.Backend)
	require.NoError(t, ip.Validate())
}

func TestVersionCmd(t *testing.T) {
	var sb bytes.Buffer
	VersionCmd.SetOut(&sb)
	VersionCmd.Run(VersionCmd, nil)
	assert.Contains(t, sb.String(), "gocoo "+Version)
}
