package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gocoo/utils"
)

var squareSU2 = ` %Two triangles covering the unit square
% Comments can appear outside of data areas
NDIME= 2
NELEM= 2
5 0 1 2 0
5 0 3 2 1
NPOIN= 4
0. 0. 0
1. 0. 1
1. 1. 2
0. 1. 3
NMARK= 3
MARKER_TAG= bottom
MARKER_ELEMS= 1
3 0 1
MARKER_TAG= top
MARKER_ELEMS= 1
3 2 3
MARKER_TAG= bottom
MARKER_ELEMS= 1
3 1 2
`

func TestReadSU2(t *testing.T) {
	m, err := ReadSU2(strings.NewReader(squareSU2))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	assert.Equal(t, Triangle, m.Type)
	assert.Equal(t, 4, m.NumNodes())
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, [2]float64{1, 1}, m.Nodes[2])
	assert.Equal(t, []int{0, 1, 2}, m.Cells[0])
	// clockwise input is reoriented
	assert.Equal(t, []int{0, 2, 3}, m.Cells[1])
	assert.Equal(t, utils.Index{0, 1, 2}, m.BoundaryNodes["bottom"])
	assert.Equal(t, utils.Index{2, 3}, m.BoundaryNodes["top"])
}

func TestReadSU2Line(t *testing.T) {
	input := `NDIME= 1
NELEM= 2
3 0 1
3 1 2
NPOIN= 3
0.
0.5
1.
NMARK= 2
MARKER_TAG= left
MARKER_ELEMS= 1
1 0
MARKER_TAG= right
MARKER_ELEMS= 1
1 2
`
	file := filepath.Join(t.TempDir(), "line.su2")
	require.NoError(t, os.WriteFile(file, []byte(input), 0o644))
	m, err := ReadSU2File(file)
	require.NoError(t, err)
	assert.Equal(t, Line, m.Type)
	assert.Equal(t, [][2]float64{{0, 0}, {0.5, 0}, {1, 0}}, m.Nodes)
	assert.Equal(t, utils.Index{2}, m.BoundaryNodes["right"])

	// Without markers the exterior becomes the default tag
	m, err = ReadSU2(strings.NewReader(input[:strings.Index(input, "NMARK")]))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultBoundary}, m.Tags())
	assert.Equal(t, utils.Index{0, 2}, m.BoundaryNodes[DefaultBoundary])

	m, err = ReadSU2(strings.NewReader(squareSU2[:strings.Index(squareSU2, "NMARK")]))
	require.NoError(t, err)
	assert.Equal(t, utils.Index{0, 1, 2, 3}, m.BoundaryNodes[DefaultBoundary])
}

func TestReadSU2Errors(t *testing.T) {
	for name, input := range map[string]string{
		"dimension":    "NDIME= 3\n",
		"missing =":    "NDIME 2\n",
		"wrong key":    "NELEM= 2\n",
		"element type": strings.Replace(squareSU2, "5 0 1 2 0", "9 0 1 2 3 0", 1),
		"node range":   strings.Replace(squareSU2, "5 0 1 2 0", "5 0 1 7 0", 1),
		"marker range": strings.Replace(squareSU2, "3 2 3", "3 2 9", 1),
		"coordinates":  strings.Replace(squareSU2, "1. 1. 2", "x", 1),
		"degenerate":   strings.Replace(squareSU2, "1. 1. 2", "0.5 0. 2", 1),
	} {
		_, err := ReadSU2(strings.NewReader(input))
		assert.Error(t, err, name)
	}
	_, err := ReadSU2File(filepath.Join(t.TempDir(), "missing.su2"))
	assert.Error(t, err)
}
