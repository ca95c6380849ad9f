package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/notargets/gocoo/utils"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	SU2Vertex   SU2ElementType = 1
	SU2Line     SU2ElementType = 3
	SU2Triangle SU2ElementType = 5
)

// ElementType maps an SU2 element code onto the mesh element it describes.
func (t SU2ElementType) ElementType() ElementType {
	switch t {
	case SU2Vertex:
		return Point
	case SU2Line:
		return Line
	case SU2Triangle:
		return Triangle
	}
	return Unknown
}

type su2Reader struct {
	*bufio.Reader
	lineNo int
}

// ReadSU2File reads a 1D line or 2D triangle mesh in SU2 format.
func ReadSU2File(filename string) (m *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open mesh file %s: %w", filename, err)
	}
	defer file.Close()
	if m, err = ReadSU2(file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

// ReadSU2 reads the NDIME, NELEM, NPOIN and NMARK sections of an SU2 mesh.
// Each marker becomes a boundary tag holding the nodes of its elements. A
// file without an NMARK section gets a single DefaultBoundary tag covering
// the exterior nodes.
func ReadSU2(r io.Reader) (m *Mesh, err error) {
	rd := &su2Reader{Reader: bufio.NewReader(r)}
	m = &Mesh{BoundaryNodes: make(map[string]utils.Index)}
	if m.Dim, err = rd.readNumber("NDIME"); err != nil {
		return nil, err
	}
	var cellType SU2ElementType
	switch m.Dim {
	case 1:
		m.Type, cellType = Line, SU2Line
	case 2:
		m.Type, cellType = Triangle, SU2Triangle
	default:
		return nil, fmt.Errorf("unsupported SU2 dimension %d", m.Dim)
	}
	if m.Cells, err = rd.readElements("NELEM", cellType); err != nil {
		return nil, err
	}
	if m.Nodes, err = rd.readVertices(m.Dim); err != nil {
		return nil, err
	}
	for k, cell := range m.Cells {
		for _, n := range cell {
			if n < 0 || n >= len(m.Nodes) {
				return nil, fmt.Errorf("cell %d references node %d of %d", k, n, len(m.Nodes))
			}
		}
	}
	if m.Type == Triangle {
		if err = m.orient(); err != nil {
			return nil, err
		}
	}
	if err = rd.readMarkers(m); err != nil {
		return nil, err
	}
	return
}

// orient makes every triangle counterclockwise.
func (m *Mesh) orient() error {
	for k, c := range m.Cells {
		a, b, d := m.Nodes[c[0]], m.Nodes[c[1]], m.Nodes[c[2]]
		det := (b[0]-a[0])*(d[1]-a[1]) - (d[0]-a[0])*(b[1]-a[1])
		if math.Abs(det) < utils.NODETOL {
			return fmt.Errorf("cell %d is degenerate", k)
		}
		if det < 0 {
			c[1], c[2] = c[2], c[1]
		}
	}
	return nil
}

func (rd *su2Reader) readElements(key string, want SU2ElementType) (cells [][]int, err error) {
	var K int
	if K, err = rd.readNumber(key); err != nil {
		return
	}
	nn := want.ElementType().GetNumNodes()
	cells = make([][]int, K)
	for k := 0; k < K; k++ {
		var fields []int
		if fields, err = rd.readInts(); err != nil {
			return
		}
		if len(fields) < 1+nn || SU2ElementType(fields[0]) != want {
			err = fmt.Errorf("line %d: expected an element of type %d with %d nodes", rd.lineNo, want, nn)
			return
		}
		cells[k] = fields[1 : 1+nn]
	}
	return
}

func (rd *su2Reader) readVertices(dim int) (X [][2]float64, err error) {
	var Nv int
	if Nv, err = rd.readNumber("NPOIN"); err != nil {
		return
	}
	X = make([][2]float64, Nv)
	for i := 0; i < Nv; i++ {
		line := rd.getLineNoComments()
		fields := strings.Fields(line)
		if len(fields) < dim {
			err = fmt.Errorf("line %d: unable to read %d coordinates from [%s]", rd.lineNo, dim, line)
			return
		}
		for d := 0; d < dim; d++ {
			if _, err = fmt.Sscanf(fields[d], "%g", &X[i][d]); err != nil {
				err = fmt.Errorf("line %d: %w", rd.lineNo, err)
				return
			}
		}
	}
	return
}

func (rd *su2Reader) readMarkers(m *Mesh) (err error) {
	var NBCs int
	if NBCs, err = rd.readNumber("NMARK"); err != nil {
		if err == io.EOF {
			// Without markers the whole exterior is one tag
			if ext := m.Exterior(); len(ext) != 0 {
				m.BoundaryNodes[DefaultBoundary] = ext
			}
			return nil
		}
		return
	}
	boundaryType := SU2Line
	if m.Dim == 1 {
		boundaryType = SU2Vertex
	}
	for n := 0; n < NBCs; n++ {
		var (
			label string
			elems [][]int
		)
		if label, err = rd.readLabel("MARKER_TAG"); err != nil {
			return
		}
		if elems, err = rd.readElements("MARKER_ELEMS", boundaryType); err != nil {
			return
		}
		// Repeated tags append to a common node set
		set := m.BoundaryNodes[label].Set()
		for _, e := range elems {
			for _, v := range e {
				if v < 0 || v >= m.NumNodes() {
					return fmt.Errorf("marker %s references node %d of %d", label, v, m.NumNodes())
				}
				if _, ok := set[v]; !ok {
					set[v] = struct{}{}
					m.BoundaryNodes[label] = append(m.BoundaryNodes[label], v)
				}
			}
		}
	}
	return
}

func (rd *su2Reader) getLine() (line string, err error) {
	line, err = rd.ReadString('\n')
	rd.lineNo++
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	return strings.TrimSpace(line), err
}

func (rd *su2Reader) getLineNoComments() (line string) {
	for {
		var err error
		if line, err = rd.getLine(); err != nil {
			return ""
		}
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

// getToken returns the value following "key=" on the next data line.
func (rd *su2Reader) getToken(key string) (token string, err error) {
	var line string
	for {
		if line, err = rd.getLine(); err != nil {
			return
		}
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			break
		}
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("line %d: badly formed input line [%s], should have an =", rd.lineNo, line)
		return
	}
	if got := strings.TrimSpace(line[:ind]); got != key {
		err = fmt.Errorf("line %d: expected %s, found %s", rd.lineNo, key, got)
		return
	}
	token = strings.TrimSpace(line[ind+1:])
	return
}

func (rd *su2Reader) readLabel(key string) (label string, err error) {
	if label, err = rd.getToken(key); err == nil && len(label) == 0 {
		err = fmt.Errorf("line %d: empty %s", rd.lineNo, key)
	}
	return
}

func (rd *su2Reader) readNumber(key string) (num int, err error) {
	var token string
	if token, err = rd.getToken(key); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("line %d: unable to read number from token: [%s]", rd.lineNo, token)
	}
	return
}

func (rd *su2Reader) readInts() (I []int, err error) {
	line := rd.getLineNoComments()
	for _, f := range strings.Fields(line) {
		var v int
		if _, err = fmt.Sscanf(f, "%d", &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", rd.lineNo, err)
		}
		I = append(I, v)
	}
	return
}
