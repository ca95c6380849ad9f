// Package mesh builds the small structured meshes the assembly package
// integrates over: uniform intervals in 1D and right-triangle grids in 2D.
package mesh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/gocoo/utils"
)

// DefaultBoundary tags the exterior of a mesh read without boundary markers.
const DefaultBoundary = "boundary"

type Mesh struct {
	Dim           int
	Type          ElementType
	Nodes         [][2]float64 // y is zero for 1D meshes
	Cells         [][]int      // node numbers per cell, counterclockwise for triangles
	BoundaryNodes map[string]utils.Index
}

func (m *Mesh) NumNodes() int { return len(m.Nodes) }
func (m *Mesh) NumCells() int { return len(m.Cells) }

// Tags returns the boundary tag names in sorted order.
func (m *Mesh) Tags() (tags []string) {
	for tag := range m.BoundaryNodes {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return
}

// Boundary returns the sorted union of the nodes carrying any of the tags.
func (m *Mesh) Boundary(tags ...string) (I utils.Index, err error) {
	set := make(map[int]struct{})
	for _, tag := range tags {
		nodes, ok := m.BoundaryNodes[tag]
		if !ok {
			err = fmt.Errorf("unknown boundary tag %q, have [%s]", tag, strings.Join(m.Tags(), ", "))
			return
		}
		for _, n := range nodes {
			set[n] = struct{}{}
		}
	}
	I = make(utils.Index, 0, len(set))
	for n := range set {
		I = append(I, n)
	}
	sort.Ints(I)
	return
}

// CellNodes returns the coordinates of the nodes of cell k.
func (m *Mesh) CellNodes(k int) (X [][2]float64) {
	X = make([][2]float64, len(m.Cells[k]))
	for i, n := range m.Cells[k] {
		X[i] = m.Nodes[n]
	}
	return
}

// Exterior returns the sorted nodes of the facets that belong to exactly one
// cell.
func (m *Mesh) Exterior() (I utils.Index) {
	var (
		count = make(map[[2]int]int, m.Type.GetNumFaces()*m.NumCells())
		order [][2]int
	)
	for _, c := range m.Cells {
		for _, f := range GetElementFaces(m.Type, c) {
			key := [2]int{f[0], -1}
			if len(f) == 2 {
				key = [2]int{min(f[0], f[1]), max(f[0], f[1])}
			}
			if count[key] == 0 {
				order = append(order, key)
			}
			count[key]++
		}
	}
	set := make(map[int]struct{})
	for _, key := range order {
		if count[key] != 1 {
			continue
		}
		for _, n := range key {
			if _, ok := set[n]; n >= 0 && !ok {
				set[n] = struct{}{}
				I = append(I, n)
			}
		}
	}
	sort.Ints(I)
	return
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(%s, %dD, nodes=%d, cells=%d, boundaries=[%s])",
		m.Type, m.Dim, m.NumNodes(), m.NumCells(), strings.Join(m.Tags(), ", "))
}

// Interval divides [a, b] into K equal line cells. Node 0 is tagged "left"
// and node K is tagged "right".
func Interval(a, b float64, K int) (m *Mesh, err error) {
	if K <= 0 {
		err = fmt.Errorf("interval needs a positive cell count, have %d", K)
		return
	}
	if !(b > a) {
		err = fmt.Errorf("interval needs a < b, have [%v, %v]", a, b)
		return
	}
	m = &Mesh{
		Dim:   1,
		Type:  Line,
		Nodes: make([][2]float64, K+1),
		Cells: make([][]int, K),
		BoundaryNodes: map[string]utils.Index{
			"left":  {0},
			"right": {K},
		},
	}
	h := (b - a) / float64(K)
	for i := range m.Nodes {
		m.Nodes[i][0] = a + float64(i)*h
	}
	m.Nodes[K][0] = b
	for k := range m.Cells {
		m.Cells[k] = []int{k, k + 1}
	}
	return
}

// Square divides [a, b]² into nx by ny rectangles, each split along its
// rising diagonal into two counterclockwise triangles. Nodes are numbered
// row by row from the bottom left; sides are tagged "left", "right",
// "bottom" and "top", so corner nodes carry two tags.
func Square(a, b float64, nx, ny int) (m *Mesh, err error) {
	if nx <= 0 || ny <= 0 {
		err = fmt.Errorf("square needs positive cell counts, have %d x %d", nx, ny)
		return
	}
	if !(b > a) {
		err = fmt.Errorf("square needs a < b, have [%v, %v]", a, b)
		return
	}
	var (
		hx, hy = (b - a) / float64(nx), (b - a) / float64(ny)
		node   = func(i, j int) int { return j*(nx+1) + i }
	)
	m = &Mesh{
		Dim:           2,
		Type:          Triangle,
		Nodes:         make([][2]float64, (nx+1)*(ny+1)),
		Cells:         make([][]int, 0, 2*nx*ny),
		BoundaryNodes: make(map[string]utils.Index),
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.Nodes[node(i, j)] = [2]float64{a + float64(i)*hx, a + float64(j)*hy}
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			n00, n10, n01, n11 := node(i, j), node(i+1, j), node(i, j+1), node(i+1, j+1)
			m.Cells = append(m.Cells, []int{n00, n10, n11}, []int{n00, n11, n01})
		}
	}
	for j := 0; j <= ny; j++ {
		m.BoundaryNodes["left"] = append(m.BoundaryNodes["left"], node(0, j))
		m.BoundaryNodes["right"] = append(m.BoundaryNodes["right"], node(nx, j))
	}
	m.BoundaryNodes["bottom"] = utils.NewRange(node(0, 0), node(nx, 0))
	m.BoundaryNodes["top"] = m.BoundaryNodes["bottom"].Add(node(0, ny))
	return
}

// UnitSquare is Square over [0, 1]².
func UnitSquare(nx, ny int) (*Mesh, error) {
	return Square(0, 1, nx, ny)
}

// New builds an interval for dim 1 and a square with K cells per side for
// dim 2.
func New(dim int, domain [2]float64, K int) (*Mesh, error) {
	switch dim {
	case 1:
		return Interval(domain[0], domain[1], K)
	case 2:
		return Square(domain[0], domain[1], K, K)
	}
	return nil, fmt.Errorf("unsupported mesh dimension %d", dim)
}
