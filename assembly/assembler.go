// Package assembly produces P1 finite element operators as coordinate
// tensors. Each cell contributes its own small tensor; contributions are
// concatenated with sparse.Sum and summed by Coalesce.
package assembly

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/mesh"
	"github.com/notargets/gocoo/sparse"
	"github.com/notargets/gocoo/utils"
)

type Assembler struct {
	Backend backend.Backend
	Mesh    *mesh.Mesh
	Logger  *slog.Logger
	Workers int // goroutines building cell contributions
}

type Option func(*Assembler)

func WithLogger(logger *slog.Logger) Option {
	return func(as *Assembler) { as.Logger = logger }
}

func WithWorkers(workers int) Option {
	return func(as *Assembler) { as.Workers = workers }
}

func NewAssembler(be backend.Backend, m *mesh.Mesh, opts ...Option) (as *Assembler, err error) {
	if be == nil {
		return nil, fmt.Errorf("assembler needs a backend")
	}
	if m == nil || m.NumCells() == 0 {
		return nil, fmt.Errorf("assembler needs a mesh with at least one cell")
	}
	if d := m.Type.GetDimension(); d != m.Dim {
		return nil, fmt.Errorf("%s cells have dimension %d, mesh is %dD", m.Type, d, m.Dim)
	}
	nn := m.Type.GetNumNodes()
	for k, c := range m.Cells {
		if len(c) != nn {
			return nil, fmt.Errorf("cell %d has %d nodes, a %s has %d", k, len(c), m.Type, nn)
		}
	}
	as = &Assembler{
		Backend: be,
		Mesh:    m,
		Logger:  slog.Default(),
		Workers: 1,
	}
	for _, opt := range opts {
		opt(as)
	}
	return
}

type localMatrix func(X [][2]float64) ([]float64, error)

// Stiffness assembles the discrete Laplacian, ∫ ∇φi·∇φj.
func (as *Assembler) Stiffness() (*sparse.COOTensor, error) {
	switch as.Mesh.Type {
	case mesh.Line:
		return as.matrix("stiffness", lineStiffness)
	case mesh.Triangle:
		return as.matrix("stiffness", triangleStiffness)
	}
	return nil, fmt.Errorf("stiffness: unsupported element type %s", as.Mesh.Type)
}

// Mass assembles the consistent mass matrix, ∫ φi φj.
func (as *Assembler) Mass() (*sparse.COOTensor, error) {
	switch as.Mesh.Type {
	case mesh.Line:
		return as.matrix("mass", lineMass)
	case mesh.Triangle:
		return as.matrix("mass", triangleMass)
	}
	return nil, fmt.Errorf("mass: unsupported element type %s", as.Mesh.Type)
}

func (as *Assembler) matrix(name string, local localMatrix) (A *sparse.COOTensor, err error) {
	var (
		m     = as.Mesh
		N     = m.NumNodes()
		start = time.Now()
	)
	cell := func(k int) (*sparse.COOTensor, error) {
		nodes := m.Cells[k]
		vals, err := local(m.CellNodes(k))
		if err != nil {
			return nil, fmt.Errorf("%s: cell %d: %w", name, k, err)
		}
		nn := len(nodes)
		rows, cols := utils.NewIndex(nn*nn), utils.NewIndex(nn*nn)
		for i := 0; i < nn; i++ {
			for j := 0; j < nn; j++ {
				rows[i*nn+j], cols[i*nn+j] = nodes[i], nodes[j]
			}
		}
		return sparse.New(as.Backend, []utils.Index{rows, cols}, backend.Vector(vals...), backend.Shape{N, N})
	}
	var raw *sparse.COOTensor
	if raw, err = as.reduce(cell); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if A, err = raw.Coalesce(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	as.Logger.Debug("assembled matrix", "operator", name, "backend", as.Backend.Name(),
		"cells", m.NumCells(), "nnz_raw", raw.NNZ(), "nnz", A.NNZ(), "elapsed", time.Since(start))
	return
}

// reduce builds one tensor per cell and concatenates them in cell order.
// Cells are split into contiguous buckets that are summed concurrently.
func (as *Assembler) reduce(cell func(k int) (*sparse.COOTensor, error)) (*sparse.COOTensor, error) {
	var (
		pm    = utils.NewPartitionMap(as.Workers, as.Mesh.NumCells())
		parts = make([]*sparse.COOTensor, pm.ParallelDegree)
		errs  = make([]error, pm.ParallelDegree)
		wg    sync.WaitGroup
	)
	pm.ForEach(func(bn, kMin, kMax int) {
		wg.Add(1)
		go func(bn, kMin, kMax int) {
			defer wg.Done()
			contribs := make([]*sparse.COOTensor, 0, pm.GetBucketDimension(bn))
			for k := kMin; k < kMax; k++ {
				c, err := cell(k)
				if err != nil {
					errs[bn] = err
					return
				}
				contribs = append(contribs, c)
			}
			parts[bn], errs[bn] = sparse.Sum(contribs...)
		}(bn, kMin, kMax)
	})
	wg.Wait()
	var nonEmpty []*sparse.COOTensor
	for bn, err := range errs {
		if err != nil {
			return nil, err
		}
		if parts[bn] != nil {
			nonEmpty = append(nonEmpty, parts[bn])
		}
	}
	return sparse.Sum(nonEmpty...)
}

// Load assembles one right-hand side per source function with one-point
// quadrature at the cell centroid, shared equally among the cell's nodes.
// The result has one sparse dimension over the nodes and a dense trailing
// dimension of length len(f).
func (as *Assembler) Load(f ...func(x, y float64) float64) (b *sparse.COOTensor, err error) {
	if len(f) == 0 {
		return nil, fmt.Errorf("load: no source functions")
	}
	var (
		m     = as.Mesh
		nrhs  = len(f)
		start = time.Now()
	)
	cell := func(k int) (*sparse.COOTensor, error) {
		var (
			nodes = m.Cells[k]
			X     = m.CellNodes(k)
			nn    = len(nodes)
		)
		vol, err := measure(X)
		if err != nil {
			return nil, fmt.Errorf("load: cell %d: %w", k, err)
		}
		x, y := centroid(X)
		vals := make([]float64, nn*nrhs)
		for r, fr := range f {
			share := fr(x, y) * vol / float64(nn)
			for i := 0; i < nn; i++ {
				vals[i*nrhs+r] = share
			}
		}
		return sparse.New(as.Backend, []utils.Index{utils.Index(nodes).Copy()},
			backend.MustArray(backend.Shape{nn, nrhs}, vals), backend.Shape{m.NumNodes()})
	}
	var raw *sparse.COOTensor
	if raw, err = as.reduce(cell); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if b, err = raw.Coalesce(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	as.Logger.Debug("assembled load", "rhs", nrhs, "nnz_raw", raw.NNZ(), "nnz", b.NNZ(),
		"elapsed", time.Since(start))
	return
}

// Constant returns a source function with the value v everywhere.
func Constant(v float64) func(x, y float64) float64 {
	return func(x, y float64) float64 { return v }
}
