package assembly

import (
	"fmt"
	"sort"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/sparse"
	"github.com/notargets/gocoo/utils"
)

// DirichletNodes resolves boundary tags to constrained nodes and their
// values. Tags are visited in sorted order and a node shared by two tags
// keeps the value of the first.
func (as *Assembler) DirichletNodes(bcs map[string]float64) (dofs utils.Index, g []float64, err error) {
	tags := make([]string, 0, len(bcs))
	for tag := range bcs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	seen := make(map[int]struct{})
	for _, tag := range tags {
		var nodes utils.Index
		if nodes, err = as.Mesh.Boundary(tag); err != nil {
			return
		}
		for _, n := range nodes {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			dofs = append(dofs, n)
			g = append(g, bcs[tag])
		}
	}
	return
}

// ApplyDirichlet imposes u[dofs[i]] = g[i] on A u = b. The constrained rows
// and columns of A are replaced by a unit diagonal and the known values are
// lifted into every column of b. A and b are left untouched.
func (as *Assembler) ApplyDirichlet(A, b *sparse.COOTensor, dofs utils.Index, g []float64) (A2, b2 *sparse.COOTensor, err error) {
	if len(dofs) != len(g) {
		return nil, nil, fmt.Errorf("dirichlet: %d nodes and %d values", len(dofs), len(g))
	}
	if len(dofs.Set()) != len(dofs) {
		return nil, nil, fmt.Errorf("dirichlet: repeated node in %v", dofs)
	}
	if b.SparseNDim() != 1 || A.SparseNDim() != 2 || b.SparseShape()[0] != A.SparseShape()[0] {
		return nil, nil, fmt.Errorf("dirichlet: %w: operator %v, right-hand side %v",
			sparse.ErrShapeMismatch, []int(A.Shape()), []int(b.Shape()))
	}
	if b.IsStructural() {
		return nil, nil, fmt.Errorf("dirichlet: %w: structural right-hand side", sparse.ErrValue)
	}
	var (
		be    = as.Backend
		N     = A.SparseShape()[0]
		dense = b.DenseShape()
		rs    = dense.NumElements()
		known = make(map[int]float64, len(dofs))
	)
	for i, d := range dofs {
		known[d] = g[i]
	}
	// Free rows coupled to constrained columns carry A[i, d] * g[d] across
	coupled, err := A.Select(1, dofs)
	if err != nil {
		return nil, nil, fmt.Errorf("dirichlet: %w", err)
	}
	if coupled, err = coupled.Exclude(0, dofs); err != nil {
		return nil, nil, fmt.Errorf("dirichlet: %w", err)
	}
	rows, cols, vals, err := coupled.Triplets()
	if err != nil {
		return nil, nil, fmt.Errorf("dirichlet: %w", err)
	}
	lift := make([]float64, len(rows)*rs)
	for j := range rows {
		for r := 0; r < rs; r++ {
			lift[j*rs+r] = vals[j] * known[cols[j]]
		}
	}
	L, err := sparse.New(be, []utils.Index{rows},
		backend.MustArray(backend.Shape{len(rows)}.Concat(dense), lift), backend.Shape{N})
	if err != nil {
		return nil, nil, fmt.Errorf("dirichlet: %w", err)
	}
	fixed := make([]float64, len(dofs)*rs)
	for i := range dofs {
		for r := 0; r < rs; r++ {
			fixed[i*rs+r] = g[i]
		}
	}
	G, err := sparse.New(be, []utils.Index{dofs.Copy()},
		backend.MustArray(backend.Shape{len(dofs)}.Concat(dense), fixed), backend.Shape{N})
	if err != nil {
		return nil, nil, fmt.Errorf("dirichlet: %w", err)
	}
	ones := be.Full(backend.Shape{len(dofs)}, 1)
	D, err := sparse.New(be, []utils.Index{dofs.Copy(), dofs.Copy()}, ones, backend.Shape{N, N})
	if err != nil {
		return nil, nil, fmt.Errorf("dirichlet: %w", err)
	}

	if A2, err = chain(A,
		func(t *sparse.COOTensor) (*sparse.COOTensor, error) { return t.Exclude(0, dofs) },
		func(t *sparse.COOTensor) (*sparse.COOTensor, error) { return t.Exclude(1, dofs) },
		func(t *sparse.COOTensor) (*sparse.COOTensor, error) { return t.AddCOO(D, 1) },
		(*sparse.COOTensor).Coalesce,
	); err != nil {
		return nil, nil, fmt.Errorf("dirichlet: operator: %w", err)
	}
	if b2, err = chain(b,
		func(t *sparse.COOTensor) (*sparse.COOTensor, error) { return t.Exclude(0, dofs) },
		func(t *sparse.COOTensor) (*sparse.COOTensor, error) { return t.AddCOO(L, -1) },
		func(t *sparse.COOTensor) (*sparse.COOTensor, error) { return t.AddCOO(G, 1) },
		(*sparse.COOTensor).Coalesce,
	); err != nil {
		return nil, nil, fmt.Errorf("dirichlet: right-hand side: %w", err)
	}
	as.Logger.Debug("applied dirichlet conditions", "nodes", len(dofs), "nnz", A2.NNZ())
	return
}

func chain(t *sparse.COOTensor, steps ...func(*sparse.COOTensor) (*sparse.COOTensor, error)) (r *sparse.COOTensor, err error) {
	r = t
	for _, step := range steps {
		if r, err = step(r); err != nil {
			return nil, err
		}
	}
	return
}

// Poisson assembles -∇²u = f for each source f with the Dirichlet
// conditions bcs applied.
func (as *Assembler) Poisson(bcs map[string]float64, f ...func(x, y float64) float64) (A, b *sparse.COOTensor, err error) {
	var (
		dofs utils.Index
		g    []float64
	)
	if A, err = as.Stiffness(); err != nil {
		return
	}
	if b, err = as.Load(f...); err != nil {
		return
	}
	if dofs, g, err = as.DirichletNodes(bcs); err != nil {
		return
	}
	return as.ApplyDirichlet(A, b, dofs, g)
}
