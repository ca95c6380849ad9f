package sparse

import (
	"math"

	jsparse "github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// Triplets returns the raw (row, col, value) lists of a valued matrix,
// duplicates included, in storage order.
func (c *COOTensor) Triplets() (rows, cols []int, vals []float64, err error) {
	if err = c.checkMatrix(true); err != nil {
		return
	}
	rows, cols = c.indices[0].Copy(), c.indices[1].Copy()
	vals = c.values.Flat()
	return
}

// ToCSR coalesces a valued matrix and converts it to a CSR matrix for an
// external solver.
func (c *COOTensor) ToCSR() (*jsparse.CSR, error) {
	if err := c.checkMatrix(true); err != nil {
		return nil, err
	}
	cc, err := c.Coalesce()
	if err != nil {
		return nil, err
	}
	rows, cols, vals, _ := cc.Triplets()
	coo := jsparse.NewCOO(c.sparseShape[0], c.sparseShape[1], rows, cols, vals)
	return coo.ToCSR(), nil
}

// ToMatDense densifies a matrix (valued or structural) into a gonum Dense.
func (c *COOTensor) ToMatDense(fill float64) (*mat.Dense, error) {
	if err := c.checkMatrix(false); err != nil {
		return nil, err
	}
	d, err := c.ToDense(fill)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(c.sparseShape[0], c.sparseShape[1], d.Data()), nil
}

func (c *COOTensor) checkMatrix(valued bool) error {
	if c.SparseNDim() != 2 || c.DenseNDim() != 0 {
		return valueError("need a matrix with two sparse and no dense dimensions, have shape %v with %d sparse",
			[]int(c.Shape()), c.SparseNDim())
	}
	if valued && c.values == nil {
		return valueError("need a valued matrix, have a structural one")
	}
	return nil
}

type nonZeroDoer interface {
	DoNonZero(fn func(i, j int, v float64))
}

// FromMatrix builds a coalesced valued tensor from any gonum matrix, keeping
// entries with |v| > tol. Sparse matrices that can enumerate their non-zeros
// (james-bowman CSR, CSC, COO, DOK) are read without scanning every position.
func FromMatrix(be backend.Backend, m mat.Matrix, tol float64) (*COOTensor, error) {
	var (
		nr, nc     = m.Dims()
		rows, cols utils.Index
		vals       []float64
	)
	keep := func(i, j int, v float64) {
		if math.Abs(v) > tol {
			rows = append(rows, i)
			cols = append(cols, j)
			vals = append(vals, v)
		}
	}
	if nz, ok := m.(nonZeroDoer); ok {
		nz.DoNonZero(keep)
		t, err := New(be, []utils.Index{rows, cols}, backend.Vector(vals...), backend.Shape{nr, nc})
		if err != nil {
			return nil, err
		}
		return t.Coalesce()
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			keep(i, j, m.At(i, j))
		}
	}
	return New(be, []utils.Index{rows, cols}, backend.Vector(vals...), backend.Shape{nr, nc},
		WithCoalesced(true))
}
