package sparse

import (
	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// Mask keeps entry j when keep[j] is true. If every entry is kept the
// result shares c's index rows and payload handle.
func (c *COOTensor) Mask(keep []bool) (*COOTensor, error) {
	if len(keep) != c.NNZ() {
		return nil, shapeMismatch("mask has %d entries for nnz = %d", len(keep), c.NNZ())
	}
	all := true
	for _, k := range keep {
		if !k {
			all = false
			break
		}
	}
	if all {
		return c.derive(c.indices, c.values, c.coalesced), nil
	}
	indices := make([]utils.Index, len(c.indices))
	for d, row := range c.indices {
		indices[d] = c.be.MaskIndex(row, keep)
	}
	var values *Values
	if c.values != nil {
		values = newValues(c.be.Mask(c.values.arr, keep))
	}
	return c.derive(indices, values, c.coalesced), nil
}

// Select keeps the entries whose coordinate along sparse dimension dim is in
// set, e.g. the rows of boundary degrees of freedom.
func (c *COOTensor) Select(dim int, set utils.Index) (*COOTensor, error) {
	return c.filter(dim, set, true)
}

// Exclude drops the entries whose coordinate along dim is in set.
func (c *COOTensor) Exclude(dim int, set utils.Index) (*COOTensor, error) {
	return c.filter(dim, set, false)
}

func (c *COOTensor) filter(dim int, set utils.Index, inSet bool) (*COOTensor, error) {
	if dim < 0 || dim >= c.SparseNDim() {
		return nil, valueError("dimension %d out of range for %d sparse dimensions", dim, c.SparseNDim())
	}
	extent := c.sparseShape[dim]
	for _, s := range set {
		if s < 0 || s >= extent {
			return nil, valueError("selection index %d out of bounds for dimension %d with extent %d", s, dim, extent)
		}
	}
	if err := c.checkRowBounds(dim); err != nil {
		return nil, err
	}
	var (
		be    = c.be
		marks = be.Zeros(backend.Shape{extent})
	)
	be.Put(marks, set, be.Full(backend.Shape{len(set)}, 1))
	hit := be.Take(marks, c.indices[dim]).Data()
	keep := make([]bool, len(hit))
	for j, h := range hit {
		keep[j] = (h != 0) == inSet
	}
	return c.Mask(keep)
}
