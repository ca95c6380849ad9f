package sparse

import (
	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// Ravel flattens the sparse dimensions into one of extent prod(SparseShape)
// using row-major ranks. The payload handle is shared with c. Row-major
// order is preserved, so a coalesced c yields a coalesced result.
func (c *COOTensor) Ravel() (*COOTensor, error) {
	keys, err := c.linearKeys()
	if err != nil {
		return nil, err
	}
	return &COOTensor{
		be:          c.be,
		indices:     []utils.Index{keys},
		values:      c.values,
		sparseShape: backend.Shape{c.sparseShape.NumElements()},
		coalesced:   c.coalesced,
	}, nil
}

// Transpose permutes the sparse dimensions: dimension i of the result is
// dimension perm[i] of c. With no perm the last two sparse dimensions are
// swapped. Index rows and the payload handle are shared with c.
func (c *COOTensor) Transpose(perm ...int) (*COOTensor, error) {
	n := c.SparseNDim()
	if len(perm) == 0 {
		if n < 2 {
			return nil, valueError("default transpose needs two sparse dimensions, have %d", n)
		}
		perm = utils.NewRange(0, n-1)
		perm[n-2], perm[n-1] = n-1, n-2
	}
	if err := checkPermutation(perm, n); err != nil {
		return nil, err
	}
	var (
		indices  = make([]utils.Index, n)
		shape    = make(backend.Shape, n)
		identity = true
	)
	for i, p := range perm {
		indices[i] = c.indices[p]
		shape[i] = c.sparseShape[p]
		identity = identity && i == p
	}
	return &COOTensor{
		be:          c.be,
		indices:     indices,
		values:      c.values,
		sparseShape: shape,
		coalesced:   c.coalesced && identity,
	}, nil
}

// T swaps the last two sparse dimensions.
func (c *COOTensor) T() (*COOTensor, error) {
	return c.Transpose()
}

func checkPermutation(perm []int, n int) error {
	if len(perm) != n {
		return valueError("permutation %v has %d entries for %d sparse dimensions", perm, len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return valueError("%v is not a permutation of %d dimensions", perm, n)
		}
		seen[p] = true
	}
	return nil
}

// InversePermutation returns q with q[perm[i]] = i, so that
// c.Transpose(perm...).Transpose(InversePermutation(perm)...) equals c.
func InversePermutation(perm []int) []int {
	q := make([]int, len(perm))
	for i, p := range perm {
		q[p] = i
	}
	return q
}

// Tril keeps the entries on or below the k-th diagonal of the last two
// sparse dimensions (col - row <= k), independently for every combination of
// leading sparse indices.
func (c *COOTensor) Tril(k int) (*COOTensor, error) {
	return c.band("tril", utils.LessOrEqual, k)
}

// Triu keeps the entries on or above the k-th diagonal (col - row >= k).
func (c *COOTensor) Triu(k int) (*COOTensor, error) {
	return c.band("triu", utils.GreaterOrEqual, k)
}

func (c *COOTensor) band(name string, op utils.EvalOp, k int) (*COOTensor, error) {
	n := c.SparseNDim()
	if n < 2 {
		return nil, valueError("%s needs at least two sparse dimensions, have %d", name, n)
	}
	var (
		offset = c.be.SubIndex(c.indices[n-1], c.indices[n-2])
		keep   = c.be.CompareScalar(op, offset, k)
	)
	return c.Mask(keep)
}
