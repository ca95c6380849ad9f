package sparse

import (
	"fmt"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

type COOTensor struct {
	be          backend.Backend
	indices     []utils.Index // sparse ndim rows of length nnz
	values      *Values       // nil for a structural tensor
	sparseShape backend.Shape
	coalesced   bool
}

type options struct {
	coalesced   bool
	boundsCheck bool
}

type Option func(*options)

// WithCoalesced asserts that the input columns are sorted in row-major order
// and distinct. The claim is trusted; Validate verifies it.
func WithCoalesced(coalesced bool) Option {
	return func(o *options) { o.coalesced = coalesced }
}

// WithBoundsCheck makes New validate every coordinate against the sparse
// shape. Without it bounds are checked lazily, and only by the operations
// that linearize coordinates: Coalesce, CountDuplicates, Ravel, ToDense,
// ToCSR and Validate. Transpose, Tril, Triu, Mask, Select, Exclude and Add
// never check bounds and carry bad coordinates through to their result.
func WithBoundsCheck() Option {
	return func(o *options) { o.boundsCheck = true }
}

// New builds a tensor from one index row per sparse dimension and an
// optional payload of shape (nnz, *denseShape); pass a nil payload for a
// structural tensor. New copies indices and values, so later writes by the
// caller never reach the tensor.
func New(be backend.Backend, indices []utils.Index, values *backend.Array,
	sparseShape backend.Shape, opts ...Option) (c *COOTensor, err error) {
	var (
		o options
	)
	for _, opt := range opts {
		opt(&o)
	}
	if be == nil {
		return nil, valueError("nil backend")
	}
	if len(sparseShape) == 0 {
		return nil, valueError("a coordinate tensor needs at least one sparse dimension")
	}
	if len(indices) != len(sparseShape) {
		return nil, shapeMismatch("indices have %d rows, sparse shape %v has %d dimensions",
			len(indices), []int(sparseShape), len(sparseShape))
	}
	if err = sparseShape.Validate(); err != nil {
		return nil, valueError("sparse shape: %v", err)
	}
	nnz := len(indices[0])
	owned := make([]utils.Index, len(indices))
	for d, row := range indices {
		if len(row) != nnz {
			return nil, shapeMismatch("index row %d has %d entries, row 0 has %d", d, len(row), nnz)
		}
		owned[d] = row.Copy()
	}
	c = &COOTensor{
		be:          be,
		indices:     owned,
		sparseShape: sparseShape.Clone(),
		coalesced:   o.coalesced,
	}
	if values != nil {
		if values.NDim() == 0 || values.Rows() != nnz {
			return nil, shapeMismatch("values shape %v does not lead with nnz = %d",
				[]int(values.Shape()), nnz)
		}
		c.values = newValues(values.Clone())
	}
	if o.boundsCheck {
		if err = c.checkBounds(); err != nil {
			return nil, err
		}
	}
	return
}

// derive returns a tensor sharing c's backend and sparse shape
func (c *COOTensor) derive(indices []utils.Index, values *Values, coalesced bool) *COOTensor {
	return &COOTensor{
		be:          c.be,
		indices:     indices,
		values:      values,
		sparseShape: c.sparseShape,
		coalesced:   coalesced,
	}
}

func (c *COOTensor) Backend() backend.Backend { return c.be }

// Indices returns a copy of the index matrix, one row per sparse dimension.
func (c *COOTensor) Indices() (I []utils.Index) {
	I = make([]utils.Index, len(c.indices))
	for d, row := range c.indices {
		I[d] = row.Copy()
	}
	return
}

// IndexRow returns a copy of the coordinates along sparse dimension d.
func (c *COOTensor) IndexRow(d int) utils.Index { return c.indices[d].Copy() }

// Values returns the payload handle, or nil for a structural tensor.
func (c *COOTensor) Values() *Values { return c.values }

func (c *COOTensor) IsStructural() bool { return c.values == nil }
func (c *COOTensor) IsCoalesced() bool  { return c.coalesced }
func (c *COOTensor) NNZ() int           { return len(c.indices[0]) }
func (c *COOTensor) SparseNDim() int    { return len(c.sparseShape) }
func (c *COOTensor) DenseNDim() int     { return len(c.DenseShape()) }
func (c *COOTensor) NDim() int          { return c.SparseNDim() + c.DenseNDim() }

func (c *COOTensor) SparseShape() backend.Shape { return c.sparseShape.Clone() }

func (c *COOTensor) DenseShape() backend.Shape {
	if c.values == nil {
		return backend.Shape{}
	}
	return c.values.DenseShape()
}

// Shape is the sparse shape followed by the dense shape.
func (c *COOTensor) Shape() backend.Shape {
	return c.sparseShape.Concat(c.DenseShape())
}

func (c *COOTensor) String() string {
	kind := "valued"
	if c.values == nil {
		kind = "structural"
	}
	return fmt.Sprintf("COOTensor(shape=%v, sparse_ndim=%d, nnz=%d, %s, coalesced=%v, backend=%s)",
		[]int(c.Shape()), c.SparseNDim(), c.NNZ(), kind, c.coalesced, c.be.Name())
}

// Validate checks every coordinate against the sparse shape and, for a
// tensor marked coalesced, that its keys strictly increase.
func (c *COOTensor) Validate() (err error) {
	var keys utils.Index
	if keys, err = c.linearKeys(); err != nil {
		return
	}
	if c.coalesced && c.NNZ() > 1 {
		n := len(keys)
		ok := c.be.CompareIndex(utils.Greater, keys[1:], keys[:n-1])
		for j, v := range ok {
			if !v {
				return valueError("tensor marked coalesced but entries %d and %d are out of order or equal", j, j+1)
			}
		}
	}
	return
}

// Equal reports whether c and o store the same coordinates, in the same
// order, with the same payload and shapes.
func (c *COOTensor) Equal(o *COOTensor) bool {
	if !c.sparseShape.Equal(o.sparseShape) || (c.values == nil) != (o.values == nil) {
		return false
	}
	for d := range c.indices {
		if !c.indices[d].Equal(o.indices[d]) {
			return false
		}
	}
	if c.values == nil || c.values == o.values {
		return true
	}
	if !c.values.Shape().Equal(o.values.Shape()) {
		return false
	}
	a, b := c.values.arr.Data(), o.values.arr.Data()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkBounds validates coordinates against the sparse shape
func (c *COOTensor) checkBounds() error {
	for d := range c.indices {
		if err := c.checkRowBounds(d); err != nil {
			return err
		}
	}
	return nil
}

func (c *COOTensor) checkRowBounds(d int) error {
	var (
		row    = c.indices[d]
		extent = c.sparseShape[d]
		low    = c.be.CompareScalar(utils.Less, row, 0)
		high   = c.be.CompareScalar(utils.GreaterOrEqual, row, extent)
	)
	for j := range row {
		if low[j] || high[j] {
			return valueError("entry %d: index %d out of bounds for dimension %d with extent %d",
				j, row[j], d, extent)
		}
	}
	return nil
}

// linearKeys bounds checks the coordinates and returns each entry's
// row-major rank over the sparse shape
func (c *COOTensor) linearKeys() (keys utils.Index, err error) {
	var strides []int
	if strides, _, err = c.sparseShape.CheckedStrides(); err != nil {
		return nil, valueError("%v", err)
	}
	if err = c.checkBounds(); err != nil {
		return
	}
	keys = c.be.LinearKeys(c.indices, strides)
	return
}
