package sparse

import (
	"github.com/notargets/gocoo/backend"
)

// ToDense materializes c as a dense array of shape Shape(). Coordinates
// with no stored entry get fill. Stored coordinates get the sum of all
// entries mapping there, coalesced or not. A structural tensor writes 0 at
// its stored coordinates: presence marks a known zero, absence gets fill.
func (c *COOTensor) ToDense(fill float64) (*backend.Array, error) {
	keys, err := c.linearKeys()
	if err != nil {
		return nil, err
	}
	var (
		be    = c.be
		shape = backend.Shape{c.sparseShape.NumElements()}.Concat(c.DenseShape())
		acc   = be.Zeros(shape)
		out   = be.Full(shape, fill)
	)
	if c.values != nil {
		be.ScatterAdd(acc, keys, c.values.arr)
	}
	be.Put(out, keys, be.Take(acc, keys))
	return out.Reshape(c.Shape())
}
