package sparse

import (
	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// Coalesce returns the canonical form of c: entries sorted by row-major
// rank over the sparse shape, one entry per distinct coordinate. Payloads of
// duplicate coordinates are summed elementwise over the dense shape. A
// structural tensor keeps presence only: a coordinate stored three times
// becomes one structural entry (see CountDuplicates for multiplicities).
// A tensor already marked coalesced is returned unchanged.
func (c *COOTensor) Coalesce() (*COOTensor, error) {
	if c.coalesced {
		return c, nil
	}
	keys, err := c.linearKeys()
	if err != nil {
		return nil, err
	}
	var (
		be     = c.be
		perm   = be.StableArgsort(keys)
		starts = runStarts(be, be.TakeIndex(keys, perm))
		heads  = be.TakeIndex(perm, starts) // input position of each run's first entry
	)
	indices := make([]utils.Index, len(c.indices))
	for d, row := range c.indices {
		indices[d] = be.TakeIndex(row, heads)
	}
	var values *Values
	if c.values != nil {
		values = newValues(be.SegmentSum(be.Take(c.values.arr, perm), starts))
	}
	return c.derive(indices, values, true), nil
}

// CountDuplicates coalesces c and replaces every payload with the number
// of times its coordinate occurs in c. The result is always valued with an
// empty dense shape.
func (c *COOTensor) CountDuplicates() (*COOTensor, error) {
	ones := c.be.Full(backend.Shape{c.NNZ()}, 1)
	counted := c.derive(c.indices, newValues(ones), false)
	return counted.Coalesce()
}

// runStarts returns the positions in sorted where a new key begins
func runStarts(be backend.Backend, sorted utils.Index) utils.Index {
	n := len(sorted)
	if n == 0 {
		return utils.Index{}
	}
	var (
		fresh = be.CompareIndex(utils.Greater, sorted[1:], sorted[:n-1])
		heads = be.MaskIndex(be.Arange(n)[1:], fresh)
	)
	return be.ConcatIndex(utils.Index{0}, heads)
}
