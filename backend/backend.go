// Package backend defines the numeric capability surface the sparse engine
// computes through, together with the dense Array type it exchanges.
//
// Implementations:
//   - cpu: serial loops over Go slices
//   - batched: row ranges fanned out over worker goroutines, gonum kernels per row
//
// Arrays passed into a Backend are read only; every method returns freshly
// allocated results, except ScatterAdd and Put which write into dst.
package backend

import (
	"github.com/notargets/gocoo/utils"
)

type Backend interface {
	// Construction
	Zeros(shape Shape) *Array
	Full(shape Shape, fill float64) *Array
	Arange(n int) utils.Index

	// Stacking along the leading dimension. Trailing shapes must agree.
	Concat(a, b *Array) (*Array, error)
	ConcatIndex(a, b utils.Index) utils.Index

	// Ordering and gather
	StableArgsort(keys utils.Index) utils.Index
	Take(a *Array, rows utils.Index) *Array
	TakeIndex(src, idx utils.Index) utils.Index

	// Elementwise integer operations
	LinearKeys(cols []utils.Index, strides []int) utils.Index // sum_d cols[d][j]*strides[d]
	SubIndex(a, b utils.Index) utils.Index                    // a - b
	CompareIndex(op utils.EvalOp, a, b utils.Index) []bool    // a op b
	CompareScalar(op utils.EvalOp, a utils.Index, v int) []bool

	// Elementwise float operations
	Scale(a *Array, alpha float64) *Array
	AddScalar(a *Array, s float64) *Array
	AddScaled(a, b *Array, alpha float64) (*Array, error) // a + alpha*b, broadcasting

	// Boolean masking along the leading dimension
	Mask(a *Array, keep []bool) *Array
	MaskIndex(src utils.Index, keep []bool) utils.Index

	// Reductions and scatter
	SegmentSum(a *Array, starts utils.Index) *Array // row sums over [starts[i], starts[i+1])
	ScatterAdd(dst *Array, rows utils.Index, src *Array)
	Put(dst *Array, rows utils.Index, src *Array)
	Sum(a *Array) float64

	// Metadata
	Name() string
}

// CheckConcat validates that a and b can be stacked along the leading
// dimension and returns the result shape.
func CheckConcat(a, b *Array) (Shape, error) {
	sa, sb := a.Shape(), b.Shape()
	if len(sa) == 0 || len(sb) == 0 || !Shape(sa[1:]).Equal(sb[1:]) {
		return nil, fmtConcatError(sa, sb)
	}
	out := sa.Clone()
	out[0] += sb[0]
	return out, nil
}
