// Package cpu implements the plain in-memory backend: every operation is a
// serial loop over Go slices.
package cpu

import (
	"fmt"
	"sort"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// CPUBackend implements backend.Backend with serial loops.
type CPUBackend struct{}

func New() *CPUBackend {
	return &CPUBackend{}
}

func (cpu *CPUBackend) Name() string {
	return "CPU"
}

func (cpu *CPUBackend) Zeros(shape backend.Shape) *backend.Array {
	return backend.AllocLike(shape)
}

func (cpu *CPUBackend) Full(shape backend.Shape, fill float64) *backend.Array {
	a := backend.AllocLike(shape)
	if fill != 0 {
		data := a.Data()
		for i := range data {
			data[i] = fill
		}
	}
	return a
}

func (cpu *CPUBackend) Arange(n int) utils.Index {
	return utils.NewRange(0, n-1)
}

func (cpu *CPUBackend) Concat(a, b *backend.Array) (*backend.Array, error) {
	shape, err := backend.CheckConcat(a, b)
	if err != nil {
		return nil, err
	}
	out := backend.AllocLike(shape)
	copy(out.Data(), a.Data())
	copy(out.Data()[a.Len():], b.Data())
	return out, nil
}

func (cpu *CPUBackend) ConcatIndex(a, b utils.Index) utils.Index {
	return a.Concat(b)
}

func (cpu *CPUBackend) StableArgsort(keys utils.Index) utils.Index {
	perm := cpu.Arange(len(keys))
	sort.SliceStable(perm, func(i, j int) bool {
		return keys[perm[i]] < keys[perm[j]]
	})
	return perm
}

func (cpu *CPUBackend) Take(a *backend.Array, rows utils.Index) *backend.Array {
	out := backend.AllocLike(backend.RowShape(a, len(rows)))
	for i, r := range rows {
		copy(out.Row(i), a.Row(r))
	}
	return out
}

func (cpu *CPUBackend) TakeIndex(src, idx utils.Index) utils.Index {
	return src.Subset(idx)
}

func (cpu *CPUBackend) LinearKeys(cols []utils.Index, strides []int) utils.Index {
	if len(cols) != len(strides) {
		panic(fmt.Sprintf("linear keys: %d coordinate rows for %d strides", len(cols), len(strides)))
	}
	if len(cols) == 0 {
		return utils.Index{}
	}
	keys := utils.NewIndex(len(cols[0]))
	for d, row := range cols {
		stride := strides[d]
		for j, v := range row {
			keys[j] += v * stride
		}
	}
	return keys
}

func (cpu *CPUBackend) SubIndex(a, b utils.Index) utils.Index {
	checkLen(len(a), len(b))
	r := utils.NewIndex(len(a))
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return r
}

func (cpu *CPUBackend) CompareIndex(op utils.EvalOp, a, b utils.Index) []bool {
	checkLen(len(a), len(b))
	r := make([]bool, len(a))
	for i := range a {
		r[i] = op.Eval(a[i], b[i])
	}
	return r
}

func (cpu *CPUBackend) CompareScalar(op utils.EvalOp, a utils.Index, v int) []bool {
	r := make([]bool, len(a))
	for i := range a {
		r[i] = op.Eval(a[i], v)
	}
	return r
}

func (cpu *CPUBackend) Scale(a *backend.Array, alpha float64) *backend.Array {
	out := backend.AllocLike(a.Shape())
	od := out.Data()
	for i, v := range a.Data() {
		od[i] = alpha * v
	}
	return out
}

func (cpu *CPUBackend) AddScalar(a *backend.Array, s float64) *backend.Array {
	out := backend.AllocLike(a.Shape())
	od := out.Data()
	for i, v := range a.Data() {
		od[i] = v + s
	}
	return out
}

func (cpu *CPUBackend) AddScaled(a, b *backend.Array, alpha float64) (*backend.Array, error) {
	outShape, err := backend.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	out := backend.AllocLike(outShape)
	var (
		od       = out.Data()
		ad, bd   = a.Data(), b.Data()
		aStrides = backend.BroadcastStrides(a.Shape(), outShape)
		bStrides = backend.BroadcastStrides(b.Shape(), outShape)
		oStrides = outShape.Strides()
	)
	for i := range od {
		var ia, ib int
		rem := i
		for d, os := range oStrides {
			c := rem / os
			rem -= c * os
			ia += c * aStrides[d]
			ib += c * bStrides[d]
		}
		od[i] = ad[ia] + alpha*bd[ib]
	}
	return out, nil
}

func (cpu *CPUBackend) Mask(a *backend.Array, keep []bool) *backend.Array {
	checkLen(a.Rows(), len(keep))
	return cpu.Take(a, trueIndex(keep))
}

func (cpu *CPUBackend) MaskIndex(src utils.Index, keep []bool) utils.Index {
	checkLen(len(src), len(keep))
	return src.Subset(trueIndex(keep))
}

func (cpu *CPUBackend) SegmentSum(a *backend.Array, starts utils.Index) *backend.Array {
	var (
		n   = len(starts)
		out = backend.AllocLike(backend.RowShape(a, n))
	)
	for s := 0; s < n; s++ {
		end := a.Rows()
		if s+1 < n {
			end = starts[s+1]
		}
		dst := out.Row(s)
		for r := starts[s]; r < end; r++ {
			for i, v := range a.Row(r) {
				dst[i] += v
			}
		}
	}
	return out
}

func (cpu *CPUBackend) ScatterAdd(dst *backend.Array, rows utils.Index, src *backend.Array) {
	checkLen(len(rows), src.Rows())
	for i, r := range rows {
		d := dst.Row(r)
		for k, v := range src.Row(i) {
			d[k] += v
		}
	}
}

func (cpu *CPUBackend) Put(dst *backend.Array, rows utils.Index, src *backend.Array) {
	checkLen(len(rows), src.Rows())
	for i, r := range rows {
		copy(dst.Row(r), src.Row(i))
	}
}

func (cpu *CPUBackend) Sum(a *backend.Array) (s float64) {
	for _, v := range a.Data() {
		s += v
	}
	return
}

func trueIndex(keep []bool) (I utils.Index) {
	I = make(utils.Index, 0, len(keep))
	for i, k := range keep {
		if k {
			I = append(I, i)
		}
	}
	return
}

func checkLen(a, b int) {
	if a != b {
		panic(fmt.Sprintf("length mismatch: %d != %d", a, b))
	}
}
