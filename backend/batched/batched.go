// Package batched implements an accelerated backend. Work is split into
// contiguous row ranges with utils.PartitionMap and each range runs on its
// own goroutine; per-row arithmetic goes through gonum's floats and blas64
// kernels. Gathers, scatters and segment sums visit their inputs in the same
// order as the cpu backend; only Sum reassociates across partitions.
package batched

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// MinGrain is the smallest number of items handed to one worker.
const MinGrain = 4096

type BatchedBackend struct {
	ParallelDegree int
	Grain          int
}

// New returns a backend using up to workers goroutines; workers <= 0 means GOMAXPROCS.
func New(workers int) *BatchedBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &BatchedBackend{
		ParallelDegree: workers,
		Grain:          MinGrain,
	}
}

func (b *BatchedBackend) Name() string {
	return fmt.Sprintf("Batched(%d)", b.ParallelDegree)
}

func (b *BatchedBackend) partitions(n int) *utils.PartitionMap {
	var (
		grain = b.Grain
		np    = b.ParallelDegree
	)
	if grain < 1 {
		grain = 1
	}
	if maxNP := (n + grain - 1) / grain; maxNP < np {
		np = maxNP
	}
	return utils.NewPartitionMap(np, n)
}

// parallel runs f over [0, n) split into buckets, one goroutine per bucket
func (b *BatchedBackend) parallel(n int, f func(kMin, kMax int)) {
	var (
		pm = b.partitions(n)
		wg = sync.WaitGroup{}
	)
	if pm.ParallelDegree == 1 {
		if n > 0 {
			f(0, n)
		}
		return
	}
	pm.ForEach(func(bn, kMin, kMax int) {
		wg.Add(1)
		go func(kMin, kMax int) {
			f(kMin, kMax)
			wg.Done()
		}(kMin, kMax)
	})
	wg.Wait()
}

func (b *BatchedBackend) Zeros(shape backend.Shape) *backend.Array {
	return backend.AllocLike(shape)
}

func (b *BatchedBackend) Full(shape backend.Shape, fill float64) *backend.Array {
	a := backend.AllocLike(shape)
	if fill != 0 {
		data := a.Data()
		b.parallel(len(data), func(kMin, kMax int) {
			floats.AddConst(fill, data[kMin:kMax])
		})
	}
	return a
}

func (b *BatchedBackend) Arange(n int) utils.Index {
	r := utils.NewIndex(n)
	b.parallel(n, func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			r[i] = i
		}
	})
	return r
}

func (b *BatchedBackend) Concat(x, y *backend.Array) (*backend.Array, error) {
	shape, err := backend.CheckConcat(x, y)
	if err != nil {
		return nil, err
	}
	out := backend.AllocLike(shape)
	copy(out.Data(), x.Data())
	copy(out.Data()[x.Len():], y.Data())
	return out, nil
}

func (b *BatchedBackend) ConcatIndex(x, y utils.Index) utils.Index {
	return x.Concat(y)
}

// StableArgsort sorts each partition stably in parallel, then merges the
// runs pairwise, preferring the lower run on ties to keep stability.
func (b *BatchedBackend) StableArgsort(keys utils.Index) utils.Index {
	var (
		n    = len(keys)
		perm = b.Arange(n)
		pm   = b.partitions(n)
		runs [][2]int
		wg   = sync.WaitGroup{}
	)
	pm.ForEach(func(bn, kMin, kMax int) {
		runs = append(runs, [2]int{kMin, kMax})
		wg.Add(1)
		go func(p utils.Index) {
			sort.SliceStable(p, func(i, j int) bool {
				return keys[p[i]] < keys[p[j]]
			})
			wg.Done()
		}(perm[kMin:kMax])
	})
	wg.Wait()
	buf := utils.NewIndex(n)
	for len(runs) > 1 {
		var next [][2]int
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				copy(buf[runs[i][0]:runs[i][1]], perm[runs[i][0]:runs[i][1]])
				next = append(next, runs[i])
				continue
			}
			lo, mid, hi := runs[i][0], runs[i][1], runs[i+1][1]
			mergeRuns(buf[lo:hi], perm[lo:mid], perm[mid:hi], keys)
			next = append(next, [2]int{lo, hi})
		}
		perm, buf = buf, perm
		runs = next
	}
	return perm
}

func mergeRuns(dst, left, right, keys utils.Index) {
	var i, j, k int
	for i < len(left) && j < len(right) {
		if keys[right[j]] < keys[left[i]] {
			dst[k] = right[j]
			j++
		} else {
			dst[k] = left[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}

func (b *BatchedBackend) Take(a *backend.Array, rows utils.Index) *backend.Array {
	out := backend.AllocLike(backend.RowShape(a, len(rows)))
	b.parallel(len(rows), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			copy(out.Row(i), a.Row(rows[i]))
		}
	})
	return out
}

func (b *BatchedBackend) TakeIndex(src, idx utils.Index) utils.Index {
	r := utils.NewIndex(len(idx))
	b.parallel(len(idx), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			r[i] = src[idx[i]]
		}
	})
	return r
}

func (b *BatchedBackend) LinearKeys(cols []utils.Index, strides []int) utils.Index {
	if len(cols) != len(strides) {
		panic(fmt.Sprintf("linear keys: %d coordinate rows for %d strides", len(cols), len(strides)))
	}
	if len(cols) == 0 {
		return utils.Index{}
	}
	keys := utils.NewIndex(len(cols[0]))
	b.parallel(len(keys), func(kMin, kMax int) {
		for d, row := range cols {
			stride := strides[d]
			for j := kMin; j < kMax; j++ {
				keys[j] += row[j] * stride
			}
		}
	})
	return keys
}

func (b *BatchedBackend) SubIndex(x, y utils.Index) utils.Index {
	checkLen(len(x), len(y))
	r := utils.NewIndex(len(x))
	b.parallel(len(x), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			r[i] = x[i] - y[i]
		}
	})
	return r
}

func (b *BatchedBackend) CompareIndex(op utils.EvalOp, x, y utils.Index) []bool {
	checkLen(len(x), len(y))
	r := make([]bool, len(x))
	b.parallel(len(x), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			r[i] = op.Eval(x[i], y[i])
		}
	})
	return r
}

func (b *BatchedBackend) CompareScalar(op utils.EvalOp, x utils.Index, v int) []bool {
	r := make([]bool, len(x))
	b.parallel(len(x), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			r[i] = op.Eval(x[i], v)
		}
	})
	return r
}

func (b *BatchedBackend) Scale(a *backend.Array, alpha float64) *backend.Array {
	out := backend.AllocLike(a.Shape())
	od, ad := out.Data(), a.Data()
	b.parallel(len(ad), func(kMin, kMax int) {
		floats.ScaleTo(od[kMin:kMax], alpha, ad[kMin:kMax])
	})
	return out
}

func (b *BatchedBackend) AddScalar(a *backend.Array, s float64) *backend.Array {
	out := backend.AllocLike(a.Shape())
	od, ad := out.Data(), a.Data()
	b.parallel(len(ad), func(kMin, kMax int) {
		copy(od[kMin:kMax], ad[kMin:kMax])
		floats.AddConst(s, od[kMin:kMax])
	})
	return out
}

func (b *BatchedBackend) AddScaled(x, y *backend.Array, alpha float64) (*backend.Array, error) {
	outShape, err := backend.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return nil, err
	}
	out := backend.AllocLike(outShape)
	var (
		od     = out.Data()
		xd, yd = x.Data(), y.Data()
	)
	if x.Shape().Equal(y.Shape()) {
		b.parallel(len(od), func(kMin, kMax int) {
			floats.AddScaledTo(od[kMin:kMax], xd[kMin:kMax], alpha, yd[kMin:kMax])
		})
		return out, nil
	}
	var (
		xStrides = backend.BroadcastStrides(x.Shape(), outShape)
		yStrides = backend.BroadcastStrides(y.Shape(), outShape)
		oStrides = outShape.Strides()
	)
	b.parallel(len(od), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			var ix, iy int
			rem := i
			for d, os := range oStrides {
				c := rem / os
				rem -= c * os
				ix += c * xStrides[d]
				iy += c * yStrides[d]
			}
			od[i] = xd[ix] + alpha*yd[iy]
		}
	})
	return out, nil
}

func (b *BatchedBackend) Mask(a *backend.Array, keep []bool) *backend.Array {
	checkLen(a.Rows(), len(keep))
	return b.Take(a, trueIndex(keep))
}

func (b *BatchedBackend) MaskIndex(src utils.Index, keep []bool) utils.Index {
	checkLen(len(src), len(keep))
	return b.TakeIndex(src, trueIndex(keep))
}

func (b *BatchedBackend) SegmentSum(a *backend.Array, starts utils.Index) *backend.Array {
	var (
		n   = len(starts)
		out = backend.AllocLike(backend.RowShape(a, n))
	)
	b.parallel(n, func(kMin, kMax int) {
		for s := kMin; s < kMax; s++ {
			end := a.Rows()
			if s+1 < n {
				end = starts[s+1]
			}
			dst := out.Row(s)
			for r := starts[s]; r < end; r++ {
				floats.Add(dst, a.Row(r))
			}
		}
	})
	return out
}

// ScatterAdd partitions by destination row so no two workers write the
// same row; each worker scans rows in order, preserving summation order.
func (b *BatchedBackend) ScatterAdd(dst *backend.Array, rows utils.Index, src *backend.Array) {
	checkLen(len(rows), src.Rows())
	rs := dst.RowSize()
	b.parallel(dst.Rows(), func(kMin, kMax int) {
		for i, r := range rows {
			if r < kMin || r >= kMax {
				continue
			}
			x := blas64.Vector{N: rs, Data: src.Row(i), Inc: 1}
			y := blas64.Vector{N: rs, Data: dst.Row(r), Inc: 1}
			blas64.Axpy(1, x, y)
		}
	})
}

func (b *BatchedBackend) Put(dst *backend.Array, rows utils.Index, src *backend.Array) {
	checkLen(len(rows), src.Rows())
	b.parallel(dst.Rows(), func(kMin, kMax int) {
		for i, r := range rows {
			if r >= kMin && r < kMax {
				copy(dst.Row(r), src.Row(i))
			}
		}
	})
}

func (b *BatchedBackend) Sum(a *backend.Array) (s float64) {
	var (
		ad       = a.Data()
		pm       = b.partitions(len(ad))
		partials = make([]float64, pm.ParallelDegree)
		wg       = sync.WaitGroup{}
	)
	pm.ForEach(func(bn, kMin, kMax int) {
		wg.Add(1)
		go func(bn, kMin, kMax int) {
			partials[bn] = floats.Sum(ad[kMin:kMax])
			wg.Done()
		}(bn, kMin, kMax)
	})
	wg.Wait()
	return floats.Sum(partials)
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
