package backend

import (
	"fmt"
	"math"
	"math/bits"
)

// Shape represents the dimensions of an array.
type Shape []int

// NumElements returns the total number of elements; a scalar (empty) shape has one.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every extent is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Concat returns s followed by other.
func (s Shape) Concat(other Shape) Shape {
	out := make(Shape, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// Strides returns row-major strides: stride[i] is the product of all extents after i.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// CheckedStrides is Strides with overflow detection: it fails when the
// product of the extents does not fit in an int.
func (s Shape) CheckedStrides() (strides []int, size int, err error) {
	strides = make([]int, len(s))
	acc := uint64(1)
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = int(acc)
		hi, lo := bits.Mul64(acc, uint64(s[i]))
		if hi != 0 || lo > math.MaxInt {
			err = fmt.Errorf("shape %v has more than %d linear positions", []int(s), math.MaxInt)
			return
		}
		acc = lo
	}
	size = int(acc)
	return
}

// Ravel maps an in-bounds multi-index to its row-major linear position.
func (s Shape) Ravel(idx ...int) (key int) {
	if len(idx) != len(s) {
		panic(fmt.Sprintf("ravel: got %d coordinates for %d dimensions", len(idx), len(s)))
	}
	for d, stride := range s.Strides() {
		key += idx[d] * stride
	}
	return
}

// Unravel is the inverse of Ravel.
func (s Shape) Unravel(key int) (idx []int) {
	idx = make([]int, len(s))
	for d, stride := range s.Strides() {
		idx[d] = key / stride
		key -= idx[d] * stride
	}
	return
}

// BroadcastShapes computes the NumPy broadcast of a and b.
func BroadcastShapes(a, b Shape) (out Shape, err error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out = make(Shape, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if j := len(a) - n + i; j >= 0 {
			da = a[j]
		}
		if j := len(b) - n + i; j >= 0 {
			db = b[j]
		}
		switch {
		case da == db, db == 1:
			out[i] = da
		case da == 1:
			out[i] = db
		default:
			return nil, fmt.Errorf("shapes %v and %v are not broadcast compatible", []int(a), []int(b))
		}
	}
	return
}

// BroadcastStrides returns strides that read an array of shape in as if it
// had shape out; broadcast dimensions get stride 0.
func BroadcastStrides(in, out Shape) []int {
	var (
		strides = make([]int, len(out))
		offset  = len(out) - len(in)
		orig    = in.Strides()
	)
	for i := range out {
		j := i - offset
		switch {
		case j < 0, in[j] == 1:
			strides[i] = 0
		default:
			strides[i] = orig[j]
		}
	}
	return strides
}
