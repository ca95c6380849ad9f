package backend

import (
	"fmt"
)

// Array is a dense, row-major float64 array. Backends allocate and return
// Arrays; they never modify an Array they did not allocate for the call.
type Array struct {
	shape Shape
	data  []float64
}

// NewArray wraps data (not copied) with the given shape. Zero extents are
// allowed so that empty coordinate lists have empty payloads.
func NewArray(shape Shape, data []float64) (*Array, error) {
	for i, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	if n := shape.NumElements(); n != len(data) {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", len(data), []int(shape), n)
	}
	return &Array{shape: shape.Clone(), data: data}, nil
}

// MustArray is NewArray that panics on error, for literals in tests and examples.
func MustArray(shape Shape, data []float64) *Array {
	a, err := NewArray(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Vector wraps data as a one dimensional array.
func Vector(data ...float64) *Array {
	return &Array{shape: Shape{len(data)}, data: data}
}

func newArray(shape Shape) *Array {
	return &Array{shape: shape.Clone(), data: make([]float64, shape.NumElements())}
}

func (a *Array) Shape() Shape    { return a.shape.Clone() }
func (a *Array) NDim() int       { return len(a.shape) }
func (a *Array) Len() int        { return len(a.data) }
func (a *Array) Data() []float64 { return a.data }

// Rows is the extent of the leading dimension.
func (a *Array) Rows() int {
	if len(a.shape) == 0 {
		return 1
	}
	return a.shape[0]
}

// RowSize is the number of elements in one leading-dimension row.
func (a *Array) RowSize() int {
	if len(a.shape) == 0 {
		return 1
	}
	return Shape(a.shape[1:]).NumElements()
}

// Row returns a view of row i.
func (a *Array) Row(i int) []float64 {
	rs := a.RowSize()
	return a.data[i*rs : (i+1)*rs]
}

func (a *Array) At(idx ...int) float64 {
	return a.data[a.shape.Ravel(idx...)]
}

func (a *Array) Clone() *Array {
	data := make([]float64, len(a.data))
	copy(data, a.data)
	return &Array{shape: a.shape.Clone(), data: data}
}

// Reshape returns a view of the same data with a new shape.
func (a *Array) Reshape(shape Shape) (*Array, error) {
	if shape.NumElements() != len(a.data) {
		return nil, fmt.Errorf("cannot reshape %v into %v", []int(a.shape), []int(shape))
	}
	return &Array{shape: shape.Clone(), data: a.data}, nil
}

func (a *Array) String() string {
	return fmt.Sprintf("Array%v%v", []int(a.shape), a.data)
}

// AllocLike allocates a zeroed array of the given shape. Backend
// implementations outside this package use it to build results.
func AllocLike(shape Shape) *Array {
	return newArray(shape)
}

// RowShape returns shape with its leading extent replaced by rows.
func RowShape(a *Array, rows int) Shape {
	s := a.Shape()
	if len(s) == 0 {
		return Shape{rows}
	}
	s[0] = rows
	return s
}
