package sparse

import (
	"github.com/notargets/gocoo/backend"
)

// Values is the read-only payload handle of a valued COOTensor. The payload
// has shape (nnz, *denseShape). Ravel, Transpose and a no-op Tril hand the
// same *Values to their result, so two tensors share a payload exactly when
// their Values() pointers are equal. New copies the caller's array into the
// handle and every accessor returns copies, so no code inside or outside this
// package can write to a payload after the handle is created.
type Values struct {
	arr *backend.Array
}

func newValues(a *backend.Array) *Values {
	return &Values{arr: a}
}

func (v *Values) Shape() backend.Shape { return v.arr.Shape() }

// Len is the number of stored entries (the leading extent).
func (v *Values) Len() int { return v.arr.Rows() }

// DenseShape is the trailing per-entry shape.
func (v *Values) DenseShape() backend.Shape {
	return v.arr.Shape()[1:]
}

// RowSize is the number of scalars in one entry's payload.
func (v *Values) RowSize() int { return v.arr.RowSize() }

func (v *Values) At(idx ...int) float64 { return v.arr.At(idx...) }

// Row returns a copy of entry j's payload.
func (v *Values) Row(j int) []float64 {
	src := v.arr.Row(j)
	r := make([]float64, len(src))
	copy(r, src)
	return r
}

// ToArray returns a copy of the payload that the caller may modify.
func (v *Values) ToArray() *backend.Array { return v.arr.Clone() }

// Flat returns a copy of the payload in row-major order.
func (v *Values) Flat() []float64 { return v.arr.Clone().Data() }
