package sparse

import (
	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

// Operand is the right hand side of Add: a *COOTensor, a Dense array or a
// Scalar. The set is closed; AsOperand converts plain Go values.
type Operand interface {
	isOperand()
}

// Dense wraps a dense array operand, and is the result kind of Coo+Dense.
type Dense struct {
	*backend.Array
}

type Scalar float64

func (*COOTensor) isOperand() {}
func (Dense) isOperand()      {}
func (Scalar) isOperand()     {}

// AsOperand converts v to an Operand. Numbers become Scalar, arrays become
// Dense; anything else fails with ErrType.
func AsOperand(v any) (Operand, error) {
	switch x := v.(type) {
	case *COOTensor:
		if x == nil {
			return nil, typeError("nil *COOTensor")
		}
		return x, nil
	case *backend.Array:
		if x == nil {
			return nil, typeError("nil *backend.Array")
		}
		return Dense{x}, nil
	case Dense:
		return x, nil
	case Scalar:
		return x, nil
	case float64:
		return Scalar(x), nil
	case float32:
		return Scalar(x), nil
	case int:
		return Scalar(x), nil
	case int32:
		return Scalar(x), nil
	case int64:
		return Scalar(x), nil
	case uint:
		return Scalar(x), nil
	case uint32:
		return Scalar(x), nil
	case uint64:
		return Scalar(x), nil
	}
	return nil, typeError("%T", v)
}

// Add returns c + alpha*other. The three operand kinds have deliberately
// different contracts:
//
//   - *COOTensor: sparse shapes must match (ErrShapeMismatch) and both
//     operands must be valued or both structural (ErrValue). The result is the
//     concatenation of both coordinate lists with other's payload scaled by
//     alpha. It is never marked coalesced; call Coalesce to merge duplicates.
//   - Dense: c is densified and the Dense result is ToDense(0) + alpha*other
//     with broadcasting (ErrShapeMismatch when incompatible).
//   - Scalar: alpha*other is added to the STORED entries only. Unstored
//     coordinates stay unstored; they are not set to the scalar as dense
//     broadcasting would. Boundary condition code relies on this. Fails with
//     ErrValue on a structural tensor, which has no payload to add to.
//
// Any other operand, including a nil one, fails with ErrType.
func (c *COOTensor) Add(other Operand, alpha float64) (Operand, error) {
	switch o := other.(type) {
	case *COOTensor:
		if o == nil {
			return nil, typeError("nil *COOTensor")
		}
		r, err := c.AddCOO(o, alpha)
		if err != nil {
			return nil, err
		}
		return r, nil
	case Dense:
		if o.Array == nil {
			return nil, typeError("nil dense array")
		}
		r, err := c.AddDense(o.Array, alpha)
		if err != nil {
			return nil, err
		}
		return Dense{r}, nil
	case Scalar:
		r, err := c.AddScalar(float64(o), alpha)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, typeError("%T", other)
}

// AddCOO is Add for a coordinate operand.
func (c *COOTensor) AddCOO(o *COOTensor, alpha float64) (*COOTensor, error) {
	if err := c.checkCompatible(o); err != nil {
		return nil, err
	}
	be := c.be
	indices := make([]utils.Index, len(c.indices))
	for d := range c.indices {
		indices[d] = be.ConcatIndex(c.indices[d], o.indices[d])
	}
	var values *Values
	if c.values != nil {
		rhs := o.values.arr
		if alpha != 1 {
			rhs = be.Scale(rhs, alpha)
		}
		arr, err := be.Concat(c.values.arr, rhs)
		if err != nil {
			return nil, shapeMismatch("%v", err)
		}
		values = newValues(arr)
	}
	return c.derive(indices, values, false), nil
}

func (c *COOTensor) checkCompatible(o *COOTensor) error {
	if !c.sparseShape.Equal(o.sparseShape) {
		return shapeMismatch("sparse shapes %v and %v differ", []int(c.sparseShape), []int(o.sparseShape))
	}
	if (c.values == nil) != (o.values == nil) {
		return valueError("cannot mix structural and valued tensors")
	}
	if c.values != nil && !c.DenseShape().Equal(o.DenseShape()) {
		return shapeMismatch("dense shapes %v and %v differ", []int(c.DenseShape()), []int(o.DenseShape()))
	}
	return nil
}

// AddDense is Add for a dense operand. The result is a dense array.
func (c *COOTensor) AddDense(d *backend.Array, alpha float64) (*backend.Array, error) {
	dense, err := c.ToDense(0)
	if err != nil {
		return nil, err
	}
	out, err := c.be.AddScaled(dense, d, alpha)
	if err != nil {
		return nil, shapeMismatch("%v", err)
	}
	return out, nil
}

// AddScalar adds alpha*s to every stored entry and leaves unstored
// coordinates absent. See Add.
func (c *COOTensor) AddScalar(s, alpha float64) (*COOTensor, error) {
	if c.values == nil {
		return nil, valueError("cannot add a scalar to a structural tensor")
	}
	values := newValues(c.be.AddScalar(c.values.arr, alpha*s))
	return c.derive(c.indices, values, c.coalesced), nil
}

// Scale multiplies every stored payload by alpha.
func (c *COOTensor) Scale(alpha float64) (*COOTensor, error) {
	if c.values == nil {
		return nil, valueError("cannot scale a structural tensor")
	}
	values := newValues(c.be.Scale(c.values.arr, alpha))
	return c.derive(c.indices, values, c.coalesced), nil
}

func (c *COOTensor) Neg() (*COOTensor, error) {
	return c.Scale(-1)
}

// Sum concatenates many compatible tensors, as repeated AddCOO with alpha 1
// would, pairing them in a balanced tree so each entry is copied
// O(log len(tensors)) times. Typical use is merging per-cell contributions.
func Sum(tensors ...*COOTensor) (*COOTensor, error) {
	if len(tensors) == 0 {
		return nil, valueError("sum of no tensors")
	}
	level := tensors
	for len(level) > 1 {
		next := make([]*COOTensor, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			r, err := level[i].AddCOO(level[i+1], 1)
			if err != nil {
				return nil, err
			}
			next = append(next, r)
		}
		level = next
	}
	if len(tensors) == 1 {
		return level[0].derive(level[0].indices, level[0].values, false), nil
	}
	return level[0], nil
}
