package sparse

import (
	"errors"
	"fmt"
)

// Every error returned by this package wraps one of these sentinels; match
// them with errors.Is. They are contract violations, never transient.
var (
	// ErrShapeMismatch: index rank differs from the sparse shape length, payload
	// length differs from nnz, or two operands have incompatible shapes.
	ErrShapeMismatch = errors.New("sparse: shape mismatch")

	// ErrValue: structural/valued mixing, scalar add on a structural tensor,
	// tril on fewer than two sparse dims, out of bounds coordinates, bad extents.
	ErrValue = errors.New("sparse: invalid value")

	// ErrType: an operand kind Add does not know.
	ErrType = errors.New("sparse: unsupported operand type")
)

func shapeMismatch(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrShapeMismatch}, args...)...)
}

func valueError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValue}, args...)...)
}

func typeError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrType}, args...)...)
}
