package solver

import (
	"errors"
	"math"
	"testing"

	jsparse "github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// laplacian returns the n x n second difference matrix tridiag(-1, 2, -1).
func laplacian(n int) *jsparse.CSR {
	dok := jsparse.NewDOK(n, n)
	for i := 0; i < n; i++ {
		dok.Set(i, i, 2)
		if i > 0 {
			dok.Set(i, i-1, -1)
		}
		if i+1 < n {
			dok.Set(i, i+1, -1)
		}
	}
	return dok.ToCSR()
}

func TestCG(t *testing.T) {
	n := 20
	A := laplacian(n)
	want := make([]float64, n)
	for i := range want {
		want[i] = float64(i%5) - 2
	}
	var bv mat.VecDense
	bv.MulVec(A, mat.NewVecDense(n, want))
	b := bv.RawVector().Data

	x, res, err := CG(A, b, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, 2*n)
	assert.InDeltaSlice(t, want, x, 1.e-8)
	assert.Less(t, Residual(A, x, b), 1.e-8)
	assert.Contains(t, res.String(), "converged = true")

	// A zero right-hand side converges immediately
	x, res, err = CG(A, make([]float64, n), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, make([]float64, n), x)
}

func TestCGErrors(t *testing.T) {
	A := laplacian(10)
	b := make([]float64, 10)
	b[3] = 1
	_, res, err := CG(A, b, Options{Tolerance: 1.e-14, MaxIterations: 2})
	assert.True(t, errors.Is(err, ErrNotConverged))
	assert.False(t, res.Converged)

	_, _, err = CG(A, make([]float64, 4), DefaultOptions())
	assert.Error(t, err)

	nan := make([]float64, 10)
	nan[2] = math.NaN()
	_, _, err = CG(A, nan, DefaultOptions())
	assert.Error(t, err)

	neg := jsparse.NewDOK(2, 2)
	neg.Set(0, 0, -1)
	neg.Set(1, 1, -1)
	_, _, err = CG(neg.ToCSR(), []float64{1, 1}, DefaultOptions())
	assert.Error(t, err)
}

func TestDirect(t *testing.T) {
	A := mat.NewDense(3, 3, []float64{
		4, 1, 0,
		1, 3, 1,
		0, 1, 2,
	})
	x, err := Direct(A, []float64{5, 5, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, 1}, x, 1.e-12)

	x, err = Direct(laplacian(4), []float64{1, 0, 0, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, 1, 1}, x, 1.e-12)

	_, err = Direct(mat.NewDense(2, 2, []float64{1, 1, 1, 1}), []float64{1, 2})
	assert.Error(t, err)
	_, err = Direct(A, []float64{1})
	assert.Error(t, err)
}
