// Package solver solves the assembled linear systems: conjugate gradients
// on a CSR matrix for symmetric positive definite operators and a dense LU
// solve for small or general ones.
package solver

import (
	"errors"
	"fmt"
	"math"

	jsparse "github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocoo/utils"
)

var ErrNotConverged = errors.New("solver: iteration did not converge")

type Options struct {
	Tolerance     float64 // relative to ||b||
	MaxIterations int     // 0 means 10 * len(b)
}

func DefaultOptions() Options {
	return Options{
		Tolerance: 1.e-10,
	}
}

type Result struct {
	Iterations int
	Residual   float64 // ||b - Ax|| at exit
	Converged  bool
}

func (r Result) String() string {
	return fmt.Sprintf("iterations = %d, residual = %8.4e, converged = %v", r.Iterations, r.Residual, r.Converged)
}

// CG solves A x = b by unpreconditioned conjugate gradients starting from
// x = 0. A must be symmetric positive definite.
func CG(A *jsparse.CSR, b []float64, opts Options) (x []float64, res Result, err error) {
	var (
		nr, nc = A.Dims()
		n      = len(b)
	)
	if nr != nc || nr != n {
		err = fmt.Errorf("solver: operator is %d x %d, right-hand side has %d entries", nr, nc, n)
		return
	}
	if utils.IsNan(b) {
		err = fmt.Errorf("solver: right-hand side contains NaN")
		return
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 10 * n
	}
	var (
		r  = make([]float64, n)
		p  = make([]float64, n)
		Ap = make([]float64, n)
		bn = floats.Norm(b, 2)
	)
	x = make([]float64, n)
	copy(r, b)
	copy(p, r)
	if bn == 0 {
		res.Converged = true
		return
	}
	tol := opts.Tolerance * bn
	rr := floats.Dot(r, r)
	for res.Iterations = 0; res.Iterations < maxIter; res.Iterations++ {
		if res.Residual = math.Sqrt(rr); res.Residual <= tol {
			res.Converged = true
			return
		}
		for i := range Ap {
			Ap[i] = 0
		}
		A.MulVecTo(Ap, false, p)
		pAp := floats.Dot(p, Ap)
		if !(pAp > 0) {
			err = fmt.Errorf("solver: operator is not positive definite (p·Ap = %v at iteration %d)",
				pAp, res.Iterations)
			return
		}
		alpha := rr / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		rrNew := floats.Dot(r, r)
		// p = r + beta*p
		floats.AddScaledTo(p, r, rrNew/rr, p)
		rr = rrNew
	}
	if res.Residual = math.Sqrt(rr); res.Residual <= tol {
		res.Converged = true
		return
	}
	err = fmt.Errorf("%w after %d iterations, residual %8.4e > %8.4e", ErrNotConverged, res.Iterations, res.Residual, tol)
	return
}

// Direct solves A x = b with a dense LU factorization.
func Direct(A mat.Matrix, b []float64) (x []float64, err error) {
	nr, nc := A.Dims()
	if nr != nc || nr != len(b) {
		return nil, fmt.Errorf("solver: operator is %d x %d, right-hand side has %d entries", nr, nc, len(b))
	}
	var (
		xv mat.VecDense
		lu mat.LU
	)
	lu.Factorize(mat.DenseCopyOf(A))
	if err = lu.SolveVecTo(&xv, false, mat.NewVecDense(len(b), append([]float64(nil), b...))); err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	return xv.RawVector().Data, nil
}

// Residual returns ||b - A x||.
func Residual(A mat.Matrix, x, b []float64) float64 {
	var ax mat.VecDense
	ax.MulVec(A, mat.NewVecDense(len(x), x))
	r := make([]float64, len(b))
	floats.SubTo(r, b, ax.RawVector().Data)
	return floats.Norm(r, 2)
}
