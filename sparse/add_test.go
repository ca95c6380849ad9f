package sparse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gocoo/backend"
)

func TestAddCOO(t *testing.T) {
	forEachBackend(t, func(t *testing.T, be backend.Backend) {
		coo1 := mustNew(t, be, idx([]int{0, 2}, []int{1, 3}), backend.Vector(1, 2), 4, 4)
		coo2 := mustNew(t, be, idx([]int{0, 1}, []int{2, 3}), backend.Vector(3, 4), 4, 4)

		r, err := coo1.AddCOO(coo2, 2)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{0, 2, 0, 1}, {1, 3, 2, 3}}, indicesOf(r))
		assert.Equal(t, []float64{1, 2, 6, 8}, r.Values().Flat())
		assert.False(t, r.IsCoalesced())
		// inputs untouched
		assert.Equal(t, []float64{3, 4}, coo2.Values().Flat())

		coo3 := mustNew(t, be, idx([]int{0, 1}, []int{2, 3}), nil, 4, 4)
		coo4 := mustNew(t, be, idx([]int{0, 2}, []int{1, 3}), nil, 4, 4)
		s, err := coo3.AddCOO(coo4, 2)
		require.NoError(t, err)
		assert.True(t, s.IsStructural())
		assert.Equal(t, [][]int{{0, 1, 0, 2}, {2, 3, 1, 3}}, indicesOf(s))

		_, err = coo1.AddCOO(coo3, 1)
		assert.ErrorIs(t, err, ErrValue)
		_, err = coo1.AddCOO(mustNew(t, be, idx([]int{0}, []int{0}), backend.Vector(1), 3, 3), 1)
		assert.ErrorIs(t, err, ErrShapeMismatch)
		wide := mustNew(t, be, idx([]int{0}, []int{0}), backend.MustArray(backend.Shape{1, 2}, []float64{1, 1}), 4, 4)
		_, err = coo1.AddCOO(wide, 1)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func TestAddDispatch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, be backend.Backend) {
		coo := mustNew(t, be, idx([]int{0}, []int{2}), backend.Vector(1), 4, 4)

		// Coo + Dense broadcasts the densified tensor against the operand
		zeros := be.Zeros(backend.Shape{1, 4, 4})
		out, err := coo.Add(Dense{zeros}, 1)
		require.NoError(t, err)
		d, ok := out.(Dense)
		require.True(t, ok)
		assert.Equal(t, backend.Shape{1, 4, 4}, d.Shape())
		assert.Equal(t, 1., d.At(0, 0, 2))
		assert.Equal(t, 1., be.Sum(d.Array))

		_, err = coo.Add(Dense{be.Zeros(backend.Shape{3})}, 1)
		assert.ErrorIs(t, err, ErrShapeMismatch)

		// Coo + Scalar touches stored entries only
		pair := mustNew(t, be, idx([]int{0}, []int{2}), backend.MustArray(backend.Shape{1, 2}, []float64{1, 2}), 4, 4)
		out, err = pair.Add(Scalar(2), 1)
		require.NoError(t, err)
		sc, ok := out.(*COOTensor)
		require.True(t, ok)
		assert.Equal(t, []float64{3, 4}, sc.Values().Flat())
		dense, err := sc.ToDense(0)
		require.NoError(t, err)
		assert.Equal(t, 0., dense.At(1, 1, 0))

		_, err = mustNew(t, be, idx([]int{0}, []int{2}), nil, 4, 4).Add(Scalar(1), 1)
		assert.ErrorIs(t, err, ErrValue)

		out, err = coo.Add(coo, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, out.(*COOTensor).NNZ())

		_, err = coo.Add(nil, 1)
		assert.ErrorIs(t, err, ErrType)
		_, err = coo.Add((*COOTensor)(nil), 1)
		assert.ErrorIs(t, err, ErrType)
		_, err = coo.Add(Dense{}, 1)
		assert.ErrorIs(t, err, ErrType)
	})
}

func TestAsOperand(t *testing.T) {
	for _, v := range []any{2.5, float32(1), 3, int64(4), uint(5)} {
		op, err := AsOperand(v)
		require.NoError(t, err)
		assert.IsType(t, Scalar(0), op)
	}
	op, err := AsOperand(backend.Vector(1, 2))
	require.NoError(t, err)
	assert.IsType(t, Dense{}, op)

	for _, v := range []any{"a string", []float64{1}, nil, (*backend.Array)(nil), (*COOTensor)(nil)} {
		_, err = AsOperand(v)
		assert.ErrorIs(t, err, ErrType, "%T", v)
	}
}

func TestScaleAndNeg(t *testing.T) {
	forEachBackend(t, func(t *testing.T, be backend.Backend) {
		c := mustNew(t, be, idx([]int{0, 1}), backend.Vector(1, -2), 2)
		s, err := c.Scale(3)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, -6}, s.Values().Flat())
		n, err := c.Neg()
		require.NoError(t, err)
		assert.Equal(t, []float64{-1, 2}, n.Values().Flat())
		_, err = mustNew(t, be, idx([]int{0}), nil, 2).Neg()
		assert.ErrorIs(t, err, ErrValue)
	})
}

func TestAddCommutesAfterCoalesce(t *testing.T) {
	forEachBackend(t, func(t *testing.T, be backend.Backend) {
		rng := rand.New(rand.NewSource(11))
		a := randomTensor(t, be, rng, 60, 5, 7)
		b := randomTensor(t, be, rng, 40, 5, 7)
		ab, err := a.AddCOO(b, 1)
		require.NoError(t, err)
		ba, err := b.AddCOO(a, 1)
		require.NoError(t, err)
		abc, err := ab.Coalesce()
		require.NoError(t, err)
		bac, err := ba.Coalesce()
		require.NoError(t, err)
		assert.True(t, abc.Equal(bac))
	})
}

func TestSum(t *testing.T) {
	forEachBackend(t, func(t *testing.T, be backend.Backend) {
		rng := rand.New(rand.NewSource(5))
		t0 := randomTensor(t, be, rng, 10, 4, 4)
		t1 := randomTensor(t, be, rng, 10, 4, 4)
		t2 := randomTensor(t, be, rng, 10, 4, 4)

		got, err := Sum(t0, t1, t2)
		require.NoError(t, err)
		seq, err := t0.AddCOO(t1, 1)
		require.NoError(t, err)
		seq, err = seq.AddCOO(t2, 1)
		require.NoError(t, err)
		assert.True(t, got.Equal(seq))

		one, err := Sum(t0)
		require.NoError(t, err)
		assert.True(t, one.Equal(t0))

		_, err = Sum()
		assert.ErrorIs(t, err, ErrValue)
		_, err = Sum(t0, randomTensor(t, be, rng, 3, 2, 2))
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}
