// Package backendtest is a conformance suite that every backend.Backend
// implementation runs from its own tests.
package backendtest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/utils"
)

func Run(t *testing.T, be backend.Backend) {
	t.Run(be.Name()+"/Construction", func(t *testing.T) { testConstruction(t, be) })
	t.Run(be.Name()+"/Concat", func(t *testing.T) { testConcat(t, be) })
	t.Run(be.Name()+"/Argsort", func(t *testing.T) { testArgsort(t, be) })
	t.Run(be.Name()+"/Gather", func(t *testing.T) { testGather(t, be) })
	t.Run(be.Name()+"/Integer", func(t *testing.T) { testInteger(t, be) })
	t.Run(be.Name()+"/Elementwise", func(t *testing.T) { testElementwise(t, be) })
	t.Run(be.Name()+"/Broadcast", func(t *testing.T) { testBroadcast(t, be) })
	t.Run(be.Name()+"/Mask", func(t *testing.T) { testMask(t, be) })
	t.Run(be.Name()+"/Reduce", func(t *testing.T) { testReduce(t, be) })
	t.Run(be.Name()+"/Scatter", func(t *testing.T) { testScatter(t, be) })
}

func testConstruction(t *testing.T, be backend.Backend) {
	z := be.Zeros(backend.Shape{2, 3})
	assert.Equal(t, backend.Shape{2, 3}, z.Shape())
	assert.Equal(t, make([]float64, 6), z.Data())

	f := be.Full(backend.Shape{3}, 1.22)
	assert.Equal(t, []float64{1.22, 1.22, 1.22}, f.Data())

	assert.Equal(t, utils.Index{0, 1, 2, 3, 4}, be.Arange(5))
	assert.Len(t, be.Arange(0), 0)
}

func testConcat(t *testing.T, be backend.Backend) {
	a := backend.MustArray(backend.Shape{2, 2}, []float64{1, 2, 3, 4})
	b := backend.MustArray(backend.Shape{1, 2}, []float64{5, 6})
	c, err := be.Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, backend.Shape{3, 2}, c.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, c.Data())

	_, err = be.Concat(a, backend.Vector(1, 2))
	assert.Error(t, err)

	assert.Equal(t, utils.Index{1, 2, 3}, be.ConcatIndex(utils.Index{1}, utils.Index{2, 3}))
}

func testArgsort(t *testing.T, be backend.Backend) {
	keys := utils.Index{5, 2, 5, 0, 2, 7}
	assert.Equal(t, utils.Index{3, 1, 4, 0, 2, 5}, be.StableArgsort(keys))
	assert.Len(t, be.StableArgsort(utils.Index{}), 0)

	rng := rand.New(rand.NewSource(42))
	keys = utils.NewIndex(20000)
	for i := range keys {
		keys[i] = rng.Intn(300)
	}
	perm := be.StableArgsort(keys)
	for i := 1; i < len(perm); i++ {
		a, b := perm[i-1], perm[i]
		require.True(t, keys[a] < keys[b] || (keys[a] == keys[b] && a < b))
	}
}

func testGather(t *testing.T, be backend.Backend) {
	a := backend.MustArray(backend.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	g := be.Take(a, utils.Index{2, 0, 2})
	assert.Equal(t, backend.Shape{3, 2}, g.Shape())
	assert.Equal(t, []float64{5, 6, 1, 2, 5, 6}, g.Data())

	v := be.Take(backend.Vector(7, 8, 9), utils.Index{1})
	assert.Equal(t, []float64{8}, v.Data())

	assert.Equal(t, utils.Index{30, 10}, be.TakeIndex(utils.Index{10, 20, 30}, utils.Index{2, 0}))
}

func testInteger(t *testing.T, be backend.Backend) {
	rows := []utils.Index{{0, 2, 1}, {1, 1, 3}}
	assert.Equal(t, utils.Index{1, 9, 7}, be.LinearKeys(rows, []int{4, 1}))
	assert.Equal(t, utils.Index{1, -1, 2}, be.SubIndex(rows[1], rows[0]))
	assert.Equal(t, []bool{false, true, false},
		be.CompareIndex(utils.Greater, rows[0], rows[1]))
	assert.Equal(t, []bool{true, false, true},
		be.CompareScalar(utils.LessOrEqual, rows[0], 1))
	assert.Panics(t, func() { be.SubIndex(utils.Index{1}, utils.Index{1, 2}) })
}

func testElementwise(t *testing.T, be backend.Backend) {
	a := backend.MustArray(backend.Shape{2, 2}, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{2, 4, 6, 8}, be.Scale(a, 2).Data())
	assert.Equal(t, []float64{1.5, 2.5, 3.5, 4.5}, be.AddScalar(a, 0.5).Data())
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data(), "inputs are never modified")

	b := backend.MustArray(backend.Shape{2, 2}, []float64{10, 20, 30, 40})
	c, err := be.AddScaled(a, b, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-9, -18, -27, -36}, c.Data())
}

func testBroadcast(t *testing.T, be backend.Backend) {
	a := backend.MustArray(backend.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	row := backend.Vector(10, 20, 30)
	c, err := be.AddScaled(a, row, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, c.Data())

	col := backend.MustArray(backend.Shape{2, 1}, []float64{100, 200})
	c, err = be.AddScaled(a, col, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{201, 202, 203, 404, 405, 406}, c.Data())

	lead := backend.MustArray(backend.Shape{1, 2, 3}, make([]float64, 6))
	c, err = be.AddScaled(a, lead, 1)
	require.NoError(t, err)
	assert.Equal(t, backend.Shape{1, 2, 3}, c.Shape())
	assert.Equal(t, a.Data(), c.Data())

	_, err = be.AddScaled(a, backend.Vector(1, 2), 1)
	assert.Error(t, err)
}

func testMask(t *testing.T, be backend.Backend) {
	a := backend.MustArray(backend.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	m := be.Mask(a, []bool{true, false, true})
	assert.Equal(t, backend.Shape{2, 2}, m.Shape())
	assert.Equal(t, []float64{1, 2, 5, 6}, m.Data())

	none := be.Mask(a, []bool{false, false, false})
	assert.Equal(t, backend.Shape{0, 2}, none.Shape())

	assert.Equal(t, utils.Index{7, 9}, be.MaskIndex(utils.Index{7, 8, 9}, []bool{true, false, true}))
	assert.Panics(t, func() { be.Mask(a, []bool{true}) })
}

func testReduce(t *testing.T, be backend.Backend) {
	a := backend.MustArray(backend.Shape{5, 2}, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	s := be.SegmentSum(a, utils.Index{0, 1, 4})
	assert.Equal(t, backend.Shape{3, 2}, s.Shape())
	assert.Equal(t, []float64{1, 2, 15, 18, 9, 10}, s.Data())
	assert.Equal(t, 55., be.Sum(a))
	assert.Equal(t, 0., be.Sum(be.Zeros(backend.Shape{0})))

	big := be.Full(backend.Shape{10000}, 0.5)
	assert.InDelta(t, 5000., be.Sum(big), 1e-9)
}

func testScatter(t *testing.T, be backend.Backend) {
	dst := be.Zeros(backend.Shape{3, 2})
	src := backend.MustArray(backend.Shape{3, 2}, []float64{1, 1, 2, 2, 4, 4})
	be.ScatterAdd(dst, utils.Index{2, 0, 2}, src)
	assert.Equal(t, []float64{2, 2, 0, 0, 5, 5}, dst.Data())

	be.Put(dst, utils.Index{1}, backend.MustArray(backend.Shape{1, 2}, []float64{7, 8}))
	assert.Equal(t, []float64{2, 2, 7, 8, 5, 5}, dst.Data())

	// Many colliding rows accumulate in input order
	n := 9000
	rows := utils.NewIndex(n)
	vals := make([]float64, n)
	for i := range rows {
		rows[i] = i % 3
		vals[i] = 1
	}
	acc := be.Zeros(backend.Shape{3})
	be.ScatterAdd(acc, rows, backend.Vector(vals...))
	assert.Equal(t, []float64{3000, 3000, 3000}, acc.Data())
}
