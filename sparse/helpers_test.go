package sparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/gocoo/backend"
	"github.com/notargets/gocoo/backend/batched"
	"github.com/notargets/gocoo/backend/cpu"
	"github.com/notargets/gocoo/utils"
)

// forEachBackend runs f against the serial backend and against a batched
// backend whose grain of one sends every call through the worker fan-out.
func forEachBackend(t *testing.T, f func(t *testing.T, be backend.Backend)) {
	fine := batched.New(3)
	fine.Grain = 1
	for _, be := range []backend.Backend{cpu.New(), fine} {
		t.Run(be.Name(), func(t *testing.T) { f(t, be) })
	}
}

func idx(rows ...[]int) (I []utils.Index) {
	I = make([]utils.Index, len(rows))
	for d, row := range rows {
		I[d] = utils.Index(row)
	}
	return
}

func mustNew(t *testing.T, be backend.Backend, indices []utils.Index, values *backend.Array,
	shape ...int) *COOTensor {
	c, err := New(be, indices, values, backend.Shape(shape))
	require.NoError(t, err)
	return c
}

func indicesOf(c *COOTensor) (rows [][]int) {
	for _, row := range c.Indices() {
		rows = append(rows, []int(row))
	}
	return
}
