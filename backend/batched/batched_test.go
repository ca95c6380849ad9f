package batched

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gocoo/backend/backendtest"
	"github.com/notargets/gocoo/utils"
)

func TestBatchedBackend(t *testing.T) {
	backendtest.Run(t, New(4))
	// A grain of one forces every call through the goroutine fan-out
	fine := New(3)
	fine.Grain = 1
	backendtest.Run(t, fine)
}

func TestStableArgsortMergesRuns(t *testing.T) {
	b := New(7)
	b.Grain = 5
	rng := rand.New(rand.NewSource(1))
	keys := utils.NewIndex(1000)
	for i := range keys {
		keys[i] = rng.Intn(50)
	}
	perm := b.StableArgsort(keys)
	assert.Len(t, perm, len(keys))
	seen := make(map[int]bool)
	for i, p := range perm {
		seen[p] = true
		if i == 0 {
			continue
		}
		prev := perm[i-1]
		assert.LessOrEqual(t, keys[prev], keys[p])
		if keys[prev] == keys[p] {
			assert.Less(t, prev, p, "equal keys must keep their input order")
		}
	}
	assert.Len(t, seen, len(keys))
}

func TestPartitions(t *testing.T) {
	b := New(8)
	b.Grain = 10
	assert.Equal(t, 1, b.partitions(5).ParallelDegree)
	assert.Equal(t, 3, b.partitions(25).ParallelDegree)
	assert.Equal(t, 8, b.partitions(1000).ParallelDegree)
	assert.Equal(t, "Batched(8)", b.Name())
}
