package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	{ // Ranges are inclusive
		assert.Equal(t, Index{0, 1, 2, 3}, NewRange(0, 3))
		assert.Equal(t, Index{}, NewRange(0, -1))
	}
	{ // Gather and concat never alias the receiver
		I := Index{10, 20, 30, 40}
		J := I.Subset(Index{3, 0, 0})
		assert.Equal(t, Index{40, 10, 10}, J)
		K := I.Concat(Index{50})
		K[0] = -1
		assert.Equal(t, 10, I[0])
		assert.Equal(t, Index{11, 21, 31, 41}, I.Add(1))
		assert.True(t, I.Equal(I.Copy()))
		assert.False(t, I.Equal(Index{10, 20}))
	}
	{
		s := Index{1, 1, 4}.Set()
		assert.Len(t, s, 2)
	}
	assert.Equal(t, "<=", LessOrEqual.String())
	assert.True(t, LessOrEqual.Eval(-1, 0))
}
