package backend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := Shape{3, 4, 5}
	assert.Equal(t, 60, s.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, []int{20, 5, 1}, s.Strides())
	assert.NoError(t, s.Validate())
	assert.Error(t, Shape{3, 0}.Validate())
	assert.Equal(t, Shape{3, 4, 5, 2}, s.Concat(Shape{2}))
	assert.True(t, s.Equal(s.Clone()))

	for key := 0; key < s.NumElements(); key++ {
		assert.Equal(t, key, s.Ravel(s.Unravel(key)...))
	}
	assert.Equal(t, 9, Shape{3, 4}.Ravel(2, 1))
	assert.Panics(t, func() { s.Ravel(1, 2) })
}

func TestCheckedStrides(t *testing.T) {
	strides, size, err := Shape{3, 4}.CheckedStrides()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1}, strides)
	assert.Equal(t, 12, size)

	_, _, err = Shape{math.MaxInt / 2, 3}.CheckedStrides()
	assert.Error(t, err)
	_, _, err = Shape{1 << 32, 1 << 32}.CheckedStrides()
	assert.Error(t, err)
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b, want Shape
		fail       bool
	}{
		{a: Shape{3, 3}, b: Shape{3, 3}, want: Shape{3, 3}},
		{a: Shape{3, 3}, b: Shape{1, 3}, want: Shape{3, 3}},
		{a: Shape{4, 4}, b: Shape{1, 4, 4}, want: Shape{1, 4, 4}},
		{a: Shape{4, 4, 2}, b: Shape{2}, want: Shape{4, 4, 2}},
		{a: Shape{4, 1}, b: Shape{3}, want: Shape{4, 3}},
		{a: Shape{3, 3}, b: Shape{2, 3}, fail: true},
	}
	for _, tt := range tests {
		got, err := BroadcastShapes(tt.a, tt.b)
		if tt.fail {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, []int{0, 1}, BroadcastStrides(Shape{3}, Shape{4, 3}))
	assert.Equal(t, []int{1, 0}, BroadcastStrides(Shape{4, 1}, Shape{4, 3}))
}

func TestArray(t *testing.T) {
	a, err := NewArray(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 6., a.At(1, 2))
	assert.Equal(t, []float64{4, 5, 6}, a.Row(1))
	assert.Equal(t, 2, a.Rows())
	assert.Equal(t, 3, a.RowSize())

	b, err := a.Reshape(Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, 4., b.At(1, 1))
	_, err = a.Reshape(Shape{4})
	assert.Error(t, err)

	c := a.Clone()
	c.Data()[0] = 100
	assert.Equal(t, 1., a.At(0, 0))

	_, err = NewArray(Shape{2, 2}, []float64{1})
	assert.Error(t, err)
	empty, err := NewArray(Shape{0, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows())
	assert.Equal(t, Shape{5, 3}, RowShape(a, 5))

	_, err = CheckConcat(a, MustArray(Shape{1, 2}, []float64{1, 2}))
	assert.Error(t, err)
	s, err := CheckConcat(a, MustArray(Shape{1, 3}, []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 3}, s)
}
