package vector

import (
	"testing"

	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueVectorAppendAndGet(t *testing.T) {
	v := NewValueVector(types.NewInt64(), 4)
	v.Append(types.Int64Value(1))
	v.Append(types.Int64Value(2))

	require.Equal(t, 2, v.Size())
	assert.EqualValues(t, 1, v.Get(0).AsInt64())
	assert.EqualValues(t, 2, v.Get(1).AsInt64())
}

func TestValueVectorGrowsPastCapacity(t *testing.T) {
	v := NewValueVector(types.NewInt64(), 2)
	for i := int64(0); i < 10; i++ {
		v.Append(types.Int64Value(i))
	}
	require.Equal(t, 10, v.Size(), "should grow past initial capacity")
	for i := int64(0); i < 10; i++ {
		assert.EqualValues(t, i, v.Get(int(i)).AsInt64())
	}
}

func TestValueVectorNullHandling(t *testing.T) {
	v := NewValueVector(types.NewInt64(), 4)
	v.Append(types.Int64Value(1))
	v.SetNull(1)

	assert.True(t, v.IsNull(1), "SetNull(1) should mark index 1 null")
	assert.True(t, v.Get(1).Null, "Get(1) should return a NullValue")
	assert.False(t, v.IsNull(0), "index 0 should not be null")
}

func TestValueVectorSetExtendsSize(t *testing.T) {
	v := NewValueVector(types.NewInt64(), 4)
	v.Set(2, types.Int64Value(9))
	assert.Equal(t, 3, v.Size(), "Set(2, ...) should extend Size() to 3")
}

func TestValueVectorReset(t *testing.T) {
	v := NewValueVector(types.NewInt64(), 4)
	v.Append(types.Int64Value(1))
	v.Reset()
	assert.Equal(t, 0, v.Size())
}

func TestValueVectorSlice(t *testing.T) {
	v := NewValueVector(types.NewInt64(), 4)
	v.Append(types.Int64Value(1))
	v.Append(types.Int64Value(2))
	s := v.Slice()
	require.Len(t, s, 2)
	assert.EqualValues(t, 1, s[0].AsInt64())
	assert.EqualValues(t, 2, s[1].AsInt64())
}

func TestSelVectorIdentityAndFilter(t *testing.T) {
	sel := Identity(5)
	require.Equal(t, 5, sel.Len())
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, sel.At(i))
	}

	keep := []bool{true, false, true, false, true}
	filtered := sel.Filter(keep)
	require.Equal(t, 3, filtered.Len())
	want := []int{0, 2, 4}
	for i, w := range want {
		assert.Equal(t, w, filtered.At(i))
	}
}

func TestSelVectorNilActsAsIdentity(t *testing.T) {
	var sel *SelVector
	assert.Equal(t, 0, sel.Len(), "nil SelVector.Len() should be 0")
	assert.Equal(t, 3, sel.At(3), "nil SelVector.At(i) should return i unchanged")
}

func TestSelVectorFilterComposesOverExistingSelection(t *testing.T) {
	// selection over an underlying vector of size 10, keeping [1,3,5,7,9]
	sel := NewSelVector([]int{1, 3, 5, 7, 9})
	// keep positions 0 and 2 of that selection -> underlying indices 1, 5
	keep := []bool{true, false, true, false, false}
	filtered := sel.Filter(keep)
	require.Equal(t, 2, filtered.Len())
	assert.Equal(t, 1, filtered.At(0))
	assert.Equal(t, 5, filtered.At(1))
}
