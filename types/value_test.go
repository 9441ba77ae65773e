package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValueAccessors(t *testing.T) {
	assert.True(t, BoolValue(true).AsBool())
	assert.EqualValues(t, 42, Int64Value(42).AsInt64())
	assert.EqualValues(t, 7, Int32Value(7).AsInt64(), "Int32Value(7).AsInt64() should widen to 7")
	assert.Equal(t, 3.5, DoubleValue(3.5).AsDouble())
	assert.Equal(t, "hello", StringValue("hello").AsString())
	assert.Len(t, BlobValue([]byte{1, 2, 3}).AsBlob(), 3)

	u := uuid.New()
	assert.Equal(t, u, UUIDValue(u).AsUUID())

	now := time.Now()
	assert.True(t, TimestampValue(now).AsTime().Equal(now), "TimestampValue round-trip failed")

	id := InternalID{TableID: 1, Offset: 2}
	assert.Equal(t, id, NodeIDValue(1, NewNode(1), id).AsInternalID())
}

func TestIsShortString(t *testing.T) {
	assert.True(t, StringValue("short").IsShortString(), "12-byte-or-under string should be short")
	assert.False(t, StringValue("this string is definitely over twelve bytes").IsShortString(), "long string should not be short")
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", NullValue(NewInt64()).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "x", StringValue("x").String())
}

func TestValueEqual(t *testing.T) {
	t.Run("null equals null regardless of payload", func(t *testing.T) {
		assert.True(t, NullValue(NewInt64()).Equal(NullValue(NewInt64())), "two nulls of the same type should be equal")
	})
	t.Run("null never equals non-null", func(t *testing.T) {
		assert.False(t, NullValue(NewInt64()).Equal(Int64Value(0)), "null should not equal non-null 0")
	})
	t.Run("different types never equal", func(t *testing.T) {
		assert.False(t, Int64Value(1).Equal(DoubleValue(1)), "INT64 1 should not equal DOUBLE 1 (no implicit coercion in Equal)")
	})
	t.Run("same scalar equal", func(t *testing.T) {
		assert.True(t, Int64Value(5).Equal(Int64Value(5)))
		assert.False(t, Int64Value(5).Equal(Int64Value(6)))
	})
	t.Run("list element-wise", func(t *testing.T) {
		a := ListValue(NewInt64(), []Value{Int64Value(1), Int64Value(2)})
		b := ListValue(NewInt64(), []Value{Int64Value(1), Int64Value(2)})
		c := ListValue(NewInt64(), []Value{Int64Value(1), Int64Value(3)})
		assert.True(t, a.Equal(b), "identical lists should be equal")
		assert.False(t, a.Equal(c), "lists differing in an element should not be equal")
	})
	t.Run("node identity by internal id", func(t *testing.T) {
		a := NodeIDValue(1, NewNode(1), InternalID{TableID: 1, Offset: 4})
		b := NodeIDValue(1, NewNode(1), InternalID{TableID: 1, Offset: 4})
		c := NodeIDValue(1, NewNode(1), InternalID{TableID: 1, Offset: 5})
		assert.True(t, a.Equal(b), "nodes with the same internal id should be equal")
		assert.False(t, a.Equal(c), "nodes with different offsets should not be equal")
	})
}
