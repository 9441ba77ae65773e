package physical

import (
	"testing"

	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumStateAllInts(t *testing.T) {
	s := newAggState("SUM")
	s.update(types.Int64Value(2))
	s.update(types.Int64Value(3))
	got := s.finalize()
	require.Equal(t, types.Int64, got.Type.Kind, "SUM over ints should finalize to an Int64Value")
	assert.EqualValues(t, 5, got.AsInt64())
}

func TestSumStateAllDoubles(t *testing.T) {
	s := newAggState("SUM")
	s.update(types.DoubleValue(1.5))
	s.update(types.DoubleValue(2.5))
	got := s.finalize()
	require.Equal(t, types.Double, got.Type.Kind, "SUM over doubles should finalize to a DoubleValue")
	assert.Equal(t, 4.0, got.AsDouble())
}

func TestSumStateMixedIntThenDouble(t *testing.T) {
	s := newAggState("SUM")
	s.update(types.Int64Value(10))
	s.update(types.DoubleValue(0.5))
	got := s.finalize()
	require.Equal(t, types.Double, got.Type.Kind, "mixed SUM should finalize to a DoubleValue")
	assert.Equal(t, 10.5, got.AsDouble())
}

func TestSumStateNullsIgnored(t *testing.T) {
	s := newAggState("SUM")
	s.update(types.NullValue(types.NewInt64()))
	got := s.finalize()
	assert.EqualValues(t, 0, got.AsInt64(), "SUM over only nulls should be 0")
}
