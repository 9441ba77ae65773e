package eval

import (
	"testing"

	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuiltinsResolvesIntAndFloatOverloads(t *testing.T) {
	r := newRegistry()

	ov, err := r.Resolve("PLUS", []types.LogicalType{types.NewInt64(), types.NewInt64()})
	require.NoError(t, err)
	v, err := ov.Exec([]types.Value{types.Int64Value(2), types.Int64Value(3)})
	require.NoError(t, err)
	assert.EqualValues(t, 5, v.AsInt64())

	ov, err = r.Resolve("PLUS", []types.LogicalType{types.NewDouble(), types.NewDouble()})
	require.NoError(t, err)
	v, err = ov.Exec([]types.Value{types.DoubleValue(1.5), types.DoubleValue(2.5)})
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.AsDouble())
}

func TestComparisonBuiltinsAcrossTypes(t *testing.T) {
	r := newRegistry()

	cases := []struct {
		fn   string
		a, b types.Value
		want bool
	}{
		{"EQ", types.Int64Value(1), types.Int64Value(1), true},
		{"LT", types.Int64Value(1), types.Int64Value(2), true},
		{"GT", types.DoubleValue(2), types.DoubleValue(1), true},
		{"LE", types.StringValue("a"), types.StringValue("b"), true},
		{"GE", types.StringValue("b"), types.StringValue("a"), true},
	}
	for _, c := range cases {
		ov, err := r.Resolve(c.fn, []types.LogicalType{c.a.Type, c.b.Type})
		require.NoError(t, err, "Resolve(%s)", c.fn)
		v, err := ov.Exec([]types.Value{c.a, c.b})
		require.NoError(t, err, "%s exec", c.fn)
		assert.Equal(t, c.want, v.AsBool(), "%s(%v,%v)", c.fn, c.a, c.b)
	}
}

func TestBooleanBuiltins(t *testing.T) {
	r := newRegistry()
	and, err := r.Resolve("AND", []types.LogicalType{types.NewBool(), types.NewBool()})
	require.NoError(t, err)
	v, _ := and.Exec([]types.Value{types.BoolValue(true), types.BoolValue(false)})
	assert.False(t, v.AsBool(), "AND(true,false) should be false")

	not, err := r.Resolve("NOT", []types.LogicalType{types.NewBool()})
	require.NoError(t, err)
	v, _ = not.Exec([]types.Value{types.BoolValue(false)})
	assert.True(t, v.AsBool(), "NOT(false) should be true")
}

func TestMultiplyOverflowDetected(t *testing.T) {
	r := newRegistry()
	ov, err := r.Resolve("MULTIPLY", []types.LogicalType{types.NewInt64(), types.NewInt64()})
	require.NoError(t, err)
	_, err = ov.Exec([]types.Value{types.Int64Value(1 << 40), types.Int64Value(1 << 40)})
	assert.Error(t, err, "expected overflow error from MULTIPLY")
}

func TestDivideMinIntByNegOneOverflows(t *testing.T) {
	r := newRegistry()
	ov, err := r.Resolve("DIVIDE", []types.LogicalType{types.NewInt64(), types.NewInt64()})
	require.NoError(t, err)
	_, err = ov.Exec([]types.Value{types.Int64Value(-9223372036854775808), types.Int64Value(-1)})
	assert.Error(t, err, "expected overflow error dividing MinInt64 by -1")
}
