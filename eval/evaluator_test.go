package eval

import (
	"testing"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *expr.Registry {
	r := expr.NewRegistry()
	RegisterBuiltins(r)
	return r
}

func TestCompileLiteral(t *testing.T) {
	k, err := Compile(expr.NewLiteral(types.Int64Value(42), "lit"), newRegistry())
	require.NoError(t, err)
	v, err := k(MapEnv{}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 42, v.AsInt64())
}

func TestCompileParameterMissing(t *testing.T) {
	k, err := Compile(expr.NewParameter("q", types.NewString()), newRegistry())
	require.NoError(t, err)
	_, err = k(MapEnv{}, map[string]types.Value{})
	assert.Error(t, err, "expected error for unbound parameter")
}

func TestCompileParameterBound(t *testing.T) {
	k, err := Compile(expr.NewParameter("q", types.NewString()), newRegistry())
	require.NoError(t, err)
	v, err := k(MapEnv{}, map[string]types.Value{"q": types.StringValue("alice")})
	require.NoError(t, err)
	assert.Equal(t, "alice", v.AsString())
}

func TestCompileVariableMissingIsNull(t *testing.T) {
	k, err := Compile(expr.NewVariable("n", types.NewInt64()), newRegistry())
	require.NoError(t, err)
	v, err := k(MapEnv{}, nil)
	require.NoError(t, err)
	assert.True(t, v.Null, "missing variable should evaluate to NULL")
}

func TestCompileFunctionCallArithmetic(t *testing.T) {
	a := expr.NewLiteral(types.Int64Value(2), "a")
	b := expr.NewLiteral(types.Int64Value(3), "b")
	fc := expr.NewFunctionCall("PLUS", expr.ScalarFunction, []expr.Node{a, b}, types.NewInt64(), "a+b")

	k, err := Compile(fc, newRegistry())
	require.NoError(t, err)
	v, err := k(MapEnv{}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v.AsInt64())
}

func TestCompileFunctionCallNullPropagation(t *testing.T) {
	nullLit := expr.NewLiteral(types.NullValue(types.NewInt64()), "n")
	nullLit.Val.Null = true
	b := expr.NewLiteral(types.Int64Value(3), "b")
	fc := expr.NewFunctionCall("PLUS", expr.ScalarFunction, []expr.Node{nullLit, b}, types.NewInt64(), "n+b")

	k, err := Compile(fc, newRegistry())
	require.NoError(t, err)
	v, err := k(MapEnv{}, nil)
	require.NoError(t, err)
	assert.True(t, v.Null, "PLUS with a null operand should propagate to NULL")
}

func TestCompileFunctionCallOverflow(t *testing.T) {
	a := expr.NewLiteral(types.Int64Value(9223372036854775807), "a")
	b := expr.NewLiteral(types.Int64Value(1), "b")
	fc := expr.NewFunctionCall("PLUS", expr.ScalarFunction, []expr.Node{a, b}, types.NewInt64(), "a+b")

	k, err := Compile(fc, newRegistry())
	require.NoError(t, err)
	_, err = k(MapEnv{}, nil)
	assert.Error(t, err, "expected overflow error")
}

func TestCompileFunctionCallDivisionByZero(t *testing.T) {
	a := expr.NewLiteral(types.Int64Value(1), "a")
	b := expr.NewLiteral(types.Int64Value(0), "b")
	fc := expr.NewFunctionCall("DIVIDE", expr.ScalarFunction, []expr.Node{a, b}, types.NewInt64(), "a/b")

	k, err := Compile(fc, newRegistry())
	require.NoError(t, err)
	_, err = k(MapEnv{}, nil)
	assert.Error(t, err, "expected division-by-zero error")
}

func TestCompileCastAnyStampsTargetType(t *testing.T) {
	v := expr.NewVariable("a", types.NewAny())
	cast := expr.NewCast(v, types.NewInt64())

	k, err := Compile(cast, newRegistry())
	require.NoError(t, err)
	any := types.StringValue("7")
	any.Type = types.NewAny()
	out, err := k(MapEnv{"a": any}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Int64, out.Type.Kind, "cast of ANY should stamp the target type")
}

func TestCompileCastNumericNarrowing(t *testing.T) {
	v := expr.NewLiteral(types.DoubleValue(3.9), "d")
	cast := expr.NewCast(v, types.NewInt64())

	k, err := Compile(cast, newRegistry())
	require.NoError(t, err)
	out, err := k(MapEnv{}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.AsInt64(), "cast DOUBLE 3.9 to INT64 should truncate")
}

// Documents that eval.Compile refuses a raw subquery expression: WHERE EXISTS
// subqueries must be lowered to an Accumulate+CrossProduct by the planner
// before a predicate reaches Compile.
func TestCompileSubqueryIsUnsupported(t *testing.T) {
	sq := expr.NewSubquery(nil, types.NewBool(), "sq1", true)
	_, err := Compile(sq, newRegistry())
	assert.Error(t, err, "expected an error compiling a bare subquery expression")
}
