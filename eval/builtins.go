package eval

import (
	"math"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// RegisterBuiltins installs the scalar/aggregate function set spec.md §6
// requires the registry to carry at minimum: arithmetic with overflow
// checking (spec.md §4.4, §7 RuntimeError "arithmetic overflow"),
// comparison, boolean logic, and the aggregate accumulators Aggregate
// lowers to.
func RegisterBuiltins(r *expr.Registry) {
	arith := func(name string, f func(a, b int64) (int64, bool), ff func(a, b float64) float64) {
		r.Register(&expr.FunctionSet{Name: name, Overloads: []expr.Overload{
			{
				Params: []types.LogicalType{types.NewInt64(), types.NewInt64()},
				Return: types.NewInt64(),
				Exec: func(args []types.Value) (types.Value, error) {
					res, ok := f(args[0].AsInt64(), args[1].AsInt64())
					if !ok {
						return types.Value{}, common.NewRuntimeError("integer overflow in "+name, nil)
					}
					return types.Int64Value(res), nil
				},
			},
			{
				Params: []types.LogicalType{types.NewDouble(), types.NewDouble()},
				Return: types.NewDouble(),
				Exec: func(args []types.Value) (types.Value, error) {
					return types.DoubleValue(ff(args[0].AsDouble(), args[1].AsDouble())), nil
				},
			},
		}})
	}

	arith("PLUS", func(a, b int64) (int64, bool) {
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			return 0, false
		}
		return r, true
	}, func(a, b float64) float64 { return a + b })

	arith("MINUS", func(a, b int64) (int64, bool) {
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return 0, false
		}
		return r, true
	}, func(a, b float64) float64 { return a - b })

	arith("MULTIPLY", func(a, b int64) (int64, bool) {
		if a == 0 || b == 0 {
			return 0, true
		}
		r := a * b
		if r/b != a {
			return 0, false
		}
		return r, true
	}, func(a, b float64) float64 { return a * b })

	r.Register(&expr.FunctionSet{Name: "DIVIDE", Overloads: []expr.Overload{
		{
			Params: []types.LogicalType{types.NewInt64(), types.NewInt64()},
			Return: types.NewInt64(),
			Exec: func(args []types.Value) (types.Value, error) {
				b := args[1].AsInt64()
				if b == 0 {
					return types.Value{}, common.NewRuntimeError("division by zero", nil)
				}
				a := args[0].AsInt64()
				if a == math.MinInt64 && b == -1 {
					return types.Value{}, common.NewRuntimeError("integer overflow in DIVIDE", nil)
				}
				return types.Int64Value(a / b), nil
			},
		},
		{
			Params: []types.LogicalType{types.NewDouble(), types.NewDouble()},
			Return: types.NewDouble(),
			Exec: func(args []types.Value) (types.Value, error) {
				b := args[1].AsDouble()
				if b == 0 {
					return types.Value{}, common.NewRuntimeError("division by zero", nil)
				}
				return types.DoubleValue(args[0].AsDouble() / b), nil
			},
		},
	}})

	cmp := func(name string, icmp func(a, b int64) bool, fcmp func(a, b float64) bool, scmp func(a, b string) bool) {
		r.Register(&expr.FunctionSet{Name: name, Overloads: []expr.Overload{
			{
				Params: []types.LogicalType{types.NewInt64(), types.NewInt64()},
				Return: types.NewBool(),
				Exec: func(args []types.Value) (types.Value, error) {
					return types.BoolValue(icmp(args[0].AsInt64(), args[1].AsInt64())), nil
				},
			},
			{
				Params: []types.LogicalType{types.NewDouble(), types.NewDouble()},
				Return: types.NewBool(),
				Exec: func(args []types.Value) (types.Value, error) {
					return types.BoolValue(fcmp(args[0].AsDouble(), args[1].AsDouble())), nil
				},
			},
			{
				Params: []types.LogicalType{types.NewString(), types.NewString()},
				Return: types.NewBool(),
				Exec: func(args []types.Value) (types.Value, error) {
					return types.BoolValue(scmp(args[0].AsString(), args[1].AsString())), nil
				},
			},
		}})
	}
	cmp("EQ", func(a, b int64) bool { return a == b }, func(a, b float64) bool { return a == b }, func(a, b string) bool { return a == b })
	cmp("LT", func(a, b int64) bool { return a < b }, func(a, b float64) bool { return a < b }, func(a, b string) bool { return a < b })
	cmp("GT", func(a, b int64) bool { return a > b }, func(a, b float64) bool { return a > b }, func(a, b string) bool { return a > b })
	cmp("LE", func(a, b int64) bool { return a <= b }, func(a, b float64) bool { return a <= b }, func(a, b string) bool { return a <= b })
	cmp("GE", func(a, b int64) bool { return a >= b }, func(a, b float64) bool { return a >= b }, func(a, b string) bool { return a >= b })

	r.Register(&expr.FunctionSet{Name: "AND", Overloads: []expr.Overload{{
		Params: []types.LogicalType{types.NewBool(), types.NewBool()},
		Return: types.NewBool(),
		Exec: func(args []types.Value) (types.Value, error) {
			return types.BoolValue(args[0].AsBool() && args[1].AsBool()), nil
		},
	}}})
	r.Register(&expr.FunctionSet{Name: "OR", Overloads: []expr.Overload{{
		Params: []types.LogicalType{types.NewBool(), types.NewBool()},
		Return: types.NewBool(),
		Exec: func(args []types.Value) (types.Value, error) {
			return types.BoolValue(args[0].AsBool() || args[1].AsBool()), nil
		},
	}}})
	r.Register(&expr.FunctionSet{Name: "NOT", Overloads: []expr.Overload{{
		Params: []types.LogicalType{types.NewBool()},
		Return: types.NewBool(),
		Exec: func(args []types.Value) (types.Value, error) {
			return types.BoolValue(!args[0].AsBool()), nil
		},
	}}})
}
