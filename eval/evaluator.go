// Package eval implements the expression evaluator: given a bound
// expr.Node and a row environment, produce a types.Value, following
// spec.md §4.4 "Expression evaluation" (null propagation, overflow
// checking, function dispatch through the registry). Physical operators
// (physical.Filter, physical.Projection, ...) drive this per selected row
// of a vector.DataChunk; the per-row call is the vectorized kernel's
// inner loop (spec.md §5's "compiled per operator" requirement is met by
// building one evaluator closure per expression at physical-mapper time
// rather than re-walking the tree every row, see Compile).
package eval

import (
	"fmt"

	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// Env resolves a Variable/Property's bound name to a row's value. The
// physical layer supplies one per (chunk, selected-row) pair.
type Env interface {
	Get(name string) (types.Value, bool)
}

// MapEnv is the straightforward Env: a plain name -> value map, used by
// tests and by operators that have already materialized a row.
type MapEnv map[string]types.Value

func (m MapEnv) Get(name string) (types.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Kernel is a compiled, reusable evaluation closure for one expression.
type Kernel func(env Env, params map[string]types.Value) (types.Value, error)

// Compile builds a Kernel for e, resolving function calls through
// registry once rather than on every row.
func Compile(e expr.Node, registry *expr.Registry) (Kernel, error) {
	switch n := e.(type) {
	case *expr.Literal:
		v := n.Val
		return func(Env, map[string]types.Value) (types.Value, error) { return v, nil }, nil

	case *expr.Parameter:
		name := n.ParamName
		return func(_ Env, params map[string]types.Value) (types.Value, error) {
			v, ok := params[name]
			if !ok {
				return types.Value{}, common.NewRuntimeError(fmt.Sprintf("parameter $%s not bound", name), nil)
			}
			return v, nil
		}, nil

	case *expr.Variable:
		name := n.VarName
		return func(env Env, _ map[string]types.Value) (types.Value, error) {
			v, ok := env.Get(name)
			if !ok {
				return types.NullValue(n.Typ), nil
			}
			return v, nil
		}, nil

	case *expr.Property:
		name := n.Name()
		return func(env Env, _ map[string]types.Value) (types.Value, error) {
			v, ok := env.Get(name)
			if !ok {
				return types.NullValue(n.Typ), nil
			}
			return v, nil
		}, nil

	case *expr.PathProperty:
		name := n.Name()
		return func(env Env, _ map[string]types.Value) (types.Value, error) {
			v, ok := env.Get(name)
			if !ok {
				return types.NullValue(n.Typ), nil
			}
			return v, nil
		}, nil

	case *expr.Cast:
		operand, err := Compile(n.Operand, registry)
		if err != nil {
			return nil, err
		}
		target := n.Target
		return func(env Env, params map[string]types.Value) (types.Value, error) {
			v, err := operand(env, params)
			if err != nil {
				return types.Value{}, err
			}
			return castValue(v, target)
		}, nil

	case *expr.FunctionCall:
		return compileFunctionCall(n, registry)

	case *expr.Subquery:
		return nil, common.NewInternalError("subquery expressions must be lowered to Accumulate before evaluation", nil)

	default:
		return nil, common.NewInternalError(fmt.Sprintf("eval: unhandled expression kind %T", e), nil)
	}
}

func compileFunctionCall(n *expr.FunctionCall, registry *expr.Registry) (Kernel, error) {
	argTypes := make([]types.LogicalType, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = a.Type()
	}
	ov, err := registry.Resolve(n.FuncName, argTypes)
	if err != nil {
		return nil, &common.BinderError{Msg: err.Error()}
	}
	argKernels := make([]Kernel, len(n.Args))
	for i, a := range n.Args {
		k, err := Compile(a, registry)
		if err != nil {
			return nil, err
		}
		argKernels[i] = k
	}
	return func(env Env, params map[string]types.Value) (types.Value, error) {
		args := make([]types.Value, len(argKernels))
		anyNull := false
		for i, k := range argKernels {
			v, err := k(env, params)
			if err != nil {
				return types.Value{}, err
			}
			args[i] = v
			if v.Null {
				anyNull = true
			}
		}
		// Null propagation: a scalar function call is null if any operand
		// is null, except for the functions tolerantOfNull names as
		// defined to tolerate null arguments (COALESCE, IS_NULL,
		// IS_NOT_NULL).
		if anyNull && n.Kind == expr.ScalarFunction && !tolerantOfNull(n.FuncName) {
			return types.NullValue(n.Typ), nil
		}
		v, err := ov.Exec(args)
		if err != nil {
			return types.Value{}, common.NewRuntimeError(err.Error(), err)
		}
		return v, nil
	}, nil
}

func tolerantOfNull(name string) bool {
	switch name {
	case "COALESCE", "IS_NULL", "IS_NOT_NULL":
		return true
	default:
		return false
	}
}

// castValue implements the explicit-cast evaluation rule: numeric
// widening/narrowing, ANY resolution (spec.md §4.1 "stamp ANY with target
// type"), and identity for already-matching types.
func castValue(v types.Value, target types.LogicalType) (types.Value, error) {
	if v.Null {
		return types.NullValue(target), nil
	}
	if v.Type.Equal(target) {
		return v, nil
	}
	if v.Type.Kind == types.Any {
		v.Type = target
		return v, nil
	}
	if v.Type.IsNumeric() && target.IsNumeric() {
		return castNumeric(v, target)
	}
	if target.Kind == types.String {
		return types.StringValue(v.String()), nil
	}
	return types.Value{}, common.NewRuntimeError(fmt.Sprintf("cannot cast %s to %s", v.Type, target), nil)
}

func castNumeric(v types.Value, target types.LogicalType) (types.Value, error) {
	isFloatSrc := v.Type.Kind == types.Float || v.Type.Kind == types.Double
	var out types.Value
	switch target.Kind {
	case types.Double, types.Float:
		if isFloatSrc {
			out = types.DoubleValue(v.AsDouble())
		} else {
			out = types.DoubleValue(float64(v.AsInt64()))
		}
	default: // narrowing/widening to an integer kind
		if isFloatSrc {
			out = types.Int64Value(int64(v.AsDouble()))
		} else {
			out = types.Int64Value(v.AsInt64())
		}
	}
	out.Type = target
	return out, nil
}
