package expr

import (
	"fmt"

	"github.com/nectardb/nectar/types"
)

// Overload is one entry in a function's signature set: parameter types
// (types.Any acts as a wildcard), a return type, and an execution
// callback (spec.md §6 "Expression & function registry").
type Overload struct {
	Params   []types.LogicalType
	Variadic bool // last Params entry repeats
	Return   types.LogicalType
	Exec     func(args []types.Value) (types.Value, error)
}

// FunctionSet is a collection of overload descriptors for one function
// name (spec.md §6).
type FunctionSet struct {
	Name      string
	Overloads []Overload
}

// Registry resolves functions by name + argument signature.
type Registry struct {
	funcs map[string]*FunctionSet
}

func NewRegistry() *Registry {
	return &Registry{funcs: map[string]*FunctionSet{}}
}

func (r *Registry) Register(fs *FunctionSet) {
	r.funcs[fs.Name] = fs
}

func (r *Registry) Lookup(name string) (*FunctionSet, bool) {
	fs, ok := r.funcs[name]
	return fs, ok
}

// castCost scores how expensive it is to implicitly convert `from` into
// `to`; a higher number is worse. impossibleCast signals "impossible".
const impossibleCast = 1 << 30

func castCost(from, to types.LogicalType) int {
	if from.Equal(to) {
		return 0
	}
	if from.Kind == types.Any || to.Kind == types.Any {
		return 1
	}
	if from.IsNumeric() && to.IsNumeric() {
		// widening is cheap, narrowing/float<->int is pricier but allowed
		fr, tr := numericRank[from.Kind], numericRank[to.Kind]
		if tr >= fr {
			return 2 + (tr - fr)
		}
		return 10 + (fr - tr)
	}
	if from.Kind == types.String || to.Kind == types.String {
		return 5
	}
	return impossibleCast
}

// Resolve picks the minimum-cost overload for name applied to args'
// types, per spec.md §4.1: "the minimum-cost overload wins; on tie, the
// binder fails with an ambiguity error."
func (r *Registry) Resolve(name string, argTypes []types.LogicalType) (*Overload, error) {
	fs, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("function %q not found", name)
	}
	best := -1
	bestCost := impossibleCast
	tie := false
	for i := range fs.Overloads {
		ov := &fs.Overloads[i]
		cost, ok := scoreOverload(ov, argTypes)
		if !ok {
			continue
		}
		switch {
		case cost < bestCost:
			bestCost = cost
			best = i
			tie = false
		case cost == bestCost:
			tie = true
		}
	}
	if best == -1 {
		return nil, fmt.Errorf("no matching overload for %q with %d argument(s)", name, len(argTypes))
	}
	if tie {
		return nil, fmt.Errorf("ambiguous call to %q: multiple overloads at equal cost", name)
	}
	return &fs.Overloads[best], nil
}

func scoreOverload(ov *Overload, argTypes []types.LogicalType) (int, bool) {
	if !ov.Variadic && len(argTypes) != len(ov.Params) {
		return 0, false
	}
	if ov.Variadic && len(argTypes) < len(ov.Params)-1 {
		return 0, false
	}
	total := 0
	for i, at := range argTypes {
		pi := i
		if ov.Variadic && pi >= len(ov.Params) {
			pi = len(ov.Params) - 1
		}
		c := castCost(at, ov.Params[pi])
		if c >= impossibleCast {
			return 0, false
		}
		total += c
	}
	return total, true
}
