package binder

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// Scope maps names to bound expressions; nested queries push a frame
// (spec.md §4.1: "Maintain a scope stack mapping names to bound
// expressions; nested queries push a frame").
type Scope struct {
	parent *Scope
	vars   map[string]expr.Node
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]expr.Node{}}
}

// Declare binds name to e in this frame. Per spec.md §4.1 edge case,
// "variables cannot be bound to multiple types in the same scope": if the
// name already exists in this frame with a different type, it's an error.
func (s *Scope) Declare(name string, e expr.Node) error {
	if existing, ok := s.vars[name]; ok {
		if !existing.Type().Equal(e.Type()) {
			return &common.BinderError{Msg: "variable " + name + " already bound to a different type in this scope"}
		}
		return nil
	}
	s.vars[name] = e
	return nil
}

// Lookup searches this frame and its ancestors.
func (s *Scope) Lookup(name string) (expr.Node, bool) {
	for f := s; f != nil; f = f.parent {
		if e, ok := f.vars[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// Push creates a child frame (for subqueries).
func (s *Scope) Push() *Scope { return newScope(s) }

// variableType is a convenience for tests/binder internals needing a
// variable's resolved type without the full node.
func variableType(s *Scope, name string) (types.LogicalType, bool) {
	e, ok := s.Lookup(name)
	if !ok {
		return types.LogicalType{}, false
	}
	return e.Type(), true
}
