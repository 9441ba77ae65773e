package expr

import (
	"fmt"
	"strings"

	"github.com/nectardb/nectar/types"
)

// Literal is a constant value bound into the expression tree.
type Literal struct {
	Val  types.Value
	Uniq string
}

func NewLiteral(v types.Value, name string) *Literal { return &Literal{Val: v, Uniq: name} }
func (l *Literal) Name() string                       { return l.Uniq }
func (l *Literal) Type() types.LogicalType             { return l.Val.Type }
func (l *Literal) Children() []Node                    { return nil }
func (l *Literal) String() string                       { return l.Val.String() }
func (l *Literal) rewriteChildren(Rewriter) Node        { return l }

// Parameter is bound to a types.Value by name at execution time (spec.md
// §3, §4.1: "fail if name not in the parameter map").
type Parameter struct {
	ParamName string
	Typ       types.LogicalType
}

func NewParameter(name string, t types.LogicalType) *Parameter {
	return &Parameter{ParamName: name, Typ: t}
}
func (p *Parameter) Name() string                { return "$" + p.ParamName }
func (p *Parameter) Type() types.LogicalType      { return p.Typ }
func (p *Parameter) Children() []Node             { return nil }
func (p *Parameter) String() string               { return "$" + p.ParamName }
func (p *Parameter) rewriteChildren(Rewriter) Node { return p }

// Variable is a resolved binding to a factorized-schema group member
// (spec.md §3: "variable (resolved binding)").
type Variable struct {
	VarName string
	Typ     types.LogicalType
}

func NewVariable(name string, t types.LogicalType) *Variable {
	return &Variable{VarName: name, Typ: t}
}
func (v *Variable) Name() string                { return v.VarName }
func (v *Variable) Type() types.LogicalType      { return v.Typ }
func (v *Variable) Children() []Node             { return nil }
func (v *Variable) String() string               { return v.VarName }
func (v *Variable) rewriteChildren(Rewriter) Node { return v }

// Property is a node/rel property access, bound to a table and column
// (spec.md §3: "property of a node/rel (bound to table and column)").
type Property struct {
	Base       Node
	TableID    uint64
	ColumnName string
	Typ        types.LogicalType
	IsPK       bool
}

func NewProperty(base Node, tableID uint64, col string, t types.LogicalType, isPK bool) *Property {
	return &Property{Base: base, TableID: tableID, ColumnName: col, Typ: t, IsPK: isPK}
}
func (p *Property) Name() string           { return p.Base.Name() + "." + p.ColumnName }
func (p *Property) Type() types.LogicalType { return p.Typ }
func (p *Property) Children() []Node       { return []Node{p.Base} }
func (p *Property) String() string         { return p.Base.String() + "." + p.ColumnName }
func (p *Property) rewriteChildren(rw Rewriter) Node {
	cp := *p
	cp.Base = Rewrite(rw, p.Base)
	return &cp
}

// PathProperty accesses a property that lives along a variable-length
// path binding (spec.md §3: "property of path"), e.g. LENGTH(path).
type PathProperty struct {
	Path   Node
	Field  string
	Typ    types.LogicalType
}

func NewPathProperty(path Node, field string, t types.LogicalType) *PathProperty {
	return &PathProperty{Path: path, Field: field, Typ: t}
}
func (p *PathProperty) Name() string           { return p.Path.Name() + "#" + p.Field }
func (p *PathProperty) Type() types.LogicalType { return p.Typ }
func (p *PathProperty) Children() []Node       { return []Node{p.Path} }
func (p *PathProperty) String() string         { return fmt.Sprintf("%s.%s", p.Path, p.Field) }
func (p *PathProperty) rewriteChildren(rw Rewriter) Node {
	cp := *p
	cp.Path = Rewrite(rw, p.Path)
	return &cp
}

// FunctionKind distinguishes the three function categories spec.md §4.1
// resolves overloads for.
type FunctionKind uint8

const (
	ScalarFunction FunctionKind = iota
	AggregateFunction
	TableFunction
)

// FunctionCall is a bound call to a scalar, aggregate, or table function
// (spec.md §3: "function application (scalar/aggregate/table)").
type FunctionCall struct {
	FuncName string
	Kind     FunctionKind
	Args     []Node
	Typ      types.LogicalType
	Distinct bool // for aggregates, e.g. COUNT(DISTINCT x)
	Uniq     string
}

func NewFunctionCall(name string, kind FunctionKind, args []Node, t types.LogicalType, uniq string) *FunctionCall {
	return &FunctionCall{FuncName: name, Kind: kind, Args: args, Typ: t, Uniq: uniq}
}
func (f *FunctionCall) Name() string           { return f.Uniq }
func (f *FunctionCall) Type() types.LogicalType { return f.Typ }
func (f *FunctionCall) Children() []Node       { return f.Args }
func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	d := ""
	if f.Distinct {
		d = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", f.FuncName, d, strings.Join(parts, ", "))
}
func (f *FunctionCall) rewriteChildren(rw Rewriter) Node {
	cp := *f
	cp.Args = make([]Node, len(f.Args))
	for i, a := range f.Args {
		cp.Args[i] = Rewrite(rw, a)
	}
	return &cp
}

// Subquery wraps a correlated or uncorrelated sub-plan; Plan is typed as
// `any` here to avoid an import cycle with the logical package (the
// logical package imports expr, not the reverse), matching spec.md §3's
// "subquery" expression kind. The planner asserts Plan to
// logical.Operator.
type Subquery struct {
	Plan    any
	Typ     types.LogicalType
	Uniq    string
	IsExists bool
}

func NewSubquery(plan any, t types.LogicalType, uniq string, isExists bool) *Subquery {
	return &Subquery{Plan: plan, Typ: t, Uniq: uniq, IsExists: isExists}
}
func (s *Subquery) Name() string           { return s.Uniq }
func (s *Subquery) Type() types.LogicalType { return s.Typ }
func (s *Subquery) Children() []Node       { return nil }
func (s *Subquery) String() string {
	if s.IsExists {
		return "EXISTS(subquery)"
	}
	return "(subquery)"
}
func (s *Subquery) rewriteChildren(Rewriter) Node { return s }

// Cast stamps a target type onto an ANY-typed operand (spec.md §4.1:
// "For cast expressions on ANY values, record the target type and stamp
// the value").
type Cast struct {
	Operand Node
	Target  types.LogicalType
}

func NewCast(operand Node, target types.LogicalType) *Cast {
	return &Cast{Operand: operand, Target: target}
}
func (c *Cast) Name() string           { return "CAST(" + c.Operand.Name() + ")" }
func (c *Cast) Type() types.LogicalType { return c.Target }
func (c *Cast) Children() []Node       { return []Node{c.Operand} }
func (c *Cast) String() string         { return fmt.Sprintf("CAST(%s AS %s)", c.Operand, c.Target) }
func (c *Cast) rewriteChildren(rw Rewriter) Node {
	cp := *c
	cp.Operand = Rewrite(rw, c.Operand)
	return &cp
}
