// Package binder resolves names from the parsed statement AST into bound
// statements/expressions with resolved types and table references against
// a catalog (spec.md §4.1). Since the parser itself is out of this core's
// scope (spec.md §1), this package also defines the minimal parsed-AST
// shapes the binder consumes — standing in for whatever concrete parser
// front-end produces them.
package binder

import "github.com/nectardb/nectar/catalog"

// ParsedExpr is the parser's output expression shape.
type ParsedExpr interface{ isParsedExpr() }

type ParsedLiteral struct {
	// Text is the literal's source text; kind-specific parsing (int,
	// float, string, bool, null) happens in the binder.
	Text string
	Kind string // "int", "float", "string", "bool", "null"
}

type ParsedParameter struct{ Name string }
type ParsedVariable struct{ Name string }
type ParsedStar struct{} // COUNT(*)

type ParsedProperty struct {
	Base ParsedExpr
	Field string
}

type ParsedFunctionCall struct {
	Func     string
	Args     []ParsedExpr
	Distinct bool
}

type ParsedSubquery struct {
	Query    *ParsedQuery
	IsExists bool
}

func (ParsedLiteral) isParsedExpr()      {}
func (ParsedParameter) isParsedExpr()    {}
func (ParsedVariable) isParsedExpr()     {}
func (ParsedStar) isParsedExpr()         {}
func (ParsedProperty) isParsedExpr()     {}
func (ParsedFunctionCall) isParsedExpr() {}
func (ParsedSubquery) isParsedExpr()     {}

// RecursiveMode distinguishes fixed-length, variable-length, shortest,
// and all-shortest-paths traversal (spec.md §4.5, §12 supplemented
// feature).
type RecursiveMode uint8

const (
	RecNone RecursiveMode = iota
	RecVarLength
	RecShortest
	RecAllShortest
)

// ParsedPatternElem is one node or rel step of a MATCH path.
type ParsedPatternElem struct {
	IsRel bool
	Var   string
	Label string // table name; "" means "any label"

	// Rel-only fields.
	Direction      catalog.Direction
	MinHops        int
	MaxHops        int
	Mode           RecursiveMode
}

type ParsedMatchClause struct {
	Path     []ParsedPatternElem
	Optional bool
	Where    ParsedExpr
}

type ParsedUnwindClause struct {
	Expr ParsedExpr
	As   string
}

type ParsedReturnItem struct {
	Expr  ParsedExpr
	Alias string
}

type ParsedOrderItem struct {
	Expr ParsedExpr
	Desc bool
}

// ParsedQuery is a MATCH ... [WHERE ...] [UNWIND ...] RETURN ... [ORDER BY
// ...] [SKIP ...] [LIMIT ...] statement, sufficient for spec.md §8's six
// test scenarios.
type ParsedQuery struct {
	Matches []ParsedMatchClause
	Unwinds []ParsedUnwindClause
	Return  []ParsedReturnItem
	OrderBy []ParsedOrderItem
	Skip    *int64
	Limit   *int64
	Distinct bool
}

// ParsedStatement is the top-level parser output (spec.md §4.1: "query,
// DDL, DML, copy, attach/detach/use, call").
type ParsedStatement interface{ isParsedStatement() }

func (*ParsedQuery) isParsedStatement() {}

type ParsedCreateNodeTable struct {
	Name       string
	Properties []ParsedPropertyDef
	PrimaryKey string
}

type ParsedPropertyDef struct {
	Name     string
	TypeName string
}

type ParsedCreateRelTable struct {
	Name       string
	Src, Dst   string
	Properties []ParsedPropertyDef
}

type ParsedDropTable struct{ Name string }

func (*ParsedCreateNodeTable) isParsedStatement() {}
func (*ParsedCreateRelTable) isParsedStatement()  {}
func (*ParsedDropTable) isParsedStatement()       {}

type ParsedCopyFrom struct {
	Table string
	Path  string
	PreservingOrder bool
}

type ParsedCopyTo struct {
	Table string
	Path  string
}

func (*ParsedCopyFrom) isParsedStatement() {}
func (*ParsedCopyTo) isParsedStatement()   {}

type ParsedAttach struct{ Path, Alias, DBType string }
type ParsedDetach struct{ Alias string }
type ParsedUse struct{ Alias string }

func (*ParsedAttach) isParsedStatement() {}
func (*ParsedDetach) isParsedStatement() {}
func (*ParsedUse) isParsedStatement()    {}

// ParsedCall is the standalone `CALL k=v` session-config form (spec.md
// §6); in-query CALL (table function) is represented via
// ParsedFunctionCall inside a ParsedQuery instead.
type ParsedCall struct {
	Key   string
	Value string
}

func (*ParsedCall) isParsedStatement() {}
