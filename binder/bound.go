package binder

import (
	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// StatementKind tags the kind of bound statement (spec.md §4.1).
type StatementKind uint8

const (
	StmtQuery StatementKind = iota
	StmtDDL
	StmtCopyFrom
	StmtCopyTo
	StmtDatabaseOp
	StmtCall
)

// ResultColumn is one column of a statement's result descriptor (spec.md
// §4.1: "result descriptor (column names + types)").
type ResultColumn struct {
	Name string
	Type types.LogicalType
}

// PatternElemKind tags a bound path element.
type PatternElemKind uint8

const (
	NodeElem PatternElemKind = iota
	RelElem
)

// BoundPatternElem is one resolved node or rel step of a MATCH path; a
// chain of these maps directly to a ScanNode followed by alternating
// Extend/RecursiveExtend logical operators (planner/build.go).
type BoundPatternElem struct {
	Kind    PatternElemKind
	Var     string
	TableID uint64
	Type    types.LogicalType

	Direction catalog.Direction
	MinHops   int
	MaxHops   int
	Mode      RecursiveMode
}

// BoundMatchClause is a resolved MATCH (spec.md §3: scan node / extend /
// recursive extend chain feeding a filter).
type BoundMatchClause struct {
	Path     []BoundPatternElem
	Optional bool
	Where    expr.Node
}

// BoundUnwind is a resolved UNWIND clause.
type BoundUnwind struct {
	Expr expr.Node
	As   *expr.Variable
}

// BoundProjectionItem is one resolved RETURN expression.
type BoundProjectionItem struct {
	Expr  expr.Node
	Alias string
}

// BoundOrderItem is one resolved ORDER BY key.
type BoundOrderItem struct {
	Expr expr.Node
	Desc bool
}

// BoundQuery is the resolved form of a ParsedQuery.
type BoundQuery struct {
	Matches    []BoundMatchClause
	Unwinds    []BoundUnwind
	Projection []BoundProjectionItem
	OrderBy    []BoundOrderItem
	Skip       *int64
	Limit      *int64
	Distinct   bool
	HasAggregate bool
}

// BoundCreateTable/BoundDropTable model the DDL statements (spec.md §6).
type BoundDDL struct {
	CreateNode *catalog.TableSchema
	CreateRel  *catalog.TableSchema
	DropName   string
}

type BoundCopy struct {
	Table           *catalog.TableSchema
	Path            string
	PreservingOrder bool
}

type BoundDatabaseOp struct {
	Kind  string // "attach", "detach", "use"
	Path  string
	Alias string
}

type BoundCall struct {
	Key, Value string
}

// BoundStatement is the binder's output (spec.md §4.1).
type BoundStatement struct {
	Kind          StatementKind
	ResultColumns []ResultColumn
	ReadOnly      bool

	Query      *BoundQuery
	DDL        *BoundDDL
	Copy       *BoundCopy
	DatabaseOp *BoundDatabaseOp
	Call       *BoundCall
}
