// Package logical implements the logical operator tree (spec.md §3
// "Logical operator", §4.3 "Planner"): an algebraic plan of operators each
// carrying a factorized-schema-aware schema, computed in one of two modes
// depending on the downstream consumer.
//
// Grounded on _examples/SnellerInc-sneller/plan/pir/pir.go's Step
// interface (rewrite/walk/equals methods, a parent-pointing `table`/
// `input` base struct) and plan/plan.go's Nonterminal embedding
// (input()/setinput()), generalized from Sneller's single-child chain to
// the multi-child tree this spec's join/union/cross-product operators
// need. Per spec.md §9's design note ("Visitor hierarchies -> tagged sum +
// dispatch table"), each concrete operator type is a flat, one-level
// interface implementation (not a deep hierarchy): the interface method
// set *is* the per-kind dispatch table.
package logical

import (
	"fmt"

	"github.com/nectardb/nectar/schema"
)

// Kind tags the variant of a logical Operator (spec.md §3's enumeration).
type Kind uint8

const (
	KindScanNode Kind = iota
	KindExtend
	KindRecursiveExtend
	KindFilter
	KindProjection
	KindFlatten
	KindLimit
	KindSkip
	KindOrderBy
	KindHashJoin
	KindCrossProduct
	KindDistinct
	KindAggregate
	KindAccumulate
	KindUnion
	KindUnwind
	KindInQueryCall
	KindCreate
	KindDelete
	KindSet
	KindCopyFrom
	KindCopyTo
	KindDDL
	KindAttachDatabase
	KindDetachDatabase
	KindUseDatabase
	KindConfigSet
	KindMultiplicityReducer
	KindDummyScan
)

var kindNames = [...]string{
	"ScanNode", "Extend", "RecursiveExtend", "Filter", "Projection",
	"Flatten", "Limit", "Skip", "OrderBy", "HashJoin", "CrossProduct",
	"Distinct", "Aggregate", "Accumulate", "Union", "Unwind",
	"InQueryCall", "Create", "Delete", "Set", "CopyFrom", "CopyTo", "DDL",
	"AttachDatabase", "DetachDatabase", "UseDatabase", "ConfigSet",
	"MultiplicityReducer", "DummyScan",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Operator is the interface every logical operator implements (spec.md
// §3: "Tree node with operator kind, child operators, owned
// predicate/projection/aggregate/scan/extend info, and a computed
// schema").
type Operator interface {
	fmt.Stringer
	Kind() Kind
	Children() []Operator
	SetChild(i int, child Operator)

	// ComputeFlatSchema computes the pipeline-breaking boundary view:
	// every unflat group from the child(ren) is treated as flattened
	// (spec.md §4: "(a) computeFlatSchema (pipeline-breaking boundary
	// view)").
	ComputeFlatSchema() *schema.FactorizedSchema
	// ComputeFactorizedSchema computes the normal in-pipeline view
	// (spec.md §4: "(b) computeFactorizedSchema (normal in-pipeline
	// view)").
	ComputeFactorizedSchema() *schema.FactorizedSchema
	// GetGroupsPosToFlatten reports which of this operator's dependent
	// groups must be flattened before it can execute correctly (spec.md
	// §4: "(c) getGroupsPosToFlatten() when it requires flattening").
	GetGroupsPosToFlatten() []int
	// Schema returns the most recently computed schema (cached by the
	// planner after calling one of the Compute* methods).
	Schema() *schema.FactorizedSchema
	setSchema(*schema.FactorizedSchema)
}

// Base is embedded by every concrete operator; it owns the child slice and
// the cached computed schema (mirrors Nonterminal in
// _examples/SnellerInc-sneller/plan/plan.go, generalized to N children).
type Base struct {
	kind     Kind
	children []Operator
	computed *schema.FactorizedSchema
}

func newBase(kind Kind, children ...Operator) Base {
	return Base{kind: kind, children: children}
}

func (b *Base) Kind() Kind              { return b.kind }
func (b *Base) Children() []Operator    { return b.children }
func (b *Base) Schema() *schema.FactorizedSchema { return b.computed }
func (b *Base) setSchema(s *schema.FactorizedSchema) { b.computed = s }

func (b *Base) SetChild(i int, c Operator) {
	if i < 0 || i >= len(b.children) {
		panic("logical: SetChild index out of range")
	}
	b.children[i] = c
}

// childSchema is a small helper: the factorized schema an operator's sole
// child presents for in-pipeline consumption.
func childSchema(child Operator) *schema.FactorizedSchema {
	if s := child.Schema(); s != nil {
		return s
	}
	return child.ComputeFactorizedSchema()
}
