package logical

import (
	"fmt"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// Extend consults the storage layer's adjacency lists/columns to produce
// neighbor-id (and optionally property) vectors for a bound node (spec.md
// §3, §4.5 "Extend"). It preserves factorization: the neighbor group is a
// new unflat group, and the operator never forces a flatten of its own
// input.
type Extend struct {
	Base
	BoundVar     expr.Node
	NbrVar       *expr.Variable
	RelVar       *expr.Variable // nil if the rel binding itself isn't projected
	RelTableID   uint64
	Direction    catalog.Direction
	RelProperties []expr.Node
}

func NewExtend(child Operator, bound expr.Node, nbrVar *expr.Variable, relVar *expr.Variable, relTableID uint64, dir catalog.Direction) *Extend {
	return &Extend{Base: newBase(KindExtend, child), BoundVar: bound, NbrVar: nbrVar, RelVar: relVar, RelTableID: relTableID, Direction: dir}
}

func (e *Extend) String() string {
	return fmt.Sprintf("Extend(%s -> %s, rel=%d)", e.BoundVar, e.NbrVar, e.RelTableID)
}

func (e *Extend) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := childSchema(e.Children()[0]).Clone()
	g := s.CreateGroup()
	s.InsertToGroupAndScope(e.NbrVar, g)
	if e.RelVar != nil {
		s.InsertToGroupAndScope(e.RelVar, g)
	}
	for _, p := range e.RelProperties {
		s.InsertToGroupAndScope(p, g)
	}
	e.setSchema(s)
	return s
}

func (e *Extend) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(e.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten is empty: Extend's physical contract ("given a
// bound-node vector, emits neighbor-id vectors") tolerates an unflat
// bound-node input by vectorizing over it (spec.md §4.5).
func (e *Extend) GetGroupsPosToFlatten() []int { return nil }

// RecursiveMode mirrors binder.RecursiveMode without importing binder
// (logical must not depend on binder; binder depends on logical's
// planner input shape only via the bound statement, not the reverse).
type RecursiveMode uint8

const (
	RecVarLength RecursiveMode = iota
	RecShortest
	RecAllShortest
)

// RecursiveExtend implements shortest/all-shortest/variable-length
// extend via a BFS frontier (spec.md §4.5, state machine
// "INIT -> LEVEL_K -> (frontier empty v K==upper) -> EMIT_PATHS -> DONE",
// §12 supplemented feature grounded on
// _examples/original_source/extension/algo/src/common/in_mem_graph.cpp's
// frontier/visited-bitmap shape).
type RecursiveExtend struct {
	Base
	BoundVar   expr.Node
	PathVar    *expr.Variable // bound to the resulting path value
	DstVar     *expr.Variable
	RelTableID uint64
	Direction  catalog.Direction
	LowerBound int
	UpperBound int
	Mode       RecursiveMode
}

func NewRecursiveExtend(child Operator, bound expr.Node, dstVar, pathVar *expr.Variable, relTableID uint64, dir catalog.Direction, lower, upper int, mode RecursiveMode) *RecursiveExtend {
	return &RecursiveExtend{
		Base: newBase(KindRecursiveExtend, child), BoundVar: bound, PathVar: pathVar, DstVar: dstVar,
		RelTableID: relTableID, Direction: dir, LowerBound: lower, UpperBound: upper, Mode: mode,
	}
}

func (r *RecursiveExtend) String() string {
	return fmt.Sprintf("RecursiveExtend(%s -> %s, [%d..%d], mode=%d)", r.BoundVar, r.DstVar, r.LowerBound, r.UpperBound, r.Mode)
}

func (r *RecursiveExtend) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := childSchema(r.Children()[0]).Clone()
	g := s.CreateGroup()
	s.InsertToGroupAndScope(r.DstVar, g)
	if r.PathVar != nil {
		s.InsertToGroupAndScope(r.PathVar, g)
	}
	r.setSchema(s)
	return s
}

func (r *RecursiveExtend) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(r.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten flattens every dependent group of BoundVar: the
// BFS frontier is maintained per source row, so the operator needs a
// single-row view of its input (FlattenAll, spec.md §4.2).
func (r *RecursiveExtend) GetGroupsPosToFlatten() []int {
	s := childSchema(r.Children()[0])
	return schema.FlattenAll(s.GetDependentGroupsPos(r.BoundVar), s)
}
