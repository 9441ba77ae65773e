package logical

import (
	"fmt"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// Unwind expands a list-valued expression into a new unflat group, one
// element bound to As per input row (spec.md §4.5 "Unwind"). It is the
// one operator that introduces factorization from a scalar input rather
// than from storage.
type Unwind struct {
	Base
	ListExpr expr.Node
	As       *expr.Variable
}

func NewUnwind(child Operator, listExpr expr.Node, as *expr.Variable) *Unwind {
	return &Unwind{Base: newBase(KindUnwind, child), ListExpr: listExpr, As: as}
}

func (u *Unwind) String() string { return fmt.Sprintf("Unwind(%s AS %s)", u.ListExpr, u.As) }

func (u *Unwind) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := childSchema(u.Children()[0]).Clone()
	g := s.CreateGroup()
	s.InsertToGroupAndScope(u.As, g)
	u.setSchema(s)
	return s
}

func (u *Unwind) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(u.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten uses FlattenAll over ListExpr's dependent groups:
// every group the list expression reads is flattened before Unwind
// expands it.
func (u *Unwind) GetGroupsPosToFlatten() []int {
	s := childSchema(u.Children()[0])
	return schema.FlattenAll(s.GetDependentGroupsPos(u.ListExpr), s)
}
