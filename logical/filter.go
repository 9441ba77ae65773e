package logical

import (
	"fmt"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// Filter evaluates a predicate over the input chunk and rewrites the
// selection vector of the governing group; it preserves factorization
// (spec.md §4.5 "Filter"). Per spec.md §8, applying the same filter twice
// is equivalent to applying it once (idempotence), which holds here
// because Filter never mutates the underlying groups, only scope/selection.
type Filter struct {
	Base
	Predicate expr.Node
}

func NewFilter(child Operator, predicate expr.Node) *Filter {
	return &Filter{Base: newBase(KindFilter, child), Predicate: predicate}
}

func (f *Filter) String() string { return fmt.Sprintf("Filter(%s)", f.Predicate) }

func (f *Filter) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := childSchema(f.Children()[0]).Clone()
	f.setSchema(s)
	return s
}

func (f *Filter) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(f.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten uses FlattenAllButOne: Filter preserves one
// unflat axis (spec.md §4.2).
func (f *Filter) GetGroupsPosToFlatten() []int {
	s := childSchema(f.Children()[0])
	return schema.FlattenAllButOne(s.GetDependentGroupsPos(f.Predicate), s)
}
