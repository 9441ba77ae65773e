package logical

import (
	"fmt"

	"github.com/nectardb/nectar/schema"
)

// Union concatenates two flattened tuple streams of identical shape
// (spec.md §4.5 "Union"); used to lower UNION [ALL] queries.
type Union struct {
	Base
	All bool
}

func NewUnion(left, right Operator, all bool) *Union {
	return &Union{Base: newBase(KindUnion, left, right), All: all}
}

func (u *Union) String() string {
	if u.All {
		return "Union(ALL)"
	}
	return "Union"
}

func (u *Union) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := schema.FlattenedView(childSchema(u.Children()[0]))
	u.setSchema(out)
	return out
}

func (u *Union) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(u.ComputeFactorizedSchema())
}

func (u *Union) GetGroupsPosToFlatten() []int {
	sc := childSchema(u.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}
