package logical

import (
	"fmt"
	"strings"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// AggregateItem is one aggregate output column: a FunctionKind ==
// AggregateFunction expr.FunctionCall together with its output alias.
type AggregateItem struct {
	Call  *expr.FunctionCall
	Alias string
}

// Aggregate groups by a set of key expressions and reduces the remaining
// groups through per-key accumulators (spec.md §4.5 "Aggregate"). It is a
// factorization boundary: output is always flat, one row per distinct
// key, so it demands FlattenAll over every group feeding either a key or
// an aggregate argument.
type Aggregate struct {
	Base
	Keys  []expr.Node
	Items []AggregateItem
}

func NewAggregate(child Operator, keys []expr.Node, items []AggregateItem) *Aggregate {
	return &Aggregate{Base: newBase(KindAggregate, child), Keys: keys, Items: items}
}

func (a *Aggregate) String() string {
	names := make([]string, len(a.Items))
	for i, it := range a.Items {
		names[i] = it.Alias
	}
	return fmt.Sprintf("Aggregate(keys=%d, %s)", len(a.Keys), strings.Join(names, ", "))
}

func (a *Aggregate) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := schema.NewFactorizedSchema()
	for _, k := range a.Keys {
		g := out.CreateFlatGroup()
		out.InsertToGroupAndScope(k, g)
	}
	for _, it := range a.Items {
		g := out.CreateFlatGroup()
		out.InsertToGroupAndScope(it.Call, g)
	}
	a.setSchema(out)
	return out
}

func (a *Aggregate) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(a.ComputeFactorizedSchema())
}

func (a *Aggregate) GetGroupsPosToFlatten() []int {
	sc := childSchema(a.Children()[0])
	seen := map[int]bool{}
	var deps []int
	add := func(e expr.Node) {
		for _, d := range sc.GetDependentGroupsPos(e) {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}
	for _, k := range a.Keys {
		add(k)
	}
	for _, it := range a.Items {
		add(it.Call)
	}
	return schema.FlattenAll(deps, sc)
}

// Distinct is a hash-aggregate over the full projected row with no
// accumulator payload (spec.md §4.5 "Distinct"): equivalent to
// Aggregate(keys=all in-scope columns, items=none).
type Distinct struct {
	Base
	Keys []expr.Node
}

func NewDistinct(child Operator, keys []expr.Node) *Distinct {
	return &Distinct{Base: newBase(KindDistinct, child), Keys: keys}
}

func (d *Distinct) String() string { return fmt.Sprintf("Distinct(%d keys)", len(d.Keys)) }

func (d *Distinct) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := schema.NewFactorizedSchema()
	for _, k := range d.Keys {
		g := out.CreateFlatGroup()
		out.InsertToGroupAndScope(k, g)
	}
	d.setSchema(out)
	return out
}

func (d *Distinct) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(d.ComputeFactorizedSchema())
}

func (d *Distinct) GetGroupsPosToFlatten() []int {
	sc := childSchema(d.Children()[0])
	seen := map[int]bool{}
	var deps []int
	for _, k := range d.Keys {
		for _, dep := range sc.GetDependentGroupsPos(k) {
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return schema.FlattenAll(deps, sc)
}
