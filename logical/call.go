package logical

import (
	"fmt"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// InQueryCall invokes a table function mid-pipeline, producing a new
// unflat group per bound row (spec.md §4.5 "InQueryCall"), e.g. a
// shortest-path or algorithm macro exposed through the function
// registry's TableFunction kind.
type InQueryCall struct {
	Base
	Call    *expr.FunctionCall
	OutVars []*expr.Variable
}

func NewInQueryCall(child Operator, call *expr.FunctionCall, outVars []*expr.Variable) *InQueryCall {
	return &InQueryCall{Base: newBase(KindInQueryCall, child), Call: call, OutVars: outVars}
}

func (c *InQueryCall) String() string { return fmt.Sprintf("InQueryCall(%s)", c.Call.FuncName) }

func (c *InQueryCall) ComputeFactorizedSchema() *schema.FactorizedSchema {
	s := childSchema(c.Children()[0]).Clone()
	g := s.CreateGroup()
	for _, v := range c.OutVars {
		s.InsertToGroupAndScope(v, g)
	}
	c.setSchema(s)
	return s
}

func (c *InQueryCall) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(c.ComputeFactorizedSchema())
}

func (c *InQueryCall) GetGroupsPosToFlatten() []int {
	s := childSchema(c.Children()[0])
	deps := s.GetDependentGroupsPos(c.Call)
	return schema.FlattenAllButOne(deps, s)
}

// WriteItem is one SET target=expr assignment.
type WriteItem struct {
	Target expr.Node
	Value  expr.Node
}

// Create inserts new nodes/rels built from its input's bound variables
// (spec.md §4.5 "Create"); it emits its input unchanged, for chaining
// with further write clauses or a RETURN.
type Create struct {
	Base
	NodeTables []*catalog.TableSchema
	RelTables  []*catalog.TableSchema
}

func NewCreate(child Operator, nodeTables, relTables []*catalog.TableSchema) *Create {
	return &Create{Base: newBase(KindCreate, child), NodeTables: nodeTables, RelTables: relTables}
}

func (c *Create) String() string { return "Create" }

func (c *Create) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(c.Children()[0]).Clone()
	c.setSchema(out)
	return out
}

func (c *Create) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(c.ComputeFactorizedSchema())
}

func (c *Create) GetGroupsPosToFlatten() []int {
	sc := childSchema(c.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}

// Delete removes bound nodes/rels (spec.md §4.5 "Delete").
type Delete struct {
	Base
	Targets []expr.Node
	Detach  bool
}

func NewDelete(child Operator, targets []expr.Node, detach bool) *Delete {
	return &Delete{Base: newBase(KindDelete, child), Targets: targets, Detach: detach}
}

func (d *Delete) String() string { return fmt.Sprintf("Delete(detach=%v)", d.Detach) }

func (d *Delete) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(d.Children()[0]).Clone()
	d.setSchema(out)
	return out
}

func (d *Delete) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(d.ComputeFactorizedSchema())
}

func (d *Delete) GetGroupsPosToFlatten() []int {
	sc := childSchema(d.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}

// Set applies property assignments to bound nodes/rels (spec.md §4.5
// "Set").
type Set struct {
	Base
	Items []WriteItem
}

func NewSet(child Operator, items []WriteItem) *Set {
	return &Set{Base: newBase(KindSet, child), Items: items}
}

func (s *Set) String() string { return fmt.Sprintf("Set(%d items)", len(s.Items)) }

func (s *Set) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(s.Children()[0]).Clone()
	s.setSchema(out)
	return out
}

func (s *Set) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(s.ComputeFactorizedSchema())
}

func (s *Set) GetGroupsPosToFlatten() []int {
	sc := childSchema(s.Children()[0])
	seen := map[int]bool{}
	var deps []int
	for _, it := range s.Items {
		for _, d := range sc.GetDependentGroupsPos(it.Target) {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
		for _, d := range sc.GetDependentGroupsPos(it.Value) {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}
	return schema.FlattenAllButOne(deps, sc)
}
