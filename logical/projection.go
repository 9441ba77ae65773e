package logical

import (
	"fmt"
	"strings"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// ProjectionItem is one computed output column.
type ProjectionItem struct {
	Expr  expr.Node
	Alias string
}

// Projection computes a new set of output expressions and narrows scope
// to exactly those (spec.md §3, §4.2: FlattenAllButOne policy).
type Projection struct {
	Base
	Items []ProjectionItem
}

func NewProjection(child Operator, items []ProjectionItem) *Projection {
	return &Projection{Base: newBase(KindProjection, child), Items: items}
}

func (p *Projection) String() string {
	names := make([]string, len(p.Items))
	for i, it := range p.Items {
		names[i] = it.Alias
	}
	return fmt.Sprintf("Projection(%s)", strings.Join(names, ", "))
}

func (p *Projection) ComputeFactorizedSchema() *schema.FactorizedSchema {
	base := childSchema(p.Children()[0])
	out := base.Clone()
	// narrow scope: drop everything, then bring projected items back into
	// scope, inserting into whichever group(s) they already depend on
	// (computed expressions with no existing residency get a fresh flat
	// group, since a pure function of in-scope groups adds no new
	// cardinality axis).
	for _, name := range out.ScopeNames() {
		out.Drop(name)
	}
	for _, it := range p.Items {
		deps := out.GetDependentGroupsPos(it.Expr)
		g := 0
		if len(deps) > 0 {
			g = deps[0]
		} else {
			g = out.CreateFlatGroup()
		}
		out.InsertToGroupAndScope(it.Expr, g)
	}
	p.setSchema(out)
	return out
}

func (p *Projection) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(p.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten uses FlattenAllButOne across the dependent groups
// of all projected expressions (spec.md §4.2).
func (p *Projection) GetGroupsPosToFlatten() []int {
	s := childSchema(p.Children()[0])
	var deps []int
	seen := map[int]bool{}
	for _, it := range p.Items {
		for _, d := range s.GetDependentGroupsPos(it.Expr) {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}
	return schema.FlattenAllButOne(deps, s)
}
