package logical

import (
	"fmt"
	"strings"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Expr expr.Node
	Desc bool
}

// OrderBy sorts the fully flattened tuple stream by a sequence of keys,
// stable on ties (spec.md §4.5 "OrderBy", §8 stability invariant). Like
// Skip/Limit it needs every group flat: a stable total order over
// factorized groups isn't well defined, so it flattens everything
// (FlattenAll).
type OrderBy struct {
	Base
	Keys []OrderItem
}

func NewOrderBy(child Operator, keys []OrderItem) *OrderBy {
	return &OrderBy{Base: newBase(KindOrderBy, child), Keys: keys}
}

func (o *OrderBy) String() string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", k.Expr, dir)
	}
	return fmt.Sprintf("OrderBy(%s)", strings.Join(parts, ", "))
}

func (o *OrderBy) ComputeFactorizedSchema() *schema.FactorizedSchema {
	out := childSchema(o.Children()[0]).Clone()
	o.setSchema(out)
	return out
}

func (o *OrderBy) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(o.ComputeFactorizedSchema())
}

func (o *OrderBy) GetGroupsPosToFlatten() []int {
	sc := childSchema(o.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}
