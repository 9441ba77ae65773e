package logical

import (
	"fmt"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/schema"
)

// JoinKind distinguishes inner from left-outer joins; an outer join
// stamps a Multiplicity-bearing null row on probe misses (spec.md §3
// Multiplicity invariant).
type JoinKind uint8

const (
	InnerJoin JoinKind = iota
	LeftOuterJoin
)

// HashJoin builds a hash table over one side's key columns and probes it
// with the other's (spec.md §4.5 "HashJoin"). Both children arrive
// pre-flattened: joining across unflat groups of two independently
// factorized streams is not representable, so HashJoin always requires a
// full flatten on both sides.
type HashJoin struct {
	Base
	Kind      JoinKind
	ProbeKeys []expr.Node
	BuildKeys []expr.Node
}

// NewHashJoin takes probe as child 0 and build as child 1.
func NewHashJoin(probe, build Operator, kind JoinKind, probeKeys, buildKeys []expr.Node) *HashJoin {
	return &HashJoin{Base: newBase(KindHashJoin, probe, build), Kind: kind, ProbeKeys: probeKeys, BuildKeys: buildKeys}
}

func (h *HashJoin) String() string { return fmt.Sprintf("HashJoin(kind=%d)", h.Kind) }

func (h *HashJoin) ComputeFactorizedSchema() *schema.FactorizedSchema {
	probe := childSchema(h.Children()[0])
	build := childSchema(h.Children()[1])
	out := mergeFlatSchemas(probe, build)
	h.setSchema(out)
	return out
}

func (h *HashJoin) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(h.ComputeFactorizedSchema())
}

// GetGroupsPosToFlatten flattens every group on both sides: a hash join's
// physical contract operates on flat rows.
func (h *HashJoin) GetGroupsPosToFlatten() []int {
	// This covers the probe (first) child only; planner.Finalize's
	// finalizeHashJoin flattens the build side through
	// BuildGroupsPosToFlatten.
	sc := childSchema(h.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}

// BuildGroupsPosToFlatten mirrors GetGroupsPosToFlatten for the build
// (second) child; HashJoin is the one operator whose two children have
// independent flatten requirements, so it exposes a second accessor
// rather than overloading the single-child Operator method.
func (h *HashJoin) BuildGroupsPosToFlatten() []int {
	sc := childSchema(h.Children()[1])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}

// CrossProduct pairs every tuple of its left child with every tuple of
// its right child (spec.md §4.5 "CrossProduct"); used when the planner
// finds no join predicate connecting two pattern components.
type CrossProduct struct {
	Base
}

func NewCrossProduct(left, right Operator) *CrossProduct {
	return &CrossProduct{Base: newBase(KindCrossProduct, left, right)}
}

func (c *CrossProduct) String() string { return "CrossProduct" }

func (c *CrossProduct) ComputeFactorizedSchema() *schema.FactorizedSchema {
	left := childSchema(c.Children()[0])
	right := childSchema(c.Children()[1])
	out := mergeFlatSchemas(left, right)
	c.setSchema(out)
	return out
}

func (c *CrossProduct) ComputeFlatSchema() *schema.FactorizedSchema {
	return schema.FlattenedView(c.ComputeFactorizedSchema())
}

func (c *CrossProduct) GetGroupsPosToFlatten() []int {
	sc := childSchema(c.Children()[0])
	all := make([]int, len(sc.Groups))
	for i := range all {
		all[i] = i
	}
	return schema.FlattenAll(all, sc)
}

// mergeFlatSchemas combines two already-flattened schemas into one flat
// schema whose scope is the union of both sides' scope names, each
// re-homed into its own flat group (join/cross-product output has no
// remaining factorization axis).
func mergeFlatSchemas(a, b *schema.FactorizedSchema) *schema.FactorizedSchema {
	out := schema.NewFactorizedSchema()
	for _, s := range []*schema.FactorizedSchema{a, b} {
		flat := schema.FlattenedView(s)
		for _, name := range flat.ScopeNames() {
			pos, _ := flat.GroupPos(name)
			g := flat.Groups[pos]
			e, ok := g.ExprByName(name)
			if !ok {
				continue
			}
			ng := out.CreateFlatGroup()
			out.InsertToGroupAndScope(e, ng)
		}
	}
	return out
}
