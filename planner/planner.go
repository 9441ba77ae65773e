// Package planner builds the logical plan bottom-up from a bound
// statement, inserting Flatten operators wherever a consumer's
// GetGroupsPosToFlatten names a group its child still reports unflat, and
// tracks a cardinality estimate alongside the tree (spec.md §4.3
// "Planner"). Grounded on
// _examples/SnellerInc-sneller/plan/pir/cardinality.go's per-step
// cardinality propagation, generalized from Sneller's single flat row
// count to this spec's group-product formula (spec.md §3).
package planner

import (
	"github.com/nectardb/nectar/logical"
)

// Plan pairs a finished logical tree with its root's cardinality
// estimate, the unit the planner threads through join enumeration.
type Plan struct {
	Root        logical.Operator
	Cardinality float64
}

// Finalize walks op bottom-up (already true by construction, since every
// concrete operator's constructor takes fully-built children) and inserts
// Flatten wherever op.GetGroupsPosToFlatten() names a group that is still
// unflat in op's child's schema, then recomputes op's schema so
// downstream consumers see the post-flatten view (spec.md §4.3: "for each
// logical node bottom-up, call getGroupsPosToFlatten(); for every
// still-unflat group named, insert a Flatten operator; recompute the
// node's schema").
func Finalize(op logical.Operator) logical.Operator {
	for i, child := range op.Children() {
		op.SetChild(i, Finalize(child))
	}
	op.ComputeFactorizedSchema()
	// GetGroupsPosToFlatten reports groups in op's *child* schema; HashJoin
	// is the one two-child exception and is finalized specially below.
	if hj, ok := op.(*logical.HashJoin); ok {
		return finalizeHashJoin(hj)
	}
	toFlatten := op.GetGroupsPosToFlatten()
	if len(toFlatten) == 0 {
		return op
	}
	if len(op.Children()) == 0 {
		return op
	}
	childSchema := op.Children()[0].Schema()
	if childSchema == nil {
		childSchema = op.Children()[0].ComputeFactorizedSchema()
	}
	still := childSchema.UnflatGroupsAmong(toFlatten)
	cur := op.Children()[0]
	for _, g := range still {
		cur = logical.NewFlatten(cur, g)
		cur.ComputeFactorizedSchema()
	}
	op.SetChild(0, cur)
	op.ComputeFactorizedSchema()
	return op
}

func finalizeHashJoin(hj *logical.HashJoin) logical.Operator {
	probeSchema := hj.Children()[0].Schema()
	if probeSchema == nil {
		probeSchema = hj.Children()[0].ComputeFactorizedSchema()
	}
	buildSchema := hj.Children()[1].Schema()
	if buildSchema == nil {
		buildSchema = hj.Children()[1].ComputeFactorizedSchema()
	}
	probeToFlatten := probeSchema.UnflatGroupsAmong(hj.GetGroupsPosToFlatten())
	buildToFlatten := buildSchema.UnflatGroupsAmong(hj.BuildGroupsPosToFlatten())

	probe := hj.Children()[0]
	for _, g := range probeToFlatten {
		probe = logical.NewFlatten(probe, g)
		probe.ComputeFactorizedSchema()
	}
	build := hj.Children()[1]
	for _, g := range buildToFlatten {
		build = logical.NewFlatten(build, g)
		build.ComputeFactorizedSchema()
	}
	hj.SetChild(0, probe)
	hj.SetChild(1, build)
	hj.ComputeFactorizedSchema()
	return hj
}

// effectiveGroupSize is the default assumption used by the cardinality
// estimator for an unflat group with no column statistics: spec.md's
// Non-goals exclude histogram-based selectivity estimation, so a fixed
// fan-out constant stands in (see cardinality.go).
const effectiveGroupSize = 8.0
