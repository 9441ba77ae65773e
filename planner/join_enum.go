package planner

import (
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/logical"
)

// JoinCandidate is one base plan (a scan, or an already-extended pattern
// chain) the enumerator may combine with others, plus the expressions it
// makes available for predicates connecting it to the rest of the graph.
type JoinCandidate struct {
	Plan    logical.Operator
	Exposes []expr.Node
}

// EdgePredicate is an equi-join condition connecting two candidates:
// LeftKey is the expression to evaluate against whichever side ends up
// playing Left's role in a given sub-mask pairing, RightKey the
// expression for Right's role (HashJoin's probe/build keys must each be
// rooted in their own side, so a single shared expr.Node cannot serve
// both, unlike a plain boolean predicate).
type EdgePredicate struct {
	Left, Right       int // indices into the candidates slice
	LeftKey, RightKey expr.Node
}

// EnumerateBushy performs the bushy dynamic-programming join enumeration
// spec.md §4.3 calls for: over all 2^n - 1 non-empty subsets of the n
// input candidates, track the cheapest plan producing that subset's rows,
// combining cheaper sub-plans pairwise (spec.md: "choose forward/backward
// extension or bushy join per estimated cost"). With no predicate
// connecting two subsets, CrossProduct is used as the fallback join.
//
// n is expected to stay small (pattern chains rarely exceed a handful of
// hops), so the 2^n subset enumeration is acceptable; spec.md's Non-goals
// exclude a general N-way cost-based optimizer beyond this.
func EnumerateBushy(candidates []JoinCandidate, edges []EdgePredicate) logical.Operator {
	n := len(candidates)
	if n == 0 {
		return logical.NewDummyScan()
	}
	if n == 1 {
		return candidates[0].Plan
	}

	type best struct {
		plan logical.Operator
		cost float64
	}
	childCard := map[logical.Operator]float64{}
	dp := make(map[uint64]best, 1<<uint(n))

	for i, c := range candidates {
		mask := uint64(1) << uint(i)
		cost := EstimateCardinality(c.Plan, childCard)
		childCard[c.Plan] = cost
		dp[mask] = best{plan: c.Plan, cost: cost}
	}

	full := uint64(1)<<uint(n) - 1
	for mask := uint64(1); mask <= full; mask++ {
		if _, ok := dp[mask]; ok {
			continue
		}
		var bst best
		bst.cost = -1
		// iterate over every way to split mask into two non-empty,
		// disjoint, already-solved sub-masks.
		for sub := (mask - 1) & mask; sub != 0; sub = (sub - 1) & mask {
			other := mask &^ sub
			if other == 0 {
				continue
			}
			left, lok := dp[sub]
			right, rok := dp[other]
			if !lok || !rok {
				continue
			}
			subKey, otherKey := findEdge(edges, sub, other)
			var joined logical.Operator
			if subKey != nil {
				joined = logical.NewHashJoin(left.plan, right.plan, logical.InnerJoin, []expr.Node{subKey}, []expr.Node{otherKey})
			} else {
				joined = logical.NewCrossProduct(left.plan, right.plan)
			}
			childCard[left.plan] = left.cost
			childCard[right.plan] = right.cost
			cost := EstimateCardinality(joined, childCard)
			if bst.cost < 0 || cost < bst.cost {
				bst = best{plan: joined, cost: cost}
			}
		}
		dp[mask] = bst
	}
	return dp[full].plan
}

// findEdge looks for an edge with one endpoint among sub's candidates and
// the other among other's, returning (key rooted in sub's side, key
// rooted in other's side) oriented to match the (sub, other) argument
// order the caller is about to build a HashJoin(sub.plan, other.plan)
// from.
func findEdge(edges []EdgePredicate, sub, other uint64) (expr.Node, expr.Node) {
	for _, e := range edges {
		lm := uint64(1) << uint(e.Left)
		rm := uint64(1) << uint(e.Right)
		if sub&lm != 0 && other&rm != 0 {
			return e.LeftKey, e.RightKey
		}
		if sub&rm != 0 && other&lm != 0 {
			return e.RightKey, e.LeftKey
		}
	}
	return nil, nil
}
