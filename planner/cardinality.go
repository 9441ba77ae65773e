package planner

import (
	"github.com/nectardb/nectar/logical"
)

// defaultFilterSelectivity is applied when a Filter's predicate carries
// no statistics to sharpen the estimate (spec.md Non-goals exclude
// histogram-based selectivity; this constant is the placeholder every
// Filter node uses, grounded on the flat "guess 1/10" convention
// _examples/SnellerInc-sneller/plan/pir/cardinality.go falls back to for
// an unrecognized predicate shape).
const defaultFilterSelectivity = 0.1

// EstimateCardinality computes a rough row-count estimate for op's
// output, used to rank join orders (spec.md §4.3 "cost = cardinality
// estimator"). It is intentionally simple: spec.md's Non-goals explicitly
// exclude a cost-based optimizer beyond bushy join enumeration.
func EstimateCardinality(op logical.Operator, childCard map[logical.Operator]float64) float64 {
	children := op.Children()
	switch n := op.(type) {
	case *logical.ScanNode:
		return 1000 // placeholder table-cardinality; real value comes from Storage.TableSize
	case *logical.DummyScan:
		return 1
	case *logical.Extend:
		return childCard[children[0]] * effectiveGroupSize
	case *logical.RecursiveExtend:
		hops := float64(n.UpperBound - n.LowerBound + 1)
		if hops < 1 {
			hops = 1
		}
		return childCard[children[0]] * effectiveGroupSize * hops
	case *logical.Filter:
		return childCard[children[0]] * defaultFilterSelectivity
	case *logical.Flatten:
		return childCard[children[0]] * effectiveGroupSize
	case *logical.Projection, *logical.Unwind:
		if len(children) == 0 {
			return 1
		}
		return childCard[children[0]]
	case *logical.Limit:
		c := childCard[children[0]]
		if float64(n.N) < c {
			return float64(n.N)
		}
		return c
	case *logical.Skip:
		c := childCard[children[0]] - float64(n.N)
		if c < 0 {
			return 0
		}
		return c
	case *logical.HashJoin:
		probe, build := childCard[children[0]], childCard[children[1]]
		// |probe| x |build| / distinct(key): without column statistics,
		// distinct(key) is assumed to equal |build| (i.e. the build side's
		// key is close to unique), which collapses to |probe|.
		if build == 0 {
			return 0
		}
		return probe
	case *logical.CrossProduct:
		return childCard[children[0]] * childCard[children[1]]
	case *logical.Distinct:
		return childCard[children[0]] * 0.5
	case *logical.Aggregate:
		if len(n.Keys) == 0 {
			return 1
		}
		return childCard[children[0]] * 0.2
	case *logical.Accumulate:
		if n.Type == logical.Exists {
			return 1
		}
		return childCard[children[0]]
	case *logical.Union:
		return childCard[children[0]] + childCard[children[1]]
	default:
		if len(children) == 0 {
			return 1
		}
		return childCard[children[0]]
	}
}
