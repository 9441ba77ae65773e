package logical

import (
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// Rule is one match-and-replace rewrite over the logical tree, grounded
// on _examples/SnellerInc-sneller/rules's rule-rewrite DSL shape
// (Match/Apply pairs driven to a fixpoint), generalized from Sneller's
// single-pass SQL-rewrite rules to this tree's multi-kind operator set.
// A Rule never looks below its own children's already-rewritten shape;
// Rewrite supplies that bottom-up order.
type Rule interface {
	// Match reports whether op is eligible for this rule's Apply.
	Match(op Operator) bool
	// Apply returns op's replacement. Only called when Match(op) is true.
	Apply(op Operator) Operator
}

// DefaultRules is the fixed rule set Rewrite applies; new rules are
// additive and never change existing plans' semantics, only their shape.
var DefaultRules = []Rule{
	dropTrueFilter{},
	mergeFilters{},
	mergeProjections{},
}

// Rewrite applies every rule in rules to op and its subtree bottom-up to
// a fixpoint: children are rewritten first, then each rule is tried
// against the (possibly already-rewritten) node in order, restarting
// from the first rule whenever one matches so a rewrite that exposes a
// new opportunity (e.g. merging two filters into one that is itself
// `true`) is not missed. Schemas are not recomputed here — the planner's
// Finalize pass (re)computes schemas after Rewrite runs, same as it does
// after plain tree construction.
func Rewrite(op Operator, rules []Rule) Operator {
	for i, child := range op.Children() {
		op.SetChild(i, Rewrite(child, rules))
	}
	return applyFixpoint(op, rules)
}

func applyFixpoint(op Operator, rules []Rule) Operator {
	for {
		rewrote := false
		for _, r := range rules {
			if r.Match(op) {
				op = r.Apply(op)
				rewrote = true
				break
			}
		}
		if !rewrote {
			return op
		}
	}
}

// dropTrueFilter removes a Filter whose predicate is the literal `true`,
// e.g. one planner.Build never emits but a hand-built or future
// rule-driven plan might after other rewrites fold a predicate away.
type dropTrueFilter struct{}

func (dropTrueFilter) Match(op Operator) bool {
	f, ok := op.(*Filter)
	if !ok {
		return false
	}
	lit, ok := f.Predicate.(*expr.Literal)
	return ok && !lit.Val.Null && lit.Val.Type.Kind == types.Bool && lit.Val.AsBool()
}

func (dropTrueFilter) Apply(op Operator) Operator {
	return op.(*Filter).Children()[0]
}

// mergeFilters collapses Filter(Filter(x, p1), p2) into a single
// Filter(x, p1 AND p2): two adjacent filters evaluate the same
// selection-vector narrowing as one filter over their conjunction, at
// the cost of one fewer Next()-call boundary per tuple (spec.md §8
// "Filter idempotence" is the special case p1 == p2 of this same
// algebraic identity).
type mergeFilters struct{}

func (mergeFilters) Match(op Operator) bool {
	outer, ok := op.(*Filter)
	if !ok {
		return false
	}
	_, ok = outer.Children()[0].(*Filter)
	return ok
}

func (mergeFilters) Apply(op Operator) Operator {
	outer := op.(*Filter)
	inner := outer.Children()[0].(*Filter)
	conj := expr.NewFunctionCall("AND", expr.ScalarFunction,
		[]expr.Node{inner.Predicate, outer.Predicate}, outer.Predicate.Type(),
		inner.Predicate.Name()+"&&"+outer.Predicate.Name())
	return NewFilter(inner.Children()[0], conj)
}

// mergeProjections collapses Projection(Projection(x, inner), outer) into
// a single Projection(x, outer) when every outer item is a bare pass-
// through of one of inner's aliases (the common `RETURN *`-after-
// `WITH`-style chain): outer's expr.Variable reference to inner's alias
// is replaced by inner's own expression, so the intermediate materialized
// column inner alone existed for is never built.
type mergeProjections struct{}

func (mergeProjections) Match(op Operator) bool {
	outer, ok := op.(*Projection)
	if !ok {
		return false
	}
	inner, ok := outer.Children()[0].(*Projection)
	if !ok {
		return false
	}
	byAlias := innerAliasIndex(inner)
	for _, it := range outer.Items {
		v, ok := it.Expr.(*expr.Variable)
		if !ok {
			return false
		}
		if _, ok := byAlias[v.VarName]; !ok {
			return false
		}
	}
	return true
}

func (mergeProjections) Apply(op Operator) Operator {
	outer := op.(*Projection)
	inner := outer.Children()[0].(*Projection)
	byAlias := innerAliasIndex(inner)
	items := make([]ProjectionItem, len(outer.Items))
	for i, it := range outer.Items {
		v := it.Expr.(*expr.Variable)
		items[i] = ProjectionItem{Expr: byAlias[v.VarName], Alias: it.Alias}
	}
	return NewProjection(inner.Children()[0], items)
}

func innerAliasIndex(p *Projection) map[string]expr.Node {
	m := make(map[string]expr.Node, len(p.Items))
	for _, it := range p.Items {
		m[it.Alias] = it.Expr
	}
	return m
}
