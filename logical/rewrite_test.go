package logical

import (
	"testing"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropTrueFilterRemovesLiteralTrueFilter(t *testing.T) {
	scan := NewDummyScan()
	trueLit := expr.NewLiteral(types.BoolValue(true), "true1")
	f := NewFilter(scan, trueLit)

	out := Rewrite(f, DefaultRules)
	assert.Same(t, scan, out, "expected dropTrueFilter to remove the filter")
}

func TestFilterWithFalseLiteralIsKept(t *testing.T) {
	scan := NewDummyScan()
	falseLit := expr.NewLiteral(types.BoolValue(false), "false1")
	f := NewFilter(scan, falseLit)

	out := Rewrite(f, DefaultRules)
	_, ok := out.(*Filter)
	assert.True(t, ok, "a false-literal filter should not be dropped, got %T", out)
}

func TestFilterWithNonLiteralPredicateIsKept(t *testing.T) {
	scan := NewDummyScan()
	v := expr.NewVariable("p", types.NewBool())
	f := NewFilter(scan, v)

	out := Rewrite(f, DefaultRules)
	_, ok := out.(*Filter)
	assert.True(t, ok, "a filter over a variable predicate should not be dropped, got %T", out)
}

func TestMergeFiltersCollapsesIntoOneWithConjunction(t *testing.T) {
	scan := NewDummyScan()
	p1 := expr.NewVariable("p1", types.NewBool())
	p2 := expr.NewVariable("p2", types.NewBool())
	inner := NewFilter(scan, p1)
	outer := NewFilter(inner, p2)

	out := Rewrite(outer, DefaultRules)
	merged, ok := out.(*Filter)
	require.True(t, ok, "expected a single merged Filter, got %T", out)
	assert.Same(t, scan, merged.Children()[0], "merged filter's child should be the original scan")
	fc, ok := merged.Predicate.(*expr.FunctionCall)
	require.True(t, ok, "merged predicate should be a function call, got %v", merged.Predicate)
	assert.Equal(t, "AND", fc.FuncName)
	assert.Len(t, fc.Args, 2, "AND should combine exactly 2 predicates")
}

func TestMergeProjectionsCollapsesPassThroughChain(t *testing.T) {
	scan := NewDummyScan()
	nameExpr := expr.NewVariable("src_name", types.NewString())
	inner := NewProjection(scan, []ProjectionItem{{Expr: nameExpr, Alias: "name"}})
	outerItem := ProjectionItem{Expr: expr.NewVariable("name", types.NewString()), Alias: "out_name"}
	outer := NewProjection(inner, []ProjectionItem{outerItem})

	out := Rewrite(outer, DefaultRules)
	merged, ok := out.(*Projection)
	require.True(t, ok, "expected a single merged Projection, got %T", out)
	assert.Same(t, scan, merged.Children()[0], "merged projection's child should be the original scan")
	require.Len(t, merged.Items, 1)
	assert.Same(t, nameExpr, merged.Items[0].Expr)
	assert.Equal(t, "out_name", merged.Items[0].Alias)
}

func TestMergeProjectionsSkippedWhenOuterIsNotABarePassThrough(t *testing.T) {
	scan := NewDummyScan()
	nameExpr := expr.NewVariable("src_name", types.NewString())
	inner := NewProjection(scan, []ProjectionItem{{Expr: nameExpr, Alias: "name"}})
	fc := expr.NewFunctionCall("UPPER", expr.ScalarFunction,
		[]expr.Node{expr.NewVariable("name", types.NewString())}, types.NewString(), "upper_name")
	outer := NewProjection(inner, []ProjectionItem{{Expr: fc, Alias: "loud_name"}})

	out := Rewrite(outer, DefaultRules)
	merged, ok := out.(*Projection)
	require.True(t, ok, "expected outer Projection to remain, got %T", out)
	_, ok = merged.Children()[0].(*Projection)
	assert.True(t, ok, "inner Projection should still be present when outer item is not a bare alias pass-through, got %T", merged.Children()[0])
}

func TestRewriteAppliesBottomUpBeforeTop(t *testing.T) {
	scan := NewDummyScan()
	trueLit := expr.NewLiteral(types.BoolValue(true), "true1")
	innerFilter := NewFilter(scan, trueLit)
	p2 := expr.NewVariable("p2", types.NewBool())
	outerFilter := NewFilter(innerFilter, p2)

	out := Rewrite(outerFilter, DefaultRules)
	// the inner true-filter should have been dropped before the (now
	// single) outer filter is considered for mergeFilters, leaving one Filter.
	f, ok := out.(*Filter)
	require.True(t, ok, "expected a single remaining Filter, got %T", out)
	assert.Same(t, scan, f.Children()[0], "remaining filter's child should be the scan directly")
	assert.Same(t, p2, f.Predicate, "remaining filter's predicate should be p2 unchanged")
}
