package planner

import (
	"testing"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateBushyNoCandidatesIsDummyScan(t *testing.T) {
	root := EnumerateBushy(nil, nil)
	_, ok := root.(*logical.DummyScan)
	assert.True(t, ok, "EnumerateBushy(nil, nil) = %T, want *logical.DummyScan", root)
}

func TestEnumerateBushySingleCandidateIsItsPlan(t *testing.T) {
	scan := logical.NewScanNode(nil, 1)
	root := EnumerateBushy([]JoinCandidate{{Plan: scan}}, nil)
	assert.Same(t, scan, root, "EnumerateBushy with one candidate should return it unchanged")
}

func TestEnumerateBushyJoinsOnEdgeKey(t *testing.T) {
	left := logical.NewScanNode(nil, 1)
	right := logical.NewScanNode(nil, 2)
	key := expr.NewVariable("id", types.NewInt64())
	candidates := []JoinCandidate{{Plan: left}, {Plan: right}}
	edges := []EdgePredicate{{Left: 0, Right: 1, LeftKey: key, RightKey: key}}

	root := EnumerateBushy(candidates, edges)
	hj, ok := root.(*logical.HashJoin)
	require.True(t, ok, "EnumerateBushy with an edge = %T, want *logical.HashJoin", root)
	assert.Len(t, hj.ProbeKeys, 1)
	assert.Len(t, hj.BuildKeys, 1)
}

func TestEnumerateBushyNoEdgeFallsBackToCrossProduct(t *testing.T) {
	left := logical.NewScanNode(nil, 1)
	right := logical.NewScanNode(nil, 2)
	candidates := []JoinCandidate{{Plan: left}, {Plan: right}}

	root := EnumerateBushy(candidates, nil)
	_, ok := root.(*logical.CrossProduct)
	assert.True(t, ok, "EnumerateBushy with no edges = %T, want *logical.CrossProduct", root)
}

func TestEnumerateBushyThreeWayUsesEveryCandidate(t *testing.T) {
	a := logical.NewScanNode(nil, 1)
	b := logical.NewScanNode(nil, 2)
	c := logical.NewScanNode(nil, 3)
	key := expr.NewVariable("id", types.NewInt64())
	candidates := []JoinCandidate{{Plan: a}, {Plan: b}, {Plan: c}}
	edges := []EdgePredicate{
		{Left: 0, Right: 1, LeftKey: key, RightKey: key},
		{Left: 1, Right: 2, LeftKey: key, RightKey: key},
	}

	root := EnumerateBushy(candidates, edges)
	var count func(op logical.Operator) int
	count = func(op logical.Operator) int {
		switch op.(type) {
		case *logical.ScanNode:
			return 1
		}
		n := 0
		for _, c := range op.Children() {
			n += count(c)
		}
		return n
	}
	assert.Equal(t, 3, count(root), "bushy join over 3 candidates should reach 3 ScanNodes")
}
