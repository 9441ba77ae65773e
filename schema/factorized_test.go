package schema

import (
	"testing"

	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupAndInsert(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	v := expr.NewVariable("n", types.NewNode(1))
	s.InsertToGroupAndScope(v, g)

	assert.True(t, s.Groups[g].Contains("n"), "group should contain inserted expression")
	assert.True(t, s.InScope("n"), "InsertToGroupAndScope should put the expression in scope")
	pos, ok := s.GroupPos("n")
	require.True(t, ok)
	assert.Equal(t, g, pos)
}

func TestInsertToGroupWithoutScope(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	v := expr.NewVariable("k", types.NewInt64())
	s.InsertToGroup(v, g)

	assert.False(t, s.InScope("k"), "InsertToGroup should not put expression in scope")
	assert.True(t, s.Groups[g].Contains("k"), "InsertToGroup should still register in the group")
}

func TestEffectiveSize(t *testing.T) {
	s := NewFactorizedSchema()
	flat := s.CreateFlatGroup()
	unflat := s.CreateGroup()
	single := s.CreateGroup()
	s.SetGroupAsSingleState(single)

	assert.Equal(t, 1, s.Groups[flat].EffectiveSize(10), "flat group")
	assert.Equal(t, 10, s.Groups[unflat].EffectiveSize(10), "unflat group")
	assert.Equal(t, 1, s.Groups[single].EffectiveSize(10), "single-state group")
}

func TestFlattenGroup(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	require.False(t, s.Groups[g].Flat, "new group should start unflat")
	s.FlattenGroup(g)
	assert.True(t, s.Groups[g].Flat, "FlattenGroup should mark the group flat")
	assert.Equal(t, 1, s.Groups[g].EffectiveSize(10))
}

func TestDropRemovesFromScopeOnly(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	v := expr.NewVariable("n", types.NewNode(1))
	s.InsertToGroupAndScope(v, g)

	s.Drop("n")
	assert.False(t, s.InScope("n"), "Drop should remove from scope")
	assert.True(t, s.Groups[g].Contains("n"), "Drop should not remove from the group itself")
}

func TestScopeNamesSorted(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	s.InsertToGroupAndScope(expr.NewVariable("zeta", types.NewInt64()), g)
	s.InsertToGroupAndScope(expr.NewVariable("alpha", types.NewInt64()), g)

	assert.Equal(t, []string{"alpha", "zeta"}, s.ScopeNames())
}

func TestGetDependentGroupsPos(t *testing.T) {
	s := NewFactorizedSchema()
	g1 := s.CreateGroup()
	g2 := s.CreateGroup()

	v1 := expr.NewVariable("a", types.NewInt64())
	v2 := expr.NewVariable("b", types.NewInt64())
	s.InsertToGroupAndScope(v1, g1)
	s.InsertToGroupAndScope(v2, g2)

	fc := expr.NewFunctionCall("ADD", expr.ScalarFunction, []expr.Node{v1, v2}, types.NewInt64(), "a+b")
	deps := s.GetDependentGroupsPos(fc)
	assert.Equal(t, []int{g1, g2}, deps)
}

func TestUnflatGroupsAmong(t *testing.T) {
	s := NewFactorizedSchema()
	flat := s.CreateFlatGroup()
	unflat1 := s.CreateGroup()
	unflat2 := s.CreateGroup()
	single := s.CreateGroup()
	s.SetGroupAsSingleState(single)

	got := s.UnflatGroupsAmong([]int{flat, unflat1, unflat2, single})
	assert.Equal(t, []int{unflat1, unflat2}, got)
}

func TestFlattenedViewDoesNotMutateOriginal(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	s.Multiplicity = 4
	v := expr.NewVariable("n", types.NewNode(1))
	s.InsertToGroupAndScope(v, g)

	view := FlattenedView(s)

	assert.False(t, s.Groups[g].Flat, "FlattenedView must not mutate the original schema")
	assert.True(t, view.Groups[g].Flat, "FlattenedView's groups should all report flat")
	assert.Equal(t, 1, view.Multiplicity)
	assert.Equal(t, 4, s.Multiplicity, "FlattenedView must not mutate the original's Multiplicity")
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewFactorizedSchema()
	g := s.CreateGroup()
	v := expr.NewVariable("n", types.NewNode(1))
	s.InsertToGroupAndScope(v, g)

	c := s.Clone()
	c.FlattenGroup(g)
	c.Drop("n")

	assert.False(t, s.Groups[g].Flat, "mutating the clone's group must not affect the original")
	assert.True(t, s.InScope("n"), "mutating the clone's scope must not affect the original")
}

func TestEffectiveSizeViaCardinalityProduct(t *testing.T) {
	// cardinality of the tuple stream = product of effective sizes of in-scope groups.
	s := NewFactorizedSchema()
	g1 := s.CreateFlatGroup()
	g2 := s.CreateGroup()
	g3 := s.CreateGroup()

	s.InsertToGroupAndScope(expr.NewVariable("a", types.NewInt64()), g1)
	s.InsertToGroupAndScope(expr.NewVariable("b", types.NewInt64()), g2)
	s.InsertToGroupAndScope(expr.NewVariable("c", types.NewInt64()), g3)

	unflatSizes := map[int]int{g2: 3, g3: 5}
	card := 1
	for _, g := range []int{g1, g2, g3} {
		card *= s.Groups[g].EffectiveSize(unflatSizes[g])
	}
	assert.Equal(t, 15, card, "1*3*5")
}
