package expr

import (
	"testing"

	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralBasics(t *testing.T) {
	lit := NewLiteral(types.Int64Value(5), "lit1")
	assert.Equal(t, "lit1", lit.Name())
	assert.Equal(t, types.Int64, lit.Type().Kind)
	assert.Empty(t, lit.Children(), "Literal should have no children")
	assert.Equal(t, "5", lit.String())
}

func TestParameterBasics(t *testing.T) {
	p := NewParameter("q", types.NewString())
	assert.Equal(t, "$q", p.Name())
	assert.Equal(t, types.String, p.Type().Kind)
}

func TestVariableBasics(t *testing.T) {
	v := NewVariable("n", types.NewNode(1))
	assert.Equal(t, "n", v.Name())
	assert.Equal(t, "n", v.String())
}

func TestPropertyName(t *testing.T) {
	v := NewVariable("n", types.NewNode(1))
	p := NewProperty(v, 1, "name", types.NewString(), false)
	assert.Equal(t, "n.name", p.Name())
	require.Len(t, p.Children(), 1)
	assert.Equal(t, v, p.Children()[0])
}

func TestFunctionCallString(t *testing.T) {
	v := NewVariable("x", types.NewInt64())
	fc := NewFunctionCall("COUNT", AggregateFunction, []Node{v}, types.NewInt64(), "count1")
	fc.Distinct = true
	assert.Equal(t, "COUNT(DISTINCT x)", fc.String())
	assert.Len(t, fc.Children(), 1, "Children() should return Args")
}

func TestCastBasics(t *testing.T) {
	v := NewVariable("a", types.NewAny())
	c := NewCast(v, types.NewInt64())
	assert.Equal(t, types.Int64, c.Type().Kind, "Cast.Type() should be target type")
	assert.Equal(t, "CAST(a AS INT64)", c.String())
}

// renameRewriter renames every Variable named "old" to "new", leaving
// everything else untouched, to exercise Rewrite's bottom-up traversal.
type renameRewriter struct {
	old, new string
}

func (r renameRewriter) Walk(Node) Rewriter { return r }

func (r renameRewriter) Rewrite(n Node) Node {
	if v, ok := n.(*Variable); ok && v.VarName == r.old {
		return NewVariable(r.new, v.Typ)
	}
	return n
}

func TestRewriteReplacesNestedVariable(t *testing.T) {
	base := NewVariable("old", types.NewNode(1))
	prop := NewProperty(base, 1, "name", types.NewString(), false)

	out := Rewrite(renameRewriter{old: "old", new: "new"}, prop)

	gotProp, ok := out.(*Property)
	require.True(t, ok, "Rewrite should preserve node kind, got %T", out)
	gotVar, ok := gotProp.Base.(*Variable)
	require.True(t, ok)
	assert.Equal(t, "new", gotVar.VarName, "Rewrite should have renamed the base variable")
	// original tree must be untouched (rewriteChildren copies).
	assert.Equal(t, "old", base.VarName, "Rewrite must not mutate the original node")
}

func TestRewriteNilIsNil(t *testing.T) {
	assert.Nil(t, Rewrite(renameRewriter{}, nil))
}

func TestWalkVisitsChildren(t *testing.T) {
	v := NewVariable("n", types.NewNode(1))
	p := NewProperty(v, 1, "id", types.NewInt64(), true)
	fc := NewFunctionCall("F", ScalarFunction, []Node{p}, types.NewBool(), "f1")

	var visited []string
	Walk(collectVisitor{&visited}, fc)

	want := map[string]bool{"f1": true, "n.id": true, "n": true}
	require.Len(t, visited, len(want))
	for _, name := range visited {
		assert.True(t, want[name], "unexpected visited node %q", name)
	}
}

type collectVisitor struct {
	names *[]string
}

func (c collectVisitor) Visit(n Node) Visitor {
	if n == nil {
		return nil
	}
	*c.names = append(*c.names, n.Name())
	return c
}

func TestEqual(t *testing.T) {
	a := NewVariable("x", types.NewInt64())
	b := NewVariable("x", types.NewInt64())
	c := NewVariable("y", types.NewInt64())

	assert.True(t, Equal(a, b), "two variables with the same name/string should be Equal")
	assert.False(t, Equal(a, c), "variables with different names should not be Equal")
	assert.True(t, Equal(nil, nil), "Equal(nil, nil) should be true")
	assert.False(t, Equal(a, nil), "Equal(a, nil) should be false")
}
