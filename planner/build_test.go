package planner_test

import (
	"testing"

	"github.com/nectardb/nectar/binder"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/planner"
	"github.com/nectardb/nectar/testutil"
	"github.com/stretchr/testify/require"
)

func bindQuery(t *testing.T, fx *testutil.Fixture, q *binder.ParsedQuery) *binder.BoundStatement {
	t.Helper()
	b := binder.NewBinder(fx.Cat, nil)
	stmt, err := b.Bind(q)
	require.NoError(t, err)
	return stmt
}

func TestBuildSimpleScanProjection(t *testing.T) {
	fx := testutil.NewPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "n"}, Alias: "n"}},
	}
	stmt := bindQuery(t, fx, q)

	root, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	_, ok := root.(*logical.Projection)
	require.True(t, ok, "expected root to be a Projection, got %T", root)
}

func TestBuildTwoHopExtendProducesHashJoinFreeChain(t *testing.T) {
	fx := testutil.NewPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{
				{Var: "a", Label: "person"},
				{IsRel: true, Var: "k", Label: "knows", MinHops: 1, MaxHops: 1},
				{Var: "b", Label: "person"},
			},
		}},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "b"}, Alias: "b"}},
	}
	stmt := bindQuery(t, fx, q)

	root, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	// Projection -> Extend -> ScanNode, no join needed for a single path.
	proj, ok := root.(*logical.Projection)
	require.True(t, ok, "expected root Projection, got %T", root)
	_, ok = proj.Children()[0].(*logical.Extend)
	require.True(t, ok, "expected Projection's child to be an Extend, got %T", proj.Children()[0])
}

func TestBuildAggregateQuery(t *testing.T) {
	fx := testutil.NewPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{
			Expr:  binder.ParsedFunctionCall{Func: "COUNT", Args: []binder.ParsedExpr{binder.ParsedStar{}}},
			Alias: "c",
		}},
	}
	stmt := bindQuery(t, fx, q)

	root, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	_, ok := root.(*logical.Aggregate)
	require.True(t, ok, "expected root to be an Aggregate, got %T", root)
}

func TestBuildSkipAndLimit(t *testing.T) {
	fx := testutil.NewPersonGraph()
	skip, limit := int64(2), int64(5)
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "n"}, Alias: "n"}},
		Skip:   &skip,
		Limit:  &limit,
	}
	stmt := bindQuery(t, fx, q)

	root, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	lim, ok := root.(*logical.Limit)
	require.True(t, ok, "expected root Limit, got %T", root)
	_, ok = lim.Children()[0].(*logical.Skip)
	require.True(t, ok, "expected Limit's child to be Skip, got %T", lim.Children()[0])
}

func TestBuildTwoMatchClausesShareVariableJoins(t *testing.T) {
	fx := testutil.NewPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{
			{Path: []binder.ParsedPatternElem{{Var: "a", Label: "person"}}},
			{Path: []binder.ParsedPatternElem{
				{Var: "a", Label: "person"},
				{IsRel: true, Var: "k", Label: "knows", MinHops: 1, MaxHops: 1},
				{Var: "b", Label: "person"},
			}},
		},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "b"}, Alias: "b"}},
	}
	stmt := bindQuery(t, fx, q)

	root, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	proj, ok := root.(*logical.Projection)
	require.True(t, ok, "expected root Projection, got %T", root)
	_, ok = proj.Children()[0].(*logical.HashJoin)
	require.True(t, ok, "expected EnumerateBushy to join the two clauses sharing `a` via HashJoin, got %T", proj.Children()[0])
}

func TestBuildTwoMatchClausesNoSharedVariableCrossProducts(t *testing.T) {
	fx := testutil.NewPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{
			{Path: []binder.ParsedPatternElem{{Var: "a", Label: "person"}}},
			{Path: []binder.ParsedPatternElem{{Var: "b", Label: "person"}}},
		},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "a"}, Alias: "a"}},
	}
	stmt := bindQuery(t, fx, q)

	root, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	proj, ok := root.(*logical.Projection)
	require.True(t, ok, "expected root Projection, got %T", root)
	_, ok = proj.Children()[0].(*logical.CrossProduct)
	require.True(t, ok, "expected unrelated clauses to fall back to CrossProduct, got %T", proj.Children()[0])
}

func TestBuildStatementDispatchesDDL(t *testing.T) {
	fx := testutil.NewPersonGraph()
	b := binder.NewBinder(fx.Cat, nil)
	stmt, err := b.Bind(&binder.ParsedCreateNodeTable{
		Name:       "company",
		Properties: []binder.ParsedPropertyDef{{Name: "ID", TypeName: "INT64"}},
		PrimaryKey: "ID",
	})
	require.NoError(t, err)
	root, err := planner.BuildStatement(fx.Cat, stmt)
	require.NoError(t, err)
	ddl, ok := root.(*logical.DDL)
	require.True(t, ok, "expected *logical.DDL, got %T", root)
	require.NotNil(t, ddl.Table)
	require.Equal(t, "company", ddl.Table.Name)
}

func TestBuildStatementDispatchesCopyFrom(t *testing.T) {
	fx := testutil.NewPersonGraph()
	b := binder.NewBinder(fx.Cat, nil)
	stmt, err := b.Bind(&binder.ParsedCopyFrom{Table: "person", Path: "data.csv"})
	require.NoError(t, err)
	root, err := planner.BuildStatement(fx.Cat, stmt)
	require.NoError(t, err)
	_, ok := root.(*logical.CopyFrom)
	require.True(t, ok, "expected *logical.CopyFrom, got %T", root)
}
