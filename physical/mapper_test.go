package physical_test

import (
	"context"
	"testing"

	"github.com/nectardb/nectar/binder"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/planner"
	"github.com/nectardb/nectar/testutil"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapper(fx *testutil.Fixture) *physical.Mapper {
	return &physical.Mapper{
		Catalog:  fx.Cat,
		Storage:  fx.Store,
		Write:    fx.Store,
		Registry: fx.Cat.Functions(),
	}
}

func newExecCtx(params map[string]types.Value) *common.ExecutionContext {
	return common.NewExecutionContext(context.Background(), "t", common.DefaultConfig(), nil, nil, params)
}

func runToRows(t *testing.T, op physical.Operator, ec *common.ExecutionContext) [][]types.Value {
	t.Helper()
	require.NoError(t, op.Open(ec))
	defer op.Close()
	var rows [][]types.Value
	for {
		b, err := op.Next(ec)
		require.NoError(t, err)
		if b == nil {
			break
		}
		for r := 0; r < b.Size(); r++ {
			row := make([]types.Value, len(b.Columns))
			for c := range row {
				row[c] = b.Columns[c].Get(r)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func buildPersonGraph() *testutil.Fixture {
	fx := testutil.NewPersonGraph()
	a := fx.AddPerson(1, "alice", 30, "eng")
	b := fx.AddPerson(2, "bob", 25, "eng")
	c := fx.AddPerson(3, "carol", 40, "sales")
	fx.AddKnows(a, b)
	fx.AddKnows(a, c)
	return fx
}

func TestMapperScanSingleNode(t *testing.T) {
	fx := buildPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "n"}, Alias: "n"}},
	}
	b := binder.NewBinder(fx.Cat, nil)
	stmt, err := b.Bind(q)
	require.NoError(t, err)
	logicalRoot, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	root, err := newMapper(fx).Map(logicalRoot)
	require.NoError(t, err)
	rows := runToRows(t, root, newExecCtx(nil))
	assert.Len(t, rows, 3)
}

func TestMapperTwoHopExtend(t *testing.T) {
	fx := buildPersonGraph()
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
	bd := binder.NewBinder(fx.Cat, nil)
	stmt, err := bd.Bind(q)
	require.NoError(t, err)
	logicalRoot, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	root, err := newMapper(fx).Map(logicalRoot)
	require.NoError(t, err)
	rows := runToRows(t, root, newExecCtx(nil))
	// alice knows bob and carol: exactly two (a,b) pairs fan out from alice.
	assert.Len(t, rows, 2)
}

func TestMapperAggregateCount(t *testing.T) {
	fx := buildPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{
			Expr:  binder.ParsedFunctionCall{Func: "COUNT", Args: []binder.ParsedExpr{binder.ParsedStar{}}},
			Alias: "c",
		}},
	}
	bd := binder.NewBinder(fx.Cat, nil)
	stmt, err := bd.Bind(q)
	require.NoError(t, err)
	logicalRoot, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	root, err := newMapper(fx).Map(logicalRoot)
	require.NoError(t, err)
	rows := runToRows(t, root, newExecCtx(nil))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3, rows[0][0].AsInt64())
}

func TestMapperSkipAndLimit(t *testing.T) {
	fx := buildPersonGraph()
	skip, limit := int64(1), int64(1)
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "n"}, Alias: "n"}},
		Skip:   &skip,
		Limit:  &limit,
	}
	bd := binder.NewBinder(fx.Cat, nil)
	stmt, err := bd.Bind(q)
	require.NoError(t, err)
	logicalRoot, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	root, err := newMapper(fx).Map(logicalRoot)
	require.NoError(t, err)
	rows := runToRows(t, root, newExecCtx(nil))
	assert.Len(t, rows, 1, "expected exactly 1 row after skip=1,limit=1")
}

func TestMapperCancellationStopsExecution(t *testing.T) {
	fx := buildPersonGraph()
	q := &binder.ParsedQuery{
		Matches: []binder.ParsedMatchClause{{
			Path: []binder.ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedVariable{Name: "n"}, Alias: "n"}},
	}
	bd := binder.NewBinder(fx.Cat, nil)
	stmt, err := bd.Bind(q)
	require.NoError(t, err)
	logicalRoot, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	root, err := newMapper(fx).Map(logicalRoot)
	require.NoError(t, err)
	ec := newExecCtx(nil)
	ec.Cancel()
	require.NoError(t, root.Open(ec))
	defer root.Close()
	// poll briefly for the async watch() goroutine to propagate Cancel()
	for i := 0; i < 1000 && !ec.Cancelled(); i++ {
	}
	_, err = root.Next(ec)
	require.Error(t, err, "expected an error from Next after Cancel()")
	_, ok := err.(*common.InterruptedError)
	assert.True(t, ok, "Next() error = %T, want *common.InterruptedError", err)
}

func TestMapperDummyScan(t *testing.T) {
	fx := testutil.NewPersonGraph()
	q := &binder.ParsedQuery{
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedLiteral{Text: "1", Kind: "int"}, Alias: "one"}},
	}
	bd := binder.NewBinder(fx.Cat, nil)
	stmt, err := bd.Bind(q)
	require.NoError(t, err)
	logicalRoot, err := planner.Build(fx.Cat, stmt.Query)
	require.NoError(t, err)
	root, err := newMapper(fx).Map(logicalRoot)
	require.NoError(t, err)
	rows := runToRows(t, root, newExecCtx(nil))
	require.Len(t, rows, 1, "expected 1 row from DummyScan-rooted RETURN")
	assert.EqualValues(t, 1, rows[0][0].AsInt64())
}
