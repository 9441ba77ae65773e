package prepare_test

import (
	"context"
	"testing"

	"github.com/nectardb/nectar/binder"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/prepare"
	"github.com/nectardb/nectar/testutil"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, fx *testutil.Fixture) *prepare.Session {
	t.Helper()
	s, err := prepare.NewSession(fx.Cat, fx.Store, fx.Store, nil, common.DefaultConfig())
	require.NoError(t, err)
	return s
}

// TestPreparedParameterReuse drives the parameter-reuse scenario: prepare a
// statement with a parameter once, then execute it repeatedly with
// different values and confirm each execution's result reflects only its
// own bound value.
func TestPreparedParameterReuse(t *testing.T) {
	fx := testutil.NewPersonGraph()
	session := newSession(t, fx)
	defer session.Close()

	q := &binder.ParsedQuery{
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedParameter{Name: "q"}, Alias: "q"}},
	}
	paramTypes := map[string]types.LogicalType{"q": types.NewString()}

	ps, err := session.Prepare("RETURN $q AS q", q, paramTypes)
	require.NoError(t, err)

	ctx := context.Background()
	res1, err := session.Execute(ctx, "exec-1", ps, map[string]types.Value{"q": types.StringValue("alice")})
	require.NoError(t, err)
	require.Equal(t, 1, res1.NumRows())
	assert.Equal(t, "alice", res1.Row(0)[0].String())

	res2, err := session.Execute(ctx, "exec-2", ps, map[string]types.Value{"q": types.StringValue("bob")})
	require.NoError(t, err)
	require.Equal(t, 1, res2.NumRows())
	assert.Equal(t, "bob", res2.Row(0)[0].String())
}

func TestPrepareCachesByStatementText(t *testing.T) {
	fx := testutil.NewPersonGraph()
	session := newSession(t, fx)
	defer session.Close()

	q := &binder.ParsedQuery{
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedParameter{Name: "q"}, Alias: "q"}},
	}
	paramTypes := map[string]types.LogicalType{"q": types.NewString()}

	ps1, err := session.Prepare("RETURN $q AS q", q, paramTypes)
	require.NoError(t, err)
	ps2, err := session.Prepare("RETURN $q AS q", q, paramTypes)
	require.NoError(t, err, "Prepare (cached)")
	assert.Same(t, ps1, ps2, "preparing the same statement text twice should return the cached PreparedStatement")
}

func TestExecuteIncludesPlanSummary(t *testing.T) {
	fx := testutil.NewPersonGraph()
	session := newSession(t, fx)
	defer session.Close()

	q := &binder.ParsedQuery{
		Return: []binder.ParsedReturnItem{{Expr: binder.ParsedLiteral{Text: "1", Kind: "int"}, Alias: "one"}},
	}
	ps, err := session.Prepare("RETURN 1 AS one", q, nil)
	require.NoError(t, err)
	res, err := session.Execute(context.Background(), "exec-3", ps, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.NotEmpty(t, res.Summary.PlanText, "expected a non-empty plan text in the query summary")
	assert.NotEmpty(t, res.Summary.PlanJSON, "expected non-empty plan JSON in the query summary")
}
