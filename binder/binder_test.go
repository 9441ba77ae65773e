package binder

import (
	"testing"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/testutil"
	"github.com/nectardb/nectar/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBinder(paramTypes map[string]types.LogicalType) (*Binder, *testutil.Fixture) {
	fx := testutil.NewPersonGraph()
	return NewBinder(fx.Cat, paramTypes), fx
}

func simpleMatchQuery(tableName, varName string) *ParsedQuery {
	return &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: varName, Label: tableName}},
		}},
		Return: []ParsedReturnItem{{
			Expr:  ParsedVariable{Name: varName},
			Alias: "out",
		}},
	}
}

func TestBindSimpleMatchReturn(t *testing.T) {
	b, _ := newTestBinder(nil)
	stmt, err := b.Bind(simpleMatchQuery("person", "n"))
	require.NoError(t, err)
	assert.Equal(t, StmtQuery, stmt.Kind)
	assert.True(t, stmt.ReadOnly, "a plain MATCH/RETURN query should be read-only")
	require.Len(t, stmt.Query.Matches, 1)
	require.Len(t, stmt.Query.Matches[0].Path, 1)
	pe := stmt.Query.Matches[0].Path[0]
	assert.Equal(t, types.Node, pe.Type.Kind)
}

func TestBindUnknownTableFails(t *testing.T) {
	b, _ := newTestBinder(nil)
	_, err := b.Bind(simpleMatchQuery("nosuchtable", "n"))
	assert.Error(t, err, "expected error binding against an unknown table")
}

func TestBindUnknownVariableFails(t *testing.T) {
	b, _ := newTestBinder(nil)
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []ParsedReturnItem{{Expr: ParsedVariable{Name: "notbound"}, Alias: "x"}},
	}
	_, err := b.Bind(q)
	assert.Error(t, err, "expected error referencing an unbound variable")
}

func TestBindPropertyAccess(t *testing.T) {
	b, _ := newTestBinder(nil)
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []ParsedReturnItem{{
			Expr:  ParsedProperty{Base: ParsedVariable{Name: "n"}, Field: "fName"},
			Alias: "name",
		}},
	}
	stmt, err := b.Bind(q)
	require.NoError(t, err)
	prop, ok := stmt.Query.Projection[0].Expr.(*expr.Property)
	require.True(t, ok, "expected a bound Property, got %T", stmt.Query.Projection[0].Expr)
	assert.Equal(t, "fName", prop.ColumnName)
	assert.Equal(t, types.String, prop.Typ.Kind)
}

func TestBindPropertyOnUnknownFieldFails(t *testing.T) {
	b, _ := newTestBinder(nil)
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []ParsedReturnItem{{
			Expr:  ParsedProperty{Base: ParsedVariable{Name: "n"}, Field: "nosuchprop"},
			Alias: "x",
		}},
	}
	_, err := b.Bind(q)
	assert.Error(t, err, "expected error accessing an unknown property")
}

func TestBindParameterResolvesDeclaredType(t *testing.T) {
	b, _ := newTestBinder(map[string]types.LogicalType{"q": types.NewString()})
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []ParsedReturnItem{{Expr: ParsedParameter{Name: "q"}, Alias: "p"}},
	}
	stmt, err := b.Bind(q)
	require.NoError(t, err)
	param, ok := stmt.Query.Projection[0].Expr.(*expr.Parameter)
	require.True(t, ok, "expected *expr.Parameter, got %T", stmt.Query.Projection[0].Expr)
	assert.Equal(t, types.String, param.Typ.Kind)
}

func TestBindParameterWithoutDeclaredTypeFails(t *testing.T) {
	b, _ := newTestBinder(nil)
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []ParsedReturnItem{{Expr: ParsedParameter{Name: "q"}, Alias: "p"}},
	}
	_, err := b.Bind(q)
	assert.Error(t, err, "expected error referencing an undeclared parameter")
}

func TestBindAggregateFunctionMarksHasAggregate(t *testing.T) {
	b, _ := newTestBinder(nil)
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{{
			Path: []ParsedPatternElem{{Var: "n", Label: "person"}},
		}},
		Return: []ParsedReturnItem{{
			Expr:  ParsedFunctionCall{Func: "COUNT", Args: []ParsedExpr{ParsedStar{}}},
			Alias: "c",
		}},
	}
	stmt, err := b.Bind(q)
	require.NoError(t, err)
	assert.True(t, stmt.Query.HasAggregate, "query with COUNT(*) should have HasAggregate = true")
}

func TestBindDDLCreateNodeTable(t *testing.T) {
	b, _ := newTestBinder(nil)
	stmt, err := b.Bind(&ParsedCreateNodeTable{
		Name:       "company",
		Properties: []ParsedPropertyDef{{Name: "ID", TypeName: "INT64"}, {Name: "name", TypeName: "STRING"}},
		PrimaryKey: "ID",
	})
	require.NoError(t, err)
	require.Equal(t, StmtDDL, stmt.Kind)
	require.NotNil(t, stmt.DDL.CreateNode, "expected a bound CreateNode DDL statement")
	assert.Equal(t, "company", stmt.DDL.CreateNode.Name)
	assert.False(t, stmt.ReadOnly, "CREATE NODE TABLE should not be read-only")
}

func TestBindCopyFromUnknownTableFails(t *testing.T) {
	b, _ := newTestBinder(nil)
	_, err := b.Bind(&ParsedCopyFrom{Table: "nosuchtable", Path: "x.csv"})
	assert.Error(t, err, "expected error copying into an unknown table")
}

func TestBindCopyFromKnownTable(t *testing.T) {
	b, _ := newTestBinder(nil)
	stmt, err := b.Bind(&ParsedCopyFrom{Table: "person", Path: "x.csv", PreservingOrder: true})
	require.NoError(t, err)
	require.Equal(t, StmtCopyFrom, stmt.Kind)
	assert.True(t, stmt.Copy.PreservingOrder)
}

func TestBindReusedVariableAcrossMatchClauses(t *testing.T) {
	b, _ := newTestBinder(nil)
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{
			{Path: []ParsedPatternElem{{Var: "a", Label: "person"}}},
			{Path: []ParsedPatternElem{{Var: "a", Label: "person"}}},
		},
		Return: []ParsedReturnItem{{Expr: ParsedVariable{Name: "a"}, Alias: "a"}},
	}
	stmt, err := b.Bind(q)
	require.NoError(t, err)
	assert.Len(t, stmt.Query.Matches, 2)
}

func TestBindReusedVariableWithConflictingLabelFails(t *testing.T) {
	b, fx := newTestBinder(nil)
	// declare a second, unrelated node table to produce a genuine type clash.
	require.NoError(t, fx.Cat.AddTable(&catalog.TableSchema{Name: "company", Kind: catalog.NodeTable}))
	q := &ParsedQuery{
		Matches: []ParsedMatchClause{
			{Path: []ParsedPatternElem{{Var: "a", Label: "person"}}},
			{Path: []ParsedPatternElem{{Var: "a", Label: "company"}}},
		},
		Return: []ParsedReturnItem{{Expr: ParsedVariable{Name: "a"}, Alias: "a"}},
	}
	_, err := b.Bind(q)
	assert.Error(t, err, "expected error reusing a variable name against a conflicting label")
}
