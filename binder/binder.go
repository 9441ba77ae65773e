package binder

import (
	"fmt"
	"strconv"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/types"
)

// Binder resolves a ParsedStatement against a Catalog and a parameter
// type map into a BoundStatement (spec.md §4.1).
type Binder struct {
	Catalog    catalog.Catalog
	ParamTypes map[string]types.LogicalType

	nextUniq int
}

func NewBinder(cat catalog.Catalog, paramTypes map[string]types.LogicalType) *Binder {
	return &Binder{Catalog: cat, ParamTypes: paramTypes}
}

func (b *Binder) uniq(prefix string) string {
	b.nextUniq++
	return fmt.Sprintf("%s#%d", prefix, b.nextUniq)
}

// Bind is the binder's entry point.
func (b *Binder) Bind(stmt ParsedStatement) (*BoundStatement, error) {
	switch s := stmt.(type) {
	case *ParsedQuery:
		q, err := b.bindQuery(s, newScope(nil))
		if err != nil {
			return nil, err
		}
		cols := make([]ResultColumn, len(q.Projection))
		for i, p := range q.Projection {
			cols[i] = ResultColumn{Name: p.Alias, Type: types.ResolveAny(p.Expr.Type())}
		}
		out := &BoundStatement{Kind: StmtQuery, Query: q, ResultColumns: cols}
		out.ReadOnly = isReadOnlyQuery(q)
		return out, nil
	case *ParsedCreateNodeTable:
		props := make([]catalog.PropertyDef, len(s.Properties))
		for i, p := range s.Properties {
			t, err := typeFromName(p.TypeName)
			if err != nil {
				return nil, &common.BinderError{Msg: err.Error()}
			}
			props[i] = catalog.PropertyDef{Name: p.Name, Type: t}
		}
		schema := &catalog.TableSchema{Name: s.Name, Kind: catalog.NodeTable, Properties: props, PrimaryKey: s.PrimaryKey}
		return &BoundStatement{Kind: StmtDDL, DDL: &BoundDDL{CreateNode: schema}, ReadOnly: false,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	case *ParsedCreateRelTable:
		props := make([]catalog.PropertyDef, len(s.Properties))
		for i, p := range s.Properties {
			t, err := typeFromName(p.TypeName)
			if err != nil {
				return nil, &common.BinderError{Msg: err.Error()}
			}
			props[i] = catalog.PropertyDef{Name: p.Name, Type: t}
		}
		src, ok := b.Catalog.TableByName(s.Src)
		if !ok {
			return nil, &common.CatalogError{Msg: "unknown src table " + s.Src}
		}
		dst, ok := b.Catalog.TableByName(s.Dst)
		if !ok {
			return nil, &common.CatalogError{Msg: "unknown dst table " + s.Dst}
		}
		schema := &catalog.TableSchema{Name: s.Name, Kind: catalog.RelTable, Properties: props, SrcTableID: src.ID, DstTableID: dst.ID}
		return &BoundStatement{Kind: StmtDDL, DDL: &BoundDDL{CreateRel: schema}, ReadOnly: false,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	case *ParsedDropTable:
		if _, ok := b.Catalog.TableByName(s.Name); !ok {
			return nil, &common.CatalogError{Msg: "unknown table " + s.Name}
		}
		return &BoundStatement{Kind: StmtDDL, DDL: &BoundDDL{DropName: s.Name}, ReadOnly: false,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	case *ParsedCopyFrom:
		tbl, ok := b.Catalog.TableByName(s.Table)
		if !ok {
			return nil, &common.CatalogError{Msg: "unknown table " + s.Table}
		}
		return &BoundStatement{Kind: StmtCopyFrom, Copy: &BoundCopy{Table: tbl, Path: s.Path, PreservingOrder: s.PreservingOrder}, ReadOnly: false,
			ResultColumns: []ResultColumn{{Name: "numRows", Type: types.NewInt64()}}}, nil
	case *ParsedCopyTo:
		tbl, ok := b.Catalog.TableByName(s.Table)
		if !ok {
			return nil, &common.CatalogError{Msg: "unknown table " + s.Table}
		}
		return &BoundStatement{Kind: StmtCopyTo, Copy: &BoundCopy{Table: tbl, Path: s.Path}, ReadOnly: true,
			ResultColumns: []ResultColumn{{Name: "numRows", Type: types.NewInt64()}}}, nil
	case *ParsedAttach:
		return &BoundStatement{Kind: StmtDatabaseOp, DatabaseOp: &BoundDatabaseOp{Kind: "attach", Path: s.Path, Alias: s.Alias}, ReadOnly: false,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	case *ParsedDetach:
		return &BoundStatement{Kind: StmtDatabaseOp, DatabaseOp: &BoundDatabaseOp{Kind: "detach", Alias: s.Alias}, ReadOnly: false,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	case *ParsedUse:
		return &BoundStatement{Kind: StmtDatabaseOp, DatabaseOp: &BoundDatabaseOp{Kind: "use", Alias: s.Alias}, ReadOnly: true,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	case *ParsedCall:
		return &BoundStatement{Kind: StmtCall, Call: &BoundCall{Key: s.Key, Value: s.Value}, ReadOnly: true,
			ResultColumns: []ResultColumn{{Name: "result", Type: types.NewString()}}}, nil
	default:
		return nil, &common.BinderError{Msg: "unsupported statement"}
	}
}

func typeFromName(name string) (types.LogicalType, error) {
	switch name {
	case "BOOL", "BOOLEAN":
		return types.NewBool(), nil
	case "INT8":
		return types.NewInt8(), nil
	case "INT16":
		return types.NewInt16(), nil
	case "INT32", "INT":
		return types.NewInt32(), nil
	case "INT64", "INT128":
		if name == "INT128" {
			return types.NewInt128(), nil
		}
		return types.NewInt64(), nil
	case "FLOAT":
		return types.NewFloat(), nil
	case "DOUBLE":
		return types.NewDouble(), nil
	case "STRING":
		return types.NewString(), nil
	case "DATE":
		return types.NewDate(), nil
	case "TIMESTAMP":
		return types.NewTimestamp(), nil
	case "UUID":
		return types.NewUUID(), nil
	default:
		return types.LogicalType{}, fmt.Errorf("unknown type name %q", name)
	}
}

func (b *Binder) bindQuery(q *ParsedQuery, sc *Scope) (*BoundQuery, error) {
	out := &BoundQuery{Skip: q.Skip, Limit: q.Limit, Distinct: q.Distinct}
	for _, m := range q.Matches {
		bm, err := b.bindMatch(m, sc)
		if err != nil {
			return nil, err
		}
		out.Matches = append(out.Matches, *bm)
	}
	for _, u := range q.Unwinds {
		e, err := b.bindExpr(u.Expr, sc)
		if err != nil {
			return nil, err
		}
		elemType := e.Type()
		if elemType.Kind == types.List {
			elemType = *elemType.Elem
		}
		v := expr.NewVariable(u.As, elemType)
		if err := sc.Declare(u.As, v); err != nil {
			return nil, err
		}
		out.Unwinds = append(out.Unwinds, BoundUnwind{Expr: e, As: v})
	}
	for _, r := range q.Return {
		e, err := b.bindExpr(r.Expr, sc)
		if err != nil {
			return nil, err
		}
		alias := r.Alias
		if alias == "" {
			alias = e.Name()
		}
		if fc, ok := e.(*expr.FunctionCall); ok && fc.Kind == expr.AggregateFunction {
			out.HasAggregate = true
		}
		out.Projection = append(out.Projection, BoundProjectionItem{Expr: e, Alias: alias})
	}
	for _, o := range q.OrderBy {
		e, err := b.bindExpr(o.Expr, sc)
		if err != nil {
			return nil, err
		}
		out.OrderBy = append(out.OrderBy, BoundOrderItem{Expr: e, Desc: o.Desc})
	}
	return out, nil
}

func (b *Binder) bindMatch(m ParsedMatchClause, sc *Scope) (*BoundMatchClause, error) {
	out := &BoundMatchClause{Optional: m.Optional}
	for _, elem := range m.Path {
		be, err := b.bindPatternElem(elem, sc)
		if err != nil {
			return nil, err
		}
		out.Path = append(out.Path, *be)
	}
	if m.Where != nil {
		w, err := b.bindExpr(m.Where, sc)
		if err != nil {
			return nil, err
		}
		out.Where = w
	}
	return out, nil
}

func (b *Binder) bindPatternElem(elem ParsedPatternElem, sc *Scope) (*BoundPatternElem, error) {
	if !elem.IsRel {
		var tableID uint64
		t := types.NewAny()
		if elem.Label != "" {
			tbl, ok := b.Catalog.TableByName(elem.Label)
			if !ok {
				return nil, &common.CatalogError{Msg: "unknown node table " + elem.Label}
			}
			tableID = tbl.ID
			t = types.NewNode(tableID)
		}
		varName := elem.Var
		if varName == "" {
			varName = b.uniq("n")
		}
		if existing, ok := sc.Lookup(varName); ok {
			if elem.Label != "" && !existing.Type().Equal(t) {
				return nil, &common.BinderError{Msg: "variable " + varName + " already bound to a different type"}
			}
			t = existing.Type()
		} else {
			if err := sc.Declare(varName, expr.NewVariable(varName, t)); err != nil {
				return nil, err
			}
		}
		return &BoundPatternElem{Kind: NodeElem, Var: varName, TableID: tableID, Type: t}, nil
	}
	var tableID uint64
	t := types.NewAny()
	if elem.Label != "" {
		tbl, ok := b.Catalog.TableByName(elem.Label)
		if !ok {
			return nil, &common.CatalogError{Msg: "unknown rel table " + elem.Label}
		}
		tableID = tbl.ID
		t = types.NewRel(tableID)
	}
	varName := elem.Var
	if varName == "" {
		varName = b.uniq("r")
	}
	if err := sc.Declare(varName, expr.NewVariable(varName, t)); err != nil {
		return nil, err
	}
	minHops, maxHops := elem.MinHops, elem.MaxHops
	if minHops == 0 && maxHops == 0 {
		minHops, maxHops = 1, 1
	}
	return &BoundPatternElem{
		Kind: RelElem, Var: varName, TableID: tableID, Type: t,
		Direction: elem.Direction, MinHops: minHops, MaxHops: maxHops, Mode: elem.Mode,
	}, nil
}

// bindExpr resolves a ParsedExpr in depth-first order, matching spec.md
// §4.1's variable/parameter/function/property resolution rules.
func (b *Binder) bindExpr(pe ParsedExpr, sc *Scope) (expr.Node, error) {
	switch e := pe.(type) {
	case ParsedLiteral:
		return b.bindLiteral(e)
	case ParsedParameter:
		t, ok := b.ParamTypes[e.Name]
		if !ok {
			return nil, &common.BinderError{Msg: "parameter $" + e.Name + " has no bound value"}
		}
		return expr.NewParameter(e.Name, t), nil
	case ParsedVariable:
		v, ok := sc.Lookup(e.Name)
		if !ok {
			return nil, &common.BinderError{Msg: "unknown variable " + e.Name}
		}
		return v, nil
	case ParsedStar:
		return expr.NewVariable("*", types.NewAny()), nil
	case ParsedProperty:
		base, err := b.bindExpr(e.Base, sc)
		if err != nil {
			return nil, err
		}
		return b.bindProperty(base, e.Field)
	case ParsedFunctionCall:
		return b.bindFunctionCall(e, sc)
	case ParsedSubquery:
		sub := sc.Push()
		bq, err := b.bindQuery(e.Query, sub)
		if err != nil {
			return nil, err
		}
		t := types.NewBool()
		if !e.IsExists && len(bq.Projection) == 1 {
			t = bq.Projection[0].Expr.Type()
		}
		return expr.NewSubquery(bq, t, b.uniq("subq"), e.IsExists), nil
	default:
		return nil, &common.BinderError{Msg: "unsupported expression"}
	}
}

func (b *Binder) bindLiteral(e ParsedLiteral) (expr.Node, error) {
	switch e.Kind {
	case "int":
		n, err := strconv.ParseInt(e.Text, 10, 64)
		if err != nil {
			return nil, &common.BinderError{Msg: "invalid integer literal " + e.Text}
		}
		return expr.NewLiteral(types.Int64Value(n), b.uniq("lit")), nil
	case "float":
		f, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			return nil, &common.BinderError{Msg: "invalid float literal " + e.Text}
		}
		return expr.NewLiteral(types.DoubleValue(f), b.uniq("lit")), nil
	case "string":
		return expr.NewLiteral(types.StringValue(e.Text), b.uniq("lit")), nil
	case "bool":
		return expr.NewLiteral(types.BoolValue(e.Text == "true"), b.uniq("lit")), nil
	case "null":
		return expr.NewLiteral(types.NullValue(types.NewAny()), b.uniq("lit")), nil
	default:
		return nil, &common.BinderError{Msg: "unknown literal kind " + e.Kind}
	}
}

// bindProperty resolves a property access against the catalog, recording
// primary-key references (spec.md §4.1: "Resolve properties against the
// catalog's table schemas, normalizing to typed property access and
// recording primary-key references").
func (b *Binder) bindProperty(base expr.Node, field string) (expr.Node, error) {
	t := base.Type()
	if t.Kind != types.Node && t.Kind != types.Rel {
		return nil, &common.BinderError{Msg: "cannot access property " + field + " on non-node/rel expression"}
	}
	tbl, ok := b.Catalog.TableByID(t.TableID)
	if !ok {
		return nil, &common.CatalogError{Msg: "table not found for property access"}
	}
	prop, ok := tbl.Property(field)
	if !ok {
		return nil, &common.CatalogError{Msg: "unknown property " + field + " on table " + tbl.Name}
	}
	isPK := tbl.PrimaryKey == field
	return expr.NewProperty(base, t.TableID, field, prop.Type, isPK), nil
}

// bindFunctionCall resolves a function by name + argument signature with
// implicit-cast scoring (spec.md §4.1).
func (b *Binder) bindFunctionCall(e ParsedFunctionCall, sc *Scope) (expr.Node, error) {
	args := make([]expr.Node, len(e.Args))
	argTypes := make([]types.LogicalType, len(e.Args))
	for i, a := range e.Args {
		be, err := b.bindExpr(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = be
		argTypes[i] = be.Type()
	}
	fs, ok := b.Catalog.Functions().Lookup(e.Func)
	if !ok {
		return nil, &common.CatalogError{Msg: "unknown function " + e.Func}
	}
	ov, err := b.Catalog.Functions().Resolve(e.Func, argTypes)
	if err != nil {
		return nil, &common.BinderError{Msg: err.Error()}
	}
	kind := expr.ScalarFunction
	if isAggregateName(fs.Name) {
		kind = expr.AggregateFunction
	}
	fc := expr.NewFunctionCall(e.Func, kind, args, ov.Return, b.uniq("fn"))
	fc.Distinct = e.Distinct
	return fc, nil
}

func isAggregateName(name string) bool {
	switch name {
	case "COUNT", "SUM", "AVG", "MIN", "MAX", "COLLECT":
		return true
	default:
		return false
	}
}

// IsReadOnly walks a bound statement and returns true iff no updating
// clause appears (spec.md §4.1), grounded on
// _examples/original_source/src/binder/visitor/statement_read_write_analyzer.cpp.
func IsReadOnly(stmt *BoundStatement) bool { return stmt.ReadOnly }

func isReadOnlyQuery(q *BoundQuery) bool {
	// A BoundQuery built from MATCH/RETURN/UNWIND only, as modeled by
	// ParsedQuery, is always read-only; create/delete/set/copy/DDL are
	// modeled as distinct statement kinds (spec.md §3 logical operator
	// kinds), so a *BoundQuery* specifically never updates.
	_ = q
	return true
}
