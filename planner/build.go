package planner

import (
	"github.com/nectardb/nectar/binder"
	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
)

// BuildStatement dispatches a fully bound statement of any kind to its
// logical tree: StmtQuery goes through Build; every other kind lowers
// directly to the single source-less logical operator its bound form
// already carries everything for (spec.md §4.1 "query, DDL, DML, copy,
// attach/detach/use, call" are all statement kinds the binder produces,
// and every one but a query reaches the physical mapper without a
// planner pass — there is nothing to factorize or cost when the
// statement has no MATCH pattern).
func BuildStatement(cat catalog.Catalog, stmt *binder.BoundStatement) (logical.Operator, error) {
	switch stmt.Kind {
	case binder.StmtQuery:
		return Build(cat, stmt.Query)
	case binder.StmtDDL:
		return buildDDL(stmt.DDL), nil
	case binder.StmtCopyFrom:
		return logical.NewCopyFrom(stmt.Copy.Table, stmt.Copy.Path, stmt.Copy.PreservingOrder), nil
	case binder.StmtCopyTo:
		src := expr.NewVariable("_copy_src", types.NewNode(stmt.Copy.Table.ID))
		scan := logical.NewScanNode(src, stmt.Copy.Table.ID)
		scan.Properties = scannedProperties(cat, stmt.Copy.Table.ID, src)
		return logical.NewCopyTo(scan, stmt.Copy.Path), nil
	case binder.StmtDatabaseOp:
		return buildDatabaseOp(stmt.DatabaseOp), nil
	case binder.StmtCall:
		return logical.NewConfigSet(stmt.Call.Key, stmt.Call.Value), nil
	default:
		return nil, &common.PlannerError{Msg: "unsupported statement kind"}
	}
}

func buildDDL(d *binder.BoundDDL) logical.Operator {
	switch {
	case d.CreateNode != nil:
		op := logical.NewDDL(logical.CreateNodeTable)
		op.Table = d.CreateNode
		return op
	case d.CreateRel != nil:
		op := logical.NewDDL(logical.CreateRelTable)
		op.Table = d.CreateRel
		return op
	default:
		op := logical.NewDDL(logical.DropTable)
		op.Name = d.DropName
		return op
	}
}

func buildDatabaseOp(d *binder.BoundDatabaseOp) logical.Operator {
	switch d.Kind {
	case "attach":
		return logical.NewDatabaseOp(logical.AttachDatabase, d.Path, d.Alias, "")
	case "detach":
		return logical.NewDatabaseOp(logical.DetachDatabase, "", d.Alias, "")
	default:
		return logical.NewDatabaseOp(logical.UseDatabase, "", d.Alias, "")
	}
}

// Build turns a bound query into the naive, pre-Finalize logical tree: one
// ScanNode/Extend/RecursiveExtend chain per MATCH path, its own Where
// folded in as a Filter, chained match clauses joined on any pattern
// variable they share, then Unwind/Aggregate-or-Distinct/Projection/
// OrderBy/Skip/Limit layered on top in source order (spec.md §4.3
// "Planner" — "builds the logical plan bottom-up from a bound
// statement"). Finalize is called on the result before Build returns, so
// callers get a plan already free of unresolved Flatten obligations.
func Build(cat catalog.Catalog, q *binder.BoundQuery) (logical.Operator, error) {
	cur, err := buildMatches(cat, q.Matches)
	if err != nil {
		return nil, err
	}

	for _, u := range q.Unwinds {
		cur = logical.NewUnwind(cur, u.Expr, u.As)
	}

	if q.HasAggregate {
		cur = buildAggregate(cur, q)
	} else {
		items := make([]logical.ProjectionItem, len(q.Projection))
		for i, it := range q.Projection {
			items[i] = logical.ProjectionItem{Expr: it.Expr, Alias: it.Alias}
		}
		cur = logical.NewProjection(cur, items)
		if q.Distinct {
			keys := make([]expr.Node, len(items))
			for i, it := range items {
				keys[i] = it.Expr
			}
			cur = logical.NewDistinct(cur, keys)
		}
	}

	if len(q.OrderBy) > 0 {
		keys := make([]logical.OrderItem, len(q.OrderBy))
		for i, o := range q.OrderBy {
			keys[i] = logical.OrderItem{Expr: o.Expr, Desc: o.Desc}
		}
		cur = logical.NewOrderBy(cur, keys)
	}
	if q.Skip != nil {
		cur = logical.NewSkip(cur, *q.Skip)
	}
	if q.Limit != nil {
		cur = logical.NewLimit(cur, *q.Limit)
	}

	return Finalize(logical.Rewrite(cur, logical.DefaultRules)), nil
}

func buildAggregate(child logical.Operator, q *binder.BoundQuery) logical.Operator {
	var keys []expr.Node
	var items []logical.AggregateItem
	for _, it := range q.Projection {
		if fc, ok := it.Expr.(*expr.FunctionCall); ok && fc.Kind == expr.AggregateFunction {
			items = append(items, logical.AggregateItem{Call: fc, Alias: it.Alias})
			continue
		}
		keys = append(keys, it.Expr)
	}
	return logical.NewAggregate(child, keys, items)
}

// varBinding tracks where a pattern variable declared by an earlier MATCH
// clause lives, so a later clause reusing the same name joins against it
// instead of silently re-scanning (binder/binder.go's bindPatternElem
// shares one Scope across every BoundMatchClause of a query, so a reused
// name denotes the same bound entity).
type varBinding struct {
	v       *expr.Variable
	tableID uint64
}

// buildMatches lowers each BoundMatchClause into its own chain, then
// combines all of them with EnumerateBushy's cost-based DP join
// enumerator (spec.md §4.3), rather than a fixed left-to-right join
// order: every pair of clauses sharing a pattern variable becomes an
// EdgePredicate over that variable's table primary key, and
// EnumerateBushy picks whichever bushy join tree EstimateCardinality
// scores cheapest, falling back to CrossProduct for a pair with no
// shared variable.
func buildMatches(cat catalog.Catalog, matches []binder.BoundMatchClause) (logical.Operator, error) {
	if len(matches) == 0 {
		return logical.NewDummyScan(), nil
	}

	branches := make([]logical.Operator, len(matches))
	varsPerBranch := make([]map[string]varBinding, len(matches))
	for i, m := range matches {
		branch, vars, err := buildMatchChain(cat, m)
		if err != nil {
			return nil, err
		}
		branches[i] = branch
		varsPerBranch[i] = vars
	}
	if len(matches) == 1 {
		return branches[0], nil
	}

	candidates := make([]JoinCandidate, len(branches))
	for i, b := range branches {
		candidates[i] = JoinCandidate{Plan: b}
	}

	var edges []EdgePredicate
	for i := 0; i < len(varsPerBranch); i++ {
		for j := i + 1; j < len(varsPerBranch); j++ {
			shared, leftKey, rightKey, err := sharedJoinKeys(cat, varsPerBranch[i], varsPerBranch[j])
			if err != nil {
				return nil, err
			}
			if shared {
				edges = append(edges, EdgePredicate{Left: i, Right: j, LeftKey: leftKey, RightKey: rightKey})
			}
		}
	}
	return EnumerateBushy(candidates, edges), nil
}

// sharedJoinKeys looks for the first variable name appearing in both
// already-bound and vars, and returns a primary-key equality predicate
// over it for each side.
func sharedJoinKeys(cat catalog.Catalog, already map[string]varBinding, vars map[string]varBinding) (bool, expr.Node, expr.Node, error) {
	for name, nv := range vars {
		ov, ok := already[name]
		if !ok {
			continue
		}
		tbl, ok := cat.TableByID(ov.tableID)
		if !ok || tbl.PrimaryKey == "" {
			continue
		}
		pk, ok := tbl.Property(tbl.PrimaryKey)
		if !ok {
			continue
		}
		probeKey := expr.NewProperty(ov.v, ov.tableID, pk.Name, pk.Type, true)
		buildKey := expr.NewProperty(nv.v, nv.tableID, pk.Name, pk.Type, true)
		return true, probeKey, buildKey, nil
	}
	return false, nil, nil, nil
}

// buildMatchChain lowers one BoundMatchClause.Path into a ScanNode
// followed by alternating Extend/RecursiveExtend operators, folding Where
// in as a trailing Filter, and wraps the whole chain in an Accumulate of
// type Optional_ when the clause is OPTIONAL MATCH (accumulate.go: "the
// operator OPTIONAL MATCH ... lowers to").
func buildMatchChain(cat catalog.Catalog, m binder.BoundMatchClause) (logical.Operator, map[string]varBinding, error) {
	vars := map[string]varBinding{}
	if len(m.Path) == 0 {
		return logical.NewDummyScan(), vars, nil
	}

	first := m.Path[0]
	nodeVar := expr.NewVariable(first.Var, first.Type)
	scan := logical.NewScanNode(nodeVar, first.TableID)
	scan.Properties = scannedProperties(cat, first.TableID, nodeVar)
	var cur logical.Operator = scan
	vars[first.Var] = varBinding{v: nodeVar, tableID: first.TableID}
	boundVar := expr.Node(nodeVar)

	for i := 1; i < len(m.Path); i += 2 {
		rel := m.Path[i]
		if i+1 >= len(m.Path) {
			return nil, nil, &common.PlannerError{Msg: "dangling rel pattern element with no destination node"}
		}
		dst := m.Path[i+1]
		dstVar := expr.NewVariable(dst.Var, dst.Type)

		if rel.MinHops == 1 && rel.MaxHops == 1 && rel.Mode == binder.RecNone {
			var relVar *expr.Variable
			if rel.Var != "" {
				relVar = expr.NewVariable(rel.Var, rel.Type)
			}
			ext := logical.NewExtend(cur, boundVar, dstVar, relVar, rel.TableID, rel.Direction)
			if relVar != nil {
				ext.RelProperties = scannedProperties(cat, rel.TableID, relVar)
			}
			cur = ext
			if relVar != nil {
				vars[rel.Var] = varBinding{v: relVar, tableID: rel.TableID}
			}
		} else {
			mode := mapRecursiveMode(rel.Mode)
			cur = logical.NewRecursiveExtend(cur, boundVar, dstVar, nil, rel.TableID, rel.Direction, rel.MinHops, rel.MaxHops, mode)
		}
		vars[dst.Var] = varBinding{v: dstVar, tableID: dst.TableID}
		boundVar = dstVar
	}

	if m.Where != nil {
		var err error
		cur, err = applyWhere(cat, cur, m.Where)
		if err != nil {
			return nil, nil, err
		}
	}
	if m.Optional {
		cur = logical.NewAccumulate(cur, logical.Optional_)
	}
	return cur, vars, nil
}

// applyWhere folds pred onto cur as a Filter, first lowering any WHERE
// EXISTS {...} subquery pred contains into the mark-join pattern spec.md's
// Open Question #2 calls for: each *expr.Subquery with IsExists true is
// planned on its own (recursively, via Build) into an Accumulate(Exists)
// side-plan, cross-joined onto cur so its single boolean column becomes
// an ordinary row value, and the subquery node itself is rewritten within
// pred into a Variable referencing that column — eval.Compile never sees
// a raw *expr.Subquery this way (eval/evaluator.go explicitly refuses to
// compile one). Only uncorrelated EXISTS subqueries resolve correctly:
// the sub-plan is built independently of cur, so a predicate inside it
// referencing an outer pattern variable resolves that variable to null
// rather than the outer row's actual value (see DESIGN.md).
func applyWhere(cat catalog.Catalog, cur logical.Operator, pred expr.Node) (logical.Operator, error) {
	rw := &existsRewriter{}
	pred = expr.Rewrite(rw, pred)
	for _, sub := range rw.found {
		bq, ok := sub.Plan.(*binder.BoundQuery)
		if !ok {
			return nil, &common.PlannerError{Msg: "subquery plan is not a bound query"}
		}
		subPlan, err := Build(cat, bq)
		if err != nil {
			return nil, err
		}
		acc := logical.NewExistsAccumulate(subPlan, sub.Name())
		cur = logical.NewCrossProduct(cur, acc)
	}
	return logical.NewFilter(cur, pred), nil
}

// existsRewriter replaces every *expr.Subquery with IsExists set with an
// expr.Variable sharing its name and type, collecting each one it
// replaces so applyWhere can cross-join in the Accumulate(Exists) that
// will supply that variable's value.
type existsRewriter struct {
	found []*expr.Subquery
}

func (r *existsRewriter) Walk(expr.Node) expr.Rewriter { return r }

func (r *existsRewriter) Rewrite(n expr.Node) expr.Node {
	sub, ok := n.(*expr.Subquery)
	if !ok || !sub.IsExists {
		return n
	}
	r.found = append(r.found, sub)
	return expr.NewVariable(sub.Name(), sub.Type())
}

// scannedProperties eagerly includes every declared property of table as
// an expr.Property rooted at base, since the binder performs no
// projection pushdown yet: whatever a downstream Filter/Projection/
// OrderBy/Aggregate references is guaranteed to already be a live column
// by the time it runs.
func scannedProperties(cat catalog.Catalog, tableID uint64, base expr.Node) []expr.Node {
	tbl, ok := cat.TableByID(tableID)
	if !ok {
		return nil
	}
	props := make([]expr.Node, 0, len(tbl.Properties))
	for _, p := range tbl.Properties {
		props = append(props, expr.NewProperty(base, tableID, p.Name, p.Type, p.Name == tbl.PrimaryKey))
	}
	return props
}

func mapRecursiveMode(m binder.RecursiveMode) logical.RecursiveMode {
	switch m {
	case binder.RecShortest:
		return logical.RecShortest
	case binder.RecAllShortest:
		return logical.RecAllShortest
	default:
		return logical.RecVarLength
	}
}
