package physical

import (
	"fmt"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/expr"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
)

// Mapper translates a finalized logical plan (every planner.Finalize
// flatten requirement already satisfied by inserted logical.Flatten
// nodes) into a physical operator tree (spec.md §4.3 "Physical plan
// mapper": a one-pass, bottom-up visitor). It is the seam between the
// factorized-schema world logical/planner reason in and the flat-batch
// world physical executes in.
type Mapper struct {
	Catalog  catalog.Catalog
	Storage  catalog.Storage
	Write    catalog.WriteStore
	DBs      catalog.DatabaseManager
	Registry *expr.Registry
	ApplyCfg func(key, value string) error

	// Instrument, when set, wraps every mapped operator in an
	// Instrumented so planprint.Explain can report per-operator row
	// counts and self time after a run (SPEC_FULL.md §12 QuerySummary
	// JSON plan "stats"). Since mapChild recurses through Map itself,
	// wrapping here reaches every node bottom-up: a parent operator's
	// Children() is always whatever its own constructor was handed,
	// which is already the wrapped child by the time the parent is
	// built.
	Instrument bool
}

func (m *Mapper) compile(e expr.Node) (eval.Kernel, error) {
	return eval.Compile(e, m.Registry)
}

func (m *Mapper) compileAll(es []expr.Node) ([]eval.Kernel, error) {
	ks := make([]eval.Kernel, len(es))
	for i, e := range es {
		k, err := m.compile(e)
		if err != nil {
			return nil, err
		}
		ks[i] = k
	}
	return ks, nil
}

func (m *Mapper) mapChild(op logical.Operator, i int) (Operator, error) {
	return m.Map(op.Children()[i])
}

// Map walks op bottom-up and returns the physical operator tree rooted at
// its translation.
func (m *Mapper) Map(op logical.Operator) (Operator, error) {
	phys, err := m.mapOp(op)
	if err != nil || !m.Instrument {
		return phys, err
	}
	return Instrument(phys, fmt.Sprintf("%T", op)), nil
}

func (m *Mapper) mapOp(op logical.Operator) (Operator, error) {
	switch o := op.(type) {
	case *logical.DummyScan:
		return NewDummyScan(), nil

	case *logical.ScanNode:
		return m.mapScanNode(o)

	case *logical.Extend:
		return m.mapExtend(o)

	case *logical.RecursiveExtend:
		return m.mapRecursiveExtend(o)

	case *logical.Filter:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		pred, err := m.compile(o.Predicate)
		if err != nil {
			return nil, err
		}
		return NewFilter(child, pred), nil

	case *logical.Projection:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		items := make([]ProjectionColumn, len(o.Items))
		for i, it := range o.Items {
			k, err := m.compile(it.Expr)
			if err != nil {
				return nil, err
			}
			items[i] = ProjectionColumn{Alias: it.Alias, Kernel: k, Type: it.Expr.Type()}
		}
		return NewProjection(child, items), nil

	case *logical.Flatten:
		return m.mapFlatten(o)

	case *logical.Skip:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		return NewSkip(child, o.N), nil

	case *logical.Limit:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		return NewLimit(child, o.N), nil

	case *logical.OrderBy:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		keys := make([]OrderByKey, len(o.Keys))
		for i, k := range o.Keys {
			kern, err := m.compile(k.Expr)
			if err != nil {
				return nil, err
			}
			keys[i] = OrderByKey{Kernel: kern, Desc: k.Desc}
		}
		return NewOrderBy(child, keys), nil

	case *logical.HashJoin:
		probe, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		build, err := m.mapChild(o, 1)
		if err != nil {
			return nil, err
		}
		probeKeys, err := m.compileAll(o.ProbeKeys)
		if err != nil {
			return nil, err
		}
		buildKeys, err := m.compileAll(o.BuildKeys)
		if err != nil {
			return nil, err
		}
		// Sideways information passing (spec.md Open Question #1): for a
		// single-column equi-join, a SemiMasker shared with the build
		// phase lets a SemiFilter ahead of the probe side reject rows the
		// build side could never match, before they ever reach the join.
		// Composite keys are left unwired (SIP stays nil, HashJoin falls
		// back to its plain build/probe behavior) since SemiFilter's mark
		// set only stores single key hashes.
		hj := NewHashJoin(probe, build, probeKeys, buildKeys, o.Kind)
		if len(probeKeys) == 1 && len(buildKeys) == 1 {
			masker := NewSemiMasker()
			hj.SIP = masker
			hj.Probe = NewSemiFilter(probe, masker, probeKeys[0])
		}
		return hj, nil

	case *logical.CrossProduct:
		left, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		right, err := m.mapChild(o, 1)
		if err != nil {
			return nil, err
		}
		return newCrossJoin(left, right), nil

	case *logical.Aggregate:
		return m.mapAggregate(o)

	case *logical.Distinct:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		keys, err := m.compileAll(o.Keys)
		if err != nil {
			return nil, err
		}
		names := exprNames(o.Keys)
		return NewDistinct(child, keys, names), nil

	case *logical.Accumulate:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		return NewNamedAccumulate(child, o.Type, o.ResultName), nil

	case *logical.Union:
		left, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		right, err := m.mapChild(o, 1)
		if err != nil {
			return nil, err
		}
		return NewUnion(left, right, o.All), nil

	case *logical.Unwind:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		k, err := m.compile(o.ListExpr)
		if err != nil {
			return nil, err
		}
		return NewUnwind(child, k, o.As.Name()), nil

	case *logical.InQueryCall:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		k, err := m.compile(o.Call)
		if err != nil {
			return nil, err
		}
		return NewInQueryCall(child, k, exprNames(varsToNodes(o.OutVars))), nil

	case *logical.Create:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		nodes, rels := m.createInserts(o)
		return NewCreate(child, m.Write, nodes, rels), nil

	case *logical.Delete:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		targets, err := m.compileAll(o.Targets)
		if err != nil {
			return nil, err
		}
		return NewDelete(child, m.Write, targets, o.Detach), nil

	case *logical.Set:
		return m.mapSet(o)

	case *logical.CopyFrom:
		return NewCopyFrom(m.Storage, o.Table, o.Path, o.PreservingOrder), nil

	case *logical.CopyTo:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		return NewCopyTo(child, o.Path), nil

	case *logical.DDL:
		return NewDDL(m.Catalog, o), nil

	case *logical.DatabaseOp:
		return NewDatabaseOp(m.DBs, o), nil

	case *logical.ConfigSet:
		return NewConfigSet(o.Key, o.Value, m.ApplyCfg), nil

	case *logical.MultiplicityReducer:
		child, err := m.mapChild(o, 0)
		if err != nil {
			return nil, err
		}
		factor := 1
		if s := o.Children()[0].Schema(); s != nil {
			factor = s.Multiplicity
		}
		return NewMultiplicityReducer(child, factor), nil

	default:
		return nil, fmt.Errorf("physical.Mapper: unhandled logical operator %T", op)
	}
}

func (m *Mapper) mapScanNode(o *logical.ScanNode) (Operator, error) {
	if _, ok := m.Catalog.TableByID(o.TableID); !ok {
		return nil, fmt.Errorf("mapper: unknown table id %d", o.TableID)
	}
	outNames := make([]string, len(o.Properties))
	colNames := make([]string, len(o.Properties))
	ptypes := make([]types.LogicalType, len(o.Properties))
	for i, p := range o.Properties {
		outNames[i] = p.Name()
		ptypes[i] = p.Type()
		if prop, ok := p.(*expr.Property); ok {
			colNames[i] = prop.ColumnName
		} else {
			colNames[i] = p.Name()
		}
	}
	return NewScan(m.Storage, o.TableID, o.NodeVar.Name(), outNames, colNames, ptypes), nil
}

func (m *Mapper) mapExtend(o *logical.Extend) (Operator, error) {
	child, err := m.mapChild(o, 0)
	if err != nil {
		return nil, err
	}
	relOutNames := make([]string, len(o.RelProperties))
	relColNames := make([]string, len(o.RelProperties))
	relTypes := make([]types.LogicalType, len(o.RelProperties))
	for i, p := range o.RelProperties {
		relOutNames[i] = p.Name()
		relTypes[i] = p.Type()
		if prop, ok := p.(*expr.Property); ok {
			relColNames[i] = prop.ColumnName
		} else {
			relColNames[i] = p.Name()
		}
	}
	relVarName := ""
	if o.RelVar != nil {
		relVarName = o.RelVar.Name()
	}
	return NewExtend(child, m.Storage, o.BoundVar.Name(), o.NbrVar.Name(), relVarName, o.RelTableID, o.Direction, relOutNames, relColNames, relTypes), nil
}

func (m *Mapper) mapRecursiveExtend(o *logical.RecursiveExtend) (Operator, error) {
	child, err := m.mapChild(o, 0)
	if err != nil {
		return nil, err
	}
	pathVar := ""
	if o.PathVar != nil {
		pathVar = o.PathVar.Name()
	}
	return NewRecursiveExtend(child, m.Storage, o.BoundVar.Name(), o.DstVar.Name(), pathVar,
		o.RelTableID, o.Direction, o.LowerBound, o.UpperBound, o.Mode), nil
}

// mapFlatten is a pass-through. Every logical operator that creates an
// unflat group (ScanNode, Extend, RecursiveExtend, Unwind, InQueryCall)
// maps to a physical operator that already performs that group's
// per-element row fan-out eagerly inside its own Next() — Scan appends
// one row per matched node, Extend one row per neighbor, Unwind one row
// per list element, directly, with no intermediate list-valued column.
// logical.Flatten is therefore schema-bookkeeping for the planner's
// cardinality/flatten-requirement accounting (spec.md §4.2) with no
// physical counterpart to run in this engine's flat-batch execution
// model (see batch.go's package doc); there is no physical Flatten
// operator, since no list-valued group column is left to expand by the
// time a plan reaches the mapper.
func (m *Mapper) mapFlatten(o *logical.Flatten) (Operator, error) {
	return m.mapChild(o, 0)
}

func (m *Mapper) mapAggregate(o *logical.Aggregate) (Operator, error) {
	child, err := m.mapChild(o, 0)
	if err != nil {
		return nil, err
	}
	keys, err := m.compileAll(o.Keys)
	if err != nil {
		return nil, err
	}
	items := make([]AggItem, len(o.Items))
	for i, it := range o.Items {
		var arg eval.Kernel
		if len(it.Call.Args) > 0 {
			arg, err = m.compile(it.Call.Args[0])
			if err != nil {
				return nil, err
			}
		}
		items[i] = AggItem{
			FuncName: it.Call.FuncName,
			Arg:      arg,
			Distinct: it.Call.Distinct,
			Alias:    it.Alias,
			Type:     it.Call.Type(),
		}
	}
	return NewAggregate(child, keys, items, exprNames(o.Keys)), nil
}

// createInserts derives bare node/rel insert descriptors from a
// logical.Create's table lists. logical.Create carries no per-property
// value expressions or pattern-variable bindings of its own, so the
// descriptors carry no property values. The binder has no CREATE-clause
// binding, so no bound statement is planned to a Create, and nothing
// pairs a Create with a Set. NodeInsert entries are bound under a
// synthetic column name (_created_node_<i>) that no other operator
// resolves; rels connect consecutive node tables, matching
// how a single linear CREATE pattern like (a)-[r]->(b)-[s]->(c) lists
// its node and relationship tables in traversal order.
func (m *Mapper) createInserts(o *logical.Create) ([]NodeInsert, []RelInsert) {
	nodes := make([]NodeInsert, len(o.NodeTables))
	bindNames := make([]string, len(o.NodeTables))
	for i, t := range o.NodeTables {
		bindNames[i] = fmt.Sprintf("_created_node_%d", i)
		nodes[i] = NodeInsert{TableID: t.ID, BindCol: bindNames[i]}
	}
	rels := make([]RelInsert, len(o.RelTables))
	for i, t := range o.RelTables {
		ri := RelInsert{TableID: t.ID}
		if i < len(bindNames) {
			ri.SrcCol = bindNames[i]
		}
		if i+1 < len(bindNames) {
			ri.DstCol = bindNames[i+1]
		}
		rels[i] = ri
	}
	return nodes, rels
}

func (m *Mapper) mapSet(o *logical.Set) (Operator, error) {
	child, err := m.mapChild(o, 0)
	if err != nil {
		return nil, err
	}
	items := make([]WriteItem, len(o.Items))
	for i, it := range o.Items {
		idK, err := m.compile(it.Target)
		if err != nil {
			return nil, err
		}
		valK, err := m.compile(it.Value)
		if err != nil {
			return nil, err
		}
		prop, _ := it.Target.(*expr.Property)
		propName, tableID := "", uint64(0)
		if prop != nil {
			propName = prop.ColumnName
			tableID = prop.TableID
		}
		items[i] = WriteItem{TargetID: idK, TargetProp: propName, TargetTbl: tableID, Value: valK}
	}
	return NewSet(child, m.Write, items), nil
}

func exprNames(es []expr.Node) []string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name()
	}
	return names
}

func varsToNodes(vs []*expr.Variable) []expr.Node {
	ns := make([]expr.Node, len(vs))
	for i, v := range vs {
		ns[i] = v
	}
	return ns
}

// newCrossJoin builds a nested-loop CrossProduct; it is physical.HashJoin
// with an always-true predicate would also work, but a dedicated
// nested-loop keeps the common no-join-key path from paying a hash
// table's setup cost.
func newCrossJoin(left, right Operator) *CrossProduct {
	return NewCrossProduct(left, right)
}
