package physical

import (
	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/types"
)

// InQueryCall invokes a table function per input row, binding its result
// rows to OutVars (spec.md §4.5 "InQueryCall"). A table function's Exec
// returns a single LIST(STRUCT) value when OutVars has more than one
// entry, or a plain LIST otherwise; each list element becomes one output
// row.
type InQueryCall struct {
	base
	Child   Operator
	Call    eval.Kernel
	OutVars []string
}

func NewInQueryCall(child Operator, call eval.Kernel, outVars []string) *InQueryCall {
	names := append(append([]string{}, child.ColumnNames()...), outVars...)
	return &InQueryCall{base: base{names: names}, Child: child, Call: call, OutVars: outVars}
}

func (c *InQueryCall) Open(ec *common.ExecutionContext) error { return c.Child.Open(ec) }
func (c *InQueryCall) Close() error                             { return c.Child.Close() }

func (c *InQueryCall) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := c.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}
		out := emptyBatchLike(c.ColumnNames())
		for r := 0; r < in.Size(); r++ {
			result, err := c.Call(in.Row(r), ec.Params)
			if err != nil {
				return nil, err
			}
			if result.Null {
				continue
			}
			for _, elem := range result.AsList() {
				AppendRowFrom(out, in, r)
				row := out.Size() - 1
				if len(c.OutVars) == 1 {
					out.Columns[out.ColumnIndex(c.OutVars[0])].Set(row, elem)
					continue
				}
				fields := elem.AsStruct()
				for i, name := range c.OutVars {
					if i < len(fields) {
						out.Columns[out.ColumnIndex(name)].Set(row, fields[i])
					}
				}
			}
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
}

// WriteItem binds a SET target column name to a compiled value kernel.
type WriteItem struct {
	TargetCol  string
	TargetID   eval.Kernel // evaluates to the node/rel's InternalID
	TargetProp string
	TargetTbl  uint64
	Value      eval.Kernel
}

// Create inserts one new node/rel per input row through the storage
// layer's WriteStore, then passes its input through unchanged (spec.md
// §4.5 "Create") so a RETURN or further write clause can still see the
// bound pattern variables.
type Create struct {
	base
	Child      Operator
	Store      catalog.WriteStore
	NodeInsert []NodeInsert
	RelInsert  []RelInsert
}

// NodeInsert describes one CREATE (n:Label {props}) clause: the table to
// insert into, the output column to bind the new node's id to, and the
// per-property value kernels.
type NodeInsert struct {
	TableID  uint64
	BindCol  string
	PropCols []string
	Props    []eval.Kernel
}

// RelInsert describes one CREATE ()-[r:TYPE {props}]->() clause.
type RelInsert struct {
	TableID  uint64
	SrcCol   string
	DstCol   string
	PropCols []string
	Props    []eval.Kernel
}

func NewCreate(child Operator, store catalog.WriteStore, nodes []NodeInsert, rels []RelInsert) *Create {
	return &Create{base: base{names: child.ColumnNames()}, Child: child, Store: store, NodeInsert: nodes, RelInsert: rels}
}

func (c *Create) Open(ec *common.ExecutionContext) error { return c.Child.Open(ec) }
func (c *Create) Close() error                             { return c.Child.Close() }

func (c *Create) Next(ec *common.ExecutionContext) (*Batch, error) {
	in, err := c.Child.Next(ec)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	for r := 0; r < in.Size(); r++ {
		row := in.Row(r)
		newIDs := map[string]types.InternalID{}
		for _, ni := range c.NodeInsert {
			props := map[string]types.Value{}
			for i, k := range ni.Props {
				v, err := k(row, ec.Params)
				if err != nil {
					return nil, err
				}
				props[ni.PropCols[i]] = v
			}
			id, err := c.Store.CreateNode(ec.Context(), ni.TableID, props)
			if err != nil {
				return nil, err
			}
			newIDs[ni.BindCol] = id
		}
		for _, ri := range c.RelInsert {
			src, ok := newIDs[ri.SrcCol]
			if !ok {
				if v, ok2 := row.Get(ri.SrcCol); ok2 {
					src = v.AsInternalID()
				}
			}
			dst, ok := newIDs[ri.DstCol]
			if !ok {
				if v, ok2 := row.Get(ri.DstCol); ok2 {
					dst = v.AsInternalID()
				}
			}
			props := map[string]types.Value{}
			for i, k := range ri.Props {
				v, err := k(row, ec.Params)
				if err != nil {
					return nil, err
				}
				props[ri.PropCols[i]] = v
			}
			if err := c.Store.CreateRel(ec.Context(), ri.TableID, src, dst, props); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

// Delete removes bound nodes/rels through the storage layer (spec.md
// §4.5 "Delete"), passing the input rows through unchanged.
type Delete struct {
	base
	Child   Operator
	Store   catalog.WriteStore
	Targets []eval.Kernel
	Detach  bool
}

func NewDelete(child Operator, store catalog.WriteStore, targets []eval.Kernel, detach bool) *Delete {
	return &Delete{base: base{names: child.ColumnNames()}, Child: child, Store: store, Targets: targets, Detach: detach}
}

func (d *Delete) Open(ec *common.ExecutionContext) error { return d.Child.Open(ec) }
func (d *Delete) Close() error                             { return d.Child.Close() }

func (d *Delete) Next(ec *common.ExecutionContext) (*Batch, error) {
	in, err := d.Child.Next(ec)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	for r := 0; r < in.Size(); r++ {
		row := in.Row(r)
		for _, k := range d.Targets {
			v, err := k(row, ec.Params)
			if err != nil {
				return nil, err
			}
			if v.Null {
				continue
			}
			id := v.AsInternalID()
			var delErr error
			if v.Type.Kind == types.Rel {
				delErr = d.Store.DeleteRel(ec.Context(), id)
			} else {
				delErr = d.Store.DeleteNode(ec.Context(), id, d.Detach)
			}
			if delErr != nil {
				return nil, delErr
			}
		}
	}
	return in, nil
}

// Set applies property assignments to bound nodes/rels through the
// storage layer (spec.md §4.5 "Set"), passing input rows through
// unchanged.
type Set struct {
	base
	Child Operator
	Store catalog.WriteStore
	Items []WriteItem
}

func NewSet(child Operator, store catalog.WriteStore, items []WriteItem) *Set {
	return &Set{base: base{names: child.ColumnNames()}, Child: child, Store: store, Items: items}
}

func (s *Set) Open(ec *common.ExecutionContext) error { return s.Child.Open(ec) }
func (s *Set) Close() error                             { return s.Child.Close() }

func (s *Set) Next(ec *common.ExecutionContext) (*Batch, error) {
	in, err := s.Child.Next(ec)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	for r := 0; r < in.Size(); r++ {
		row := in.Row(r)
		for _, it := range s.Items {
			idVal, err := it.TargetID(row, ec.Params)
			if err != nil {
				return nil, err
			}
			if idVal.Null {
				continue
			}
			val, err := it.Value(row, ec.Params)
			if err != nil {
				return nil, err
			}
			if err := s.Store.SetProperty(ec.Context(), idVal.AsInternalID(), it.TargetTbl, it.TargetProp, val); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

func (c *InQueryCall) Children() []Operator { return []Operator{c.Child} }
func (c *Create) Children() []Operator      { return []Operator{c.Child} }
func (d *Delete) Children() []Operator      { return []Operator{d.Child} }
func (s *Set) Children() []Operator         { return []Operator{s.Child} }
