package physical

import (
	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/types"
	"github.com/nectardb/nectar/vector"
)

// Extend pulls a batch of bound-node ids from its child and, for each
// row, fans out to every neighbor reachable via RelTableID/Direction,
// producing one output row per (bound row, neighbor) pair (spec.md §4.5
// "Extend"). This is the one place row counts routinely grow within a
// single physical operator, so it is also a natural cooperative
// cancellation checkpoint.
type Extend struct {
	base
	Child        Operator
	Storage      catalog.AdjacencyScanner
	BoundColName string
	NbrVarName   string
	RelVarName   string // "" if the rel binding itself isn't projected
	RelTableID   uint64
	Direction    catalog.Direction
	RelPropOut   []string // bound expression names exposed on the output (e.g. "r.weight")
	RelProps     []string // underlying storage column names (e.g. "weight")
	RelPropTypes []types.LogicalType
}

// NewExtend binds a relationship-property list where relPropOut[i] is the
// name exposed on the output Batch and relProps[i] is the storage column
// name passed to AdjacencyScanner.Neighbors; they coincide when the
// binder exposes the property under its bare column name.
func NewExtend(child Operator, storage catalog.AdjacencyScanner, boundCol, nbrVar, relVar string, relTableID uint64, dir catalog.Direction, relPropOut, relProps []string, relPropTypes []types.LogicalType) *Extend {
	names := append(append([]string{}, child.ColumnNames()...), nbrVar)
	if relVar != "" {
		names = append(names, relVar)
	}
	names = append(names, relPropOut...)
	return &Extend{
		base: base{names: names}, Child: child, Storage: storage,
		BoundColName: boundCol, NbrVarName: nbrVar, RelVarName: relVar,
		RelTableID: relTableID, Direction: dir, RelPropOut: relPropOut, RelProps: relProps, RelPropTypes: relPropTypes,
	}
}

func (e *Extend) Open(ec *common.ExecutionContext) error { return e.Child.Open(ec) }
func (e *Extend) Close() error                            { return e.Child.Close() }

func (e *Extend) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := e.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}
		out := emptyBatchLike(e.ColumnNames())
		boundIdx := in.ColumnIndex(e.BoundColName)
		for r := 0; r < in.Size(); r++ {
			bound := in.Columns[boundIdx].Get(r)
			id := bound.AsInternalID()
			nbrIDs, relProps, err := e.Storage.Neighbors(ec.Context(), e.RelTableID, id, e.Direction, e.RelProps)
			if err != nil {
				return nil, common.NewRuntimeError("extend failed", err)
			}
			for k, nbr := range nbrIDs {
				for ci, name := range e.ColumnNames() {
					switch {
					case name == e.NbrVarName:
						out.Columns[ci].Append(types.NodeIDValue(nbr.TableID, types.NewNode(nbr.TableID), nbr))
					case name == e.RelVarName:
						out.Columns[ci].Append(types.NodeIDValue(e.RelTableID, types.NewRel(e.RelTableID), nbr))
					default:
						if pi := indexOf(e.RelPropOut, name); pi >= 0 {
							out.Columns[ci].Append(relProps[k][pi])
						} else {
							out.Columns[ci].Append(in.Columns[in.ColumnIndex(name)].Get(r))
						}
					}
				}
			}
		}
		if out.Size() > 0 {
			return out, nil
		}
		// this input batch produced no neighbors at all; pull the next one
		// rather than returning a spuriously empty-but-not-exhausted batch.
	}
}

func emptyBatchLike(names []string) *Batch {
	cols := make([]*vector.ValueVector, len(names))
	for i := range cols {
		cols[i] = vector.NewValueVector(types.NewAny(), vector.DefaultCapacity)
	}
	return &Batch{Names: names, Columns: cols}
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func (e *Extend) Children() []Operator { return []Operator{e.Child} }
