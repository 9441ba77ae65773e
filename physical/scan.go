package physical

import (
	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/types"
	"github.com/nectardb/nectar/vector"
)

// morselSize caps how many offsets a single Scan.Next pulls from storage
// at a time (spec.md §5 "fixed-capacity DataChunk"; §5 task scheduler
// "morsel").
const morselSize = vector.DefaultCapacity

// Scan is the physical counterpart of logical.ScanNode: it walks a node
// table's offset range in morsels, filling the bound variable's internal
// id column and any eagerly requested property columns (spec.md §4.5
// "Scan source").
type Scan struct {
	base
	Storage    catalog.TableScanner
	TableID    uint64
	VarName    string
	OutNames   []string // bound expression names exposed on the output batch (e.g. "n.age")
	ColNames   []string // underlying storage column names (e.g. "age")
	PropTypes  []types.LogicalType

	next uint64
	size uint64
}

// NewScan binds a property list where outNames[i] is the column name
// exposed on the output Batch (the bound expression's full name, e.g.
// "n.age") and colNames[i] is the underlying storage column to read
// (e.g. "age"); they coincide for a scan with no alias prefixing.
func NewScan(storage catalog.TableScanner, tableID uint64, varName string, outNames, colNames []string, propTypes []types.LogicalType) *Scan {
	names := append([]string{varName}, outNames...)
	return &Scan{base: base{names: names}, Storage: storage, TableID: tableID, VarName: varName, OutNames: outNames, ColNames: colNames, PropTypes: propTypes}
}

func (s *Scan) Open(ec *common.ExecutionContext) error {
	s.next = 0
	s.size = s.Storage.TableSize(s.TableID)
	return nil
}

func (s *Scan) Close() error { return nil }

func (s *Scan) Next(ec *common.ExecutionContext) (*Batch, error) {
	if err := ec.CheckInterrupted(); err != nil {
		return nil, err
	}
	if s.next >= s.size {
		return nil, nil
	}
	start := s.next
	end := start + morselSize
	if end > s.size {
		end = s.size
	}
	s.next = end
	n := int(end - start)

	idCol := vector.NewValueVector(types.NewNode(s.TableID), n)
	for i := uint64(start); i < end; i++ {
		idCol.Append(types.NodeIDValue(s.TableID, types.NewNode(s.TableID), types.InternalID{TableID: s.TableID, Offset: i}))
	}

	cols := []*vector.ValueVector{idCol}
	for pi, colName := range s.ColNames {
		buf := make([]types.Value, n)
		if err := s.Storage.Scan(ec.Context(), s.TableID, colName, start, end, buf); err != nil {
			return nil, common.NewRuntimeError("scan failed", err)
		}
		v := vector.NewValueVector(s.PropTypes[pi], n)
		for _, val := range buf {
			v.Append(val)
		}
		cols = append(cols, v)
	}
	return &Batch{Names: s.ColumnNames(), Columns: cols}, nil
}

func (s *Scan) Children() []Operator { return nil }
