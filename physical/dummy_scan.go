package physical

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/types"
)

// DummyScan emits exactly one tuple, then nothing (spec.md §3, physical
// counterpart of logical.DummyScan — the source for queries with no
// MATCH clause, e.g. `RETURN 1`). It carries one unexposed placeholder
// column purely to give the batch a row count of 1; no expression ever
// reads it.
type DummyScan struct {
	base
	emitted bool
}

func NewDummyScan() *DummyScan {
	return &DummyScan{base: base{names: []string{"_dummy"}}}
}

func (d *DummyScan) Open(ec *common.ExecutionContext) error { d.emitted = false; return nil }
func (d *DummyScan) Close() error                             { return nil }

func (d *DummyScan) Next(ec *common.ExecutionContext) (*Batch, error) {
	if d.emitted {
		return nil, nil
	}
	d.emitted = true
	out := NewBatch(d.ColumnNames(), []types.LogicalType{types.NewBool()}, 1)
	out.Columns[0].Append(types.BoolValue(true))
	return out, nil
}

func (d *DummyScan) Children() []Operator { return nil }
