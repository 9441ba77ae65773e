package physical

import (
	"github.com/nectardb/nectar/common"
)

// Operator is the pull-based physical execution contract (spec.md §5):
// Open allocates/resets internal state, Next pulls the next morsel (a nil
// batch with a nil error signals exhaustion), Close releases resources.
// Operators that pull or produce morsels check ec.CheckInterrupted() in
// Next so cancellation is observed at morsel boundaries (spec.md §5
// "cooperative cancellation at morsel boundaries"); the single-row
// operators (DummyScan, DDL, DatabaseOp, ConfigSet) and the write
// operators (Create, Delete, Set) do not check it themselves.
type Operator interface {
	Open(ec *common.ExecutionContext) error
	Next(ec *common.ExecutionContext) (*Batch, error)
	Close() error
	ColumnNames() []string
	// Children returns this operator's direct inputs, nil for a leaf.
	// Used by scheduler.Pipeline to discover Prewarmer operators and by
	// planprint to render the plan tree (spec.md §12 "plan printer").
	Children() []Operator
}

// base is embedded by leaf/pipeline operators that only need to remember
// their declared output column names.
type base struct {
	names []string
}

func (b *base) ColumnNames() []string { return b.names }
