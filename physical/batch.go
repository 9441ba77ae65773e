// Package physical implements the physical operator tree: the pull-based
// pipeline of vectorized operators the scheduler drives morsel by morsel
// (spec.md §5 "Vectorized execution engine", §4.3 "Physical plan
// mapper"). Grounded on _examples/SnellerInc-sneller/plan/plan.go's Op
// interface and plan/exec.go's pool-driven execution, adapted from
// Sneller's push-style Table/QuerySink protocol to the pull protocol
// spec.md requires (see DESIGN.md "Vectorized execution engine").
//
// This package executes against fully flattened batches: the physical
// mapper walks the logical tree after planner.Finalize has already
// inserted every required logical.Flatten, so by the time a physical
// operator runs, its input batches carry one row per selected tuple
// rather than a nested group structure. Every operator that creates an
// unflat group at the logical layer (Scan, Extend, RecursiveExtend,
// Unwind, InQueryCall) already performs that group's row fan-out
// eagerly in its own Next() here, so logical.Flatten carries no physical
// counterpart — the mapper maps it straight through to its child (see
// mapper.go's mapFlatten). The factorization bookkeeping that spec.md's
// schema package tracks at plan time is real at plan time only; at
// execution time it has already collapsed into ordinary row counts.
package physical

import (
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/types"
	"github.com/nectardb/nectar/vector"
)

// Batch is a flat, named vector of columns sharing one row count — the
// physical-execution counterpart of a fully flattened
// schema.FactorizedSchema (spec.md §5 "DataChunk of ValueVector").
type Batch struct {
	Names   []string
	Columns []*vector.ValueVector
}

// NewBatch allocates a batch with one ValueVector per (name, type) pair.
func NewBatch(names []string, types_ []types.LogicalType, capacity int) *Batch {
	cols := make([]*vector.ValueVector, len(names))
	for i, t := range types_ {
		cols[i] = vector.NewValueVector(t, capacity)
	}
	return &Batch{Names: names, Columns: cols}
}

// Size is the number of populated rows; all columns share it by
// invariant.
func (b *Batch) Size() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Size()
}

// ColumnIndex resolves a bound expression name to its column position, or
// -1 if absent.
func (b *Batch) ColumnIndex(name string) int {
	for i, n := range b.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Row returns an eval.Env view over row i of the batch, used to drive the
// expression evaluator per selected row.
func (b *Batch) Row(i int) eval.Env { return batchRow{b: b, i: i} }

type batchRow struct {
	b *Batch
	i int
}

func (r batchRow) Get(name string) (types.Value, bool) {
	idx := r.b.ColumnIndex(name)
	if idx < 0 {
		return types.Value{}, false
	}
	return r.b.Columns[idx].Get(r.i), true
}

// AppendRowFrom copies row i of src into the next free row of dst,
// matching columns by name; columns present in dst but absent from src
// are left null.
func AppendRowFrom(dst *Batch, src *Batch, i int) {
	for ci, name := range dst.Names {
		j := src.ColumnIndex(name)
		if j < 0 {
			dst.Columns[ci].SetNull(dst.Columns[ci].Size())
			continue
		}
		dst.Columns[ci].Append(src.Columns[j].Get(i))
	}
}
