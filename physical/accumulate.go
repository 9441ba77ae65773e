package physical

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/logical"
	"github.com/nectardb/nectar/types"
)

// Accumulate materializes its child entirely before emitting anything,
// implementing OPTIONAL MATCH and EXISTS lowering (spec.md §4.5
// "Accumulate"). Regular re-emits every materialized row; Optional_
// substitutes one all-null row for an empty input; Exists emits a single
// boolean row reporting whether the child produced anything, without
// reading past the first row.
type Accumulate struct {
	base
	Child Operator
	Type  logical.AccumulateType

	done     bool
	rows     *Batch
	scanPos  int
}

func NewAccumulate(child Operator, t logical.AccumulateType) *Accumulate {
	return NewNamedAccumulate(child, t, "exists")
}

// NewNamedAccumulate is NewAccumulate with an explicit Exists result
// column name, used by the physical mapper when lowering a
// logical.Accumulate built via logical.NewExistsAccumulate.
func NewNamedAccumulate(child Operator, t logical.AccumulateType, existsName string) *Accumulate {
	var names []string
	if t == logical.Exists {
		if existsName == "" {
			existsName = "exists"
		}
		names = []string{existsName}
	} else {
		names = child.ColumnNames()
	}
	return &Accumulate{base: base{names: names}, Child: child, Type: t}
}

func (a *Accumulate) Open(ec *common.ExecutionContext) error {
	a.done = false
	a.rows = nil
	a.scanPos = 0
	return a.Child.Open(ec)
}

func (a *Accumulate) Close() error { return a.Child.Close() }

func (a *Accumulate) Next(ec *common.ExecutionContext) (*Batch, error) {
	if a.done {
		return nil, nil
	}
	switch a.Type {
	case logical.Exists:
		return a.nextExists(ec)
	default:
		return a.nextMaterialized(ec)
	}
}

func (a *Accumulate) nextExists(ec *common.ExecutionContext) (*Batch, error) {
	a.done = true
	found := false
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		b, err := a.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if b == nil {
			break
		}
		if b.Size() > 0 {
			found = true
			break
		}
	}
	out := NewBatch(a.ColumnNames(), []types.LogicalType{types.NewBool()}, 1)
	out.Columns[0].Append(types.BoolValue(found))
	return out, nil
}

func (a *Accumulate) nextMaterialized(ec *common.ExecutionContext) (*Batch, error) {
	if a.rows == nil {
		a.rows = emptyBatchLike(a.ColumnNames())
		for {
			if err := ec.CheckInterrupted(); err != nil {
				return nil, err
			}
			b, err := a.Child.Next(ec)
			if err != nil {
				return nil, err
			}
			if b == nil {
				break
			}
			for i := 0; i < b.Size(); i++ {
				AppendRowFrom(a.rows, b, i)
			}
		}
		if a.rows.Size() == 0 && a.Type == logical.Optional_ {
			for _, col := range a.rows.Columns {
				col.SetNull(0)
			}
		}
	}
	if a.scanPos >= a.rows.Size() {
		a.done = true
		return nil, nil
	}
	end := a.scanPos + morselSize
	if end > a.rows.Size() {
		end = a.rows.Size()
	}
	out := emptyBatchLike(a.ColumnNames())
	for r := a.scanPos; r < end; r++ {
		AppendRowFrom(out, a.rows, r)
	}
	a.scanPos = end
	return out, nil
}

func (a *Accumulate) Children() []Operator { return []Operator{a.Child} }
