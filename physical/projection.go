package physical

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
	"github.com/nectardb/nectar/types"
	"github.com/nectardb/nectar/vector"
)

// ProjectionColumn is one computed output column: an evaluator kernel
// plus its declared output type (needed to allocate the output vector).
type ProjectionColumn struct {
	Alias string
	Kernel eval.Kernel
	Type   types.LogicalType
}

// Projection computes Items against each input row (spec.md §4.5
// "Projection").
type Projection struct {
	base
	Child Operator
	Items []ProjectionColumn
}

func NewProjection(child Operator, items []ProjectionColumn) *Projection {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Alias
	}
	return &Projection{base: base{names: names}, Child: child, Items: items}
}

func (p *Projection) Open(ec *common.ExecutionContext) error { return p.Child.Open(ec) }
func (p *Projection) Close() error                             { return p.Child.Close() }

func (p *Projection) Next(ec *common.ExecutionContext) (*Batch, error) {
	if err := ec.CheckInterrupted(); err != nil {
		return nil, err
	}
	in, err := p.Child.Next(ec)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	out := p.allocBatch()
	for r := 0; r < in.Size(); r++ {
		row := in.Row(r)
		for ci, it := range p.Items {
			v, err := it.Kernel(row, ec.Params)
			if err != nil {
				return nil, err
			}
			out.Columns[ci].Append(v)
		}
	}
	return out, nil
}

func (p *Projection) allocBatch() *Batch {
	cols := make([]*vector.ValueVector, len(p.Items))
	for i, it := range p.Items {
		cols[i] = vector.NewValueVector(it.Type, vector.DefaultCapacity)
	}
	return &Batch{Names: p.ColumnNames(), Columns: cols}
}

func (p *Projection) Children() []Operator { return []Operator{p.Child} }
