package physical

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
)

// Filter pulls batches from its child and keeps only rows for which
// Predicate evaluates true (spec.md §4.5 "Filter").
type Filter struct {
	base
	Child     Operator
	Predicate eval.Kernel
}

func NewFilter(child Operator, predicate eval.Kernel) *Filter {
	return &Filter{base: base{names: child.ColumnNames()}, Child: child, Predicate: predicate}
}

func (f *Filter) Open(ec *common.ExecutionContext) error { return f.Child.Open(ec) }
func (f *Filter) Close() error                            { return f.Child.Close() }

func (f *Filter) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := f.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}
		out := emptyBatchLike(f.ColumnNames())
		for r := 0; r < in.Size(); r++ {
			v, err := f.Predicate(in.Row(r), ec.Params)
			if err != nil {
				return nil, err
			}
			if !v.Null && v.AsBool() {
				AppendRowFrom(out, in, r)
			}
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
}

func (f *Filter) Children() []Operator { return []Operator{f.Child} }
