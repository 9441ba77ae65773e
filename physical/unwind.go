package physical

import (
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/eval"
)

// Unwind evaluates ListExpr per input row and emits one output row per
// element, binding each to As (spec.md §4.5 "Unwind"). It computes the
// list value from an arbitrary expression per row rather than expanding
// an already-materialized list column.
type Unwind struct {
	base
	Child    Operator
	ListExpr eval.Kernel
	As       string
}

func NewUnwind(child Operator, listExpr eval.Kernel, as string) *Unwind {
	names := append(append([]string{}, child.ColumnNames()...), as)
	return &Unwind{base: base{names: names}, Child: child, ListExpr: listExpr, As: as}
}

func (u *Unwind) Open(ec *common.ExecutionContext) error { return u.Child.Open(ec) }
func (u *Unwind) Close() error                             { return u.Child.Close() }

func (u *Unwind) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		in, err := u.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}
		out := emptyBatchLike(u.ColumnNames())
		for r := 0; r < in.Size(); r++ {
			lv, err := u.ListExpr(in.Row(r), ec.Params)
			if err != nil {
				return nil, err
			}
			if lv.Null {
				continue
			}
			for _, elem := range lv.AsList() {
				AppendRowFrom(out, in, r)
				out.Columns[len(out.Columns)-1].Set(out.Size()-1, elem)
			}
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
}

func (u *Unwind) Children() []Operator { return []Operator{u.Child} }
