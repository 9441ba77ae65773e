package physical

import (
	"github.com/nectardb/nectar/common"
)

// Union concatenates Left's and Right's output; when All is false it
// also deduplicates the full result set against everything seen so far
// (spec.md §4.5 "Union"/"UNION DISTINCT").
type Union struct {
	base
	Left, Right Operator
	All         bool

	onLeft bool
	seen   map[string]bool
}

func NewUnion(left, right Operator, all bool) *Union {
	return &Union{base: base{names: left.ColumnNames()}, Left: left, Right: right, All: all}
}

func (u *Union) Open(ec *common.ExecutionContext) error {
	u.onLeft = true
	if !u.All {
		u.seen = map[string]bool{}
	}
	if err := u.Left.Open(ec); err != nil {
		return err
	}
	return u.Right.Open(ec)
}

func (u *Union) Close() error {
	err1 := u.Left.Close()
	err2 := u.Right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (u *Union) Next(ec *common.ExecutionContext) (*Batch, error) {
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		var in *Batch
		var err error
		if u.onLeft {
			in, err = u.Left.Next(ec)
			if err != nil {
				return nil, err
			}
			if in == nil {
				u.onLeft = false
				continue
			}
		} else {
			in, err = u.Right.Next(ec)
			if err != nil {
				return nil, err
			}
			if in == nil {
				return nil, nil
			}
		}
		if u.All {
			return in, nil
		}
		out := emptyBatchLike(u.ColumnNames())
		for r := 0; r < in.Size(); r++ {
			key := rowKey(in, r)
			if u.seen[key] {
				continue
			}
			u.seen[key] = true
			AppendRowFrom(out, in, r)
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
}

func rowKey(b *Batch, r int) string {
	var key string
	for _, col := range b.Columns {
		key += col.Get(r).String() + "\x00"
	}
	return key
}

func (u *Union) Children() []Operator { return []Operator{u.Left, u.Right} }
