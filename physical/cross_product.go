package physical

import (
	"github.com/nectardb/nectar/common"
)

// CrossProduct pairs every left row with every right row with no join
// predicate (spec.md §4.5 "CrossProduct" — the planner's fallback when
// two pattern components share no connecting predicate). The right
// child is materialized once and rescanned per left row; left stays
// streamed.
type CrossProduct struct {
	base
	Left, Right Operator

	rightRows *Batch
	built     bool
}

func NewCrossProduct(left, right Operator) *CrossProduct {
	names := append(append([]string{}, left.ColumnNames()...), right.ColumnNames()...)
	return &CrossProduct{base: base{names: names}, Left: left, Right: right}
}

func (c *CrossProduct) Open(ec *common.ExecutionContext) error {
	c.built = false
	c.rightRows = nil
	if err := c.Left.Open(ec); err != nil {
		return err
	}
	return c.Right.Open(ec)
}

func (c *CrossProduct) Close() error {
	lerr := c.Left.Close()
	rerr := c.Right.Close()
	if lerr != nil {
		return lerr
	}
	return rerr
}

func (c *CrossProduct) materializeRight(ec *common.ExecutionContext) error {
	acc := emptyBatchLike(c.Right.ColumnNames())
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return err
		}
		b, err := c.Right.Next(ec)
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
		for r := 0; r < b.Size(); r++ {
			AppendRowFrom(acc, b, r)
		}
	}
	c.rightRows = acc
	c.built = true
	return nil
}

func (c *CrossProduct) Next(ec *common.ExecutionContext) (*Batch, error) {
	if !c.built {
		if err := c.materializeRight(ec); err != nil {
			return nil, err
		}
	}
	if c.rightRows.Size() == 0 {
		return nil, nil
	}
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		left, err := c.Left.Next(ec)
		if err != nil {
			return nil, err
		}
		if left == nil {
			return nil, nil
		}
		out := emptyBatchLike(c.ColumnNames())
		for lr := 0; lr < left.Size(); lr++ {
			for rr := 0; rr < c.rightRows.Size(); rr++ {
				for ci, name := range c.ColumnNames() {
					if idx := left.ColumnIndex(name); idx >= 0 {
						out.Columns[ci].Append(left.Columns[idx].Get(lr))
					} else {
						out.Columns[ci].Append(c.rightRows.Columns[c.rightRows.ColumnIndex(name)].Get(rr))
					}
				}
			}
		}
		if out.Size() > 0 {
			return out, nil
		}
	}
}

func (c *CrossProduct) Children() []Operator { return []Operator{c.Left, c.Right} }
